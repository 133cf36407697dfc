// Package command implements facetdex-cli, a terminal explorer over the SDK.
package command

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/facetdex"
	"github.com/kailas-cloud/facetdex/internal/version"
)

// app carries the output writer shared by every command.
type app struct {
	out io.Writer
}

// NewApp builds the root command writing results to out.
func NewApp(out io.Writer) *cli.Command {
	a := &app{out: out}
	return &cli.Command{
		Name:    "facetdex-cli",
		Usage:   "Explore a faceted dataset metadata index",
		Version: version.String(),
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Search engine host",
				Value: facetdex.DefaultHost,
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Search engine port",
				Value: facetdex.DefaultPort,
			},
			&cli.StringSliceFlag{
				Name:  "address",
				Usage: "Search engine URL, overrides host and port (repeatable)",
			},
			&cli.StringFlag{
				Name:  "index",
				Usage: "Index to query",
				Value: facetdex.DefaultIndex,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the search engine",
				Value: 10 * time.Second,
			},
		},
		Commands: []*cli.Command{
			a.countCommand(),
			a.sampleCommand(),
			a.searchCommand(),
			a.describeCommand(),
			a.aggregateCommand(),
			a.byCommand(),
			a.topCommand(),
			a.cardinalityCommand(),
			a.randomCommand(),
			a.facetsCommand(),
		},
	}
}

// connect creates an SDK client from the root flags.
func connect(ctx context.Context, c *cli.Command) (*facetdex.Client, error) {
	opts := []facetdex.Option{
		facetdex.WithIndex(c.String("index")),
		facetdex.WithReadinessTimeout(c.Duration("timeout")),
	}
	if addrs := c.StringSlice("address"); len(addrs) > 0 {
		opts = append(opts, facetdex.WithAddresses(addrs...))
	} else {
		opts = append(opts, facetdex.WithHost(c.String("host"), c.Int("port")))
	}

	client, err := facetdex.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	return client, nil
}

// withClient runs fn with a connected client and closes it afterwards.
func withClient(fn func(ctx context.Context, c *cli.Command, client *facetdex.Client) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		client, err := connect(ctx, c)
		if err != nil {
			return err
		}
		defer client.Close()
		return fn(ctx, c, client)
	}
}
