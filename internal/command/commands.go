package command

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/facetdex"
)

const defaultField = "raw.title"

func limitFlag(value int) *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of documents (0 for the default)",
		Value: value,
	}
}

func topNFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "top-n",
		Usage: "Buckets per aggregation (0 for the default)",
	}
}

func fieldFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "field",
		Usage: "Document field printed per hit",
		Value: defaultField,
	}
}

func facetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "facet", Usage: "Facet name", Required: true},
		&cli.StringFlag{Name: "value", Usage: "Facet value", Required: true},
	}
}

func (a *app) countCommand() *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "Count the documents in the index",
		Action: withClient(func(ctx context.Context, _ *cli.Command, client *facetdex.Client) error {
			n, err := client.CountAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Total: %d items\n", n)
			return nil
		}),
	}
}

func (a *app) sampleCommand() *cli.Command {
	return &cli.Command{
		Name:  "sample",
		Usage: "Show one document",
		Action: withClient(func(ctx context.Context, _ *cli.Command, client *facetdex.Client) error {
			hit, err := client.FetchSample(ctx)
			if err != nil {
				return err
			}
			if hit == nil {
				printNoData(a.out, "index is empty")
				return nil
			}
			printTitle(a.out, "%s/%s", hit.Index, hit.ID)
			return printDocument(a.out, &hit.Source)
		}),
	}
}

func (a *app) searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search documents by keywords",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Usage: "Keywords", Required: true},
			&cli.BoolFlag{Name: "query-string", Usage: "Treat the query as engine query-string syntax"},
			limitFlag(0),
			fieldFlag(),
		},
		Action: withClient(func(ctx context.Context, c *cli.Command, client *facetdex.Client) error {
			search := client.Search
			if c.Bool("query-string") {
				search = client.SearchQueryString
			}
			env, err := search(ctx, c.String("query"), c.Int("limit"))
			if err != nil {
				return err
			}
			printHits(a.out, env, c.String("field"))
			return nil
		}),
	}
}

func (a *app) describeCommand() *cli.Command {
	return &cli.Command{
		Name:  "describe",
		Usage: "Describe the keyword subset with facet aggregations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Usage: "Keywords (empty for the whole index)"},
			topNFlag(),
			limitFlag(5),
			fieldFlag(),
		},
		Action: withClient(func(ctx context.Context, c *cli.Command, client *facetdex.Client) error {
			env, err := client.DescribeSubset(ctx, c.String("query"), c.Int("top-n"), c.Int("limit"))
			if err != nil {
				return err
			}
			printHits(a.out, env, c.String("field"))
			printAggregations(a.out, env.Aggregations)
			return nil
		}),
	}
}

func (a *app) aggregateCommand() *cli.Command {
	return &cli.Command{
		Name:  "aggregate",
		Usage: "Aggregate the documents of one facet value over the other facets",
		Flags: append(facetFlags(), topNFlag()),
		Action: withClient(func(ctx context.Context, c *cli.Command, client *facetdex.Client) error {
			aggs, err := client.AggregateEntity(ctx, c.String("facet"), c.String("value"), c.Int("top-n"), 0)
			if err != nil {
				return err
			}
			printAggregations(a.out, aggs)
			return nil
		}),
	}
}

func (a *app) byCommand() *cli.Command {
	return &cli.Command{
		Name:  "by",
		Usage: "List documents whose facet equals a value",
		Flags: append(facetFlags(),
			limitFlag(0),
			fieldFlag(),
			&cli.BoolFlag{Name: "first", Usage: "Print the first document in full"},
		),
		Action: withClient(func(ctx context.Context, c *cli.Command, client *facetdex.Client) error {
			if c.Bool("first") {
				doc, err := client.FirstBy(ctx, c.String("facet"), c.String("value"))
				if err != nil {
					return err
				}
				return printDocument(a.out, doc)
			}
			env, err := client.SearchBy(ctx, c.String("facet"), c.String("value"), c.Int("limit"))
			if err != nil {
				return err
			}
			printHits(a.out, env, c.String("field"))
			return nil
		}),
	}
}

func (a *app) topCommand() *cli.Command {
	return &cli.Command{
		Name:  "top",
		Usage: "Show the most frequent values of every facet",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "n", Usage: "Values per facet", Value: 10},
		},
		Action: withClient(func(ctx context.Context, c *cli.Command, client *facetdex.Client) error {
			aggs, err := client.Top(ctx, c.Int("n"))
			if err != nil {
				return err
			}
			printAggregations(a.out, aggs)
			return nil
		}),
	}
}

func (a *app) cardinalityCommand() *cli.Command {
	return &cli.Command{
		Name:  "cardinality",
		Usage: "Count distinct licenses, categories, tags and organizations",
		Action: withClient(func(ctx context.Context, _ *cli.Command, client *facetdex.Client) error {
			counts, err := client.CountCardinality(ctx)
			if err != nil {
				return err
			}
			labels := make([]string, 0, len(counts))
			for label := range counts {
				labels = append(labels, label)
			}
			sort.Strings(labels)
			for _, label := range labels {
				fmt.Fprintf(a.out, "%-14s %d\n", label, counts[label])
			}
			return nil
		}),
	}
}

func (a *app) randomCommand() *cli.Command {
	return &cli.Command{
		Name:  "random",
		Usage: "Show a random document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filter", Usage: "Query-string filter (empty for the whole index)"},
			&cli.Int64Flag{Name: "seed", Usage: "Fixed seed for a repeatable pick (0 for engine-chosen)"},
			&cli.BoolFlag{Name: "entities", Usage: "Print the facet values of the document instead"},
		},
		Action: withClient(func(ctx context.Context, c *cli.Command, client *facetdex.Client) error {
			doc, err := client.RandomDocument(ctx, c.String("filter"), c.Int64("seed"))
			if err != nil {
				return err
			}
			if doc == nil || !c.Bool("entities") {
				return printDocument(a.out, doc)
			}
			for _, e := range client.CompileEntities(*doc) {
				if e.Value.Kind() != doc.Kind() {
					fmt.Fprintf(a.out, "%-16s %s\n", e.Facet, e.Value)
				}
			}
			return nil
		}),
	}
}

func (a *app) facetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "facets",
		Usage: "List the facet table",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print as JSON"},
		},
		Action: withClient(func(_ context.Context, c *cli.Command, client *facetdex.Client) error {
			facets := client.Facets()
			if c.Bool("json") {
				data, err := json.MarshalIndent(facets, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding facets: %w", err)
				}
				fmt.Fprintln(a.out, string(data))
				return nil
			}
			printTitle(a.out, "index %s", client.Index())
			for _, f := range facets {
				agg := ""
				if f.Aggregated {
					agg = metaStyle.Render("aggregated")
				}
				fmt.Fprintf(a.out, "%-16s %-26s %s\n", f.Name, f.Field, agg)
			}
			return nil
		}),
	}
}
