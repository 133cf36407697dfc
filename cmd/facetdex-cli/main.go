package main

import (
	"context"
	"log"
	"os"

	"github.com/kailas-cloud/facetdex/internal/command"
)

func main() {
	app := command.NewApp(os.Stdout)
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
