package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mmynk/ourledger/internal/config"
)

func main() {
	// Variables already in the environment win over .env.
	config.LoadDotEnv()

	app := &cli.Command{
		Name:  "ourledger",
		Usage: "OurLedger - shared household ledger server",
		Commands: []*cli.Command{
			cmdServe,
			cmdMigrate,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
