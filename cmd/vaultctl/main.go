package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/modelvault/modelvault/lib/logger"
)

var log, _ = logger.New("vaultctl")

func main() {
	app := &cli.App{
		Name:  "vaultctl",
		Usage: "Operator and uploader client for the model vault registry",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "rpc-url",
				Value: "localhost:1234",
				Usage: "Registry RPC address",
			},
			&cli.StringFlag{
				Name:     "actor",
				Required: true,
				Usage:    "Identity performing the operation",
			},
		},
		Commands: []*cli.Command{
			submitCmd,
			completeCmd,
			validateCmd,
			resolveCmd,
			activateCmd,
			deprecateCmd,
			withdrawCmd,
			suspendCmd,
			clearHoldCmd,
			clearMarkerCmd,
			downloadCmd,
			manifestCmd,
			metaCmd,
			listCmd,
			uploaderCmd,
			accessCmd,
			badgeCmd,
			auditCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}
