package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/AaronC81/hiloz/version"
)

func main() {
	app := &cli.Command{
		Name:  "hiloz",
		Usage: "A discrete-event digital logic simulator",
		Commands: []*cli.Command{
			runCommand,
			replCommand,
			validateCommand,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "Show version",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("version") {
				fmt.Println(version.Version())
			}
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "hiloz: %v\n", err)
		os.Exit(1)
	}
}
