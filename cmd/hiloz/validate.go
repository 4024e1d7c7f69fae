package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/AaronC81/hiloz/compiler/modelcompiler"
	"github.com/AaronC81/hiloz/compiler/parser"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Parses and compiles a model without running it, reporting counts",
	ArgsUsage: "<input>",
	Action:    validateAction,
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return fmt.Errorf("usage: hiloz validate <input>")
	}
	inputPath := cmd.Args().Get(0)

	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	file, err := parser.Parse(string(source))
	if err != nil {
		return err
	}

	m, err := modelcompiler.Compile(file)
	if err != nil {
		return err
	}

	fmt.Printf(
		"%s: %d component definitions, %d instances, %d scripted, %d with constructors\n",
		inputPath, len(m.Definitions), len(m.Components), len(m.Interpreters), len(m.ConstructorInterpreters),
	)
	return nil
}
