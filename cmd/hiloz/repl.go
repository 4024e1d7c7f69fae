package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/AaronC81/hiloz/compiler/modelcompiler"
	"github.com/AaronC81/hiloz/compiler/parser"
	"github.com/AaronC81/hiloz/model"
)

var replCommand = &cli.Command{
	Name:      "repl",
	Usage:     "Load a model and single-step the scheduler from an interactive shell",
	ArgsUsage: "<input>",
	Action:    replAction,
}

func replAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return fmt.Errorf("usage: hiloz repl <input>")
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

	if err := m.Construct(); err != nil {
		return err
	}

	fmt.Printf("Loaded %s: %d instances, %d scripted interpreters. Type 'help' for commands.\n",
		inputPath, len(m.Components), len(m.Interpreters))

	return runREPLLoop(m)
}

// runREPLLoop reads commands with readline when stdin is a terminal, and
// falls back to plain line scanning otherwise (piped input, CI, tests).
func runREPLLoop(m *model.Model) error {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		rl, err := readline.New("hiloz > ")
		if err != nil {
			return fmt.Errorf("repl: initialising readline: %w", err)
		}
		defer rl.Close()

		for {
			line, err := rl.Readline()
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if shouldExit := dispatchREPLCommand(m, line); shouldExit {
				return nil
			}
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if shouldExit := dispatchREPLCommand(m, scanner.Text()); shouldExit {
			return nil
		}
	}
	return scanner.Err()
}

func dispatchREPLCommand(m *model.Model, line string) (exit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "exit", "quit":
		fmt.Println("Bye!")
		return true

	case "help":
		fmt.Println("commands: step [n], run <time>, dump <instance>, pin <instance> <pin>, time, quit")

	case "time":
		fmt.Println(m.TimeElapsed)

	case "step":
		n := 1
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil {
				n = v
			}
		}
		for i := 0; i < n; i++ {
			result, err := m.Step()
			if err != nil {
				fmt.Println("runtime error:", err)
				return false
			}
			if result.Outcome == model.StepHalted {
				fmt.Println("halted")
				return false
			}
			fmt.Printf("step %d: %d modifications, time_elapsed=%d\n", i, len(result.Modifications), m.TimeElapsed)
		}

	case "run":
		if len(fields) < 2 {
			fmt.Println("usage: run <until-time>")
			return false
		}
		until, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			fmt.Println("invalid time:", err)
			return false
		}
		err = m.Run(until, func(mm *model.Model, mods []model.ComponentStateModification) {
			fmt.Printf("step: %d modifications, time_elapsed=%d\n", len(mods), mm.TimeElapsed)
		})
		if err != nil {
			fmt.Println("runtime error:", err)
		}

	case "dump":
		if len(fields) < 2 {
			fmt.Println("usage: dump <instance>")
			return false
		}
		c := findComponent(m, fields[1])
		if c == nil {
			fmt.Println("no such instance:", fields[1])
			return false
		}
		for i, d := range c.Dumps {
			fmt.Printf("[%d] %s\n", i, d.String())
		}

	case "pin":
		if len(fields) < 3 {
			fmt.Println("usage: pin <instance> <pin>")
			return false
		}
		componentIdx, c := findComponentIdx(m, fields[1])
		if c == nil {
			fmt.Println("no such instance:", fields[1])
			return false
		}
		pinIdx, ok := c.Definition.PinIdx(fields[2])
		if !ok {
			fmt.Println("no such pin:", fields[2])
			return false
		}
		v, err := m.Graph.PinValue(componentIdx, pinIdx)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Println(v)

	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}

func findComponent(m *model.Model, name string) *model.Component {
	_, c := findComponentIdx(m, name)
	return c
}

func findComponentIdx(m *model.Model, name string) (int, *model.Component) {
	for i, c := range m.Components {
		if c.InstanceName == name {
			return i, c
		}
	}
	return -1, nil
}
