package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/AaronC81/hiloz/compiler/modelcompiler"
	"github.com/AaronC81/hiloz/compiler/parser"
	"github.com/AaronC81/hiloz/config"
	"github.com/AaronC81/hiloz/model"
	"github.com/AaronC81/hiloz/simerr"
	"github.com/AaronC81/hiloz/tracedb"
	"github.com/AaronC81/hiloz/vcd"
)

const defaultMaxTime uint64 = 100_000_000_000

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Compile and simulate a model, writing a VCD waveform trace",
	ArgsUsage: "<input> <output>",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "max-time",
			Aliases: []string{"t"},
			Usage:   "Stop simulating once time_elapsed reaches this bound",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to a hiloz.yaml configuration file",
			Value: "hiloz.yaml",
		},
		&cli.StringFlag{
			Name:  "trace-dsn",
			Usage: "Persist committed modifications and dumps to a database, e.g. sqlite:./trace.db",
		},
	},
	Action: runAction,
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return fmt.Errorf("usage: hiloz run <input> <output>")
	}
	inputPath := cmd.Args().Get(0)
	outputPath := cmd.Args().Get(1)

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	maxTime := cfg.MergeMaxTime(uint64(cmd.Int("max-time")), defaultMaxTime)
	traceDSN := config.MergeString(cmd.String("trace-dsn"), cfg.TraceDSN)

	runID := uuid.NewString()

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
		return simerr.NewRuntimeError(err, -1, 0)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	defer out.Close()

	writer := vcd.NewWriter(out, cfg.Timescale)
	if err := writer.WriteHeader(m); err != nil {
		return err
	}

	var trace *tracedb.DB
	if traceDSN != "" {
		trace, err = tracedb.Open(traceDSN)
		if err != nil {
			return err
		}
		defer trace.Close()
		if err := trace.RecordRun(runID, time.Now(), inputPath); err != nil {
			return err
		}
	}

	fmt.Printf("Simulating %s for up to %s time units (run %s)\n", inputPath, humanize.Comma(int64(maxTime)), runID)

	stepCount := 0
	dumpCount := 0
	modCount := 0
	var sinkErr error
	runErr := m.Run(maxTime, func(mm *model.Model, mods []model.ComponentStateModification) {
		stepCount++
		modCount += len(mods)
		for _, mod := range mods {
			if mod.Kind == model.ModifyDump {
				dumpCount++
			}
		}
		if sinkErr != nil {
			return
		}
		if werr := writer.WriteStep(mm.TimeElapsed, mods); werr != nil {
			sinkErr = werr
			return
		}
		if trace != nil {
			if terr := trace.RecordStep(runID, stepCount, mm.TimeElapsed, mods); terr != nil {
				sinkErr = terr
			}
		}
	})
	if runErr != nil {
		return simerr.NewRuntimeError(runErr, -1, uint64(stepCount))
	}
	if sinkErr != nil {
		return sinkErr
	}

	if err := writer.Flush(); err != nil {
		return err
	}

	fmt.Printf(
		"Ran %s steps (%s modifications, %s dumps), halted at time %s\n",
		humanize.Comma(int64(stepCount)),
		humanize.Comma(int64(modCount)),
		humanize.Comma(int64(dumpCount)),
		humanize.Comma(int64(m.TimeElapsed)),
	)
	return nil
}
