package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pipelined/burst/config"
	"github.com/pipelined/burst/debug"
	"github.com/pipelined/burst/log"
	"github.com/pipelined/burst/metric"
	"github.com/pipelined/burst/run"
	"github.com/pipelined/burst/wav"
)

type processCommand struct {
	in     string
	out    string
	config string
	bits   int
	dump   bool
}

func (cmd *processCommand) Name() string {
	return "process"
}

func (cmd *processCommand) Help() string {
	return "Insert burst delays and shift bursts of IQ recording"
}

func (cmd *processCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.in, "in", "", "input IQ wav file (required)")
	fs.StringVar(&cmd.out, "out", "", "output IQ wav file (required)")
	fs.StringVar(&cmd.config, "config", "", "YAML configuration file")
	fs.IntVar(&cmd.bits, "bits", 16, "bit depth of output file")
	fs.BoolVar(&cmd.dump, "dump", false, "dump output tags")
}

func (cmd *processCommand) Run(w io.Writer) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	c, err := config.Load(cmd.config)
	if err != nil {
		return err
	}
	l, err := log.WithLevel(c.Log.Level)
	if err != nil {
		return err
	}
	sink, err := wav.NewSink(cmd.out, int(c.Delay.SampleRate), wav.BitDepth(cmd.bits))
	if err != nil {
		return err
	}
	m := metric.Default()
	blocks := c.Blocks(l, m)
	if cmd.dump {
		blocks = append(blocks, debug.NewTags(debug.WithLogger(l), debug.WithWriter(w)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = run.Execute(ctx, run.Line{
		Source: wav.NewSource(cmd.in),
		Blocks: blocks,
		Sink:   sink,
	},
		run.WithBufferSize(c.Run.BufferSize),
		run.WithLogger(l),
		run.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Processed %s into %s\n", cmd.in, cmd.out)
	return nil
}

func (cmd *processCommand) Validate() error {
	var errs []error
	if cmd.in == "" {
		errs = append(errs, errors.New("missing -in required flag"))
	}
	if cmd.out == "" {
		errs = append(errs, errors.New("missing -out required flag"))
	}
	return errors.Join(errs...)
}
