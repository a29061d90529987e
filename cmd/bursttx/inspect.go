package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/pipelined/burst"
	"github.com/pipelined/burst/spectrum"
	"github.com/pipelined/burst/tag"
	"github.com/pipelined/burst/wav"
)

type inspectCommand struct {
	in string
}

func (cmd *inspectCommand) Name() string {
	return "inspect"
}

func (cmd *inspectCommand) Help() string {
	return "List tags and peak frequency of bursts of IQ recording"
}

func (cmd *inspectCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.in, "in", "", "IQ wav file (required)")
}

func (cmd *inspectCommand) Run(w io.Writer) error {
	if cmd.in == "" {
		return errors.New("missing -in required flag")
	}
	samples, tags, sampleRate, err := readAll(cmd.in)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d items at %d Hz, %d tags\n", cmd.in, len(samples), sampleRate, len(tags))
	for _, t := range tags {
		fmt.Fprintln(w, t)
	}
	for _, t := range tags {
		if t.Key != tag.TxPktLen {
			continue
		}
		n, ok := t.Value.AsInt()
		if !ok || n <= 0 || t.Offset >= uint64(len(samples)) {
			continue
		}
		end := min(t.Offset+uint64(n), uint64(len(samples)))
		peak := spectrum.Peak(samples[t.Offset:end], float64(sampleRate))
		fmt.Fprintf(w, "burst at %d: %d items, peak %.1f Hz\n", t.Offset, end-t.Offset, peak)
	}
	return nil
}

// iqSource is a source of recorded items.
type iqSource interface {
	burst.Source
	burst.Flusher
	SampleRate() int
}

// readAll reads all items and tags of wav file.
func readAll(path string) ([]complex64, []tag.Tag, int, error) {
	return readSource(wav.NewSource(path))
}

// readSource reads source until the end and closes it.
func readSource(source iqSource) (samples []complex64, tags []tag.Tag, sampleRate int, err error) {
	defer func() {
		if ferr := source.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("error closing source: %w", ferr)
		}
	}()
	var (
		log = &tag.Log{}
		buf = make([]complex64, 4096)
	)
	for {
		n, perr := source.Pull(buf, uint64(len(samples)), log)
		if errors.Is(perr, io.EOF) {
			break
		}
		if perr != nil {
			return nil, nil, 0, perr
		}
		samples = append(samples, buf[:n]...)
	}
	return samples, log.All(), source.SampleRate(), nil
}
