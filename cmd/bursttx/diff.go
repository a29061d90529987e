package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/pipelined/burst/tag"
	"github.com/pipelined/burst/wav"
)

var errDiffer = errors.New("tags differ")

type diffCommand struct {
	a string
	b string
}

func (cmd *diffCommand) Name() string {
	return "diff"
}

func (cmd *diffCommand) Help() string {
	return "Show unified diff of tags of two IQ recordings"
}

func (cmd *diffCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.a, "a", "", "first wav or tags file (required)")
	fs.StringVar(&cmd.b, "b", "", "second wav or tags file (required)")
}

func (cmd *diffCommand) Run(w io.Writer) error {
	if cmd.a == "" || cmd.b == "" {
		return errors.New("missing -a or -b required flag")
	}
	a, err := readTags(cmd.a)
	if err != nil {
		return err
	}
	b, err := readTags(cmd.b)
	if err != nil {
		return err
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(lines(a)),
		B:        difflib.SplitLines(lines(b)),
		FromFile: cmd.a,
		ToFile:   cmd.b,
		Context:  3,
	})
	if err != nil {
		return err
	}
	if diff == "" {
		return nil
	}
	fmt.Fprint(w, diff)
	return errDiffer
}

func readTags(path string) ([]tag.Tag, error) {
	if !strings.HasSuffix(path, wav.SidecarExt) {
		path = wav.SidecarPath(path)
	}
	return wav.ReadTags(path)
}

func lines(tags []tag.Tag) string {
	var b strings.Builder
	for _, t := range tags {
		fmt.Fprintln(&b, t)
	}
	return b.String()
}
