/*
Package burst prepares a modulated complex-baseband signal for burst
transmission.

# Concept

A burst line has three stages:

	Translator - rewrites framer tags into transmit tags (package translate);
	Delay - inserts zero padding before each burst (package delay);
	Shifter - moves each burst to its carrier offset (package shift).

Samples flow from a Source through the blocks into a Sink. Out-of-band
control information travels with samples as tags: values attached to an
absolute item offset on a stream (package tag).

# Blocks

Each stage implements Block. The scheduler calls Work with an input and an
output buffer of arbitrary size, block reports how many items it produced
and consumed. Blocks never block, never start goroutines and never do I/O.
Tags of the input are read from the Work.InTags store, new tags are added
to the Work.OutTags store at or after the current output position.

One-to-one blocks process min(len(In), len(Out)) items per call. Delay is a
general block: it writes padding without consuming input and drops idle
samples between bursts without writing output.

# Execution

Blocks are composed and executed by package run:

	sink, err := wav.NewSink(out, 100000, wav.BitDepth16)
	if err != nil {
		return err
	}
	l := run.Line{
		Source: wav.NewSource(in),
		Blocks: []burst.Block{
			translate.New(4, 0, 16, 100),
			delay.New(100000, tag.TxPktLen, tag.TxTime),
			shift.New(100000, 0, 1, 0),
		},
		Sink: sink,
	}
	err = run.Execute(ctx, l)

Tags of wav files are stored in YAML sidecar files, see package wav.

Parameters of running blocks are changed with mutations pushed into the
run, see package mutable.
*/
package burst
