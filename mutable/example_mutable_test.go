package mutable_test

import (
	"context"
	"fmt"

	"github.com/pipelined/burst/mutable"
	"github.com/pipelined/burst/translate"
)

func Example_mutation() {
	t := translate.New(4, 0, 16, 100)
	fmt.Println(t.Preamble())

	p := mutable.NewPusher()
	d := mutable.NewDestination()
	p.AddDestination(t.Mutable(), d)

	// mutation is applied by the receiver of destination
	_ = p.Put(t.MutatePreambleLength(24))
	p.Push(context.Background())
	fmt.Println(t.Preamble())

	ms := <-d
	_ = ms.ApplyTo(t.Mutable())
	fmt.Println(t.Preamble())

	// Output:
	// 16
	// 16
	// 24
}
