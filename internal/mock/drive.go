package mock

import (
	"fmt"

	"github.com/pipelined/burst"
	"github.com/pipelined/burst/tag"
)

// Result is the output of driven block.
type Result struct {
	Samples []complex64
	Tags    []tag.Tag
	Calls   int
}

// Drive executes block over the input the way scheduler does. Sizes are
// cycled to limit the input and output buffers of each call, sizes[i] is
// used for input and sizes[i+1] for output. Driving stops when input is
// exhausted and block makes no progress. Accounting violations cause a
// panic.
func Drive(b burst.Block, in []complex64, tags []tag.Tag, sizes ...int) Result {
	if len(sizes) == 0 {
		sizes = []int{len(in) + 1}
	}
	inTags := &tag.Log{}
	for _, t := range tags {
		inTags.Add(t)
	}
	outTags := &tag.Log{}
	var (
		result        Result
		read, written int
		idle          int
	)
	for i := 0; idle <= 2*len(sizes); i++ {
		nin := min(sizes[i%len(sizes)], len(in)-read)
		nout := sizes[(i+1)%len(sizes)]
		if f, ok := b.(burst.Forecaster); ok && f.Forecast(nout) > nin {
			if read == len(in) {
				break
			}
			idle++
			continue
		}
		out := make([]complex64, nout)
		w := burst.Work{
			In:      in[read : read+nin],
			Out:     out,
			Read:    uint64(read),
			Written: uint64(written),
			InTags:  inTags,
			OutTags: outTags,
		}
		produced, consumed := b.Work(&w)
		result.Calls++
		if produced > nout || consumed > nin || produced < 0 || consumed < 0 {
			panic(fmt.Errorf("%w: %s produced %d of %d consumed %d of %d", burst.ErrAccounting, b.Name(), produced, nout, consumed, nin))
		}
		result.Samples = append(result.Samples, out[:produced]...)
		read += consumed
		written += produced
		if produced == 0 && consumed == 0 {
			if read == len(in) {
				break
			}
			idle++
			continue
		}
		idle = 0
	}
	result.Tags = outTags.All()
	return result
}
