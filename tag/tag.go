// Package tag provides stream annotations: typed values attached to an
// absolute item offset, the store they live in and the propagation rules
// used by the stages to move them between streams.
package tag

import (
	"fmt"
	"math"
)

// Keys exchanged between the stages. Spelling is case-sensitive.
const (
	// PreambleLen carries the preamble length in symbols.
	PreambleLen = "preamble_len"
	// PacketLen carries the framer burst length in samples.
	PacketLen = "packet_len"
	// TimeOffset carries the burst transmit time in seconds.
	TimeOffset = "time_offset"
	// FreqInit carries the absolute burst carrier in Hz.
	FreqInit = "freq_init"

	// TxPktLen carries the number of samples of the upcoming burst.
	TxPktLen = "tx_pkt_len"
	// TxTime carries the burst transmit time in seconds.
	TxTime = "tx_time"
	// TxFreq carries the absolute burst carrier in Hz.
	TxFreq = "tx_freq"
)

// Kind is the type of tag value.
type Kind int

const (
	// KindOpaque values are forwarded but never interpreted.
	KindOpaque Kind = iota
	// KindInt is an integer value.
	KindInt
	// KindDouble is a float64 value.
	KindDouble
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	}
	return "opaque"
}

// Value is an immutable typed tag value.
type Value struct {
	kind   Kind
	i      int64
	f      float64
	opaque interface{}
}

// Int returns integer value.
func Int(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// Double returns float64 value.
func Double(v float64) Value {
	return Value{kind: KindDouble, f: v}
}

// Opaque returns value which is only forwarded.
func Opaque(v interface{}) Value {
	return Value{kind: KindOpaque, opaque: v}
}

// Kind returns the type of value.
func (v Value) Kind() Kind {
	return v.kind
}

// AsInt returns integer value. Only integer values can be converted.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsDouble returns float64 value. Integer values are converted.
func (v Value) AsDouble() (float64, bool) {
	switch v.kind {
	case KindDouble:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return math.NaN(), false
}

// Interface returns the underlying value.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindInt:
		return v.i
	case KindDouble:
		return v.f
	}
	return v.opaque
}

func (v Value) String() string {
	return fmt.Sprintf("%v", v.Interface())
}

// Tag is a value attached to the item with absolute offset.
type Tag struct {
	Offset uint64
	Key    string
	Value  Value
	// Source is the name of the stage which emitted the tag.
	Source string
}

// At returns a copy of the tag moved to a new offset.
func (t Tag) At(offset uint64) Tag {
	t.Offset = offset
	return t
}

func (t Tag) String() string {
	return fmt.Sprintf("%d %s=%v (%s)", t.Offset, t.Key, t.Value, t.Source)
}
