// Package wav provides IQ source and sink for wav files. In-phase and
// quadrature components are stored as the first and the second channel.
// Tags are stored in the YAML sidecar file next to the wav file.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pipelined/burst/tag"
)

// BitDepth of stored samples.
type BitDepth int

// Supported bit depths.
const (
	BitDepth16 BitDepth = 16
	BitDepth32 BitDepth = 32
)

// pcmFormat is the wav audio format of integer PCM.
const pcmFormat = 1

var (
	// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
	ErrUnsupportedBitDepth = errors.New("only 16 and 32 bit depth is supported")
	// ErrNotIQ is returned when wav file doesn't have two channels.
	ErrNotIQ = errors.New("wav file must have two channels")
	// ErrInvalidFile is returned when file is not a valid wav.
	ErrInvalidFile = errors.New("wav is not valid")
)

func (b BitDepth) validate() error {
	if b != BitDepth16 && b != BitDepth32 {
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, b)
	}
	return nil
}

// scale returns the full-scale integer value.
func (b BitDepth) scale() float64 {
	return float64(int64(1) << (b - 1))
}

type (
	// Source reads IQ items from wav file. File is opened with the first
	// pull. This component cannot be reused for consequent runs.
	Source struct {
		path       string
		file       *os.File
		decoder    *wav.Decoder
		buffer     *audio.IntBuffer
		scale      float64
		sampleRate int
		tags       []tag.Tag
		// pending is the in-phase value of incomplete frame.
		pending  int
		leftover bool
	}

	// Sink writes IQ items into wav file. Tags are written on flush.
	Sink struct {
		path       string
		sampleRate int
		bitDepth   BitDepth
		file       *os.File
		encoder    *wav.Encoder
		buffer     *audio.IntBuffer
		tags       []tag.Tag
	}
)

// NewSource creates a new wav source.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Open opens the file and reads its tags. It's called by Pull if the
// source wasn't opened before.
func (s *Source) Open() error {
	if s.decoder != nil {
		return nil
	}
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", s.path, err)
	}
	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		_ = file.Close()
		return fmt.Errorf("%w: %s", ErrInvalidFile, s.path)
	}
	if err := BitDepth(decoder.BitDepth).validate(); err != nil {
		_ = file.Close()
		return err
	}
	if decoder.NumChans != 2 {
		_ = file.Close()
		return fmt.Errorf("%w: %s has %d", ErrNotIQ, s.path, decoder.NumChans)
	}
	tags, err := ReadTags(SidecarPath(s.path))
	if err != nil {
		_ = file.Close()
		return err
	}
	s.file = file
	s.decoder = decoder
	s.scale = BitDepth(decoder.BitDepth).scale()
	s.sampleRate = int(decoder.SampleRate)
	s.tags = tags
	return nil
}

// SampleRate returns sample rate of the opened file.
func (s *Source) SampleRate() int {
	return s.sampleRate
}

// Pull implements burst.Source.
func (s *Source) Pull(out []complex64, written uint64, tags tag.Writer) (int, error) {
	if err := s.Open(); err != nil {
		return 0, err
	}
	if s.buffer == nil || len(s.buffer.Data) < 2*len(out) {
		s.buffer = &audio.IntBuffer{
			Format:         s.decoder.Format(),
			Data:           make([]int, 2*len(out)),
			SourceBitDepth: int(s.decoder.BitDepth),
		}
	}
	data := s.buffer.Data
	start := 0
	if s.leftover {
		data[0] = s.pending
		start = 1
	}
	s.buffer.Data = data[start : 2*len(out)]
	read, err := s.decoder.PCMBuffer(s.buffer)
	s.buffer.Data = data
	if err != nil {
		return 0, fmt.Errorf("error reading %s: %w", s.path, err)
	}
	read += start
	n := read / 2
	s.leftover = read%2 == 1
	if s.leftover {
		s.pending = data[read-1]
	}
	if n == 0 {
		return 0, io.EOF
	}
	for i := 0; i < n; i++ {
		out[i] = complex(float32(float64(data[2*i])/s.scale), float32(float64(data[2*i+1])/s.scale))
	}
	for _, t := range s.tags {
		if t.Offset >= written && t.Offset < written+uint64(n) {
			tags.Add(t)
		}
	}
	return n, nil
}

// Flush closes the file.
func (s *Source) Flush() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// NewSink creates new wav sink.
func NewSink(path string, sampleRate int, bitDepth BitDepth) (*Sink, error) {
	if err := bitDepth.validate(); err != nil {
		return nil, err
	}
	return &Sink{
		path:       path,
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
	}, nil
}

func (s *Sink) open() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", s.path, err)
	}
	s.file = f
	s.encoder = wav.NewEncoder(f, s.sampleRate, int(s.bitDepth), 2, pcmFormat)
	s.buffer = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  s.sampleRate,
		},
		SourceBitDepth: int(s.bitDepth),
	}
	return nil
}

// Push implements burst.Sink.
func (s *Sink) Push(in []complex64, read uint64, tags []tag.Tag) error {
	if s.encoder == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	if cap(s.buffer.Data) < 2*len(in) {
		s.buffer.Data = make([]int, 2*len(in))
	}
	s.buffer.Data = s.buffer.Data[:2*len(in)]
	scale := s.bitDepth.scale()
	for i, v := range in {
		s.buffer.Data[2*i] = quantize(float64(real(v)), scale)
		s.buffer.Data[2*i+1] = quantize(float64(imag(v)), scale)
	}
	s.tags = append(s.tags, tags...)
	if err := s.encoder.Write(s.buffer); err != nil {
		return fmt.Errorf("error writing %s: %w", s.path, err)
	}
	return nil
}

// Flush closes the encoder and writes tags file.
func (s *Sink) Flush() error {
	if s.encoder == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	if err := s.encoder.Close(); err != nil {
		return fmt.Errorf("error closing encoder %s: %w", s.path, err)
	}
	if err := s.file.Close(); err != nil {
		return err
	}
	return WriteTags(SidecarPath(s.path), s.sampleRate, s.tags)
}

// quantize converts value in [-1, 1] to integer, values out of range are
// clipped.
func quantize(v, scale float64) int {
	q := v * scale
	switch {
	case q >= scale-1:
		return int(scale - 1)
	case q <= -scale:
		return int(-scale)
	case q < 0:
		return int(q - 0.5)
	}
	return int(q + 0.5)
}
