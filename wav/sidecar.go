package wav

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pipelined/burst/tag"
)

// SidecarExt is appended to the wav path to get the tags file path.
const SidecarExt = ".tags.yaml"

type (
	// sidecar is the tags file format.
	sidecar struct {
		SampleRate int     `yaml:"sample_rate,omitempty"`
		Tags       []entry `yaml:"tags"`
	}

	entry struct {
		Offset uint64      `yaml:"offset"`
		Key    string      `yaml:"key"`
		Kind   string      `yaml:"kind"`
		Value  interface{} `yaml:"value"`
		Source string      `yaml:"source,omitempty"`
	}
)

// SidecarPath returns path of the tags file of the wav file.
func SidecarPath(path string) string {
	return path + SidecarExt
}

// ReadTags reads tags file. Missing file results in no tags and no error.
func ReadTags(path string) ([]tag.Tag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading tags %s: %w", path, err)
	}
	var s sidecar
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("error decoding tags %s: %w", path, err)
	}
	log := &tag.Log{}
	for i, e := range s.Tags {
		v, err := e.value()
		if err != nil {
			return nil, fmt.Errorf("error decoding tag %d of %s: %w", i, path, err)
		}
		log.Add(tag.Tag{
			Offset: e.Offset,
			Key:    e.Key,
			Value:  v,
			Source: e.Source,
		})
	}
	return log.All(), nil
}

// WriteTags writes tags file.
func WriteTags(path string, sampleRate int, tags []tag.Tag) error {
	s := sidecar{
		SampleRate: sampleRate,
		Tags:       make([]entry, 0, len(tags)),
	}
	for _, t := range tags {
		e := entry{
			Offset: t.Offset,
			Key:    t.Key,
			Kind:   t.Value.Kind().String(),
			Value:  t.Value.Interface(),
			Source: t.Source,
		}
		if t.Value.Kind() == tag.KindOpaque {
			e.Value = fmt.Sprint(e.Value)
		}
		s.Tags = append(s.Tags, e)
	}
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("error encoding tags: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing tags %s: %w", path, err)
	}
	return nil
}

// ErrTagValue is returned when tag value doesn't match its kind.
var ErrTagValue = errors.New("tag value doesn't match kind")

func (e entry) value() (tag.Value, error) {
	switch e.Kind {
	case "int":
		switch v := e.Value.(type) {
		case int:
			return tag.Int(int64(v)), nil
		case int64:
			return tag.Int(v), nil
		}
	case "double":
		switch v := e.Value.(type) {
		case float64:
			return tag.Double(v), nil
		case int:
			return tag.Double(float64(v)), nil
		case int64:
			return tag.Double(float64(v)), nil
		}
	default:
		return tag.Opaque(e.Value), nil
	}
	return tag.Value{}, fmt.Errorf("%w: %s %v", ErrTagValue, e.Kind, e.Value)
}
