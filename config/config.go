// Package config loads burst line configuration.
//
// Configuration is read from a YAML file, missing values are set to
// defaults and every value can be overridden with environment variable
// prefixed with BURST_, e.g. BURST_DELAY_SAMPLE_RATE.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"github.com/pipelined/burst"
	"github.com/pipelined/burst/delay"
	"github.com/pipelined/burst/log"
	"github.com/pipelined/burst/metric"
	"github.com/pipelined/burst/shift"
	"github.com/pipelined/burst/translate"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "BURST"

// ErrInvalid is returned when configuration has invalid values.
var ErrInvalid = errors.New("invalid configuration")

type (
	// Config of the burst line.
	Config struct {
		Translator Translator `mapstructure:"translator"`
		Delay      Delay      `mapstructure:"delay"`
		Shifter    Shifter    `mapstructure:"shifter"`
		Run        Run        `mapstructure:"run"`
		Log        Log        `mapstructure:"log"`
	}

	// Translator parameters.
	Translator struct {
		SamplesPerSymbol int     `mapstructure:"sps"`
		ReferenceTime    float64 `mapstructure:"reference_time"`
		PreambleLen      int     `mapstructure:"preamble_len"`
		PaddingLen       int     `mapstructure:"padding_len"`
	}

	// Delay parameters.
	Delay struct {
		SampleRate float64 `mapstructure:"sample_rate"`
		LengthKey  string  `mapstructure:"length_key"`
		TimeKey    string  `mapstructure:"time_key"`
	}

	// Shifter parameters.
	Shifter struct {
		SampleRate float64 `mapstructure:"sample_rate"`
		Frequency  float64 `mapstructure:"frequency"`
		Amplitude  float64 `mapstructure:"amplitude"`
		Phase      float64 `mapstructure:"phase"`
		Center     float64 `mapstructure:"center"`
		CallRetune bool    `mapstructure:"call_retune"`
	}

	// Run parameters.
	Run struct {
		BufferSize int `mapstructure:"buffer_size"`
	}

	// Log parameters.
	Log struct {
		Level string `mapstructure:"level"`
	}
)

var defaults = map[string]interface{}{
	"translator.sps":            4,
	"translator.reference_time": 0.0,
	"translator.preamble_len":   16,
	"translator.padding_len":    100,
	"delay.sample_rate":         100000.0,
	"delay.length_key":          "tx_pkt_len",
	"delay.time_key":            "tx_time",
	"shifter.sample_rate":       100000.0,
	"shifter.frequency":         0.0,
	"shifter.amplitude":         1.0,
	"shifter.phase":             0.0,
	"shifter.center":            shift.DefaultCenter,
	"shifter.call_retune":       false,
	"run.buffer_size":           4096,
	"log.level":                 "info",
}

// Load reads configuration file. Empty path results in defaults with
// environment overrides.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config %s: %w", path, err)
		}
	}
	return decode(v)
}

// Read reads YAML configuration.
func Read(r io.Reader) (Config, error) {
	v := newViper()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(r); err != nil {
		return Config{}, fmt.Errorf("error reading config: %w", err)
	}
	return decode(v)
}

// Default returns default configuration.
func Default() Config {
	c, err := decode(viper.New())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return c
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks configuration values.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, field string, value interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s = %v", ErrInvalid, field, value))
		}
	}
	check(c.Translator.SamplesPerSymbol > 0, "translator.sps", c.Translator.SamplesPerSymbol)
	check(c.Translator.PreambleLen >= 0, "translator.preamble_len", c.Translator.PreambleLen)
	check(c.Translator.PaddingLen >= 0, "translator.padding_len", c.Translator.PaddingLen)
	check(c.Delay.SampleRate > 0, "delay.sample_rate", c.Delay.SampleRate)
	check(c.Delay.LengthKey != "", "delay.length_key", c.Delay.LengthKey)
	check(c.Delay.TimeKey != "", "delay.time_key", c.Delay.TimeKey)
	check(c.Shifter.SampleRate > 0, "shifter.sample_rate", c.Shifter.SampleRate)
	check(c.Run.BufferSize > 0, "run.buffer_size", c.Run.BufferSize)
	if _, err := log.WithLevel(c.Log.Level); err != nil {
		check(false, "log.level", c.Log.Level)
	}
	return errors.Join(errs...)
}

// Blocks returns translator, delay and shifter configured with c.
func (c Config) Blocks(l log.Logger, m *metric.Metrics) []burst.Block {
	shiftOpts := []shift.Option{
		shift.WithLogger(l),
		shift.WithCenter(c.Shifter.Center),
	}
	if c.Shifter.CallRetune {
		shiftOpts = append(shiftOpts, shift.WithCallRetune())
	}
	return []burst.Block{
		translate.New(
			c.Translator.SamplesPerSymbol,
			c.Translator.ReferenceTime,
			c.Translator.PreambleLen,
			c.Translator.PaddingLen,
			translate.WithLogger(l),
		),
		delay.New(
			c.Delay.SampleRate,
			c.Delay.LengthKey,
			c.Delay.TimeKey,
			delay.WithLogger(l),
			delay.WithMetrics(m),
		),
		shift.New(
			c.Shifter.SampleRate,
			c.Shifter.Frequency,
			c.Shifter.Amplitude,
			c.Shifter.Phase,
			shiftOpts...,
		),
	}
}
