// Package config loads the dspctl YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/resample"
)

// ErrUnknownName is returned when a configured name matches no known value.
var ErrUnknownName = errors.New("config: unknown name")

// Config holds the defaults every dspctl subcommand starts from.
type Config struct {
	FFT      FFT      `yaml:"fft"`
	Resample Resample `yaml:"resample"`
	FIR      FIR      `yaml:"fir"`
	Denoise  Denoise  `yaml:"denoise"`
	Resize   Resize   `yaml:"resize"`
	LZSS     LZSS     `yaml:"lzss"`
}

// FFT configures spectral transforms.
type FFT struct {
	Flag string `yaml:"flag"`
	Hint string `yaml:"hint"`
}

// Resample configures the polyphase resampler. A zero History selects the
// parameters of Quality.
type Resample struct {
	Quality string  `yaml:"quality"`
	History int     `yaml:"history"`
	Rolloff float32 `yaml:"rolloff"`
	Alpha   float32 `yaml:"alpha"`
	Norm    float32 `yaml:"norm"`
}

// FIR configures filter design.
type FIR struct {
	Taps      int    `yaml:"taps"`
	Window    string `yaml:"window"`
	Normalize bool   `yaml:"normalize"`
}

// Denoise configures the noise filter.
type Denoise struct {
	Level string `yaml:"level"`
	Mode  string `yaml:"mode"`
}

// Resize configures image resizing.
type Resize struct {
	Interpolation string `yaml:"interpolation"`
}

// LZSS configures block compression.
type LZSS struct {
	FrameSize int `yaml:"frame_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		FFT:      FFT{Flag: engine.DivInvByN.String(), Hint: engine.HintAccurate.String()},
		Resample: Resample{Quality: resample.QualityBalanced.String(), Norm: 1},
		FIR:      FIR{Taps: 63, Window: engine.WinHamming.String(), Normalize: true},
		Denoise:  Denoise{Level: engine.LevelNormal.String(), Mode: engine.ModeUpdate.String()},
		Resize:   Resize{Interpolation: engine.InterpLanczos.String()},
		LZSS:     LZSS{FrameSize: 64 << 10},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes c to path.
func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Validate checks that every name resolves and every count is positive.
func (c *Config) Validate() error {
	var errs []error
	check := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	_, err := c.FFT.ParsedFlag()
	check(err)
	_, err = c.FFT.ParsedHint()
	check(err)
	_, err = c.Resample.ParsedQuality()
	check(err)
	_, err = c.FIR.ParsedWindow()
	check(err)
	_, err = c.Denoise.ParsedLevel()
	check(err)
	_, err = c.Denoise.ParsedMode()
	check(err)
	_, err = c.Resize.ParsedInterpolation()
	check(err)
	if c.Resample.History < 0 {
		check(fmt.Errorf("config: resample.history must not be negative, got %d", c.Resample.History))
	}
	if c.FIR.Taps < 1 {
		check(fmt.Errorf("config: fir.taps must be positive, got %d", c.FIR.Taps))
	}
	if c.LZSS.FrameSize < 1 {
		check(fmt.Errorf("config: lzss.frame_size must be positive, got %d", c.LZSS.FrameSize))
	}
	return errors.Join(errs...)
}

// lookup matches name against the String form of each candidate.
func lookup[T fmt.Stringer](field, name string, candidates ...T) (T, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range candidates {
		if c.String() == name {
			return c, nil
		}
	}
	var zero T
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.String()
	}
	return zero, fmt.Errorf("%w: %s %q (want one of %s)", ErrUnknownName, field, name, strings.Join(names, ", "))
}

func (f FFT) ParsedFlag() (engine.Flag, error) {
	return lookup("fft.flag", f.Flag, engine.DivFwdByN, engine.DivInvByN, engine.DivBySqrtN, engine.NoDivByAny)
}

func (f FFT) ParsedHint() (engine.Hint, error) {
	return lookup("fft.hint", f.Hint, engine.HintNone, engine.HintFast, engine.HintAccurate)
}

func (r Resample) ParsedQuality() (resample.Quality, error) {
	return lookup("resample.quality", r.Quality, resample.QualityFast, resample.QualityBalanced, resample.QualityBest)
}

// Profile returns the filter parameters, with explicit history, rolloff and
// alpha values overriding the quality preset.
func (r Resample) Profile() (resample.Profile, error) {
	q, err := r.ParsedQuality()
	if err != nil {
		return resample.Profile{}, err
	}
	p := resample.QualityProfile(q)
	if r.History > 0 {
		p.History = r.History
	}
	if r.Rolloff > 0 {
		p.Rolloff = r.Rolloff
	}
	if r.Alpha > 0 {
		p.Alpha = r.Alpha
	}
	return p, nil
}

func (f FIR) ParsedWindow() (engine.WinType, error) {
	return lookup("fir.window", f.Window,
		engine.WinBartlett, engine.WinBlackman, engine.WinHamming, engine.WinHann, engine.WinRect)
}

func (d Denoise) ParsedLevel() (engine.NRLevel, error) {
	return lookup("denoise.level", d.Level,
		engine.LevelNone, engine.LevelLow, engine.LevelMedium, engine.LevelNormal, engine.LevelHigh, engine.LevelAuto)
}

func (d Denoise) ParsedMode() (engine.NRMode, error) {
	return lookup("denoise.mode", d.Mode, engine.ModeNoUpdate, engine.ModeUpdate, engine.ModeUpdateAll)
}

func (r Resize) ParsedInterpolation() (engine.Interpolation, error) {
	return lookup("resize.interpolation", r.Interpolation,
		engine.InterpNearest, engine.InterpLinear, engine.InterpLanczos)
}
