// Package config loads the process tunables from TOML. All values have
// working defaults; a config file only overrides what it names.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/wudi/pdfdeck/compress"
	"github.com/wudi/pdfdeck/validate"
)

type Config struct {
	Compress CompressConfig `toml:"compress"`
	Limits   LimitsConfig   `toml:"limits"`
}

type CompressConfig struct {
	StructuralScale float64      `toml:"structural_scale"`
	SecondPassScale float64      `toml:"second_pass_scale"`
	EscalateBelow   float64      `toml:"escalate_below"`
	BaseDPI         float64      `toml:"base_dpi"`
	MaxRasterDim    int          `toml:"max_raster_dim"`
	Low             RasterConfig `toml:"low"`
	Medium          RasterConfig `toml:"medium"`
	High            RasterConfig `toml:"high"`
	Extreme         RasterConfig `toml:"extreme"`
}

type RasterConfig struct {
	Quality float64 `toml:"quality"`
	Scale   float64 `toml:"scale"`
}

type LimitsConfig struct {
	MaxSizeMB      int64 `toml:"max_size_mb"`
	MinPages       int   `toml:"min_pages"`
	MaxPages       int   `toml:"max_pages"`
	AllowEncrypted bool  `toml:"allow_encrypted"`
}

// Default mirrors the built-in pipeline and gate defaults.
func Default() Config {
	p := compress.DefaultParams()
	c := validate.DefaultConstraints()
	return Config{
		Compress: CompressConfig{
			StructuralScale: p.StructuralScale,
			SecondPassScale: p.SecondPassScale,
			EscalateBelow:   p.EscalateBelow,
			BaseDPI:         p.BaseDPI,
			MaxRasterDim:    p.MaxRasterDim,
			Low:             rasterConfig(p, compress.LevelLow),
			Medium:          rasterConfig(p, compress.LevelMedium),
			High:            rasterConfig(p, compress.LevelHigh),
			Extreme:         rasterConfig(p, compress.LevelExtreme),
		},
		Limits: LimitsConfig{
			MaxSizeMB:      c.MaxSize >> 20,
			MinPages:       c.MinPages,
			MaxPages:       c.MaxPages,
			AllowEncrypted: c.AllowEncrypted,
		},
	}
}

func rasterConfig(p compress.Params, level compress.Level) RasterConfig {
	s := p.Raster[level]
	return RasterConfig{Quality: s.Quality, Scale: s.Scale}
}

// Load reads path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Params converts the compression section into pipeline parameters.
func (c CompressConfig) Params() compress.Params {
	return compress.Params{
		StructuralScale: c.StructuralScale,
		SecondPassScale: c.SecondPassScale,
		EscalateBelow:   c.EscalateBelow,
		BaseDPI:         c.BaseDPI,
		MaxRasterDim:    c.MaxRasterDim,
		Raster: map[compress.Level]compress.RasterSetting{
			compress.LevelLow:     {Quality: c.Low.Quality, Scale: c.Low.Scale},
			compress.LevelMedium:  {Quality: c.Medium.Quality, Scale: c.Medium.Scale},
			compress.LevelHigh:    {Quality: c.High.Quality, Scale: c.High.Scale},
			compress.LevelExtreme: {Quality: c.Extreme.Quality, Scale: c.Extreme.Scale},
		},
	}
}

// Constraints converts the limits section into gate constraints.
func (l LimitsConfig) Constraints() validate.Constraints {
	return validate.Constraints{
		MaxSize:        l.MaxSizeMB << 20,
		MinPages:       l.MinPages,
		MaxPages:       l.MaxPages,
		AllowEncrypted: l.AllowEncrypted,
	}
}
