package compress

import "fmt"

// Level selects the fidelity/size trade-off of a compression run.
type Level string

const (
	LevelLow     Level = "low"
	LevelMedium  Level = "medium"
	LevelHigh    Level = "high"
	LevelExtreme Level = "extreme"
)

// ParseLevel maps a user-supplied string onto a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelLow, LevelMedium, LevelHigh, LevelExtreme:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown compression level %q", s)
}

// RasterSetting is the lossy re-encode tuning for one level.
type RasterSetting struct {
	Quality float64 // JPEG quality factor in (0,1]
	Scale   float64 // render resolution scale in (0,1]
}

// Params holds the tunable constants of the pipeline. The defaults are
// empirical; callers may recalibrate them, but the escalation mechanism
// itself (at most one extra structural pass) is fixed.
type Params struct {
	// StructuralScale is the page-dimension scale of the first structural pass.
	StructuralScale float64
	// SecondPassScale is applied when the first pass reduction is below
	// EscalateBelow.
	SecondPassScale float64
	// EscalateBelow is the reduction fraction under which the structural
	// strategy runs its second pass.
	EscalateBelow float64
	// BaseDPI is the render resolution at raster scale 1.0.
	BaseDPI float64
	// MaxRasterDim caps rendered bitmap edges in pixels; larger renders are
	// downscaled before encoding. Zero disables the cap.
	MaxRasterDim int
	// Raster maps each level to its re-encode tuning.
	Raster map[Level]RasterSetting
}

// DefaultParams returns the pipeline defaults.
func DefaultParams() Params {
	return Params{
		StructuralScale: 0.9,
		SecondPassScale: 0.75,
		EscalateBelow:   0.20,
		BaseDPI:         150,
		MaxRasterDim:    4096,
		Raster: map[Level]RasterSetting{
			LevelLow:     {Quality: 0.70, Scale: 1.0},
			LevelMedium:  {Quality: 0.50, Scale: 0.9},
			LevelHigh:    {Quality: 0.30, Scale: 0.8},
			LevelExtreme: {Quality: 0.15, Scale: 0.7},
		},
	}
}

func (p Params) rasterSetting(level Level) RasterSetting {
	if s, ok := p.Raster[level]; ok {
		return s
	}
	return RasterSetting{Quality: 0.5, Scale: 0.9}
}
