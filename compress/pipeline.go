// Package compress implements the multi-strategy size-reduction pipeline.
// Levels low and medium route to a structural strategy that shrinks page
// dimensions and strips metadata; high and extreme route to a raster
// strategy that re-encodes every page as a lossy image. Strategies fall
// back in order on failure, ending at a direct-copy safety net that
// succeeds whenever the source parses at all.
package compress

import (
	"context"
	"fmt"
	"image"

	"github.com/wudi/pdfdeck/observability"
)

// producerName is stamped into stripped metadata.
const producerName = "pdfdeck"

// Rasterizer is the external rendering capability the raster strategy
// depends on. Implementations live outside this package.
type Rasterizer interface {
	Open(ctx context.Context, data []byte) (PageRenderer, error)
}

// PageRenderer renders single pages of one opened document.
type PageRenderer interface {
	NumPages() int
	// Render produces a bitmap of the 0-based page at the given resolution
	// scale.
	Render(ctx context.Context, pageIndex int, scale float64) (image.Image, error)
	Close() error
}

// Input is what one strategy attempt operates on.
type Input struct {
	Data  []byte
	Level Level
}

// Strategy is one rung of the fallback chain.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, in Input) ([]byte, error)
}

// Result describes a completed compression run.
type Result struct {
	Data           []byte
	Level          Level
	Strategy       string
	OriginalSize   int64
	CompressedSize int64
	// Reduction is the achieved size reduction in percent. Negative when
	// the output grew.
	Reduction float64
}

// Pipeline runs the ordered strategy chain for a level.
type Pipeline struct {
	params Params
	raster Rasterizer
	log    observability.Logger
}

// New builds a pipeline. raster may be nil, in which case high and extreme
// fall through to the structural strategy. logger may be nil.
func New(params Params, raster Rasterizer, logger observability.Logger) *Pipeline {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &Pipeline{params: params, raster: raster, log: logger}
}

// Compress runs the strategy chain for level over data and returns the
// first successful output. Only if every strategy fails does it return an
// error; the direct-copy safety net fails only when data does not parse.
func (p *Pipeline) Compress(ctx context.Context, data []byte, level Level) (*Result, error) {
	return p.run(ctx, Input{Data: data, Level: level}, p.chain(level))
}

// run walks chain in order and returns the first successful result.
func (p *Pipeline) run(ctx context.Context, in Input, chain []Strategy) (*Result, error) {
	var lastErr error
	for _, s := range chain {
		out, err := s.Attempt(ctx, in)
		if err != nil {
			p.log.Warn("compression strategy failed",
				observability.String("strategy", s.Name()),
				observability.String("level", string(in.Level)),
				observability.Error("error", err))
			lastErr = err
			continue
		}
		res := &Result{
			Data:           out,
			Level:          in.Level,
			Strategy:       s.Name(),
			OriginalSize:   int64(len(in.Data)),
			CompressedSize: int64(len(out)),
			Reduction:      100 * reduction(len(in.Data), len(out)),
		}
		p.log.Info("compression finished",
			observability.String("strategy", s.Name()),
			observability.String("level", string(in.Level)),
			observability.Int64(observability.MetricInputBytes, res.OriginalSize),
			observability.Int64(observability.MetricOutputBytes, res.CompressedSize),
			observability.Float64(observability.MetricReductionRatio, res.Reduction))
		return res, nil
	}
	return nil, fmt.Errorf("compress %s: all strategies failed: %w", in.Level, lastErr)
}

// chain returns the ordered strategies for a level. High and extreme try
// the raster strategy first; its structural fallback runs a single pass
// without escalation.
func (p *Pipeline) chain(level Level) []Strategy {
	switch level {
	case LevelHigh, LevelExtreme:
		chain := make([]Strategy, 0, 3)
		if p.raster != nil {
			chain = append(chain, &rasterStrategy{params: p.params, raster: p.raster})
		}
		return append(chain,
			&structuralStrategy{params: p.params},
			&directCopyStrategy{stripMetadata: true},
		)
	default:
		return []Strategy{
			&structuralStrategy{params: p.params, escalate: true},
			&directCopyStrategy{},
		}
	}
}

func reduction(original, result int) float64 {
	if original == 0 {
		return 0
	}
	return float64(original-result) / float64(original)
}
