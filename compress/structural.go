package compress

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/pdfdeck/document"
)

// structuralStrategy shrinks page dimensions and strips metadata while
// keeping the document's vector content intact. With escalate set, a first
// pass that reduces size by less than Params.EscalateBelow is followed by
// exactly one more aggressive pass, whose output is returned regardless of
// its own size.
type structuralStrategy struct {
	params   Params
	escalate bool
}

func (s *structuralStrategy) Name() string { return "structural" }

func (s *structuralStrategy) Attempt(ctx context.Context, in Input) ([]byte, error) {
	first, err := s.pass(ctx, in.Data, s.params.StructuralScale)
	if err != nil {
		return nil, err
	}
	if !s.escalate || reduction(len(in.Data), len(first)) >= s.params.EscalateBelow {
		return first, nil
	}
	return s.pass(ctx, first, s.params.SecondPassScale)
}

func (s *structuralStrategy) pass(ctx context.Context, data []byte, scale float64) ([]byte, error) {
	resized, err := resizePages(data, scale)
	if err != nil {
		return nil, fmt.Errorf("structural pass: %w", err)
	}
	doc, err := document.Load(ctx, resized)
	if err != nil {
		return nil, fmt.Errorf("structural pass: %w", err)
	}
	if err := doc.StripMetadata(producerName); err != nil {
		return nil, fmt.Errorf("structural pass: %w", err)
	}
	return doc.Save(ctx, document.SaveOptions{UseObjectStreams: true})
}

func resizePages(data []byte, scale float64) ([]byte, error) {
	rz, err := pdfcpu.ParseResizeConfig(fmt.Sprintf("scale:%.2f", scale), types.POINTS)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := api.Resize(bytes.NewReader(data), &buf, nil, rz, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// directCopyStrategy is the final safety net: copy all pages unscaled and
// serialize. It succeeds whenever the source loads.
type directCopyStrategy struct {
	stripMetadata bool
}

func (s *directCopyStrategy) Name() string { return "direct-copy" }

func (s *directCopyStrategy) Attempt(ctx context.Context, in Input) ([]byte, error) {
	doc, err := document.Load(ctx, in.Data)
	if err != nil {
		return nil, err
	}
	indices := make([]int, doc.PageCount())
	for i := range indices {
		indices[i] = i
	}
	copied, err := doc.CopyPages(ctx, indices)
	if err != nil {
		return nil, err
	}
	if s.stripMetadata {
		if err := copied.StripMetadata(producerName); err != nil {
			return nil, err
		}
	}
	return copied.Save(ctx, document.SaveOptions{UseObjectStreams: true})
}
