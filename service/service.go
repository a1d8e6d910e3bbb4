// Package service exposes the operation surface: each method validates its
// input through the gate, runs the transformation, and hands the resulting
// bytes to the caller's delivery sink under the conventional file name.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/wudi/pdfdeck/compress"
	"github.com/wudi/pdfdeck/document"
	"github.com/wudi/pdfdeck/observability"
	"github.com/wudi/pdfdeck/pageops"
	"github.com/wudi/pdfdeck/validate"
)

// Sink persists result bytes for the user. The CLI's sink writes files; a
// web collaborator would offer a download.
type Sink interface {
	Deliver(name string, data []byte) error
}

// negligibleReduction is the percentage at or below which a completed
// compression is delivered with an advisory instead of silently.
const negligibleReduction = 5.0

const (
	mergedName    = "merged_document.pdf"
	removedName   = "document_with_pages_removed.pdf"
	extractedName = "extracted_pages.pdf"
	organizedName = "organized_document.pdf"
)

// GateError carries the validation gate's findings for a rejected input.
type GateError struct {
	Errors []string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// Result summarizes one completed operation.
type Result struct {
	// OutputNames lists every delivered file; one entry except for split.
	OutputNames []string
	InputSize   int64
	OutputSize  int64
	PageCount   int
	// Strategy and Reduction are set for compression only.
	Strategy  string
	Reduction float64
	Warnings  []string
}

// Options configures a Service. Zero fields fall back to defaults.
type Options struct {
	Constraints validate.Constraints
	Params      compress.Params
	Rasterizer  compress.Rasterizer
	Logger      observability.Logger
}

type Service struct {
	constraints validate.Constraints
	pipeline    *compress.Pipeline
	log         observability.Logger
}

func New(opts Options) *Service {
	if opts.Constraints == (validate.Constraints{}) {
		opts.Constraints = validate.DefaultConstraints()
	}
	if opts.Params.Raster == nil {
		opts.Params = compress.DefaultParams()
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger{}
	}
	return &Service{
		constraints: opts.Constraints,
		pipeline:    compress.New(opts.Params, opts.Rasterizer, opts.Logger),
		log:         opts.Logger,
	}
}

// Merge concatenates files in order and delivers merged_document.pdf.
func (s *Service) Merge(ctx context.Context, files []validate.File, sink Sink) (*Result, error) {
	gate := validate.CheckAll(ctx, files, s.constraints)
	if !gate.Valid {
		return nil, &GateError{Errors: gate.Errors}
	}

	docs := make([]*document.Document, 0, len(files))
	var inputSize int64
	for _, f := range files {
		doc, err := document.Load(ctx, f.Data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
		inputSize += f.Size
	}

	merged, err := pageops.Merge(ctx, docs)
	if err != nil {
		return nil, err
	}
	return s.deliverOne(ctx, merged, mergedName, inputSize, gate.Warnings, sink)
}

// RemovePages delivers document_with_pages_removed.pdf.
func (s *Service) RemovePages(ctx context.Context, f validate.File, toRemove []int, sink Sink) (*Result, error) {
	doc, gate, err := s.admit(ctx, f)
	if err != nil {
		return nil, err
	}
	out, err := pageops.RemovePages(ctx, doc, toRemove)
	if err != nil {
		return nil, err
	}
	return s.deliverOne(ctx, out, removedName, f.Size, gate.Warnings, sink)
}

// ExtractPages delivers extracted_pages.pdf with pages in the given order.
func (s *Service) ExtractPages(ctx context.Context, f validate.File, indices []int, sink Sink) (*Result, error) {
	doc, gate, err := s.admit(ctx, f)
	if err != nil {
		return nil, err
	}
	out, err := pageops.ExtractPages(ctx, doc, indices)
	if err != nil {
		return nil, err
	}
	return s.deliverOne(ctx, out, extractedName, f.Size, gate.Warnings, sink)
}

// Reorder delivers organized_document.pdf with the permuted page order.
func (s *Service) Reorder(ctx context.Context, f validate.File, newOrder []int, sink Sink) (*Result, error) {
	doc, gate, err := s.admit(ctx, f)
	if err != nil {
		return nil, err
	}
	out, err := pageops.Reorder(ctx, doc, newOrder)
	if err != nil {
		return nil, err
	}
	return s.deliverOne(ctx, out, organizedName, f.Size, gate.Warnings, sink)
}

// Split partitions the file and delivers <basename>_partN.pdf per part,
// 1-indexed.
func (s *Service) Split(ctx context.Context, f validate.File, splitAfter []int, sink Sink) (*Result, error) {
	doc, gate, err := s.admit(ctx, f)
	if err != nil {
		return nil, err
	}
	parts, err := pageops.Split(ctx, doc, splitAfter)
	if err != nil {
		return nil, err
	}

	res := &Result{InputSize: f.Size, Warnings: gate.Warnings}
	for i, part := range parts {
		data, err := part.Save(ctx, document.SaveOptions{})
		if err != nil {
			return nil, err
		}
		name := partName(f.Name, i+1)
		if err := sink.Deliver(name, data); err != nil {
			return nil, fmt.Errorf("deliver %s: %w", name, err)
		}
		res.OutputNames = append(res.OutputNames, name)
		res.OutputSize += int64(len(data))
		res.PageCount += part.PageCount()
	}
	s.log.Info("split delivered",
		observability.String("file", f.Name),
		observability.Int("parts", len(parts)))
	return res, nil
}

// Compress runs the pipeline at level and delivers compressed_<name>.
// A reduction at or below 5% still delivers but is annotated as negligible.
func (s *Service) Compress(ctx context.Context, f validate.File, level compress.Level, sink Sink) (*Result, error) {
	gate := validate.Check(ctx, f, s.constraints)
	if !gate.Valid {
		return nil, &GateError{Errors: gate.Errors}
	}

	cr, err := s.pipeline.Compress(ctx, f.Data, level)
	if err != nil {
		return nil, err
	}

	name := compressedName(f.Name)
	if err := sink.Deliver(name, cr.Data); err != nil {
		return nil, fmt.Errorf("deliver %s: %w", name, err)
	}

	res := &Result{
		OutputNames: []string{name},
		InputSize:   cr.OriginalSize,
		OutputSize:  cr.CompressedSize,
		Strategy:    cr.Strategy,
		Reduction:   cr.Reduction,
		Warnings:    gate.Warnings,
	}
	if cr.Reduction <= negligibleReduction {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("compression was negligible (%.1f%%)", cr.Reduction))
	}
	return res, nil
}

func (s *Service) admit(ctx context.Context, f validate.File) (*document.Document, validate.Result, error) {
	gate := validate.Check(ctx, f, s.constraints)
	if !gate.Valid {
		return nil, gate, &GateError{Errors: gate.Errors}
	}
	doc, err := document.Load(ctx, f.Data)
	if err != nil {
		return nil, gate, err
	}
	return doc, gate, nil
}

func (s *Service) deliverOne(ctx context.Context, doc *document.Document, name string, inputSize int64, warnings []string, sink Sink) (*Result, error) {
	data, err := doc.Save(ctx, document.SaveOptions{})
	if err != nil {
		return nil, err
	}
	if err := sink.Deliver(name, data); err != nil {
		return nil, fmt.Errorf("deliver %s: %w", name, err)
	}
	s.log.Info("operation delivered",
		observability.String("output", name),
		observability.Int(observability.MetricPageCount, doc.PageCount()),
		observability.Int64(observability.MetricOutputBytes, int64(len(data))))
	return &Result{
		OutputNames: []string{name},
		InputSize:   inputSize,
		OutputSize:  int64(len(data)),
		PageCount:   doc.PageCount(),
		Warnings:    warnings,
	}, nil
}
