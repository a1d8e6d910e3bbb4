// Package render provides the MuPDF-backed rasterization primitive used by
// the compression pipeline's raster strategy.
package render

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/wudi/pdfdeck/compress"
)

// Options is the process-wide renderer configuration.
type Options struct {
	// BaseDPI is the render resolution at scale 1.0.
	BaseDPI float64
}

// Initialization is a one-time side-effect-free assignment checked before
// use; reconfiguring is idempotent and needs no locking.
var (
	options    Options
	configured bool
)

// Configure sets the process-wide renderer options.
func Configure(o Options) {
	options = o
	configured = true
}

func current() Options {
	if !configured {
		return Options{BaseDPI: 150}
	}
	return options
}

// Fitz renders pages via MuPDF. It implements compress.Rasterizer.
type Fitz struct {
	baseDPI float64
}

// NewFitz returns a rasterizer using the process-wide configuration.
func NewFitz() *Fitz {
	return &Fitz{baseDPI: current().BaseDPI}
}

// Open loads data into a renderer. The caller must Close it.
func (f *Fitz) Open(ctx context.Context, data []byte) (compress.PageRenderer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open renderer: %w", err)
	}
	return &fitzRenderer{doc: doc, baseDPI: f.baseDPI}, nil
}

type fitzRenderer struct {
	doc     *fitz.Document
	baseDPI float64
}

func (r *fitzRenderer) NumPages() int { return r.doc.NumPage() }

func (r *fitzRenderer) Render(ctx context.Context, pageIndex int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := r.doc.ImageDPI(pageIndex, r.baseDPI*scale)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", pageIndex, err)
	}
	return img, nil
}

func (r *fitzRenderer) Close() error { return r.doc.Close() }
