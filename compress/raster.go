package compress

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/draw"

	"github.com/wudi/pdfdeck/document"
)

// rasterStrategy renders every page to a bitmap and rebuilds the document
// as one full-bleed JPEG per page. Text and vector structure are lost; this
// is the deliberate trade for maximum size reduction.
type rasterStrategy struct {
	params Params
	raster Rasterizer
}

func (s *rasterStrategy) Name() string { return "raster" }

func (s *rasterStrategy) Attempt(ctx context.Context, in Input) ([]byte, error) {
	setting := s.params.rasterSetting(in.Level)

	// Page sizes in points come from the source document, so the rebuilt
	// pages keep their original dimensions.
	src, err := document.Load(ctx, in.Data)
	if err != nil {
		return nil, fmt.Errorf("raster: %w", err)
	}
	dims, err := src.PageDimensions()
	if err != nil {
		return nil, fmt.Errorf("raster: %w", err)
	}

	rend, err := s.raster.Open(ctx, in.Data)
	if err != nil {
		return nil, fmt.Errorf("raster: open renderer: %w", err)
	}
	defer rend.Close()

	if rend.NumPages() != len(dims) {
		return nil, fmt.Errorf("raster: renderer sees %d pages, document has %d", rend.NumPages(), len(dims))
	}

	// Strictly one page at a time: a single decoded bitmap and a single
	// in-progress document are live at any point.
	var out []byte
	for i := range dims {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := rend.Render(ctx, i, setting.Scale)
		if err != nil {
			return nil, fmt.Errorf("raster: render page %d: %w", i, err)
		}
		img = clampImage(img, s.params.MaxRasterDim)
		encoded, err := encodeJPEG(img, setting.Quality)
		if err != nil {
			return nil, fmt.Errorf("raster: encode page %d: %w", i, err)
		}
		out, err = appendImagePage(out, encoded, dims[i])
		if err != nil {
			return nil, fmt.Errorf("raster: assemble page %d: %w", i, err)
		}
	}

	final, err := document.Load(ctx, out)
	if err != nil {
		return nil, fmt.Errorf("raster: %w", err)
	}
	if err := final.StripMetadata(producerName); err != nil {
		return nil, fmt.Errorf("raster: %w", err)
	}
	return final.Save(ctx, document.SaveOptions{UseObjectStreams: true})
}

// appendImagePage adds one full-bleed image page sized dim to the document
// in current, or starts a new document when current is empty.
func appendImagePage(current []byte, encoded []byte, dim document.Dim) ([]byte, error) {
	details := fmt.Sprintf("dim:%.2f %.2f, pos:full", dim.Width, dim.Height)
	imp, err := pdfcpu.ParseImportDetails(details, types.POINTS)
	if err != nil {
		return nil, err
	}
	var rs io.ReadSeeker
	if len(current) > 0 {
		rs = bytes.NewReader(current)
	}
	var buf bytes.Buffer
	if err := api.ImportImages(rs, &buf, []io.Reader{bytes.NewReader(encoded)}, imp, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// clampImage downscales bitmaps whose longest edge exceeds maxDim.
func clampImage(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}
	longest := w
	if h > longest {
		longest = h
	}
	factor := float64(maxDim) / float64(longest)
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*factor), int(float64(h)*factor)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality float64) ([]byte, error) {
	q := int(quality * 100)
	if q < 1 {
		q = 1
	} else if q > 100 {
		q = 100
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
