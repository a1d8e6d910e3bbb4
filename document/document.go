// Package document wraps pdfcpu's in-memory context behind the small codec
// surface the rest of the module needs: load bytes, copy pages by index into
// a fresh document, and serialize back to bytes.
package document

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Document is a mutable in-memory PDF. Each instance is owned by exactly one
// operation at a time; nothing here is safe for concurrent use.
type Document struct {
	ctx *model.Context
}

// Dim is a page size in points.
type Dim struct {
	Width  float64
	Height float64
}

// Metadata is the document information dictionary subset this module touches.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Producer string
	Creator  string
}

// SaveOptions controls serialization.
type SaveOptions struct {
	UseObjectStreams bool
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Load parses data into a Document. Malformed input yields a *ParseError;
// password-protected input yields an error satisfying
// errors.Is(err, ErrEncrypted).
func Load(ctx context.Context, data []byte) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfiguration())
	if err != nil {
		if isEncryptionError(err) {
			return nil, &ParseError{Err: ErrEncrypted}
		}
		return nil, &ParseError{Err: err}
	}
	return &Document{ctx: pdfCtx}, nil
}

func isEncryptionError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.ctx.PageCount }

// Encrypted reports whether the document carries an encryption dictionary.
func (d *Document) Encrypted() bool { return d.ctx.Encrypt != nil }

// PageDimensions returns the size of every page in document order.
func (d *Document) PageDimensions() ([]Dim, error) {
	pd, err := d.ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("page dimensions: %w", err)
	}
	dims := make([]Dim, len(pd))
	for i, p := range pd {
		dims[i] = Dim{Width: p.Width, Height: p.Height}
	}
	return dims, nil
}

// CopyPages produces a new Document containing the pages named by indices,
// in exactly the given order. Duplicate and repeated indices are honored.
// Any index outside [0, PageCount) yields an *IndexError.
func (d *Document) CopyPages(ctx context.Context, indices []int) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nrs := make([]int, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= d.ctx.PageCount {
			return nil, &IndexError{Index: idx, PageCount: d.ctx.PageCount}
		}
		nrs[i] = idx + 1
	}
	target, err := pdfcpu.ExtractPages(d.ctx, nrs, true)
	if err != nil {
		return nil, fmt.Errorf("copy pages: %w", err)
	}
	return &Document{ctx: target}, nil
}

// Save serializes the document. Object-stream packing follows opts.
func (d *Document) Save(ctx context.Context, opts SaveOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.ctx.Configuration.WriteObjectStream = opts.UseObjectStreams
	d.ctx.Configuration.WriteXRefStream = opts.UseObjectStreams
	var buf bytes.Buffer
	if err := api.WriteContext(d.ctx, &buf); err != nil {
		return nil, &SerializeError{Err: err}
	}
	return buf.Bytes(), nil
}

// Metadata returns the current information dictionary values. Missing or
// undecodable entries read as empty strings.
func (d *Document) Metadata() Metadata {
	var md Metadata
	if d.ctx.Info == nil {
		return md
	}
	dict, err := d.ctx.DereferenceDict(*d.ctx.Info)
	if err != nil || dict == nil {
		return md
	}
	md.Title = d.infoText(dict, "Title")
	md.Author = d.infoText(dict, "Author")
	md.Subject = d.infoText(dict, "Subject")
	md.Keywords = d.infoText(dict, "Keywords")
	md.Producer = d.infoText(dict, "Producer")
	md.Creator = d.infoText(dict, "Creator")
	return md
}

func (d *Document) infoText(dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	s, err := d.ctx.DereferenceText(obj)
	if err != nil {
		return ""
	}
	return s
}

// StripMetadata clears title/author/subject/keywords and stamps producer and
// creator with the given tool identifier. On Save the underlying writer
// replaces Producer with its own version string and refreshes the date
// entries; Creator and the cleared fields survive serialization.
func (d *Document) StripMetadata(tool string) error {
	info := types.Dict{
		"Title":    types.StringLiteral(""),
		"Author":   types.StringLiteral(""),
		"Subject":  types.StringLiteral(""),
		"Keywords": types.StringLiteral(""),
		"Producer": types.StringLiteral(tool),
		"Creator":  types.StringLiteral(tool),
	}
	ir, err := d.ctx.IndRefForNewObject(info)
	if err != nil {
		return fmt.Errorf("strip metadata: %w", err)
	}
	d.ctx.Info = ir
	return nil
}
