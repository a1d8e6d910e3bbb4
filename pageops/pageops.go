// Package pageops implements the structural page-set operations: merge,
// remove, extract, reorder, and split. Operations never mutate their source
// documents; every result is a freshly built document.
package pageops

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/wudi/pdfdeck/document"
)

// Merge concatenates the given documents in order into one new document.
// Requires at least one input; a single input produces an identity copy.
func Merge(ctx context.Context, docs []*document.Document) (*document.Document, error) {
	if len(docs) == 0 {
		return nil, &ValidationError{Op: "merge", Reason: "requires at least one document"}
	}
	if len(docs) == 1 {
		return identityCopy(ctx, docs[0])
	}

	// One serialized source at a time, per the sequential resource model.
	readers := make([]io.ReadSeeker, 0, len(docs))
	for _, d := range docs {
		data, err := d.Save(ctx, document.SaveOptions{})
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		readers = append(readers, bytes.NewReader(data))
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, nil); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return document.Load(ctx, buf.Bytes())
}

// RemovePages copies every page whose index is not in toRemove, preserving
// document order. Indices outside the document are ignored. Removing every
// page is rejected, since an empty document cannot be serialized.
func RemovePages(ctx context.Context, doc *document.Document, toRemove []int) (*document.Document, error) {
	drop := make(map[int]struct{}, len(toRemove))
	for _, idx := range toRemove {
		drop[idx] = struct{}{}
	}
	keep := make([]int, 0, doc.PageCount())
	for i := 0; i < doc.PageCount(); i++ {
		if _, gone := drop[i]; !gone {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, &ValidationError{Op: "remove", Reason: "removing every page leaves an empty document"}
	}
	return doc.CopyPages(ctx, keep)
}

// ExtractPages copies pages in exactly the given order. Duplicates and
// arbitrary ordering are honored; sorting is a caller-side policy.
func ExtractPages(ctx context.Context, doc *document.Document, indices []int) (*document.Document, error) {
	if len(indices) == 0 {
		return nil, &ValidationError{Op: "extract", Reason: "no pages selected"}
	}
	if err := checkIndices("extract", indices, doc.PageCount()); err != nil {
		return nil, err
	}
	return doc.CopyPages(ctx, indices)
}

// Reorder copies pages in the order given by newOrder, which must be a
// permutation of [0, PageCount).
func Reorder(ctx context.Context, doc *document.Document, newOrder []int) (*document.Document, error) {
	if err := checkPermutation("reorder", newOrder, doc.PageCount()); err != nil {
		return nil, err
	}
	return doc.CopyPages(ctx, newOrder)
}

// Split partitions the document at the given boundaries. Each boundary b is
// the last page index of a part, so boundaries [2,4] on a six-page document
// produce parts covering [0,2], [3,4], [5,5]. Boundaries are de-duplicated
// and sorted; an empty list yields a single whole-document part.
func Split(ctx context.Context, doc *document.Document, splitAfter []int) ([]*document.Document, error) {
	pc := doc.PageCount()
	bounds, err := normalizeBounds(splitAfter, pc)
	if err != nil {
		return nil, err
	}

	var parts []*document.Document
	start := 0
	for _, b := range bounds {
		part, err := copyRange(ctx, doc, start, b)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
		start = b + 1
	}
	if start <= pc-1 {
		part, err := copyRange(ctx, doc, start, pc-1)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func copyRange(ctx context.Context, doc *document.Document, first, last int) (*document.Document, error) {
	indices := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		indices = append(indices, i)
	}
	return doc.CopyPages(ctx, indices)
}

func identityCopy(ctx context.Context, doc *document.Document) (*document.Document, error) {
	indices := make([]int, doc.PageCount())
	for i := range indices {
		indices[i] = i
	}
	return doc.CopyPages(ctx, indices)
}

func normalizeBounds(splitAfter []int, pageCount int) ([]int, error) {
	seen := make(map[int]struct{}, len(splitAfter))
	bounds := make([]int, 0, len(splitAfter))
	for _, b := range splitAfter {
		if b < 1 || b > pageCount-1 {
			return nil, &ValidationError{
				Op:     "split",
				Reason: fmt.Sprintf("boundary %d outside [1,%d]", b, pageCount-1),
			}
		}
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		if b == pageCount-1 {
			// The tail past this boundary would be empty; the boundary
			// contributes nothing to the partition.
			continue
		}
		bounds = append(bounds, b)
	}
	sort.Ints(bounds)
	return bounds, nil
}
