// Package validate gates every operation: a file must be within the size
// limit, parse as a PDF, satisfy the encryption policy, and hold a page
// count within bounds before any transformation starts.
package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/wudi/pdfdeck/document"
)

// File is an input as handed over by the ingestion collaborator.
type File struct {
	Name string
	Size int64
	Data []byte
}

// Constraints bound what the gate accepts.
type Constraints struct {
	MaxSize        int64
	MinPages       int
	MaxPages       int
	AllowEncrypted bool
}

// DefaultConstraints mirrors the ingestion ceiling of 100 MB and requires
// at least one page.
func DefaultConstraints() Constraints {
	return Constraints{
		MaxSize:  100 << 20,
		MinPages: 1,
		MaxPages: 2000,
	}
}

// Result accumulates findings for one or more files. Errors make the file
// invalid; warnings are advisory only.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *Result) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Check validates a single file against the constraints. Parse failure
// short-circuits the page checks; the remaining checks accumulate
// independently.
func Check(ctx context.Context, f File, c Constraints) Result {
	var res Result

	if c.MaxSize > 0 && f.Size > c.MaxSize {
		res.errorf("%s: size %d exceeds limit %d", f.Name, f.Size, c.MaxSize)
	} else if c.MaxSize > 0 && f.Size*10 >= c.MaxSize*9 {
		res.warnf("%s: size %d is close to the limit %d", f.Name, f.Size, c.MaxSize)
	}

	doc, err := document.Load(ctx, f.Data)
	if err != nil {
		if errors.Is(err, document.ErrEncrypted) {
			if c.AllowEncrypted {
				res.warnf("%s: encrypted, page checks skipped", f.Name)
				res.Valid = len(res.Errors) == 0
				return res
			}
			res.errorf("%s: file is encrypted", f.Name)
		} else {
			res.errorf("%s: invalid PDF format", f.Name)
		}
		return res
	}

	if doc.Encrypted() && !c.AllowEncrypted {
		res.errorf("%s: file is encrypted", f.Name)
	}

	pc := doc.PageCount()
	if c.MinPages > 0 && pc < c.MinPages {
		res.errorf("%s: %d pages, need at least %d", f.Name, pc, c.MinPages)
	}
	if c.MaxPages > 0 && pc > c.MaxPages {
		res.errorf("%s: %d pages, limit is %d", f.Name, pc, c.MaxPages)
	}
	if pc == 0 {
		res.errorf("%s: no pages, file is corrupt", f.Name)
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// CheckAll validates files in order and stops at the first invalid one.
// Warnings from already-checked valid files are kept.
func CheckAll(ctx context.Context, files []File, c Constraints) Result {
	combined := Result{Valid: true}
	for _, f := range files {
		res := Check(ctx, f, c)
		combined.Warnings = append(combined.Warnings, res.Warnings...)
		if !res.Valid {
			combined.Valid = false
			combined.Errors = res.Errors
			return combined
		}
	}
	return combined
}
