package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
)

// makePDF builds a minimal n-page PDF. Page i has height base+10*i so tests
// can recognize pages after copying.
func makePDF(n, base int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	offsets := make([]int, n+3)

	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = buf.Len()
	var kids bytes.Buffer
	for i := 0; i < n; i++ {
		if i > 0 {
			kids.WriteString(" ")
		}
		fmt.Fprintf(&kids, "%d 0 R", 3+i)
	}
	fmt.Fprintf(&buf, "2 0 obj\n<< /Type /Pages /Count %d /Kids [%s] >>\nendobj\n", n, kids.String())

	for i := 0; i < n; i++ {
		offsets[3+i] = buf.Len()
		fmt.Fprintf(&buf,
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /Resources << >> /MediaBox [0 0 612 %d] >>\nendobj\n",
			3+i, base+10*i)
	}

	xrefOffset := buf.Len()
	total := n + 3
	fmt.Fprintf(&buf, "xref\n0 %d\n", total)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < total; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total, xrefOffset)
	return buf.Bytes()
}

func mustLoad(t *testing.T, data []byte) *Document {
	t.Helper()
	doc, err := Load(context.Background(), data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return doc
}

func heights(t *testing.T, doc *Document) []float64 {
	t.Helper()
	dims, err := doc.PageDimensions()
	if err != nil {
		t.Fatalf("page dimensions: %v", err)
	}
	hs := make([]float64, len(dims))
	for i, d := range dims {
		hs[i] = d.Height
	}
	return hs
}

func TestLoadReportsPageCount(t *testing.T) {
	doc := mustLoad(t, makePDF(3, 700))
	if got := doc.PageCount(); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if doc.Encrypted() {
		t.Fatalf("fixture is not encrypted")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load(context.Background(), []byte("not a pdf"))
	if err == nil {
		t.Fatalf("expected parse error")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
}

func TestCopyPagesHonorsOrderAndDuplicates(t *testing.T) {
	doc := mustLoad(t, makePDF(3, 700))
	out, err := doc.CopyPages(context.Background(), []int{2, 0, 0})
	if err != nil {
		t.Fatalf("copy pages: %v", err)
	}
	if got := out.PageCount(); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	want := []float64{720, 700, 700}
	for i, h := range heights(t, out) {
		if h != want[i] {
			t.Errorf("page %d: height %v, want %v", i, h, want[i])
		}
	}
	// The source must not change.
	if got := doc.PageCount(); got != 3 {
		t.Fatalf("source mutated: %d pages", got)
	}
}

func TestCopyPagesRejectsOutOfRange(t *testing.T) {
	doc := mustLoad(t, makePDF(3, 700))
	_, err := doc.CopyPages(context.Background(), []int{3})
	var ie *IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *IndexError, got %v", err)
	}
	if ie.Index != 3 || ie.PageCount != 3 {
		t.Fatalf("unexpected index error: %+v", ie)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, objStreams := range []bool{false, true} {
		doc := mustLoad(t, makePDF(4, 700))
		data, err := doc.Save(context.Background(), SaveOptions{UseObjectStreams: objStreams})
		if err != nil {
			t.Fatalf("save (objstreams=%v): %v", objStreams, err)
		}
		again := mustLoad(t, data)
		if got := again.PageCount(); got != 4 {
			t.Fatalf("round trip (objstreams=%v): %d pages, want 4", objStreams, got)
		}
	}
}

func TestStripMetadata(t *testing.T) {
	doc := mustLoad(t, makePDF(2, 700))
	if err := doc.StripMetadata("pdfdeck"); err != nil {
		t.Fatalf("strip metadata: %v", err)
	}
	md := doc.Metadata()
	if md.Title != "" || md.Author != "" || md.Subject != "" || md.Keywords != "" {
		t.Errorf("expected cleared fields, got %+v", md)
	}
	if md.Producer != "pdfdeck" || md.Creator != "pdfdeck" {
		t.Errorf("expected tool identifier, got producer=%q creator=%q", md.Producer, md.Creator)
	}
}

func TestStripMetadataSurvivesSerialization(t *testing.T) {
	doc := mustLoad(t, makePDF(3, 700))
	if err := doc.StripMetadata("pdfdeck"); err != nil {
		t.Fatalf("strip metadata: %v", err)
	}
	data, err := doc.Save(context.Background(), SaveOptions{UseObjectStreams: true})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	again := mustLoad(t, data)
	if got := again.PageCount(); got != 3 {
		t.Fatalf("round trip: %d pages, want 3", got)
	}
	md := again.Metadata()
	if md.Title != "" || md.Author != "" || md.Subject != "" || md.Keywords != "" {
		t.Errorf("expected cleared fields after round trip, got %+v", md)
	}
	if md.Creator != "pdfdeck" {
		t.Errorf("expected creator to survive serialization, got %q", md.Creator)
	}
	// The writer stamps Producer with its own version string on save.
	if md.Producer == "" {
		t.Errorf("expected a producer entry on the serialized document")
	}
}
