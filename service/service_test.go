package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/wudi/pdfdeck/validate"
)

// makePDF builds a minimal n-page PDF fixture.
func makePDF(n int) []byte {
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
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /Resources << >> /MediaBox [0 0 612 792] >>\nendobj\n",
			3+i)
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

func fixture(name string, n int) validate.File {
	data := makePDF(n)
	return validate.File{Name: name, Size: int64(len(data)), Data: data}
}

// memSink records deliveries in order.
type memSink struct {
	names []string
	files map[string][]byte
}

func newMemSink() *memSink { return &memSink{files: make(map[string][]byte)} }

func (s *memSink) Deliver(name string, data []byte) error {
	s.names = append(s.names, name)
	s.files[name] = data
	return nil
}

func TestMergeDeliversConventionalName(t *testing.T) {
	svc := New(Options{})
	sink := newMemSink()

	res, err := svc.Merge(context.Background(),
		[]validate.File{fixture("a.pdf", 3), fixture("b.pdf", 2)}, sink)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(res.OutputNames) != 1 || res.OutputNames[0] != "merged_document.pdf" {
		t.Fatalf("unexpected output names %v", res.OutputNames)
	}
	if res.PageCount != 5 {
		t.Errorf("expected 5 pages, got %d", res.PageCount)
	}
	if _, ok := sink.files["merged_document.pdf"]; !ok {
		t.Errorf("sink did not receive merged_document.pdf")
	}
}

func TestRemoveExtractReorderNames(t *testing.T) {
	svc := New(Options{})
	ctx := context.Background()

	cases := []struct {
		name string
		run  func(sink Sink) (*Result, error)
		want string
	}{
		{"remove", func(sink Sink) (*Result, error) {
			return svc.RemovePages(ctx, fixture("in.pdf", 4), []int{0}, sink)
		}, "document_with_pages_removed.pdf"},
		{"extract", func(sink Sink) (*Result, error) {
			return svc.ExtractPages(ctx, fixture("in.pdf", 4), []int{2, 1}, sink)
		}, "extracted_pages.pdf"},
		{"reorder", func(sink Sink) (*Result, error) {
			return svc.Reorder(ctx, fixture("in.pdf", 3), []int{2, 0, 1}, sink)
		}, "organized_document.pdf"},
	}
	for _, c := range cases {
		sink := newMemSink()
		res, err := c.run(sink)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if len(res.OutputNames) != 1 || res.OutputNames[0] != c.want {
			t.Errorf("%s: output names %v, want [%s]", c.name, res.OutputNames, c.want)
		}
	}
}

func TestSplitDeliversNumberedParts(t *testing.T) {
	svc := New(Options{})
	sink := newMemSink()

	res, err := svc.Split(context.Background(), fixture("report.pdf", 6), []int{2, 4}, sink)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	want := []string{"report_part1.pdf", "report_part2.pdf", "report_part3.pdf"}
	if len(sink.names) != len(want) {
		t.Fatalf("delivered %v, want %v", sink.names, want)
	}
	for i, name := range want {
		if sink.names[i] != name {
			t.Errorf("part %d delivered as %s, want %s", i+1, sink.names[i], name)
		}
	}
	if res.PageCount != 6 {
		t.Errorf("parts cover %d pages, want 6", res.PageCount)
	}
}

func TestGateRejectsBeforeTransform(t *testing.T) {
	svc := New(Options{})
	sink := newMemSink()

	junk := validate.File{Name: "junk.pdf", Size: 4, Data: []byte("junk")}
	_, err := svc.RemovePages(context.Background(), junk, []int{0}, sink)
	var ge *GateError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GateError, got %v", err)
	}
	if len(sink.names) != 0 {
		t.Fatalf("no delivery may happen after rejection, got %v", sink.names)
	}
}

func TestCompressDeliversPrefixedName(t *testing.T) {
	svc := New(Options{})
	sink := newMemSink()

	res, err := svc.Compress(context.Background(), fixture("scan.pdf", 2), "medium", sink)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if len(res.OutputNames) != 1 || res.OutputNames[0] != "compressed_scan.pdf" {
		t.Fatalf("unexpected output names %v", res.OutputNames)
	}
	if res.Strategy == "" {
		t.Errorf("expected a strategy in the result")
	}
}
