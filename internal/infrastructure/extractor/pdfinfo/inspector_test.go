package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// minimalPDF builds an uncompressed PDF with the given number of blank pages.
func minimalPDF(pages int) []byte {
	kids := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages),
	}
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objects))
	for i, obj := range objects {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPageCount(t *testing.T) {
	pages, err := NewInspector().PageCount(minimalPDF(2))
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if pages != 2 {
		t.Fatalf("expected 2 pages, got %d", pages)
	}
}

func TestPageCountRejectsNonPDF(t *testing.T) {
	_, err := NewInspector().PageCount([]byte("hello world"))
	if !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestPageCountTruncatedPDF(t *testing.T) {
	pages, err := NewInspector().PageCount([]byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"))
	if err == nil {
		t.Fatalf("expected error for truncated pdf, got %d pages", pages)
	}
	if pages != 0 {
		t.Fatalf("expected 0 pages on error, got %d", pages)
	}
}
