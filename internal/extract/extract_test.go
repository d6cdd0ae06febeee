package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf16"

	"procedure-backend/internal/quality/entities"
)

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		body.WriteString(p)
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(body.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func buildDoc(text string) []byte {
	data := append([]byte{}, oleSignature...)
	data = append(data, make([]byte, 24)...)
	for _, u := range utf16.Encode([]rune(text)) {
		data = append(data, byte(u), byte(u>>8))
	}
	data = append(data, 0xFF, 0xFF, 0xFF, 0xFF)
	return data
}

// buildPDF writes a single-page PDF around the given content stream, with a
// correct xref table so the reader can resolve every object.
func buildPDF(t *testing.T, content string) []byte {
	t.Helper()
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtract_PDFTdPlacedLines(t *testing.T) {
	data := buildPDF(t, "BT /F1 12 Tf 72 720 Td (Purpose of the procedure) Tj 0 -14 Td (Owner: Jane Smith) Tj 200 0 Td (Scope) Tj ET")
	text, err := Extract(context.Background(), data, MimePDF, "sop.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Purpose of the procedure\nOwner: Jane Smith\nScope"
	if text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
	owners := entities.Owners(text)
	if len(owners) != 1 || owners[0] != "Jane Smith" {
		t.Fatalf("expected owner Jane Smith, got %v", owners)
	}
}

func TestExtract_PDFMatrixPlacedRows(t *testing.T) {
	data := buildPDF(t, "BT /F1 12 Tf 1 0 0 1 72 720 Tm (Purpose) Tj 1 0 0 1 72 700 Tm (Owner: Jane Smith) Tj ET")
	text, err := Extract(context.Background(), data, MimePDF, "sop.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Purpose\nOwner: Jane Smith" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtract_DocxParagraphs(t *testing.T) {
	data := buildDocx(t, "Purpose", "This procedure describes the backup process.", "Scope")
	text, err := Extract(context.Background(), data, MimeDOCX, "sop.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Purpose\nThis procedure describes the backup process.\nScope"
	if text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
}

func TestExtract_ZipDocxNormalizes(t *testing.T) {
	data := buildDocx(t, "Document Control")
	text, err := Extract(context.Background(), data, "application/zip", "test.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if text != "Document Control" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtract_DocxTabsAndBreaks(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/document.xml")
	_, _ = w.Write([]byte(`<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>Step</w:t><w:tab/><w:t>One</w:t><w:br/><w:t>Next</w:t></w:r></w:p></w:body></w:document>`))
	_ = zw.Close()

	text, err := Extract(context.Background(), buf.Bytes(), MimeDOCX, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Step\tOne\nNext" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtract_RealZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = Extract(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	if !strings.Contains(err.Error(), "application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtract_UnsupportedImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	_, err := Extract(context.Background(), png, "image/png", "scan.png")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	if errors.Is(err, ErrExtractionFailed) {
		t.Fatal("unsupported format must not be reported as extraction failure")
	}
}

func TestExtract_EmptyDocx(t *testing.T) {
	data := buildDocx(t, "   ", "")
	_, err := Extract(context.Background(), data, MimeDOCX, "empty.docx")
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected empty document, got %v", err)
	}
}

func TestExtract_CorruptPDF(t *testing.T) {
	data := []byte("%PDF-1.4\nthis is not really a pdf")
	_, err := Extract(context.Background(), data, MimePDF, "broken.pdf")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected extraction failure, got %v", err)
	}
	var extErr *ExtractionError
	if !errors.As(err, &extErr) || extErr.MimeType != MimePDF {
		t.Fatalf("expected ExtractionError for pdf, got %#v", err)
	}
}

func TestExtract_CorruptDocx(t *testing.T) {
	_, err := Extract(context.Background(), []byte("not a zip"), MimeDOCX, "broken.docx")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected extraction failure, got %v", err)
	}
}

func TestExtract_LegacyDoc(t *testing.T) {
	data := buildDoc("Standard Operating Procedure\rPurpose of this document\r")
	text, err := Extract(context.Background(), data, MimeDOC, "legacy.doc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Standard Operating Procedure\nPurpose of this document") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtract_LegacyDocWithoutSignature(t *testing.T) {
	_, err := Extract(context.Background(), []byte("plain text pretending to be doc"), MimeDOC, "fake.doc")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected extraction failure, got %v", err)
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Extract(ctx, buildDocx(t, "Purpose"), MimeDOCX, "sop.docx")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestExtract_GenericTypesRejected(t *testing.T) {
	docx := buildDocx(t, "Purpose")
	for _, mime := range []string{"application/octet-stream", ""} {
		_, err := Extract(context.Background(), docx, mime, "sop.docx")
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("%q: expected unsupported format, got %v", mime, err)
		}
	}
}

func TestNormalizeMimeType(t *testing.T) {
	docx := buildDocx(t, "x")
	pdf := []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	cases := []struct {
		name     string
		mime     string
		data     []byte
		expected string
	}{
		{"params stripped", "Application/PDF; charset=binary", nil, MimePDF},
		{"zip holding docx", "application/zip", docx, MimeDOCX},
		{"plain zip kept", "application/zip", []byte{1, 2, 3}, "application/zip"},
		{"octet stream kept", "application/octet-stream", docx, "application/octet-stream"},
		{"empty kept", "", pdf, ""},
		{"declared text kept", "text/plain", []byte("hi"), "text/plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeMimeType(tc.mime, tc.data)
			if got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestDetectMimeType(t *testing.T) {
	cases := []struct {
		name     string
		file     string
		data     []byte
		expected string
	}{
		{"docx layout", "a.bin", buildDocx(t, "x"), MimeDOCX},
		{"pdf sniffed", "upload", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"), MimePDF},
		{"extension fallback", "legacy.DOC", []byte{1, 2, 3}, MimeDOC},
		{"text detected", "notes.txt", []byte("just some notes"), "text/plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectMimeType(tc.file, tc.data)
			if got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	in := "Line one  \r\n\r\n\r\n\r\nLine two\t\n"
	got := cleanText(in)
	if got != "Line one\n\nLine two" {
		t.Fatalf("unexpected clean text: %q", got)
	}
}
