package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC  = "application/msword"

	mimeZip = "application/zip"
)

// SupportedMimeTypes lists the document types the extractor accepts.
var SupportedMimeTypes = []string{MimePDF, MimeDOCX, MimeDOC}

// Extract converts a PDF or Word payload into plain text with paragraph breaks preserved.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/gabriel-vasile/mimetype (sniffing).
func Extract(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	normalized := NormalizeMimeType(mimeType, data)
	var (
		text string
		err  error
	)
	switch normalized {
	case MimePDF:
		text, err = extractPDF(ctx, data)
	case MimeDOCX:
		text, err = extractDOCX(data)
	case MimeDOC:
		text, err = extractDOC(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, displayMime(normalized))
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &ExtractionError{MimeType: normalized, Err: err}
	}

	text = cleanText(text)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

// IsSupported reports whether the declared type is one Extract can handle without sniffing.
func IsSupported(mimeType string) bool {
	clean := cleanMime(mimeType)
	for _, supported := range SupportedMimeTypes {
		if clean == supported {
			return true
		}
	}
	return false
}

// NormalizeMimeType strips parameters from the declared type. A declared zip that
// holds word/document.xml is a DOCX; every other type is kept as declared, so
// octet-stream and empty types stay unsupported.
func NormalizeMimeType(mimeType string, data []byte) string {
	clean := cleanMime(mimeType)
	if clean == mimeZip {
		if mapped := mapOOXMLFromZip(data); mapped != "" {
			return mapped
		}
	}
	return clean
}

// DetectMimeType guesses the type of a payload that arrives without one, such as a
// local file. It tries the OOXML layout, then content sniffing, then the extension.
func DetectMimeType(fileName string, data []byte) string {
	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}

	detected := mimetype.Detect(data)
	for _, supported := range SupportedMimeTypes {
		if detected.Is(supported) {
			return supported
		}
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".doc":
		return MimeDOC
	}
	return cleanMime(detected.String())
}

func cleanMime(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

func displayMime(mimeType string) string {
	if mimeType == "" {
		return "(none)"
	}
	return mimeType
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return MimeDOCX
		}
	}
	return ""
}

// cleanText normalizes line endings, trims trailing spaces and collapses runs of blank lines.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\f\v")
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			line = ""
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
