package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads the document page by page, one output line per text row.
// The pdf package panics on some malformed inputs; those surface as errors.
func extractPDF(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()

	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			line := joinRow(row.Content)
			if strings.TrimSpace(line) == "" {
				continue
			}
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

// joinRow concatenates glyph runs, inserting a space where the horizontal gap
// between runs is wider than a fraction of the font size.
func joinRow(content pdf.TextHorizontal) string {
	if unpositioned(content) {
		return splitOnMoves(content)
	}
	var b strings.Builder
	var prevEnd float64
	for i, t := range content {
		if i > 0 && t.S != "" {
			gap := t.X - prevEnd
			threshold := t.FontSize * 0.15
			if threshold <= 0 {
				threshold = 1
			}
			if gap > threshold && !endsWithSpace(b.String()) && !strings.HasPrefix(t.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return b.String()
}

func endsWithSpace(s string) bool {
	return s != "" && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t')
}

// unpositioned reports whether the parser left every run at the origin, which
// happens when text is placed with Td instead of a text matrix.
func unpositioned(content pdf.TextHorizontal) bool {
	for _, t := range content {
		if t.X != 0 || t.Y != 0 || t.W != 0 || t.FontSize != 0 {
			return false
		}
	}
	return true
}

// splitOnMoves rebuilds lines from runs in content-stream order. Each Td move
// shows up as an empty run and starts a new line.
func splitOnMoves(content pdf.TextHorizontal) string {
	var lines []string
	var cur strings.Builder
	flush := func() {
		if strings.TrimSpace(cur.String()) != "" {
			lines = append(lines, cur.String())
		}
		cur.Reset()
	}
	for _, t := range content {
		if t.S == "" {
			flush()
			continue
		}
		cur.WriteString(t.S)
	}
	flush()
	return strings.Join(lines, "\n")
}
