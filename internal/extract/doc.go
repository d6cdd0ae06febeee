package extract

import (
	"bytes"
	"errors"
	"strings"
	"unicode"
)

var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

const (
	minUTF16Run  = 4
	minASCIIRun  = 8
	minDocLetter = 20
)

// extractDOC recovers text from a Word 97-2003 binary. Text in the WordDocument
// stream is stored either as UTF-16LE or as 8-bit runs, so UTF-16 runs are tried
// first and printable byte runs are the fallback. Paragraph marks (\r) become newlines.
func extractDOC(data []byte) (string, error) {
	if len(data) < len(oleSignature) || !bytes.Equal(data[:len(oleSignature)], oleSignature) {
		return "", errors.New("not an OLE compound document")
	}

	body := data[len(oleSignature):]
	text := scanUTF16Runs(body)
	if countLetters(text) < minDocLetter {
		text = scanASCIIRuns(body)
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return text, nil
}

func scanUTF16Runs(data []byte) string {
	var out strings.Builder
	var run []rune
	flush := func() {
		if len(run) >= minUTF16Run && isReadable(run) {
			if out.Len() > 0 {
				out.WriteByte('\n')
			}
			out.WriteString(string(run))
		}
		run = run[:0]
	}
	for i := 0; i+1 < len(data); {
		r := rune(data[i]) | rune(data[i+1])<<8
		if isDocRune(r) {
			run = append(run, r)
			i += 2
			continue
		}
		flush()
		i++
	}
	flush()
	return out.String()
}

func scanASCIIRuns(data []byte) string {
	var out strings.Builder
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start >= minASCIIRun {
			run := []rune(string(data[start:end]))
			if isReadable(run) {
				if out.Len() > 0 {
					out.WriteByte('\n')
				}
				out.Write(data[start:end])
			}
		}
		start = -1
	}
	for i, b := range data {
		if (b >= 0x20 && b <= 0x7E) || b == '\r' || b == '\n' || b == '\t' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(data))
	return out.String()
}

func isDocRune(r rune) bool {
	switch {
	case r >= 0x20 && r <= 0x7E:
		return true
	case r == '\r' || r == '\n' || r == '\t':
		return true
	case r >= 0xA0 && r <= 0xFF:
		return true
	case r >= 0x2010 && r <= 0x2027:
		return true
	}
	return false
}

// isReadable rejects runs that are mostly symbols, which is what binary table
// data looks like when decoded as text.
func isReadable(run []rune) bool {
	if len(run) == 0 {
		return false
	}
	good := 0
	for _, r := range run {
		if unicode.IsLetter(r) || unicode.IsSpace(r) || unicode.IsDigit(r) {
			good++
		}
	}
	return float64(good)/float64(len(run)) >= 0.7
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
