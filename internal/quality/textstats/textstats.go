package textstats

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinSentenceLength is the trimmed length a segment must exceed to count as a sentence.
const MinSentenceLength = 10

type Stats struct {
	Length           int
	Words            int
	Sentences        int
	Paragraphs       int
	HasNumberedSteps bool
	HasBullets       bool
}

var (
	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	paragraphSplit = regexp.MustCompile(`\n[ \t]*\n`)
	numberedStep   = regexp.MustCompile(`\d+\.\s`)
	bulletPoint    = regexp.MustCompile(`[•\-\*]\s`)
)

func Compute(text string) Stats {
	return Stats{
		Length:           utf8.RuneCountInString(text),
		Words:            len(strings.Fields(text)),
		Sentences:        CountSentences(text),
		Paragraphs:       CountParagraphs(text),
		HasNumberedSteps: numberedStep.MatchString(text),
		HasBullets:       bulletPoint.MatchString(text),
	}
}

// CountSentences splits on runs of . ! ? and counts segments longer than MinSentenceLength.
func CountSentences(text string) int {
	n := 0
	for _, seg := range sentenceSplit.Split(text, -1) {
		if utf8.RuneCountInString(strings.TrimSpace(seg)) > MinSentenceLength {
			n++
		}
	}
	return n
}

// CountParagraphs counts blank-line separated blocks. Text without any blank
// line falls back to counting non-empty lines.
func CountParagraphs(text string) int {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if !paragraphSplit.MatchString(text) {
		return countNonEmptyLines(text)
	}
	n := 0
	for _, block := range paragraphSplit.Split(text, -1) {
		if strings.TrimSpace(block) != "" {
			n++
		}
	}
	return n
}

func countNonEmptyLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
