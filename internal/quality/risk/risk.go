package risk

import (
	"regexp"
	"strings"
)

type Rating string

const (
	RatingLow    Rating = "Low"
	RatingMedium Rating = "Medium"
	RatingHigh   Rating = "High"
)

// Result holds the keyword count and its rating. Both are nil when the document
// has no risk assessment section.
type Result struct {
	Score  *int
	Rating *Rating
}

// Keywords are counted as whole words or phrases, case-insensitively.
var Keywords = []string{
	"high risk", "medium risk", "low risk",
	"critical", "severe", "major", "minor", "moderate", "significant",
	"likelihood", "probability", "impact", "consequence", "severity",
}

var keywordRes = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(Keywords))
	for _, k := range Keywords {
		phrase := strings.ReplaceAll(regexp.QuoteMeta(k), " ", `\s+`)
		out = append(out, regexp.MustCompile(`(?i)\b`+phrase+`\b`))
	}
	return out
}()

// Estimate rates how thoroughly a risk section is written by keyword frequency
// across the whole document: more than 5 hits is High, more than 2 Medium.
// The count is not normalized by document length.
func Estimate(text string, hasRiskSection bool) Result {
	if !hasRiskSection {
		return Result{}
	}
	count := Count(text)
	rating := Rate(count)
	return Result{Score: &count, Rating: &rating}
}

// Count sums keyword occurrences in text.
func Count(text string) int {
	total := 0
	for _, re := range keywordRes {
		total += len(re.FindAllStringIndex(text, -1))
	}
	return total
}

func Rate(count int) Rating {
	switch {
	case count > 5:
		return RatingHigh
	case count > 2:
		return RatingMedium
	default:
		return RatingLow
	}
}
