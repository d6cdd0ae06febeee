package entities

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var ownerNoise = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,4}\s*[/.\-]\s*\d{1,2}\s*[/.\-]\s*\d{1,4}`),
	regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\b`),
	regexp.MustCompile(`(?i)\bversion\s*\d`),
	regexp.MustCompile(`(?i)^v\d`),
	regexp.MustCompile(`(?i)table\s+of\s+contents`),
	regexp.MustCompile(`(?i)\bpage\s*\d`),
	regexp.MustCompile(`^[\d\s.,]+$`),
}

var ownerStoplist = []string{
	"name", "role", "department", "tbd", "n/a", "title", "position", "signature",
	"date", "owner", "none", "various", "to be confirmed", "not applicable", "see above",
}

var stoplistRes = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(ownerStoplist))
	for _, word := range ownerStoplist {
		out = append(out, regexp.MustCompile(`(?:^|[^\p{L}\p{N}])`+regexp.QuoteMeta(word)+`(?:$|[^\p{L}\p{N}])`))
	}
	return out
}()

// IsValidOwnerName filters owner candidates: placeholders, dates, version strings
// and anything that does not read like a person's name are rejected.
func IsValidOwnerName(value string) bool {
	value = strings.TrimSpace(value)
	n := utf8.RuneCountInString(value)
	if n < 2 || n > 100 {
		return false
	}
	if !strings.ContainsFunc(value, unicode.IsLetter) {
		return false
	}
	for _, re := range ownerNoise {
		if re.MatchString(value) {
			return false
		}
	}

	lower := strings.ToLower(value)
	for i, re := range stoplistRes {
		if lower == ownerStoplist[i] || re.MatchString(lower) {
			return false
		}
	}

	for _, word := range strings.Fields(value) {
		if utf8.RuneCountInString(word) < 2 {
			continue
		}
		for _, r := range word {
			if !unicode.IsLetter(r) && r != '-' && r != '.' {
				return false
			}
		}
	}
	return true
}

const monthNames = `(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec)`

var (
	dayMonthYear  = `\b\d{1,2}[/.\-]\d{1,2}[/.\-]\d{4}\b`
	yearMonthDay  = `\b\d{4}[/.\-]\d{1,2}[/.\-]\d{1,2}\b`
	dayNameYear   = `\b\d{1,2}(?:st|nd|rd|th)?\s+` + monthNames + `\.?,?\s+\d{4}\b`
	nameDayYear   = `\b` + monthNames + `\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`
	anyDateShape  = `(?:` + dayNameYear + `|` + nameDayYear + `|` + yearMonthDay + `|` + dayMonthYear + `)`
	dateLabelExpr = `(?:sign[- ]?off|signed\s+off|approved|approval|next\s+review|review|effective|date)`
)

var DateRules = []Rule{
	{
		Name:     "labeled",
		Pattern:  regexp.MustCompile(`(?i)\b` + dateLabelExpr + `(?:\s+date)?(?:\s+on)?\s*:?[ \t]*(` + anyDateShape + `)`),
		Validate: IsValidDate,
	},
	{Name: "day_month_year", Pattern: regexp.MustCompile(`(?i)` + dayMonthYear), Validate: IsValidDate},
	{Name: "year_month_day", Pattern: regexp.MustCompile(`(?i)` + yearMonthDay), Validate: IsValidDate},
	{Name: "day_monthname_year", Pattern: regexp.MustCompile(`(?i)` + dayNameYear), Validate: IsValidDate},
	{Name: "monthname_day_year", Pattern: regexp.MustCompile(`(?i)` + nameDayYear), Validate: IsValidDate},
}

var (
	ordinalRe    = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)
	septRe       = regexp.MustCompile(`(?i)\bsept\b`)
	numericDate  = regexp.MustCompile(`^(\d{1,4})[/.\-](\d{1,2})[/.\-](\d{1,4})$`)
	textLayouts  = []string{"2 January 2006", "2 Jan 2006", "January 2 2006", "Jan 2 2006"}
	minValidYear = 1990
	maxValidYear = 2040
)

// IsValidDate reports whether value is a real calendar date with 1990 < year < 2040.
// Numeric dates are read day-first, falling back to month-first.
func IsValidDate(value string) bool {
	year, ok := parseDate(value)
	return ok && year > minValidYear && year < maxValidYear
}

func parseDate(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if m := numericDate.FindStringSubmatch(value); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		c, _ := strconv.Atoi(m[3])
		if len(m[1]) == 4 {
			return a, realDate(a, b, c)
		}
		if len(m[3]) != 4 {
			return 0, false
		}
		if realDate(c, b, a) || realDate(c, a, b) {
			return c, true
		}
		return 0, false
	}

	cleaned := ordinalRe.ReplaceAllString(value, "$1")
	cleaned = strings.NewReplacer(",", " ", ".", " ").Replace(cleaned)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	cleaned = septRe.ReplaceAllString(cleaned, "Sep")
	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Year(), true
		}
	}
	return 0, false
}

func realDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}
