package recommendations

import (
	"sort"

	"procedure-backend/internal/quality/checklist"
)

// Generate runs every mapper in a fixed order and sorts the result by priority,
// keeping generation order among equal priorities.
func Generate(input Input) []Recommendation {
	out := make([]Recommendation, 0, 16)
	mappers := []func(Input) []Recommendation{
		fromMissingChecks,
		fromShortDocument,
		fromLongDocument,
		fromStructureBonus,
		fromSentenceCount,
		fromOwners,
		fromDates,
		fromFormatting,
	}
	for _, mapper := range mappers {
		out = append(out, mapper(input)...)
	}
	sortByPriority(out)
	return out
}

// AnalysisError is the single recommendation attached to a failed analysis.
func AnalysisError(message string) Recommendation {
	return Recommendation{
		Type:     TypeAnalysisError,
		Priority: checklist.PriorityHigh,
		Message:  message,
		Impact:   "Document could not be scored",
		Category: CategorySystem,
	}
}

// HasStructureBonus reports whether both control sections that earn the bonus were found.
func HasStructureBonus(res checklist.Result) bool {
	return res.Has(checklist.DocumentControl) && res.Has(checklist.RiskAssessment)
}

func sortByPriority(items []Recommendation) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority.Rank() > items[j].Priority.Rank()
	})
}
