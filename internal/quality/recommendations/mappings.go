package recommendations

import (
	"fmt"
	"strconv"

	"procedure-backend/internal/quality/checklist"
)

func fromMissingChecks(in Input) []Recommendation {
	out := make([]Recommendation, 0, len(in.Checklist.MissingChecks))
	for _, check := range in.Checklist.MissingChecks {
		out = append(out, Recommendation{
			Type:     TypeMissingElement,
			Priority: check.Priority,
			Message:  check.Description,
			Impact:   "+" + formatPoints(check.Weight) + " points",
			Category: CategoryStructure,
		})
	}
	return out
}

func fromShortDocument(in Input) []Recommendation {
	if in.Stats.Length >= ShortDocumentLength {
		return nil
	}
	return []Recommendation{{
		Type:     TypeContentLength,
		Priority: checklist.PriorityHigh,
		Message:  fmt.Sprintf("Document is only %d characters long. Expand it with the detail needed to carry out the procedure.", in.Stats.Length),
		Impact:   fmt.Sprintf("-%d points", LengthPenalty),
		Category: CategoryContent,
	}}
}

func fromLongDocument(in Input) []Recommendation {
	if in.Stats.Length <= LongDocumentLength {
		return nil
	}
	return []Recommendation{{
		Type:     TypeDocumentSize,
		Priority: checklist.PriorityMedium,
		Message:  "Document is very long. Consider splitting it into smaller procedures or moving reference material to appendices.",
		Impact:   "Improves readability",
		Category: CategoryContent,
	}}
}

func fromStructureBonus(in Input) []Recommendation {
	if !HasStructureBonus(in.Checklist) {
		return nil
	}
	return []Recommendation{{
		Type:     TypeQualityBonus,
		Priority: checklist.PriorityLow,
		Message:  "Document control and risk assessment are both present. Keep them up to date.",
		Impact:   fmt.Sprintf("+%d points", StructureBonus),
		Category: CategoryQuality,
	}}
}

func fromSentenceCount(in Input) []Recommendation {
	if in.Stats.Sentences >= MinSentences {
		return nil
	}
	return []Recommendation{{
		Type:     TypeContentDepth,
		Priority: checklist.PriorityMedium,
		Message:  fmt.Sprintf("Only %d substantive sentences found. Add explanation for each step, including expected results and exceptions.", in.Stats.Sentences),
		Impact:   "Improves clarity",
		Category: CategoryContent,
	}}
}

func fromOwners(in Input) []Recommendation {
	switch n := len(in.Entities.Owners); {
	case n == 0:
		return []Recommendation{{
			Type:     TypeGovernance,
			Priority: checklist.PriorityHigh,
			Message:  "No document owner found. Add an \"Owner:\" line naming the person accountable for this procedure.",
			Impact:   "Required for accountability",
			Category: CategoryGovernance,
		}}
	case n == 1:
		return []Recommendation{{
			Type:     TypeGovernance,
			Priority: checklist.PriorityMedium,
			Message:  fmt.Sprintf("Only one owner found (%s). Name a secondary owner to cover absences.", in.Entities.Owners[0]),
			Impact:   "Improves continuity",
			Category: CategoryGovernance,
		}}
	default:
		return []Recommendation{{
			Type:     TypeGovernance,
			Priority: checklist.PriorityLow,
			Message:  fmt.Sprintf("%d owners identified. Ownership is well defined.", n),
			Impact:   "No action needed",
			Category: CategoryGovernance,
		}}
	}
}

func fromDates(in Input) []Recommendation {
	if len(in.Entities.Dates) > 0 {
		return nil
	}
	return []Recommendation{{
		Type:     TypeCompliance,
		Priority: checklist.PriorityHigh,
		Message:  "No sign-off or review dates found. Record the approval date and the next review date.",
		Impact:   "Required for compliance",
		Category: CategoryCompliance,
	}}
}

func fromFormatting(in Input) []Recommendation {
	if in.Stats.HasNumberedSteps || in.Stats.HasBullets {
		return nil
	}
	return []Recommendation{{
		Type:     TypeFormatting,
		Priority: checklist.PriorityMedium,
		Message:  "No numbered steps or bullet points found. Break the procedure into numbered steps.",
		Impact:   "Improves usability",
		Category: CategoryFormatting,
	}}
}

func formatPoints(weight float64) string {
	return strconv.FormatFloat(weight, 'f', -1, 64)
}
