package quality

import (
	"procedure-backend/internal/quality/checklist"
	"procedure-backend/internal/quality/entities"
	"procedure-backend/internal/quality/recommendations"
	"procedure-backend/internal/quality/risk"
	"procedure-backend/internal/quality/textstats"
)

// Failure kinds reported on degraded results.
const (
	FailureUnsupportedFormat  = "unsupported_format"
	FailureEmptyDocument      = "empty_document"
	FailureExtractionFailed   = "extraction_failed"
	FailureConfigurationError = "configuration_error"
	FailureCanceled           = "canceled"
)

// Result is the complete analysis of one document. It is safe to store verbatim.
type Result struct {
	Score           int                              `json:"score"`
	Details         Details                          `json:"details"`
	Recommendations []recommendations.Recommendation `json:"aiRecommendations"`
	Failure         string                           `json:"failure,omitempty"`
}

type Details struct {
	FoundElements      []string     `json:"foundElements"`
	MissingElements    []string     `json:"missingElements"`
	HasTableOfContents bool         `json:"hasTableOfContents"`
	HasDocumentControl bool         `json:"hasDocumentControl"`
	HasRiskAssessment  bool         `json:"hasRiskAssessment"`
	Owners             []string     `json:"owners"`
	SignOffDates       []string     `json:"signOffDates"`
	Departments        []string     `json:"departments"`
	Roles              []string     `json:"roles"`
	RiskScore          *int         `json:"riskScore"`
	RiskRating         *risk.Rating `json:"riskRating"`
	Summary            Summary      `json:"summary"`
}

// Summary is derived from the other fields by summarize and never set directly.
type Summary struct {
	TotalChecks      int  `json:"totalChecks"`
	FoundCount       int  `json:"foundCount"`
	MissingCount     int  `json:"missingCount"`
	OwnerCount       int  `json:"ownerCount"`
	DateCount        int  `json:"dateCount"`
	DepartmentCount  int  `json:"departmentCount"`
	RoleCount        int  `json:"roleCount"`
	RecommendCount   int  `json:"recommendationCount"`
	ChecklistScore   int  `json:"checklistScore"`
	ScoreAdjustment  int  `json:"scoreAdjustment"`
	DocumentLength   int  `json:"documentLength"`
	WordCount        int  `json:"wordCount"`
	SentenceCount    int  `json:"sentenceCount"`
	ParagraphCount   int  `json:"paragraphCount"`
	HasNumberedSteps bool `json:"hasNumberedSteps"`
	HasBullets       bool `json:"hasBullets"`
}

// Accepted reports whether the result clears the given minimum score.
func (r Result) Accepted(minScore int) bool {
	return r.Failure == "" && r.Score >= minScore
}

func newDetails(cl checklist.Result, ents entities.Result, rk risk.Result) Details {
	return Details{
		FoundElements:      nonNil(cl.FoundElements),
		MissingElements:    nonNil(cl.MissingElements),
		HasTableOfContents: cl.Has(checklist.TableOfContents),
		HasDocumentControl: cl.Has(checklist.DocumentControl),
		HasRiskAssessment:  cl.Has(checklist.RiskAssessment),
		Owners:             nonNil(ents.Owners),
		SignOffDates:       nonNil(ents.Dates),
		Departments:        nonNil(ents.Departments),
		Roles:              nonNil(ents.Roles),
		RiskScore:          rk.Score,
		RiskRating:         rk.Rating,
	}
}

func summarize(d Details, recs []recommendations.Recommendation, stats textstats.Stats, checklistScore, adjustment int) Summary {
	return Summary{
		TotalChecks:      len(d.FoundElements) + len(d.MissingElements),
		FoundCount:       len(d.FoundElements),
		MissingCount:     len(d.MissingElements),
		OwnerCount:       len(d.Owners),
		DateCount:        len(d.SignOffDates),
		DepartmentCount:  len(d.Departments),
		RoleCount:        len(d.Roles),
		RecommendCount:   len(recs),
		ChecklistScore:   checklistScore,
		ScoreAdjustment:  adjustment,
		DocumentLength:   stats.Length,
		WordCount:        stats.Words,
		SentenceCount:    stats.Sentences,
		ParagraphCount:   stats.Paragraphs,
		HasNumberedSteps: stats.HasNumberedSteps,
		HasBullets:       stats.HasBullets,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
