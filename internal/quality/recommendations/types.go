package recommendations

import (
	"procedure-backend/internal/quality/checklist"
	"procedure-backend/internal/quality/entities"
	"procedure-backend/internal/quality/risk"
	"procedure-backend/internal/quality/textstats"
)

// Recommendation is one actionable suggestion shown to the document author.
type Recommendation struct {
	Type     string             `json:"type"`
	Priority checklist.Priority `json:"priority"`
	Message  string             `json:"message"`
	Impact   string             `json:"impact"`
	Category string             `json:"category"`
}

// Input is everything the generator reads. Scores are never changed here.
type Input struct {
	Checklist checklist.Result
	Entities  entities.Result
	Risk      risk.Result
	Stats     textstats.Stats
}

const (
	TypeMissingElement = "missing_element"
	TypeContentLength  = "content_length"
	TypeDocumentSize   = "document_size"
	TypeQualityBonus   = "quality_bonus"
	TypeContentDepth   = "content_depth"
	TypeGovernance     = "governance"
	TypeCompliance     = "compliance"
	TypeFormatting     = "formatting"
	TypeAnalysisError  = "analysis_error"
)

const (
	CategoryStructure  = "Document Structure"
	CategoryContent    = "Content Quality"
	CategoryQuality    = "Quality Bonus"
	CategoryGovernance = "Governance"
	CategoryCompliance = "Compliance"
	CategoryFormatting = "Formatting"
	CategorySystem     = "System Error"
)

// Thresholds shared with the analyzer, which applies the score adjustments
// these recommendations describe.
const (
	ShortDocumentLength = 500
	LongDocumentLength  = 20000
	MinSentences        = 20
	LengthPenalty       = 30
	StructureBonus      = 10
)
