package procedures

import (
	"time"

	"procedure-backend/internal/quality"
)

type Status string

const (
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Procedure is one submitted document and its quality analysis. Rejected
// submissions are recorded without a stored file.
type Procedure struct {
	ID              string
	Title           string
	Department      string
	OwnerID         string
	FileName        string
	MimeType        string
	SizeBytes       int64
	StorageProvider string
	StorageKey      string
	ContentSHA256   string
	Status          Status
	Score           int
	Analysis        quality.Result
	CreatedAt       time.Time
}

// RiskRating returns the analysis risk rating, or "" when no risk section was found.
func (p Procedure) RiskRating() string {
	if p.Analysis.Details.RiskRating == nil {
		return ""
	}
	return string(*p.Analysis.Details.RiskRating)
}

// HasFile reports whether the original upload was kept in object storage.
func (p Procedure) HasFile() bool {
	return p.StorageKey != ""
}

// Filter narrows List results. Zero values match everything; Limit 0 means no limit.
type Filter struct {
	OwnerID    string
	Department string
	Status     Status
	Limit      int
	Offset     int
}

func (f Filter) matches(p Procedure) bool {
	if f.OwnerID != "" && p.OwnerID != f.OwnerID {
		return false
	}
	if f.Department != "" && p.Department != f.Department {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	return true
}
