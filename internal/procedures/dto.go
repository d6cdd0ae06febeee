package procedures

import (
	"time"

	"procedure-backend/internal/quality"
)

type procedureResponse struct {
	ID              string         `json:"procedureId"`
	Title           string         `json:"title"`
	Department      string         `json:"department"`
	OwnerID         string         `json:"ownerId"`
	FileName        string         `json:"fileName"`
	MimeType        string         `json:"mimeType"`
	SizeBytes       int64          `json:"sizeBytes"`
	StorageProvider string         `json:"storageProvider,omitempty"`
	Status          Status         `json:"status"`
	Score           int            `json:"score"`
	RiskRating      string         `json:"riskRating,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	Analysis        quality.Result `json:"analysis"`
}

// procedureSummary is the list view; the full analysis is only returned per record.
type procedureSummary struct {
	ID         string    `json:"procedureId"`
	Title      string    `json:"title"`
	Department string    `json:"department"`
	OwnerID    string    `json:"ownerId"`
	FileName   string    `json:"fileName"`
	Status     Status    `json:"status"`
	Score      int       `json:"score"`
	RiskRating string    `json:"riskRating,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toResponse(p Procedure) procedureResponse {
	return procedureResponse{
		ID:              p.ID,
		Title:           p.Title,
		Department:      p.Department,
		OwnerID:         p.OwnerID,
		FileName:        p.FileName,
		MimeType:        p.MimeType,
		SizeBytes:       p.SizeBytes,
		StorageProvider: p.StorageProvider,
		Status:          p.Status,
		Score:           p.Score,
		RiskRating:      p.RiskRating(),
		CreatedAt:       p.CreatedAt,
		Analysis:        p.Analysis,
	}
}

func toSummary(p Procedure) procedureSummary {
	return procedureSummary{
		ID:         p.ID,
		Title:      p.Title,
		Department: p.Department,
		OwnerID:    p.OwnerID,
		FileName:   p.FileName,
		Status:     p.Status,
		Score:      p.Score,
		RiskRating: p.RiskRating(),
		CreatedAt:  p.CreatedAt,
	}
}
