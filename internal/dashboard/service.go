package dashboard

import (
	"context"
	"errors"
	"math"
	"sort"

	"procedure-backend/internal/procedures"
	"procedure-backend/internal/quality/risk"
)

const (
	defaultTopMissing = 5
	riskNone          = "None"
)

// Service aggregates procedure records for reviewers and admins.
type Service struct {
	Repo       procedures.Repo
	MinScore   int
	TopMissing int
}

func NewService(repo procedures.Repo, minScore int) *Service {
	return &Service{Repo: repo, MinScore: minScore, TopMissing: defaultTopMissing}
}

type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Summary struct {
	Total          int            `json:"total"`
	Accepted       int            `json:"accepted"`
	Rejected       int            `json:"rejected"`
	AcceptanceRate float64        `json:"acceptanceRate"`
	AverageScore   float64        `json:"averageScore"`
	MinimumScore   int            `json:"minimumScore"`
	ByDepartment   []Count        `json:"byDepartment"`
	RiskRatings    map[string]int `json:"riskRatings"`
	TopMissing     []Count        `json:"topMissingElements"`
}

// Summary reports totals over every procedure, optionally limited to one department.
func (s *Service) Summary(ctx context.Context, department string) (Summary, error) {
	if s == nil || s.Repo == nil {
		return Summary{}, errors.New("dashboard: repo not configured")
	}
	items, err := s.Repo.List(ctx, procedures.Filter{Department: department})
	if err != nil {
		return Summary{}, err
	}
	return summarize(items, s.MinScore, s.topMissing()), nil
}

func (s *Service) topMissing() int {
	if s.TopMissing <= 0 {
		return defaultTopMissing
	}
	return s.TopMissing
}

func summarize(items []procedures.Procedure, minScore, topN int) Summary {
	sum := Summary{
		MinimumScore: minScore,
		ByDepartment: []Count{},
		TopMissing:   []Count{},
		RiskRatings: map[string]int{
			string(risk.RatingLow):    0,
			string(risk.RatingMedium): 0,
			string(risk.RatingHigh):   0,
			riskNone:                  0,
		},
	}
	departments := map[string]int{}
	missing := map[string]int{}
	scoreTotal := 0

	for _, p := range items {
		sum.Total++
		scoreTotal += p.Score
		switch p.Status {
		case procedures.StatusAccepted:
			sum.Accepted++
		case procedures.StatusRejected:
			sum.Rejected++
		}

		dept := p.Department
		if dept == "" {
			dept = "Unassigned"
		}
		departments[dept]++

		if rating := p.RiskRating(); rating != "" {
			sum.RiskRatings[rating]++
		} else {
			sum.RiskRatings[riskNone]++
		}
		for _, name := range p.Analysis.Details.MissingElements {
			missing[name]++
		}
	}

	if sum.Total > 0 {
		sum.AverageScore = round1(float64(scoreTotal) / float64(sum.Total))
		sum.AcceptanceRate = round1(100 * float64(sum.Accepted) / float64(sum.Total))
	}
	sum.ByDepartment = ranked(departments, 0)
	sum.TopMissing = ranked(missing, topN)
	return sum
}

// ranked sorts by count descending then name; limit 0 keeps everything.
func ranked(counts map[string]int, limit int) []Count {
	out := make([]Count, 0, len(counts))
	for name, n := range counts {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
