package checklist

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrZeroWeight is returned when a checklist has no positive total weight to score against.
	ErrZeroWeight = errors.New("checklist total weight must be positive")
	// ErrNonPositiveWeight is returned when a single check carries a zero, negative or NaN weight.
	ErrNonPositiveWeight = errors.New("check weight must be positive")
)

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Rank orders priorities for sorting: HIGH=3, MEDIUM=2, LOW=1, anything else 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority accepts any casing of HIGH, MEDIUM or LOW.
func ParsePriority(value string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(value)))
	if p.Rank() == 0 {
		return "", false
	}
	return p, true
}

// CheckDefinition is one weighted presence rule. Detect must be pure.
type CheckDefinition struct {
	Name        string
	Weight      float64
	Detect      func(text string) bool
	Priority    Priority
	Description string
}

type Result struct {
	Score           int               `json:"score"`
	FoundElements   []string          `json:"foundElements"`
	MissingElements []string          `json:"missingElements"`
	MissingChecks   []CheckDefinition `json:"-"`
}

// Has reports whether the named check fired.
func (r Result) Has(name string) bool {
	for _, found := range r.FoundElements {
		if found == name {
			return true
		}
	}
	return false
}

// Names lists the check names in checklist order.
func Names(checks []CheckDefinition) []string {
	out := make([]string, 0, len(checks))
	for _, c := range checks {
		out = append(out, c.Name)
	}
	return out
}

// TotalWeight sums the weights of all checks.
func TotalWeight(checks []CheckDefinition) float64 {
	var total float64
	for _, c := range checks {
		total += c.Weight
	}
	return total
}

// Validate rejects checklists that cannot produce a score in 0..100.
func Validate(checks []CheckDefinition) error {
	for _, c := range checks {
		if !(c.Weight > 0) {
			return fmt.Errorf("%w: check %q has weight %v", ErrNonPositiveWeight, c.Name, c.Weight)
		}
	}
	if total := TotalWeight(checks); !(total > 0) || math.IsInf(total, 0) {
		return ErrZeroWeight
	}
	return nil
}

// Score evaluates every check against text in order and returns the rounded
// percentage of weight achieved.
func Score(text string, checks []CheckDefinition) (Result, error) {
	if err := Validate(checks); err != nil {
		return Result{}, err
	}
	total := TotalWeight(checks)

	res := Result{
		FoundElements:   make([]string, 0, len(checks)),
		MissingElements: make([]string, 0, len(checks)),
	}
	var achieved float64
	for _, check := range checks {
		if check.Detect != nil && check.Detect(text) {
			achieved += check.Weight
			res.FoundElements = append(res.FoundElements, check.Name)
			continue
		}
		res.MissingElements = append(res.MissingElements, check.Name)
		res.MissingChecks = append(res.MissingChecks, check)
	}

	res.Score = int(math.Round(achieved / total * 100))
	return res, nil
}
