package checklist

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func always(string) bool { return true }

func never(string) bool { return false }

func TestScoreWeightedRounding(t *testing.T) {
	checks := []CheckDefinition{
		{Name: "A", Weight: 1, Detect: always, Priority: PriorityHigh},
		{Name: "B", Weight: 2, Detect: never, Priority: PriorityLow},
	}
	res, err := Score("anything", checks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Score != 33 {
		t.Fatalf("expected 33, got %d", res.Score)
	}
	if len(res.FoundElements) != 1 || res.FoundElements[0] != "A" {
		t.Fatalf("unexpected found: %v", res.FoundElements)
	}
	if len(res.MissingChecks) != 1 || res.MissingChecks[0].Name != "B" {
		t.Fatalf("unexpected missing checks: %v", res.MissingChecks)
	}
}

func TestScoreZeroWeight(t *testing.T) {
	if _, err := Score("text", nil); !errors.Is(err, ErrZeroWeight) {
		t.Fatalf("expected ErrZeroWeight, got %v", err)
	}
}

func TestScoreRejectsNonPositiveCheckWeight(t *testing.T) {
	cases := map[string][]CheckDefinition{
		"zero":     {{Name: "A", Weight: 0, Detect: never}},
		"negative": {{Name: "A", Weight: 100, Detect: never}, {Name: "B", Weight: -1, Detect: never}},
		"nan":      {{Name: "A", Weight: 10, Detect: never}, {Name: "B", Weight: math.NaN(), Detect: never}},
	}
	for name, checks := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := Score("text", checks)
			if !errors.Is(err, ErrNonPositiveWeight) {
				t.Fatalf("expected ErrNonPositiveWeight, got %v", err)
			}
			if res.Score != 0 || res.FoundElements != nil {
				t.Fatalf("expected empty result, got %+v", res)
			}
		})
	}
}

func TestScorePartition(t *testing.T) {
	checks := Default()
	texts := []string{
		"",
		"Purpose and scope only",
		"Table of Contents\nDocument Control\nRisk Assessment\nApproval\nNext review date: 01/01/2025",
		strings.Repeat("Procedure steps follow. ", 60),
	}
	for _, text := range texts {
		res, err := Score(text, checks)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen := map[string]int{}
		for _, n := range res.FoundElements {
			seen[n]++
		}
		for _, n := range res.MissingElements {
			seen[n]++
		}
		if len(seen) != len(checks) {
			t.Fatalf("expected %d names, got %d", len(checks), len(seen))
		}
		for name, count := range seen {
			if count != 1 {
				t.Fatalf("check %q listed %d times", name, count)
			}
		}
		if res.Score < 0 || res.Score > 100 {
			t.Fatalf("score out of range: %d", res.Score)
		}
	}
}

func TestDefaultProceduresNeedsLength(t *testing.T) {
	checks := Default()
	short := "Procedures\n1. Do the thing."
	res, _ := Score(short, checks)
	if res.Has(Procedures) {
		t.Fatal("short document should not satisfy Procedures")
	}

	long := short + "\n" + strings.Repeat("Operators record each reading in the log. ", 30)
	res, _ = Score(long, checks)
	if !res.Has(Procedures) {
		t.Fatal("long document with procedures heading should satisfy Procedures")
	}
}

func TestDefaultAllFound(t *testing.T) {
	text := strings.Join([]string{
		"Table of Contents",
		"Purpose",
		"Scope",
		"Document Control",
		"Roles and Responsibilities",
		"Procedures",
		"Risk Assessment",
		"Approval",
		"Review Date",
		strings.Repeat("Each operator follows the documented process carefully. ", 25),
	}, "\n")
	res, err := Score(text, Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Score != 100 || len(res.MissingElements) != 0 {
		t.Fatalf("expected full score, got %d missing %v", res.Score, res.MissingElements)
	}
}

func TestPriorityRank(t *testing.T) {
	if PriorityHigh.Rank() <= PriorityMedium.Rank() || PriorityMedium.Rank() <= PriorityLow.Rank() {
		t.Fatal("expected HIGH > MEDIUM > LOW")
	}
	if p, ok := ParsePriority(" medium "); !ok || p != PriorityMedium {
		t.Fatalf("expected MEDIUM, got %q", p)
	}
	if _, ok := ParsePriority("urgent"); ok {
		t.Fatal("expected unknown priority to be rejected")
	}
}

func TestParseChecklist(t *testing.T) {
	data := []byte(`
minimumScore: 70
checks:
  - name: Purpose
    weight: 50
    priority: high
    description: Explain why.
    patterns: ["\\bpurpose\\b"]
  - name: Procedures
    weight: 50
    priority: MEDIUM
    patterns: ["steps"]
    minLength: 20
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MinimumScore == nil || *cfg.MinimumScore != 70 {
		t.Fatalf("expected minimumScore 70, got %v", cfg.MinimumScore)
	}
	if len(cfg.Checks) != 2 || cfg.Checks[0].Priority != PriorityHigh {
		t.Fatalf("unexpected checks: %+v", cfg.Checks)
	}
	res, err := Score("PURPOSE: short steps", cfg.Checks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Score != 50 {
		t.Fatalf("expected 50, got %d", res.Score)
	}
	if res.MissingChecks[0].Description != "Add a Procedures section." {
		t.Fatalf("unexpected default description %q", res.MissingChecks[0].Description)
	}
}

func TestParseChecklistRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad priority":  "checks:\n  - {name: A, weight: 1, priority: urgent, patterns: [a]}\n",
		"zero weight":   "checks:\n  - {name: A, weight: 0, priority: LOW, patterns: [a]}\n",
		"bad regex":     "checks:\n  - {name: A, weight: 1, priority: LOW, patterns: ['(']}\n",
		"empty name":    "checks:\n  - {name: '', weight: 1, priority: LOW, patterns: [a]}\n",
		"duplicate":     "checks:\n  - {name: A, weight: 1, priority: LOW, patterns: [a]}\n  - {name: a, weight: 1, priority: LOW, patterns: [b]}\n",
		"no checks":     "minimumScore: 80\n",
		"score range":   "minimumScore: 120\nchecks:\n  - {name: A, weight: 1, priority: LOW, patterns: [a]}\n",
		"no patterns":   "checks:\n  - {name: A, weight: 1, priority: LOW}\n",
		"malformed doc": "checks: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalidChecklist) {
				t.Fatalf("expected ErrInvalidChecklist, got %v", err)
			}
		})
	}
}

func TestDefaultFileRoundTrip(t *testing.T) {
	data, err := DefaultFile(80)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "checklist.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg.MinimumScore != 80 {
		t.Fatalf("expected 80, got %d", *cfg.MinimumScore)
	}
	got := Names(cfg.Checks)
	want := Names(Default())
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if TotalWeight(cfg.Checks) != 100 {
		t.Fatalf("expected total weight 100, got %v", TotalWeight(cfg.Checks))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
