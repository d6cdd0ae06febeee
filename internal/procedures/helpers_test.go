package procedures

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"procedure-backend/internal/quality"
	"procedure-backend/internal/quality/checklist"
	"procedure-backend/internal/shared/storage/object/local"
)

// fakeAnalyzer returns a fixed result and counts calls.
type fakeAnalyzer struct {
	mu     sync.Mutex
	calls  int
	result quality.Result
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, doc quality.Document) quality.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if ctx.Err() != nil {
		return quality.Result{Failure: quality.FailureCanceled}
	}
	return f.result
}

func (f *fakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func scored(score int) quality.Result {
	return quality.Result{
		Score: score,
		Details: quality.Details{
			FoundElements:   []string{checklist.Purpose},
			MissingElements: []string{checklist.Approval},
			Departments:     []string{"Finance Operations"},
		},
	}
}

func newTestService(t *testing.T, analyzer Analyzer, events *recorderClient, opts Options) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	var svc *Service
	var err error
	if events != nil {
		svc, err = NewService(repo, local.New(t.TempDir()), analyzer, events, opts)
	} else {
		svc, err = NewService(repo, local.New(t.TempDir()), analyzer, nil, opts)
	}
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

// buildDocx assembles a minimal Word document with one paragraph per line of text.
func buildDocx(t *testing.T, text string) []byte {
	t.Helper()
	var body strings.Builder
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&body, "<w:p><w:r><w:t xml:space=\"preserve\">%s</w:t></w:r></w:p>", xmlEscape(line))
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// wellFormedProcedure covers every default check and clears the length gates.
func wellFormedProcedure() string {
	var b strings.Builder
	b.WriteString("Table of Contents\n\n")
	b.WriteString("Document Control\nOwner: Jane Smith\nMaintained by: John Doe\nApproval date: 15/03/2024\nNext review: 15/03/2025\n\n")
	b.WriteString("Purpose\nThis document explains how nightly database backups are produced and verified.\n\n")
	b.WriteString("Scope\nThe process applies to every production database managed by the platform team.\n\n")
	b.WriteString("Department: Platform Engineering\n\n")
	b.WriteString("Roles and Responsibilities\nThe operations manager owns the schedule. The on-call engineer runs the checks.\n\n")
	b.WriteString("Procedures\n")
	for i := 1; i <= 22; i++ {
		fmt.Fprintf(&b, "%d. Confirm that the backup job for the next database completed and record the result in the log.\n", i)
	}
	b.WriteString("\nRisk Assessment\nThe likelihood of a failed backup is low but the impact is critical. Severity is reviewed quarterly.\n\n")
	b.WriteString("Approval\nApproved by the engineering director.\n")
	return b.String()
}
