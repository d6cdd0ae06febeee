package quality

import (
	"context"
	"errors"
	"fmt"
	"time"

	"procedure-backend/internal/extract"
	"procedure-backend/internal/quality/checklist"
	"procedure-backend/internal/quality/entities"
	"procedure-backend/internal/quality/recommendations"
	"procedure-backend/internal/quality/risk"
	"procedure-backend/internal/quality/textstats"
	"procedure-backend/internal/shared/metrics"
	"procedure-backend/internal/shared/telemetry"
)

// Document is an uploaded file as received from the client.
type Document struct {
	Data     []byte
	MimeType string
	FileName string
}

// Observer is told about every finished analysis. It must not modify the result.
type Observer func(doc Document, res Result, elapsed time.Duration)

type Analyzer struct {
	checks   []checklist.CheckDefinition
	observer Observer
}

type Option func(*Analyzer)

// WithObserver replaces the default logging and metrics observer. nil disables it.
func WithObserver(fn Observer) Option {
	return func(a *Analyzer) {
		a.observer = fn
	}
}

func New(checks []checklist.CheckDefinition, opts ...Option) *Analyzer {
	a := &Analyzer{
		checks:   append([]checklist.CheckDefinition(nil), checks...),
		observer: observe,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAnalyzer = New(checklist.Default())

// Analyze scores doc against the default checklist.
func Analyze(ctx context.Context, doc Document) Result {
	return defaultAnalyzer.Analyze(ctx, doc)
}

func (a *Analyzer) Checks() []checklist.CheckDefinition {
	return append([]checklist.CheckDefinition(nil), a.checks...)
}

// Analyze never returns an error: any failure yields a zero-score result with
// one explanatory recommendation and Failure set.
func (a *Analyzer) Analyze(ctx context.Context, doc Document) Result {
	start := time.Now()
	res := a.analyze(ctx, doc)
	if a.observer != nil {
		a.observer(doc, res, time.Since(start))
	}
	return res
}

func (a *Analyzer) analyze(ctx context.Context, doc Document) Result {
	if err := checklist.Validate(a.checks); err != nil {
		return a.degraded(err)
	}
	text, err := extract.Extract(ctx, doc.Data, doc.MimeType, doc.FileName)
	if err != nil {
		return a.degraded(err)
	}
	return a.AnalyzeText(text)
}

// AnalyzeText runs every stage after extraction. Each stage returns its own value
// and the result is assembled once at the end.
func (a *Analyzer) AnalyzeText(text string) Result {
	cl, err := checklist.Score(text, a.checks)
	if err != nil {
		return a.degraded(err)
	}
	ents := entities.Extract(text)
	rk := risk.Estimate(text, cl.Has(checklist.RiskAssessment))
	stats := textstats.Compute(text)
	score, adjustment := adjust(cl, stats)
	recs := recommendations.Generate(recommendations.Input{
		Checklist: cl,
		Entities:  ents,
		Risk:      rk,
		Stats:     stats,
	})

	details := newDetails(cl, ents, rk)
	details.Summary = summarize(details, recs, stats, cl.Score, adjustment)
	return Result{
		Score:           score,
		Details:         details,
		Recommendations: recs,
	}
}

// adjust applies the short-document penalty and the control-section bonus to the
// checklist score. Both can apply to the same document.
func adjust(cl checklist.Result, stats textstats.Stats) (score int, adjustment int) {
	if stats.Length < recommendations.ShortDocumentLength {
		adjustment -= recommendations.LengthPenalty
	}
	if recommendations.HasStructureBonus(cl) {
		adjustment += recommendations.StructureBonus
	}
	return clamp(cl.Score+adjustment, 0, 100), adjustment
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (a *Analyzer) degraded(err error) Result {
	failure, message := describeFailure(err)
	details := newDetails(checklist.Result{MissingElements: checklist.Names(a.checks)}, entities.Result{}, risk.Result{})
	recs := []recommendations.Recommendation{recommendations.AnalysisError(message)}
	details.Summary = summarize(details, recs, textstats.Stats{}, 0, 0)
	return Result{
		Score:           0,
		Details:         details,
		Recommendations: recs,
		Failure:         failure,
	}
}

func describeFailure(err error) (string, string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled, "Analysis was interrupted before it finished. Try the upload again."
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return FailureUnsupportedFormat, fmt.Sprintf("Analysis failed: %v. Upload a PDF or Word document.", err)
	case errors.Is(err, extract.ErrEmptyDocument):
		return FailureEmptyDocument, "Analysis failed: no text could be extracted. Scanned or image-only documents are not supported."
	case errors.Is(err, checklist.ErrZeroWeight), errors.Is(err, checklist.ErrNonPositiveWeight):
		return FailureConfigurationError, "Analysis failed: the quality checklist is misconfigured. Contact an administrator."
	default:
		return FailureExtractionFailed, fmt.Sprintf("Analysis failed: the document could not be read (%v).", err)
	}
}

func observe(doc Document, res Result, elapsed time.Duration) {
	ms := float64(elapsed.Microseconds()) / 1000
	metrics.IncQualityAnalyses()
	metrics.ObserveQualityDurationMs(ms)
	if res.Failure != "" {
		metrics.IncQualityAnalysesFailed()
		telemetry.Warn("quality.analyze.failed", map[string]any{
			"fileName":   doc.FileName,
			"mimeType":   doc.MimeType,
			"failure":    res.Failure,
			"durationMs": ms,
		})
		return
	}
	metrics.ObserveQualityScore(float64(res.Score))
	telemetry.Info("quality.analyze", map[string]any{
		"fileName":   doc.FileName,
		"mimeType":   doc.MimeType,
		"score":      res.Score,
		"length":     res.Details.Summary.DocumentLength,
		"missing":    len(res.Details.MissingElements),
		"durationMs": ms,
	})
}
