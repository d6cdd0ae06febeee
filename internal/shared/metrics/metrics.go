package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	qualityAnalysesTotal       atomic.Uint64
	qualityAnalysesFailedTotal atomic.Uint64
	proceduresAcceptedTotal    atomic.Uint64
	proceduresRejectedTotal    atomic.Uint64
	analysisCacheHitsTotal     atomic.Uint64

	qualityScore    = newHistogram([]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100})
	qualityDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000})
)

func IncQualityAnalyses() {
	qualityAnalysesTotal.Add(1)
}

func IncQualityAnalysesFailed() {
	qualityAnalysesFailedTotal.Add(1)
}

func IncProceduresAccepted() {
	proceduresAcceptedTotal.Add(1)
}

func IncProceduresRejected() {
	proceduresRejectedTotal.Add(1)
}

func IncAnalysisCacheHits() {
	analysisCacheHitsTotal.Add(1)
}

// ObserveQualityScore records the final score of a successful analysis.
func ObserveQualityScore(value float64) {
	qualityScore.Observe(value)
}

// ObserveQualityDurationMs records an analysis duration in milliseconds.
func ObserveQualityDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	qualityDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "quality_analyses_total", "Total document quality analyses", qualityAnalysesTotal.Load())
	writeCounter(&buf, "quality_analyses_failed_total", "Analyses that produced a degraded result", qualityAnalysesFailedTotal.Load())
	writeCounter(&buf, "procedures_accepted_total", "Procedure uploads accepted by the quality gate", proceduresAcceptedTotal.Load())
	writeCounter(&buf, "procedures_rejected_total", "Procedure uploads rejected by the quality gate", proceduresRejectedTotal.Load())
	writeCounter(&buf, "analysis_cache_hits_total", "Analyses served from the result cache", analysisCacheHitsTotal.Load())
	writeHistogram(&buf, "quality_score", "Final quality score of successful analyses", qualityScore.Snapshot())
	writeHistogram(&buf, "quality_analysis_duration_ms", "Analysis duration in milliseconds", qualityDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe counts value in the first bucket whose bound covers it; Snapshot
// consumers accumulate.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
