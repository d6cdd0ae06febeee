package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"procedure-backend/internal/extract"
	"procedure-backend/internal/quality"
	"procedure-backend/internal/quality/checklist"
)

const defaultMinScore = 80

// Report is one line of analyze output.
type Report struct {
	File         string          `json:"file"`
	MimeType     string          `json:"mimeType,omitempty"`
	Score        int             `json:"score"`
	MinimumScore int             `json:"minimumScore"`
	Accepted     bool            `json:"accepted"`
	Error        string          `json:"error,omitempty"`
	Analysis     *quality.Result `json:"analysis,omitempty"`
}

// BelowThresholdError is returned when --fail-under trips.
type BelowThresholdError struct {
	Threshold int
	Files     []string
}

func (e *BelowThresholdError) Error() string {
	return fmt.Sprintf("%d document(s) scored below %d", len(e.Files), e.Threshold)
}

func newAnalyzeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Analyze one or more procedure documents",
		Long: `Analyze extracts and scores each file and prints one JSON report per line,
in the order the files were given.

Example:
  procheck analyze backup-procedure.docx
  procheck analyze docs/*.pdf --concurrency 8 --fail-under 70
  procheck analyze policy.docx --checklist ./checklist.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, v, args)
		},
	}

	cmd.Flags().String("checklist", "", "checklist YAML file (default: built-in checklist)")
	cmd.Flags().Int("min-score", -1, "acceptance threshold 0-100 (default: checklist minimumScore or 80)")
	cmd.Flags().Int("concurrency", runtime.NumCPU(), "number of documents analyzed in parallel")
	cmd.Flags().Int("fail-under", 0, "exit non-zero when any document scores below this value (0 disables)")

	_ = v.BindPFlag("checklist", cmd.Flags().Lookup("checklist"))
	_ = v.BindPFlag("min_score", cmd.Flags().Lookup("min-score"))
	_ = v.BindPFlag("concurrency", cmd.Flags().Lookup("concurrency"))
	_ = v.BindPFlag("fail_under", cmd.Flags().Lookup("fail-under"))
	return cmd
}

func runAnalyze(cmd *cobra.Command, v *viper.Viper, files []string) error {
	checks, minScore, err := loadChecklist(v.GetString("checklist"), v.GetInt("min_score"))
	if err != nil {
		return err
	}
	analyzer := quality.New(checks)

	reports, err := analyzeFiles(cmd.Context(), analyzer, files, minScore, v.GetInt("concurrency"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if threshold := v.GetInt("fail_under"); threshold > 0 {
		var below []string
		for _, r := range reports {
			if r.Score < threshold {
				below = append(below, r.File)
			}
		}
		if len(below) > 0 {
			return &BelowThresholdError{Threshold: threshold, Files: below}
		}
	}
	return nil
}

// loadChecklist resolves the checks and threshold. An explicit minScore (>= 0)
// beats the file's minimumScore, which beats the default.
func loadChecklist(path string, minScore int) ([]checklist.CheckDefinition, int, error) {
	checks := checklist.Default()
	threshold := defaultMinScore
	if path != "" {
		cfg, err := checklist.Load(path)
		if err != nil {
			return nil, 0, err
		}
		checks = cfg.Checks
		if cfg.MinimumScore != nil {
			threshold = *cfg.MinimumScore
		}
	}
	if minScore >= 0 {
		if minScore > 100 {
			return nil, 0, fmt.Errorf("min-score %d out of range 0-100", minScore)
		}
		threshold = minScore
	}
	return checks, threshold, nil
}

func analyzeFiles(ctx context.Context, analyzer *quality.Analyzer, files []string, minScore, concurrency int) ([]Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	reports := make([]Report, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, file := range files {
		g.Go(func() error {
			reports[i] = analyzeFile(gctx, analyzer, file, minScore)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func analyzeFile(ctx context.Context, analyzer *quality.Analyzer, path string, minScore int) Report {
	report := Report{File: path, MinimumScore: minScore}
	data, err := os.ReadFile(path)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	fileName := filepath.Base(path)
	report.MimeType = extract.DetectMimeType(fileName, data)

	res := analyzer.Analyze(ctx, quality.Document{Data: data, MimeType: report.MimeType, FileName: fileName})
	report.Score = res.Score
	report.Accepted = res.Accepted(minScore)
	report.Analysis = &res
	return report
}
