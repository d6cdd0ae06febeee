package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"procedure-backend/internal/procedures"
	"procedure-backend/internal/quality/checklist"
	"procedure-backend/internal/shared/config"
)

func devConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:               "dev",
		ObjectStoreType:   "local",
		LocalStoreDir:     t.TempDir(),
		MinQualityScore:   80,
		MaxUploadBytes:    1 << 20,
		AnalysisCacheSize: 8,
	}
}

func TestBuildDevUsesMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(devConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if app.DB != nil {
		t.Fatal("expected no database")
	}
	if _, ok := app.ProceduresRepo.(*procedures.MemoryRepo); !ok {
		t.Fatalf("expected memory repo, got %T", app.ProceduresRepo)
	}
	if app.Queue != nil {
		t.Fatal("expected events disabled without a queue URL")
	}
	if app.Store.Provider() != "local" {
		t.Fatalf("expected local store, got %s", app.Store.Provider())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestBuildProductionRequiresDatabase(t *testing.T) {
	cfg := devConfig(t)
	cfg.Env = "production"
	if _, err := Build(cfg); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestBuildS3RequiresBucket(t *testing.T) {
	cfg := devConfig(t)
	cfg.ObjectStoreType = "s3"
	if _, err := Build(cfg); err == nil {
		t.Fatal("expected error without S3_BUCKET")
	}
}

func TestChecklistFileOverridesMinimumScore(t *testing.T) {
	data, err := checklist.DefaultFile(65)
	if err != nil {
		t.Fatalf("default file: %v", err)
	}
	path := filepath.Join(t.TempDir(), "checklist.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := devConfig(t)
	cfg.ChecklistPath = path
	app, err := Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if app.MinScore != 65 || app.ProceduresService.MinScore() != 65 {
		t.Fatalf("expected minimum 65, got %d / %d", app.MinScore, app.ProceduresService.MinScore())
	}
	if len(app.Checks) != len(checklist.Default()) {
		t.Fatalf("expected %d checks, got %d", len(checklist.Default()), len(app.Checks))
	}
}

func TestChecklistMissingFileFails(t *testing.T) {
	cfg := devConfig(t)
	cfg.ChecklistPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := Build(cfg); err == nil {
		t.Fatal("expected error for missing checklist")
	}
}
