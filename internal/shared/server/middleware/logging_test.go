package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"procedure-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID(), Auth("dev"), Logging())
	router.GET("/test", func(c *gin.Context) {
		c.Set(ProcedureIDKey, "proc-1")
		c.Set(QualityKey, 85)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	defer telemetry.SetOutput(nil)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-User-Id", "author-1")
	req.Header.Set("X-User-Role", "reviewer")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatalf("expected log output")
	}
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	required := []string{"request_id", "user_id", "user_role", "procedure_id", "quality_score", "duration_ms", "status"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["msg"] != "request.complete" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["user_id"] != "author-1" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	if payload["user_role"] != "reviewer" {
		t.Fatalf("unexpected user_role: %v", payload["user_role"])
	}
	if payload["procedure_id"] != "proc-1" {
		t.Fatalf("unexpected procedure_id: %v", payload["procedure_id"])
	}
	if payload["quality_score"] != float64(85) {
		t.Fatalf("unexpected quality_score: %v", payload["quality_score"])
	}
}
