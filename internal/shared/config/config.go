package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"procedure-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool

	DatabaseURL    string
	EventsQueueURL string

	ChecklistPath      string
	MinQualityScore    int
	MaxUploadBytes     int64
	AnalysisCacheSize  int
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience; real env wins.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url.missing", map[string]any{"env": env})
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		MinioEndpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:  getEnv("MINIO_ACCESS_KEY", getEnv("MINIO_ROOT_USER", "")),
		MinioSecretKey:  getEnv("MINIO_SECRET_KEY", getEnv("MINIO_ROOT_PASSWORD", "")),
		MinioBucket:     getEnv("MINIO_BUCKET", "procedures"),
		MinioUseSSL:     getBool("MINIO_USE_SSL", false),

		DatabaseURL:    dbURL,
		EventsQueueURL: getEnv("EVENTS_QUEUE_URL", ""),

		ChecklistPath:      getEnv("CHECKLIST_PATH", ""),
		MinQualityScore:    clampScore(getInt("MIN_QUALITY_SCORE", 80)),
		MaxUploadBytes:     int64(getInt("MAX_UPLOAD_BYTES", 10<<20)),
		AnalysisCacheSize:  getInt("ANALYSIS_CACHE_SIZE", 256),
		RateLimitPerSecond: getFloat("RATE_LIMIT_PER_SECOND", 2),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 10),
	}
}

func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

// IsDev reports whether developer conveniences such as header identities are allowed.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "local"
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}
