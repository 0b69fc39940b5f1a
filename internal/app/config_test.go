package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/idea2sns-backend/internal/data/db"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"IDEA2SNS_CONFIG", "LOG_MODE", "HTTP_ADDR", "JWT_SECRET", "SUPABASE_JWT_SECRET", "LLM_MOCK",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "LLM_MAX_ATTEMPTS", "LLM_CALL_TIMEOUT",
		"LLM_PROVIDER_ORDER", "DB_DRIVER", "DATABASE_URL", "CORS_ALLOWED_ORIGINS", "TOKEN_ENCRYPTION_KEY",
	} {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadConfigLayersYAMLThenEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("IDEA2SNS_CONFIG", writeYAML(t, `
env: production
http:
  addr: ":9000"
  shutdown_timeout: 3000000000
auth:
  jwt_secret: from-yaml
llm:
  call_timeout: 7s
  provider_order: [gemini, openai]
  gemini:
    api_key: g-key
`))
	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("LLM_CALL_TIMEOUT", "11s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Addr != ":9100" {
		t.Fatalf("env must override yaml: addr=%q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.ShutdownTimeout.Duration != 3*time.Second {
		t.Fatalf("int nanoseconds: %v", cfg.HTTP.ShutdownTimeout)
	}
	if cfg.LLM.CallTimeout.Duration != 11*time.Second {
		t.Fatalf("call timeout=%v", cfg.LLM.CallTimeout)
	}
	if strings.Join(cfg.LLM.ProviderOrder, ",") != "gemini,openai" || cfg.LLM.Gemini.APIKey != "g-key" {
		t.Fatalf("llm=%+v", cfg.LLM)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins=%v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Auth.TokenEncryptionKey != "from-yaml" {
		t.Fatalf("token key should fall back to the jwt secret")
	}
	if cfg.LLM.MaxAttempts != 2 {
		t.Fatalf("default max attempts lost: %d", cfg.LLM.MaxAttempts)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("LOG_MODE", "production")
	_, err := LoadConfig()
	if err == nil || !strings.Contains(err.Error(), "no LLM provider") || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected provider and secret errors, got %v", err)
	}

	t.Setenv("LLM_MOCK", "true")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("LLM_MAX_ATTEMPTS", "0")
	if _, err := LoadConfig(); err == nil || !strings.Contains(err.Error(), "LLM_MAX_ATTEMPTS") {
		t.Fatalf("expected max attempts error, got %v", err)
	}

	t.Setenv("LLM_MAX_ATTEMPTS", "3")
	t.Setenv("LLM_CALL_TIMEOUT", "soon")
	if _, err := LoadConfig(); err == nil || !strings.Contains(err.Error(), "LLM_CALL_TIMEOUT") {
		t.Fatalf("expected duration error, got %v", err)
	}
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Driver: db.DriverPostgres, Host: "db", Port: "5432", User: "app", Password: "p@ss", Name: "idea2sns"}
	if got := c.DSN(); got != "postgres://app:p%40ss@db:5432/idea2sns?sslmode=disable" {
		t.Fatalf("dsn=%q", got)
	}
	c.URL = "postgres://override"
	if c.DSN() != "postgres://override" {
		t.Fatalf("DATABASE_URL must win")
	}
	c.Driver = db.DriverSQLite
	c.SQLitePath = "local.db"
	if c.DSN() != "local.db" {
		t.Fatalf("sqlite dsn=%q", c.DSN())
	}
}

func TestBuildEnginesOrder(t *testing.T) {
	engines, err := buildEngines(LLMConfig{
		ProviderOrder: []string{"gemini", "openai", "anthropic"},
		OpenAI:        ProviderConfig{APIKey: "o"},
		Gemini:        ProviderConfig{APIKey: "g"},
	})
	if err != nil {
		t.Fatalf("buildEngines: %v", err)
	}
	if len(engines) != 2 || engines[0].Name() != "gemini" || engines[1].Name() != "openai" {
		t.Fatalf("engines=%v", engines)
	}

	mocked, err := buildEngines(LLMConfig{Mock: true, OpenAI: ProviderConfig{APIKey: "o"}})
	if err != nil || len(mocked) != 1 || mocked[0].Name() != "mock" {
		t.Fatalf("mock: %v %v", mocked, err)
	}

	if _, err := buildEngines(LLMConfig{ProviderOrder: []string{"openai"}}); err == nil {
		t.Fatalf("expected error without credentials")
	}
	if _, err := buildEngines(LLMConfig{ProviderOrder: []string{"cohere"}, OpenAI: ProviderConfig{APIKey: "o"}}); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}
