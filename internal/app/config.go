package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/idea2sns-backend/internal/data/db"
	"github.com/yungbote/idea2sns-backend/internal/http/middleware"
)

// Duration accepts "5s"-style strings or integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := parseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	d.Duration = parsed
	return nil
}

func parseDuration(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be like \"5s\" or an int nanoseconds: %q", raw)
	}
	return d, nil
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	URL         string `yaml:"url"`
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Name        string `yaml:"name"`
	SQLitePath  string `yaml:"sqlite_path"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret          string `yaml:"jwt_secret"`
	JWTAudience        string `yaml:"jwt_audience"`
	TokenEncryptionKey string `yaml:"token_encryption_key"`
}

type RedisConfig struct {
	Addr           string   `yaml:"addr"`
	Password       string   `yaml:"password"`
	DB             int      `yaml:"db"`
	LimitsCacheTTL Duration `yaml:"limits_cache_ttl"`
}

type ProviderConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	PrimaryModel  string `yaml:"primary_model"`
	AnalysisModel string `yaml:"analysis_model"`
}

type LLMConfig struct {
	ProviderOrder []string       `yaml:"provider_order"`
	MaxAttempts   int            `yaml:"max_attempts"`
	CallTimeout   Duration       `yaml:"call_timeout"`
	RetryBackoff  Duration       `yaml:"retry_backoff"`
	Mock          bool           `yaml:"mock"`
	OpenAI        ProviderConfig `yaml:"openai"`
	Anthropic     ProviderConfig `yaml:"anthropic"`
	Gemini        ProviderConfig `yaml:"gemini"`
}

type GenerationConfig struct {
	RequestTimeout Duration `yaml:"request_timeout"`
}

type Config struct {
	Env        string           `yaml:"env"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Redis      RedisConfig      `yaml:"redis"`
	LLM        LLMConfig        `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
}

func defaultConfig() Config {
	return Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{10 * time.Second},
			ShutdownTimeout:   Duration{15 * time.Second},
			MaxRequestBytes:   100 << 10,
			AllowedOrigins:    append([]string(nil), middleware.DefaultAllowedOrigins...),
		},
		Database: DatabaseConfig{
			Driver:      db.DriverPostgres,
			Host:        "localhost",
			Port:        "5432",
			User:        "postgres",
			Name:        "idea2sns",
			SQLitePath:  "idea2sns.db",
			AutoMigrate: true,
		},
		Redis: RedisConfig{LimitsCacheTTL: Duration{60 * time.Second}},
		LLM: LLMConfig{
			ProviderOrder: []string{"openai", "anthropic", "gemini"},
			MaxAttempts:   2,
			CallTimeout:   Duration{20 * time.Second},
			RetryBackoff:  Duration{500 * time.Millisecond},
		},
		Generation: GenerationConfig{RequestTimeout: Duration{90 * time.Second}},
	}
}

// LoadConfig layers defaults, the YAML file, .env and the process environment, in
// that order of precedence, and validates the result for serving.
func LoadConfig() (Config, error) {
	cfg, err := LoadBaseConfig()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadBaseConfig is LoadConfig without serving validation. Database-only commands use it.
func LoadBaseConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()
	if path := configPath(); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configPath() string {
	if p := strings.TrimSpace(os.Getenv("IDEA2SNS_CONFIG")); p != "" {
		return p
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	p := filepath.Join(wd, "config", "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Env, "LOG_MODE")

	setString(&cfg.HTTP.Addr, "HTTP_ADDR")
	setList(&cfg.HTTP.AllowedOrigins, "CORS_ALLOWED_ORIGINS")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Host, "POSTGRES_HOST")
	setString(&cfg.Database.Port, "POSTGRES_PORT")
	setString(&cfg.Database.User, "POSTGRES_USER")
	setString(&cfg.Database.Password, "POSTGRES_PASSWORD")
	setString(&cfg.Database.Name, "POSTGRES_NAME")
	setString(&cfg.Database.SQLitePath, "SQLITE_PATH")

	setString(&cfg.Auth.JWTSecret, "SUPABASE_JWT_SECRET")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.JWTAudience, "JWT_AUDIENCE")
	setString(&cfg.Auth.TokenEncryptionKey, "TOKEN_ENCRYPTION_KEY")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.LLM.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.LLM.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.LLM.Anthropic.BaseURL, "ANTHROPIC_BASE_URL")
	setString(&cfg.LLM.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.LLM.Gemini.BaseURL, "GEMINI_BASE_URL")
	setList(&cfg.LLM.ProviderOrder, "LLM_PROVIDER_ORDER")

	var errs []error
	errs = append(errs,
		setInt64(&cfg.HTTP.MaxRequestBytes, "HTTP_MAX_REQUEST_BYTES"),
		setInt(&cfg.Redis.DB, "REDIS_DB"),
		setInt(&cfg.LLM.MaxAttempts, "LLM_MAX_ATTEMPTS"),
		setBool(&cfg.Database.AutoMigrate, "DB_AUTO_MIGRATE"),
		setBool(&cfg.LLM.Mock, "LLM_MOCK"),
		setDuration(&cfg.HTTP.ReadHeaderTimeout, "HTTP_READ_HEADER_TIMEOUT"),
		setDuration(&cfg.HTTP.ShutdownTimeout, "HTTP_SHUTDOWN_TIMEOUT"),
		setDuration(&cfg.Redis.LimitsCacheTTL, "LIMITS_CACHE_TTL"),
		setDuration(&cfg.LLM.CallTimeout, "LLM_CALL_TIMEOUT"),
		setDuration(&cfg.LLM.RetryBackoff, "LLM_RETRY_BACKOFF"),
		setDuration(&cfg.Generation.RequestTimeout, "GENERATION_REQUEST_TIMEOUT"),
	)
	return errors.Join(errs...)
}

// Development reports whether relaxed local defaults apply.
func (c Config) Development() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "development", "dev", "test", "nop":
		return true
	}
	return false
}

func (c *Config) Validate() error {
	var errs []error
	if !c.LLM.Mock && c.LLM.OpenAI.APIKey == "" && c.LLM.Anthropic.APIKey == "" && c.LLM.Gemini.APIKey == "" {
		errs = append(errs, errors.New("no LLM provider configured: set OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY or LLM_MOCK=true"))
	}
	if c.LLM.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("LLM_MAX_ATTEMPTS must be >= 1, got %d", c.LLM.MaxAttempts))
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" && !c.Development() {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	switch c.Database.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}
	if c.HTTP.MaxRequestBytes <= 0 {
		errs = append(errs, errors.New("HTTP_MAX_REQUEST_BYTES must be positive"))
	}
	if c.Auth.TokenEncryptionKey == "" {
		// Tokens stay readable only while the JWT secret is unchanged.
		c.Auth.TokenEncryptionKey = c.Auth.JWTSecret
	}
	if c.Auth.TokenEncryptionKey == "" && !c.Development() {
		errs = append(errs, errors.New("TOKEN_ENCRYPTION_KEY is required outside development"))
	}
	return errors.Join(errs...)
}

// DSN resolves the connection string for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver == db.DriverSQLite {
		return c.SQLitePath
	}
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func setString(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, name string) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

func setInt(dst *int, name string) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, name string) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, name string) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *Duration, name string) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	d, err := parseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	dst.Duration = d
	return nil
}
