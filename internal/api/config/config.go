package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort       = ":8081"
	DefaultConfigPath = "config.yaml"
	DefaultLLMTimeout = 30 * time.Second
)

type Config struct {
	Port       string `yaml:"port"`
	Env        string `yaml:"app_env"`
	LogLevel   string `yaml:"log_level"`
	ConfigPath string `yaml:"-"`

	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
	DBMigrate   bool   `yaml:"db_migrate"`

	LLM    LLMConfig    `yaml:"llm"`
	Report ReportConfig `yaml:"report"`
}

type LLMConfig struct {
	GeminiAPIKey         string        `yaml:"gemini_api_key"`
	GeminiModel          string        `yaml:"gemini_model"`
	GeminiEmbeddingModel string        `yaml:"gemini_embedding_model"`
	GroqAPIKey           string        `yaml:"groq_api_key"`
	GroqModel            string        `yaml:"groq_model"`
	AnthropicAPIKey      string        `yaml:"anthropic_api_key"`
	AnthropicModel       string        `yaml:"anthropic_model"`
	SecondaryProvider    string        `yaml:"secondary_provider"`
	Timeout              time.Duration `yaml:"timeout"`
	RPS                  float64       `yaml:"rps"`
	Burst                int           `yaml:"burst"`
}

// ReportConfig points the report archive at an S3-compatible bucket or a
// local directory. S3 wins when both are set.
type ReportConfig struct {
	Dir       string `yaml:"dir"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// CanUseS3 reports whether the archive has everything minio needs.
func (r ReportConfig) CanUseS3() bool {
	return strings.TrimSpace(r.Endpoint) != "" &&
		strings.TrimSpace(r.AccessKey) != "" &&
		strings.TrimSpace(r.SecretKey) != "" &&
		strings.TrimSpace(r.Bucket) != ""
}

// StoreKind names the feedback/policy backend the config selects.
func (c *Config) StoreKind() string {
	switch {
	case strings.TrimSpace(c.DatabaseURL) != "":
		return "postgres"
	case strings.TrimSpace(c.SQLitePath) != "":
		return "sqlite"
	}
	return "memory"
}

// Load reads .env, the optional YAML file, environment overrides and the
// -port flag, in that order of increasing precedence.
func Load() (*Config, error) {
	return load(os.Args[1:])
}

// LoadWithArgs is Load with explicit flag arguments. Tools with their own
// flag parsing pass nil.
func LoadWithArgs(args []string) (*Config, error) {
	return load(args)
}

func load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{ConfigPath: firstNonEmpty(strings.TrimSpace(os.Getenv("CONFIG_PATH")), DefaultConfigPath)}
	if data, err := os.ReadFile(cfg.ConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", cfg.ConfigPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", cfg.ConfigPath, err)
	}

	envOverride(&cfg.Env, "APP_ENV")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.DatabaseURL, "DATABASE_URL")
	envOverride(&cfg.SQLitePath, "SQLITE_PATH")
	if err := envOverrideBool(&cfg.DBMigrate, "DB_MIGRATE"); err != nil {
		return nil, err
	}

	envOverride(&cfg.LLM.GeminiAPIKey, "GOOGLE_API_KEY")
	envOverride(&cfg.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	envOverride(&cfg.LLM.GeminiModel, "GEMINI_MODEL")
	envOverride(&cfg.LLM.GeminiEmbeddingModel, "GEMINI_EMBEDDING_MODEL")
	envOverride(&cfg.LLM.GroqAPIKey, "GROQ_API_KEY")
	envOverride(&cfg.LLM.GroqModel, "GROQ_MODEL")
	envOverride(&cfg.LLM.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLM.AnthropicModel, "ANTHROPIC_MODEL")
	envOverride(&cfg.LLM.SecondaryProvider, "SECONDARY_PROVIDER")
	if raw := strings.TrimSpace(os.Getenv("LLM_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("LLM_TIMEOUT: %w", err)
		}
		cfg.LLM.Timeout = d
	}
	if raw := strings.TrimSpace(os.Getenv("LLM_RPS")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("LLM_RPS: %w", err)
		}
		cfg.LLM.RPS = v
	}
	if raw := strings.TrimSpace(os.Getenv("LLM_BURST")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("LLM_BURST: %w", err)
		}
		cfg.LLM.Burst = v
	}

	envOverride(&cfg.Report.Dir, "REPORT_DIR")
	envOverride(&cfg.Report.Endpoint, "REPORT_S3_ENDPOINT")
	envOverride(&cfg.Report.Region, "REPORT_S3_REGION")
	envOverride(&cfg.Report.AccessKey, "REPORT_S3_ACCESS_KEY")
	envOverride(&cfg.Report.SecretKey, "REPORT_S3_SECRET_KEY")
	envOverride(&cfg.Report.Bucket, "REPORT_S3_BUCKET")
	envOverride(&cfg.Report.Prefix, "REPORT_S3_PREFIX")
	if err := envOverrideBool(&cfg.Report.UseSSL, "REPORT_S3_USE_SSL"); err != nil {
		return nil, err
	}

	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		cfg.Port = envPort
	}
	fs := flag.NewFlagSet("policyinsight", flag.ContinueOnError)
	port := fs.String("port", "", "server port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *port != "" {
		cfg.Port = *port
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.Port = normalizePort(cfg.Port)
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "local"
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = DefaultLLMTimeout
	}
	if cfg.LLM.RPS > 0 && cfg.LLM.Burst <= 0 {
		cfg.LLM.Burst = 1
	}
	cfg.LLM.SecondaryProvider = strings.ToLower(strings.TrimSpace(cfg.LLM.SecondaryProvider))
	if cfg.LLM.SecondaryProvider == "" {
		cfg.LLM.SecondaryProvider = "groq"
	}
	if strings.TrimSpace(cfg.Report.Region) == "" {
		cfg.Report.Region = "us-east-1"
	}
}

func normalizePort(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return DefaultPort
	}
	if strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

func envOverride(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envOverrideBool(dst *bool, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
