package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the triage engine.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	ZeroShot  ZeroShotConfig  `yaml:"zeroShot"`
	Stores    StoresConfig    `yaml:"stores"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Logging   LoggingConfig   `yaml:"logging"`
	Cache     CacheConfig     `yaml:"cache"`
}

// ServerConfig controls the HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// ZeroShotConfig configures access to the hosted zero-shot classification model.
type ZeroShotConfig struct {
	BaseURL  string        `yaml:"baseURL"`
	Path     string        `yaml:"path"`
	APIToken string        `yaml:"apiToken"`
	Timeout  time.Duration `yaml:"timeout"`
}

// StoresConfig locates the append-only CSV stores and the evaluation dataset.
type StoresConfig struct {
	FeedbackPath    string `yaml:"feedbackPath"`
	InteractionPath string `yaml:"interactionPath"`
	DatasetPath     string `yaml:"datasetPath"`
	ResultsPath     string `yaml:"resultsPath"`
}

// KnowledgeConfig controls loading of the optional knowledge pack override.
type KnowledgeConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CacheConfig controls Valkey-backed caching of zero-shot distributions.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	ClassifyTTL  time.Duration `yaml:"classifyTTL"`
	TLS          bool          `yaml:"tls"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TRIAGE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8085",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		ZeroShot: ZeroShotConfig{
			Path:    "/models/facebook/bart-large-mnli",
			Timeout: 30 * time.Second,
		},
		Stores: StoresConfig{
			FeedbackPath:    "feedback_chat.csv",
			InteractionPath: "log_chat.csv",
			DatasetPath:     "incidencias.csv",
			ResultsPath:     "resultados_evaluacion.csv",
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Cache: CacheConfig{
			Enabled:      false,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			ClassifyTTL:  10 * time.Minute,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRIAGE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("TRIAGE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("TRIAGE_ZEROSHOT_BASE_URL"); v != "" {
		cfg.ZeroShot.BaseURL = v
	}
	if v := os.Getenv("TRIAGE_ZEROSHOT_PATH"); v != "" {
		cfg.ZeroShot.Path = v
	}
	if v := os.Getenv("TRIAGE_ZEROSHOT_TOKEN"); v != "" {
		cfg.ZeroShot.APIToken = v
	}
	if v := os.Getenv("TRIAGE_ZEROSHOT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ZeroShot.Timeout = d
		}
	}
	if v := os.Getenv("TRIAGE_FEEDBACK_PATH"); v != "" {
		cfg.Stores.FeedbackPath = v
	}
	if v := os.Getenv("TRIAGE_INTERACTION_PATH"); v != "" {
		cfg.Stores.InteractionPath = v
	}
	if v := os.Getenv("TRIAGE_DATASET_PATH"); v != "" {
		cfg.Stores.DatasetPath = v
	}
	if v := os.Getenv("TRIAGE_RESULTS_PATH"); v != "" {
		cfg.Stores.ResultsPath = v
	}
	if v := os.Getenv("TRIAGE_KNOWLEDGE_PATH"); v != "" {
		cfg.Knowledge.Path = v
	}
	if v := os.Getenv("TRIAGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRIAGE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("TRIAGE_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("TRIAGE_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("TRIAGE_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("TRIAGE_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("TRIAGE_CACHE_TLS"); strings.EqualFold(v, "true") || v == "1" {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("TRIAGE_CACHE_CLASSIFY_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.ClassifyTTL = d
		}
	}
}
