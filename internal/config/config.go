package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
)

const (
	OCRProviderNone        = "none"
	OCRProviderRekognition = "rekognition"
)

type Config struct {
	// Server
	Port           int    `envconfig:"PORT" default:"3000"`
	Environment    string `envconfig:"ENV" default:"development"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	MaxUploadBytes int    `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	// Database (persistence disabled when empty)
	DatabaseURL string `envconfig:"DATABASE_URL"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	// Heuristic thresholds
	BlurVarianceThreshold    float64 `envconfig:"BLUR_VARIANCE_THRESHOLD" default:"50"`
	CropEdgeDensityThreshold float64 `envconfig:"CROP_EDGE_DENSITY_THRESHOLD" default:"10"`
	MotionSizeThresholdBytes int64   `envconfig:"MOTION_SIZE_THRESHOLD_BYTES" default:"102400"`

	// Pipeline
	AnalysisDelay        time.Duration `envconfig:"ANALYSIS_DELAY" default:"1s"`
	LivenessProbeTimeout time.Duration `envconfig:"LIVENESS_PROBE_TIMEOUT" default:"5s"`
	CountryRulesFile     string        `envconfig:"COUNTRY_RULES_FILE"`

	// OCR provider
	OCRProvider string `envconfig:"OCR_PROVIDER" default:"none"`
	AWSRegion   string `envconfig:"AWS_REGION" default:"us-east-1"`
	// OCR output is cached in cache_entries when persistence is enabled
	OCRCacheTTL time.Duration `envconfig:"OCR_CACHE_TTL" default:"24h"`

	// Background stats and retention
	StatsInterval   time.Duration `envconfig:"STATS_INTERVAL" default:"1m"`
	RetentionPeriod time.Duration `envconfig:"RETENTION_PERIOD" default:"0"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.OCRProvider = strings.ToLower(strings.TrimSpace(c.OCRProvider))
	switch c.OCRProvider {
	case "", OCRProviderNone:
		c.OCRProvider = OCRProviderNone
	case OCRProviderRekognition:
	default:
		return fmt.Errorf("unknown OCR_PROVIDER %q (use: none, rekognition)", c.OCRProvider)
	}

	if c.LogLevel != "" {
		if _, ok := parseLevel(c.LogLevel); !ok {
			return fmt.Errorf("unknown LOG_LEVEL %q (use: debug, info, warn, error)", c.LogLevel)
		}
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.AnalysisDelay < 0 {
		return fmt.Errorf("ANALYSIS_DELAY must not be negative")
	}
	return nil
}

// Thresholds returns the heuristic thresholds used by the engine
func (c *Config) Thresholds() domain.Thresholds {
	return domain.Thresholds{
		BlurVarianceThreshold:    c.BlurVarianceThreshold,
		CropEdgeDensityThreshold: c.CropEdgeDensityThreshold,
		MotionSizeThresholdBytes: c.MotionSizeThresholdBytes,
	}
}

// PersistenceEnabled reports whether a database is configured
func (c *Config) PersistenceEnabled() bool {
	return c.DatabaseURL != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
