package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/materialerosion/PACK2/internal/coverage"
	"github.com/materialerosion/PACK2/internal/fillrange"
	"github.com/materialerosion/PACK2/internal/series"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > Environment variables > YAML config > Defaults
type Config struct {
	Port                 string
	StandardsFile        string
	MinFillPercent       float64
	MaxFillPercent       float64
	GapThresholds        coverage.Thresholds
	ScalingLimits        series.Limits
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	StandardsFile        string        `yaml:"standards_file"`
	Fill                 yamlFill      `yaml:"fill"`
	Gaps                 yamlGaps      `yaml:"gaps"`
	Scaling              yamlScaling   `yaml:"scaling"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging bool          `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlFill represents the default fill percentage section in YAML.
type yamlFill struct {
	MinPercent float64 `yaml:"min_percent"`
	MaxPercent float64 `yaml:"max_percent"`
}

// yamlGaps represents the gap severity threshold section in YAML.
type yamlGaps struct {
	MinorMaxML    float64 `yaml:"minor_max_ml"`
	ModerateMaxML float64 `yaml:"moderate_max_ml"`
}

// yamlScaling represents the series scaling limit section in YAML.
type yamlScaling struct {
	MinHeightRatio     float64 `yaml:"min_height_ratio"`
	MaxHeightRatio     float64 `yaml:"max_height_ratio"`
	MinTemplateRatio   float64 `yaml:"min_template_ratio"`
	MaxTemplateRatio   float64 `yaml:"max_template_ratio"`
	FineTuneIterations int     `yaml:"fine_tune_iterations"`
	FineTuneTolerance  float64 `yaml:"fine_tune_tolerance"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	StandardsFile  *string
	MinFillPercent *float64
	MaxFillPercent *float64
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables > YAML config > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	applyEnvConfig(&cfg)

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		MinFillPercent:       fillrange.DefaultMinPercent,
		MaxFillPercent:       fillrange.DefaultMaxPercent,
		GapThresholds:        coverage.DefaultThresholds(),
		ScalingLimits:        series.DefaultLimits(),
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.StandardsFile != "" {
		cfg.StandardsFile = yamlCfg.StandardsFile
	}

	if yamlCfg.Fill.MinPercent > 0 {
		cfg.MinFillPercent = yamlCfg.Fill.MinPercent
	}
	if yamlCfg.Fill.MaxPercent > 0 {
		cfg.MaxFillPercent = yamlCfg.Fill.MaxPercent
	}

	if yamlCfg.Gaps.MinorMaxML > 0 {
		cfg.GapThresholds.Minor = yamlCfg.Gaps.MinorMaxML
	}
	if yamlCfg.Gaps.ModerateMaxML > 0 {
		cfg.GapThresholds.Moderate = yamlCfg.Gaps.ModerateMaxML
	}

	if yamlCfg.Scaling.MinHeightRatio > 0 {
		cfg.ScalingLimits.MinHeightRatio = yamlCfg.Scaling.MinHeightRatio
	}
	if yamlCfg.Scaling.MaxHeightRatio > 0 {
		cfg.ScalingLimits.MaxHeightRatio = yamlCfg.Scaling.MaxHeightRatio
	}
	if yamlCfg.Scaling.MinTemplateRatio > 0 {
		cfg.ScalingLimits.MinTemplateRatio = yamlCfg.Scaling.MinTemplateRatio
	}
	if yamlCfg.Scaling.MaxTemplateRatio > 0 {
		cfg.ScalingLimits.MaxTemplateRatio = yamlCfg.Scaling.MaxTemplateRatio
	}
	if yamlCfg.Scaling.FineTuneIterations > 0 {
		cfg.ScalingLimits.FineTuneIterations = yamlCfg.Scaling.FineTuneIterations
	}
	if yamlCfg.Scaling.FineTuneTolerance > 0 {
		cfg.ScalingLimits.FineTuneTolerance = yamlCfg.Scaling.FineTuneTolerance
	}

	if yamlCfg.ShutdownGracePeriod != "" {
		if d, err := time.ParseDuration(yamlCfg.ShutdownGracePeriod); err == nil {
			cfg.ShutdownGracePeriod = d
		}
	}

	if yamlCfg.ReadHeaderTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.ReadHeaderTimeout); err == nil {
			cfg.ReadHeaderTimeout = d
		}
	}

	if yamlCfg.WriteTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.WriteTimeout); err == nil {
			cfg.WriteTimeout = d
		}
	}

	if yamlCfg.IdleTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.IdleTimeout); err == nil {
			cfg.IdleTimeout = d
		}
	}

	cfg.EnableRequestLogging = yamlCfg.EnableRequestLogging

	if yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = yamlCfg.RateLimit.Burst
	}
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if path := strings.TrimSpace(os.Getenv("STANDARDS_FILE")); path != "" {
		cfg.StandardsFile = path
	}

	if raw := strings.TrimSpace(os.Getenv("FILL_MIN_PERCENT")); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 {
			cfg.MinFillPercent = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("FILL_MAX_PERCENT")); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 {
			cfg.MaxFillPercent = value
		}
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.StandardsFile != nil && *overrides.StandardsFile != "" {
		cfg.StandardsFile = *overrides.StandardsFile
	}

	if overrides.MinFillPercent != nil && *overrides.MinFillPercent > 0 {
		cfg.MinFillPercent = *overrides.MinFillPercent
	}

	if overrides.MaxFillPercent != nil && *overrides.MaxFillPercent > 0 {
		cfg.MaxFillPercent = *overrides.MaxFillPercent
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.MinFillPercent <= 0 || cfg.MaxFillPercent <= 0 {
		return fmt.Errorf("fill percentages must be positive")
	}
	if cfg.MinFillPercent > cfg.MaxFillPercent {
		return fmt.Errorf("minimum fill percentage must not exceed the maximum")
	}
	if cfg.MaxFillPercent > 100 {
		return fmt.Errorf("maximum fill percentage must not exceed 100")
	}
	if cfg.GapThresholds.Minor >= cfg.GapThresholds.Moderate {
		return fmt.Errorf("minor gap threshold must be below the moderate threshold")
	}
	if cfg.ScalingLimits.MinHeightRatio >= cfg.ScalingLimits.MaxHeightRatio {
		return fmt.Errorf("scaling height ratio band is empty")
	}
	return nil
}
