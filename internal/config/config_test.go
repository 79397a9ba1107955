package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MinFillPercent != 65 || cfg.MaxFillPercent != 85 {
		t.Errorf("expected default fill percents 65/85, got %f/%f", cfg.MinFillPercent, cfg.MaxFillPercent)
	}
	if cfg.GapThresholds.Minor != 20 || cfg.GapThresholds.Moderate != 50 {
		t.Errorf("unexpected gap thresholds: %+v", cfg.GapThresholds)
	}
	if cfg.ScalingLimits.FineTuneIterations != 15 {
		t.Errorf("unexpected scaling limits: %+v", cfg.ScalingLimits)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Errorf("expected 10s shutdown grace period, got %v", cfg.ShutdownGracePeriod)
	}
	if cfg.RateLimitRPS != 25 || cfg.RateLimitBurst != 50 {
		t.Errorf("unexpected rate limit defaults: %f/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := writeConfigFile(t, `
port: "9090"
standards_file: /etc/pack2/standards.yaml
fill:
  min_percent: 60
  max_percent: 90
gaps:
  minor_max_ml: 10
  moderate_max_ml: 40
scaling:
  max_height_ratio: 2.5
shutdown_grace_period: 30s
enable_request_logging: true
rate_limit:
  rps: 100
  burst: 200
`)

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.StandardsFile != "/etc/pack2/standards.yaml" {
		t.Errorf("unexpected standards file: %s", cfg.StandardsFile)
	}
	if cfg.MinFillPercent != 60 || cfg.MaxFillPercent != 90 {
		t.Errorf("expected fill percents 60/90, got %f/%f", cfg.MinFillPercent, cfg.MaxFillPercent)
	}
	if cfg.GapThresholds.Minor != 10 || cfg.GapThresholds.Moderate != 40 {
		t.Errorf("unexpected gap thresholds: %+v", cfg.GapThresholds)
	}
	if cfg.ScalingLimits.MaxHeightRatio != 2.5 {
		t.Errorf("expected max height ratio 2.5, got %f", cfg.ScalingLimits.MaxHeightRatio)
	}
	// Unset scaling fields keep their defaults.
	if cfg.ScalingLimits.MinHeightRatio != 1.2 {
		t.Errorf("expected default min height ratio, got %f", cfg.ScalingLimits.MinHeightRatio)
	}
	if cfg.ShutdownGracePeriod != 30*time.Second {
		t.Errorf("expected 30s shutdown grace period, got %v", cfg.ShutdownGracePeriod)
	}
	if cfg.RateLimitRPS != 100 || cfg.RateLimitBurst != 200 {
		t.Errorf("unexpected rate limits: %f/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	if _, err := Load(&CLIOverrides{ConfigFile: "/no/such/config.yaml"}); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadMalformedConfigFile(t *testing.T) {
	path := writeConfigFile(t, "port: [not, a, string")
	if _, err := Load(&CLIOverrides{ConfigFile: path}); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("FILL_MIN_PERCENT", "55")
	t.Setenv("FILL_MAX_PERCENT", "95")
	t.Setenv("RATE_LIMIT_RPS", "10")
	t.Setenv("RATE_LIMIT_BURST", "20")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("expected port 3000, got %s", cfg.Port)
	}
	if cfg.MinFillPercent != 55 || cfg.MaxFillPercent != 95 {
		t.Errorf("expected fill percents 55/95, got %f/%f", cfg.MinFillPercent, cfg.MaxFillPercent)
	}
	if cfg.RateLimitRPS != 10 || cfg.RateLimitBurst != 20 {
		t.Errorf("unexpected rate limits: %f/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("FILL_MIN_PERCENT", "not-a-number")
	t.Setenv("FILL_MAX_PERCENT", "-10")
	t.Setenv("RATE_LIMIT_BURST", "2.5")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MinFillPercent != 65 || cfg.MaxFillPercent != 85 {
		t.Errorf("expected defaults to survive invalid env values, got %f/%f", cfg.MinFillPercent, cfg.MaxFillPercent)
	}
	if cfg.RateLimitBurst != 50 {
		t.Errorf("expected default burst, got %d", cfg.RateLimitBurst)
	}
}

func TestCLIOverridesEverything(t *testing.T) {
	t.Setenv("PORT", "3000")

	path := writeConfigFile(t, `
port: "9090"
fill:
  min_percent: 60
rate_limit:
  rps: 100
  burst: 200
`)

	port := "4000"
	minFill := 70.0
	rps := 5.0
	cfg, err := Load(&CLIOverrides{
		ConfigFile:     path,
		Port:           &port,
		MinFillPercent: &minFill,
		RateLimitRPS:   &rps,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "4000" {
		t.Errorf("expected CLI port 4000 to win, got %s", cfg.Port)
	}
	if cfg.MinFillPercent != 70 {
		t.Errorf("expected CLI min fill 70 to win, got %f", cfg.MinFillPercent)
	}
	if cfg.RateLimitRPS != 5 {
		t.Errorf("expected CLI rps 5 to win, got %f", cfg.RateLimitRPS)
	}
	// Untouched values fall through to the YAML layer.
	if cfg.RateLimitBurst != 200 {
		t.Errorf("expected YAML burst 200, got %d", cfg.RateLimitBurst)
	}
}

func TestEnvBeatsYAML(t *testing.T) {
	t.Setenv("PORT", "3000")
	path := writeConfigFile(t, `port: "9090"`)

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("expected env port 3000 to beat YAML, got %s", cfg.Port)
	}
}

func TestValidateConfig(t *testing.T) {
	base := defaultConfig()

	tests := map[string]func(*Config){
		"NonPositiveMinFill":    func(c *Config) { c.MinFillPercent = 0 },
		"MinAboveMax":           func(c *Config) { c.MinFillPercent = 90; c.MaxFillPercent = 80 },
		"MaxAbove100":           func(c *Config) { c.MaxFillPercent = 120 },
		"GapThresholdsInverted": func(c *Config) { c.GapThresholds.Minor = 60; c.GapThresholds.Moderate = 50 },
		"EmptyHeightRatioBand":  func(c *Config) { c.ScalingLimits.MinHeightRatio = 3; c.ScalingLimits.MaxHeightRatio = 3 },
	}

	for name, mutate := range tests {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			if err := validateConfig(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	if err := validateConfig(base); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}
