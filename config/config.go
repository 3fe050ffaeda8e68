package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"article2pdf/parser"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigDir = "~/.config/article2pdf"

// DefaultUserAgent is a desktop Chrome user agent string.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Config holds every tunable of a run.
type Config struct {
	UserAgent    string `yaml:"user_agent"`
	MinDimension int    `yaml:"min_dimension"`

	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	EvalTimeout       time.Duration `yaml:"eval_timeout"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`

	ScrollAttempts int           `yaml:"scroll_attempts"`
	ScrollPause    time.Duration `yaml:"scroll_pause"`
	SweepSteps     int           `yaml:"sweep_steps"`
	SweepPause     time.Duration `yaml:"sweep_pause"`

	SliceHeight      int           `yaml:"slice_height"`
	SettlePause      time.Duration `yaml:"settle_pause"`
	ViewportWidth    int           `yaml:"viewport_width"`
	ViewportHeight   int           `yaml:"viewport_height"`
	ContentSelectors []string      `yaml:"content_selectors"`

	JPEGQuality      int           `yaml:"jpeg_quality"`
	FetchConcurrency int           `yaml:"fetch_concurrency"`
	FetchInterval    time.Duration `yaml:"fetch_interval"`
	SendReferer      bool          `yaml:"send_referer"`
	CopyCookies      bool          `yaml:"copy_cookies"`

	ChromePath string `yaml:"chrome_path"`
	Headless   bool   `yaml:"headless"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UserAgent:         DefaultUserAgent,
		MinDimension:      100,
		NavigationTimeout: 30 * time.Second,
		EvalTimeout:       30 * time.Second,
		FetchTimeout:      30 * time.Second,
		ScrollAttempts:    5,
		ScrollPause:       2 * time.Second,
		SweepSteps:        10,
		SweepPause:        500 * time.Millisecond,
		SliceHeight:       1000,
		SettlePause:       500 * time.Millisecond,
		ViewportWidth:     1280,
		ViewportHeight:    1000,
		ContentSelectors:  []string{"#js_content", ".rich_media_content", "article", ".content"},
		JPEGQuality:       90,
		FetchConcurrency:  1,
		SendReferer:       true,
		CopyCookies:       true,
		Headless:          true,
		LogLevel:          "info",
		LogFormat:         "console",
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment. With an empty path the file in the user config
// directory is used when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = defaultConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MinDimension < 1 {
		return fmt.Errorf("min_dimension must be positive: %d", c.MinDimension)
	}
	if c.NavigationTimeout <= 0 || c.EvalTimeout <= 0 || c.FetchTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.ScrollAttempts < 1 {
		return fmt.Errorf("scroll_attempts must be at least 1: %d", c.ScrollAttempts)
	}
	if c.SweepSteps < 1 {
		return fmt.Errorf("sweep_steps must be at least 1: %d", c.SweepSteps)
	}
	if c.SliceHeight < 1 {
		return fmt.Errorf("slice_height must be positive: %d", c.SliceHeight)
	}
	if c.ViewportWidth < 1 || c.ViewportHeight < 1 {
		return fmt.Errorf("invalid viewport %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100: %d", c.JPEGQuality)
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("fetch_concurrency must be at least 1: %d", c.FetchConcurrency)
	}
	if c.FetchInterval < 0 {
		return fmt.Errorf("fetch_interval must not be negative: %s", c.FetchInterval)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}
	return nil
}

// defaultConfigFile returns the config file in the user config directory,
// or "" when there is none.
func defaultConfigFile() string {
	dir, err := parser.ExpandPath(defaultConfigDir)
	if err != nil {
		return ""
	}
	file := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(file); err != nil {
		return ""
	}
	return file
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ARTICLE2PDF_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("ARTICLE2PDF_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("ARTICLE2PDF_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ARTICLE2PDF_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("ARTICLE2PDF_CONTENT_SELECTORS"); v != "" {
		cfg.ContentSelectors = splitList(v)
	}

	ints := map[string]*int{
		"ARTICLE2PDF_MIN_DIMENSION":     &cfg.MinDimension,
		"ARTICLE2PDF_FETCH_CONCURRENCY": &cfg.FetchConcurrency,
		"ARTICLE2PDF_JPEG_QUALITY":      &cfg.JPEGQuality,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"ARTICLE2PDF_NAVIGATION_TIMEOUT": &cfg.NavigationTimeout,
		"ARTICLE2PDF_FETCH_TIMEOUT":      &cfg.FetchTimeout,
		"ARTICLE2PDF_FETCH_INTERVAL":     &cfg.FetchInterval,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv("ARTICLE2PDF_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ARTICLE2PDF_HEADLESS: %w", err)
		}
		cfg.Headless = b
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
