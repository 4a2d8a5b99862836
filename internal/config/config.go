// Package config loads and validates scraper configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/JakeFAU/mission-scraper/internal/logging"
)

// ErrInputNotFound is returned when the input table does not exist.
var ErrInputNotFound = errors.New("CSV not found")

// DefaultUserAgent identifies the scraper to the encyclopedia.
const DefaultUserAgent = "MissionScraper/1.3.1 (research use; contact if needed)"

// Config captures all knobs loaded via Viper.
type Config struct {
	Input   string        `mapstructure:"input"`
	Output  string        `mapstructure:"output"`
	Run     RunConfig     `mapstructure:"run"`
	Wiki    WikiConfig    `mapstructure:"wiki"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Search  SearchConfig  `mapstructure:"search"`
	Infobox InfoboxConfig `mapstructure:"infobox"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// RunConfig governs row selection and pacing.
type RunConfig struct {
	Force        bool     `mapstructure:"force"`
	SleepSeconds float64  `mapstructure:"sleep_seconds"`
	Only         []string `mapstructure:"only"`
}

// WikiConfig points at the encyclopedia.
type WikiConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIURL  string `mapstructure:"api_url"`
}

// HTTPConfig configures outbound requests.
type HTTPConfig struct {
	UserAgent      string  `mapstructure:"user_agent"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MinBodyBytes   int     `mapstructure:"min_body_bytes"`
	MaxRPS         float64 `mapstructure:"max_rps"`
}

// SearchConfig tunes the title-search fallback.
type SearchConfig struct {
	Limit     int      `mapstructure:"limit"`
	Blocklist []string `mapstructure:"blocklist"`
}

// InfoboxConfig tunes infobox extraction.
type InfoboxConfig struct {
	MaxRows          int      `mapstructure:"max_rows"`
	FacilityKeywords []string `mapstructure:"facility_keywords"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"csv":          "input",
	"out":          "output",
	"force":        "run.force",
	"sleep":        "run.sleep_seconds",
	"only":         "run.only",
	"metrics-file": "metrics.textfile",
	"log-dev":      "logging.development",
}

// Load builds a Config from an optional file, the environment and flags.
// flags may be nil. The input path is not checked here; see Validate.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MISSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	// Flags and the environment give run.only as one comma separated string.
	if raw, ok := v.Get("run.only").(string); ok {
		v.Set("run.only", splitList(raw))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validateClient(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// splitList splits on commas only; quotes carry no meaning.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return strings.Split(raw, ",")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input", "")
	v.SetDefault("output", "")
	v.SetDefault("run.force", false)
	v.SetDefault("run.sleep_seconds", 1.0)
	v.SetDefault("run.only", []string{})
	v.SetDefault("wiki.base_url", "https://en.wikipedia.org/wiki/")
	v.SetDefault("wiki.api_url", "https://en.wikipedia.org/w/api.php")
	v.SetDefault("http.user_agent", DefaultUserAgent)
	v.SetDefault("http.timeout_seconds", 20)
	v.SetDefault("http.min_body_bytes", 2000)
	v.SetDefault("http.max_rps", 0)
	v.SetDefault("search.limit", 10)
	v.SetDefault("search.blocklist", []string{"t2", "synchronous optical", "list of", "fictional", "ulf merbold"})
	v.SetDefault("infobox.max_rows", 60)
	v.SetDefault("infobox.facility_keywords", []string{
		"Cosmodrome", "Kennedy", "Canaveral", "Baikonur", "Jiuquan", "Tanegashima", "Xichang",
	})
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.development", logging.DevelopmentDefault())
}

// Validate enforces everything a scrape run needs, including an existing
// input table.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return fmt.Errorf("input must be set (--csv)")
	}
	if _, err := os.Stat(c.Input); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, c.Input)
		}
		return fmt.Errorf("stat input: %w", err)
	}
	return c.validateClient()
}

// validateClient checks the knobs shared by every command that talks to the
// encyclopedia.
func (c Config) validateClient() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MinBodyBytes < 0 {
		return fmt.Errorf("http.min_body_bytes must be >= 0")
	}
	if c.HTTP.MaxRPS < 0 {
		return fmt.Errorf("http.max_rps must be >= 0")
	}
	if c.Run.SleepSeconds < 0 {
		return fmt.Errorf("run.sleep_seconds must be >= 0")
	}
	if c.Search.Limit <= 0 {
		return fmt.Errorf("search.limit must be > 0")
	}
	if c.Infobox.MaxRows <= 0 {
		return fmt.Errorf("infobox.max_rows must be > 0")
	}
	if err := absoluteURL("wiki.base_url", c.Wiki.BaseURL); err != nil {
		return err
	}
	return absoluteURL("wiki.api_url", c.Wiki.APIURL)
}

func absoluteURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
	}
	return nil
}

// OutputPath is where the table is written; it defaults to the input path.
func (c Config) OutputPath() string {
	if strings.TrimSpace(c.Output) != "" {
		return c.Output
	}
	return c.Input
}

// Sleep converts the configured per-row delay into a duration.
func (c Config) Sleep() time.Duration {
	return time.Duration(c.Run.SleepSeconds * float64(time.Second))
}

// Timeout converts the HTTP timeout into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
