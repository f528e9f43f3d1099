package config

import (
	"errors"
	"fmt"
	"jobtracker-backend/internal/collector"
	"jobtracker-backend/internal/filter"
	"jobtracker-backend/internal/notify"
	"jobtracker-backend/internal/sources"
	"jobtracker-backend/internal/store"
	"jobtracker-backend/lib/configutil"
	"jobtracker-backend/lib/telemetry"
	"jobtracker-backend/lib/textutil"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
)

const (
	DefaultPath     = "config.json5"
	DefaultSchedule = "0 12,18 * * *"
)

type FilterConfig struct {
	// defaults to true when omitted
	Enabled    *bool    `json:"enabled"`
	LevelLabel string   `json:"level_label"`
	Keywords   []string `json:"keywords"`
}

type RetryConfig struct {
	MaxAttempts int     `json:"max_attempts"`
	BackoffBase float64 `json:"backoff_base"`
}

type HTTPConfig struct {
	TimeoutSeconds   int    `json:"timeout_seconds"`
	DumpDir          string `json:"dump_dir"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
}

type ReportConfig struct {
	Path string `json:"path"`
}

type ScheduleConfig struct {
	Spec string `json:"spec"`
}

type Config struct {
	Companies        []sources.Target      `json:"companies"`
	ExperienceFilter FilterConfig          `json:"experience_filter"`
	SkipFilter       map[string]bool       `json:"skip_filter"`
	Wanted           sources.WantedConfig  `json:"wanted"`
	Saramin          sources.SaraminConfig `json:"saramin"`
	Render           sources.RenderConfig  `json:"render"`
	Retry            RetryConfig           `json:"retry"`
	Concurrency      int                   `json:"concurrency"`
	HTTP             HTTPConfig            `json:"http"`
	Store            store.Config          `json:"store"`
	Report           ReportConfig          `json:"report"`
	Email            notify.Config         `json:"email"`
	Schedule         ScheduleConfig        `json:"schedule"`
	Telemetry        telemetry.Config      `json:"telemetry"`
}

func Default() Config {
	enabled := true
	retrier := sources.DefaultRetrier()
	return Config{
		ExperienceFilter: FilterConfig{
			Enabled:    &enabled,
			LevelLabel: filter.DefaultLevelLabel,
			Keywords:   append([]string(nil), filter.DefaultKeywords...),
		},
		Wanted:  sources.DefaultWantedConfig(),
		Saramin: sources.DefaultSaraminConfig(),
		Render:  sources.DefaultRenderConfig(),
		Retry: RetryConfig{
			MaxAttempts: retrier.MaxAttempts,
			BackoffBase: retrier.BackoffBase,
		},
		Concurrency: 1,
		HTTP:        HTTPConfig{TimeoutSeconds: 30},
		Store:       store.DefaultConfig(),
		Report:      ReportConfig{Path: "JOB_TRACKER.md"},
		Email:       notify.DefaultConfig(),
		Schedule:    ScheduleConfig{Spec: DefaultSchedule},
	}
}

// Filter is the experience filter every source partition goes through.
func (c Config) Filter() *filter.Config {
	enabled := true
	if c.ExperienceFilter.Enabled != nil {
		enabled = *c.ExperienceFilter.Enabled
	}
	return &filter.Config{
		Enabled:    enabled,
		LevelLabel: c.ExperienceFilter.LevelLabel,
		Keywords:   c.ExperienceFilter.Keywords,
	}
}

func (c Config) Retrier() sources.Retrier {
	return sources.Retrier{
		MaxAttempts: c.Retry.MaxAttempts,
		BackoffBase: c.Retry.BackoffBase,
		Sleep:       sources.SleepContext,
	}
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

func (c Config) CollectorOptions() collector.Options {
	return collector.Options{
		Filter:      c.Filter(),
		SkipFilter:  c.SkipFilter,
		Retrier:     c.Retrier(),
		Concurrency: c.Concurrency,
	}
}

// targets keeps the companies that name both a company and a source.
func targets(companies []sources.Target) []sources.Target {
	out := make([]sources.Target, 0, len(companies))
	for i, t := range companies {
		t.Name = strings.TrimSpace(t.Name)
		t.Source = textutil.NormalizeKey(t.Source)
		if t.Name == "" || t.Source == "" {
			slog.Warn("dropping company entry without name or source", "index", i, "name", t.Name, "source", t.Source)
			continue
		}
		out = append(out, t)
	}
	return out
}

func applyDefaults(c *Config) error {
	skip := collector.DefaultSkipFilter()
	for key, value := range c.SkipFilter {
		skip[textutil.NormalizeKey(key)] = value
	}

	// without dereferencing, an explicit false is not treated as unset
	err := mergo.Merge(c, Default(), mergo.WithoutDereference)
	if err != nil {
		return err
	}
	c.SkipFilter = skip
	return nil
}

func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	if value, ok := lookup("ENABLE_EMAIL"); ok {
		c.Email.Enabled = strings.EqualFold(strings.TrimSpace(value), "true")
	}
	if value, ok := lookup("SMTP_PORT"); ok && value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.Email.Port = port
	}
	for name, field := range map[string]*string{
		"SMTP_HOST": &c.Email.Host,
		"SMTP_USER": &c.Email.Username,
		"SMTP_PASS": &c.Email.Password,
		"MAIL_FROM": &c.Email.From,
		"MAIL_TO":   &c.Email.To,
	} {
		if value, ok := lookup(name); ok && value != "" {
			*field = value
		}
	}
	return nil
}

// Load reads `path` and its local override, fills defaults and applies the
// mail settings found in the environment. a missing file yields the
// defaults without any company.
func Load(path string) (Config, error) {
	c, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, err
	}

	c.Companies = targets(c.Companies)
	err = applyDefaults(&c)
	if err != nil {
		return Config{}, err
	}
	err = applyEnv(&c, os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	slog.Info(
		"loaded config",
		"path", path,
		"companies", len(c.Companies),
		"filter_enabled", c.Filter().Enabled,
		"keywords", len(c.ExperienceFilter.Keywords),
	)
	return c, nil
}
