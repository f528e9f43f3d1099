package config

import (
	"jobtracker-backend/internal/sources"
	"jobtracker-backend/internal/store"
	"jobtracker-backend/lib/telemetry"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func clearMailEnv(t *testing.T) {
	for _, name := range []string{"ENABLE_EMAIL", "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "MAIL_FROM", "MAIL_TO"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	telemetry.SetupForTesting(t)
	clearMailEnv(t)

	c, err := Load(filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)
	require.Empty(t, c.Companies)
	require.True(t, c.Filter().Enabled)
	require.Equal(t, "5-7년", c.Filter().LevelLabel)
	require.Equal(t, []string{"5년", "6년", "7년", "5~7"}, c.Filter().Keywords)
	require.Equal(t, map[string]bool{"mock": true}, c.SkipFilter)
	require.Equal(t, 3, c.Retrier().MaxAttempts)
	require.Equal(t, 2.0, c.Retrier().BackoffBase)
	require.Equal(t, 30*time.Second, c.HTTPTimeout())
	require.Equal(t, store.BackendFile, c.Store.Backend)
	require.Equal(t, store.DefaultPath, c.Store.Path)
	require.Equal(t, 587, c.Email.Port)
	require.False(t, c.Email.Enabled)
	require.Equal(t, DefaultSchedule, c.Schedule.Spec)
	require.Equal(t, 1, c.Concurrency)
}

func TestLoadCompaniesAndOverrides(t *testing.T) {
	telemetry.SetupForTesting(t)
	clearMailEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	writeFile(t, path, `{
		// companies to track
		companies: [
			{name: "TestCo", source: " MOCK ", url: "https://x.com"},
			{name: "Acme", source: "career", url: "https://acme.example.com/jobs", selectors: {job_list: "li.job", title: "self"}},
			{name: "", source: "career"},
			{name: "Nowhere"},
		],
		experience_filter: {enabled: false, keywords: ["Senior"]},
		skip_filter: {Career: true},
		retry: {max_attempts: 5},
		concurrency: 4,
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{
		store: {backend: "sql", db: {driver: "sqlite", file: "data/jobs.db"}},
	}`)

	c, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, []sources.Target{
		{Name: "TestCo", Source: "mock", URL: "https://x.com"},
		{
			Name:      "Acme",
			Source:    "career",
			URL:       "https://acme.example.com/jobs",
			Selectors: map[string]string{"job_list": "li.job", "title": "self"},
		},
	}, c.Companies)

	f := c.Filter()
	require.False(t, f.Enabled)
	require.Equal(t, []string{"Senior"}, f.Keywords)
	require.Equal(t, "5-7년", f.LevelLabel)

	require.Equal(t, map[string]bool{"mock": true, "career": true}, c.SkipFilter)
	require.Equal(t, 5, c.Retry.MaxAttempts)
	require.Equal(t, 2.0, c.Retry.BackoffBase)
	require.Equal(t, 4, c.CollectorOptions().Concurrency)

	require.Equal(t, store.BackendSQL, c.Store.Backend)
	require.Equal(t, "data/jobs.db", c.Store.DB.File)
}

func TestLoadMockFilterOptIn(t *testing.T) {
	telemetry.SetupForTesting(t)
	clearMailEnv(t)

	path := filepath.Join(t.TempDir(), "config.json5")
	writeFile(t, path, `{skip_filter: {mock: false}}`)

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"mock": false}, c.SkipFilter)
}

func TestLoadMailEnv(t *testing.T) {
	telemetry.SetupForTesting(t)
	clearMailEnv(t)

	path := filepath.Join(t.TempDir(), "config.json5")
	writeFile(t, path, `{email: {host: "smtp.config.example.com", from: "config@example.com"}}`)

	t.Setenv("ENABLE_EMAIL", "TRUE")
	t.Setenv("SMTP_HOST", "smtp.env.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_USER", "bot")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("MAIL_TO", "a@example.com,b@example.com")

	c, err := Load(path)
	require.NoError(t, err)
	require.True(t, c.Email.Enabled)
	require.Equal(t, "smtp.env.example.com", c.Email.Host)
	require.Equal(t, 2525, c.Email.Port)
	require.Equal(t, "bot", c.Email.Username)
	require.Equal(t, "secret", c.Email.Password)
	require.Equal(t, "config@example.com", c.Email.From)
	require.Equal(t, "a@example.com,b@example.com", c.Email.To)
	require.Empty(t, c.Email.Missing())

	t.Setenv("SMTP_PORT", "not-a-port")
	_, err = Load(path)
	require.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	telemetry.SetupForTesting(t)

	path := filepath.Join(t.TempDir(), "config.json5")
	writeFile(t, path, `{companies: [`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestExampleConfig(t *testing.T) {
	telemetry.SetupForTesting(t)
	clearMailEnv(t)

	c, err := Load(filepath.Join("..", "..", DefaultPath))
	require.NoError(t, err)
	require.NotEmpty(t, c.Companies)
	for _, target := range c.Companies {
		require.NotEmpty(t, target.Name)
		require.NotEmpty(t, target.Source)
	}
}
