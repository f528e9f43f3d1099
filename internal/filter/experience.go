package filter

import (
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/textutil"
)

const DefaultLevelLabel = "5-7년"

var DefaultKeywords = []string{"5년", "6년", "7년", "5~7"}

// Config describes the experience band postings are narrowed to.
type Config struct {
	Enabled    bool
	LevelLabel string
	Keywords   []string
}

func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		LevelLabel: DefaultLevelLabel,
		Keywords:   append([]string(nil), DefaultKeywords...),
	}
}

// Matches reports whether the title or level of `p` mentions any keyword.
func (c Config) Matches(p posting.Posting) bool {
	return textutil.ContainsAny(p.Title+" "+p.Level, c.Keywords)
}

// Apply narrows `postings` to the experience band of `cfg` unless it is
// disabled or `skip` is set. whenever a config is supplied, every surviving
// posting is relabeled with its level label. a nil config returns the
// input untouched.
func Apply(postings []posting.Posting, cfg *Config, skip bool) []posting.Posting {
	if cfg == nil {
		return postings
	}

	out := make([]posting.Posting, 0, len(postings))
	for _, p := range postings {
		if cfg.Enabled && !skip && !cfg.Matches(p) {
			continue
		}
		out = append(out, p.WithLevel(cfg.LevelLabel))
	}
	return out
}
