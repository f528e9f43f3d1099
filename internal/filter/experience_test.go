package filter

import (
	"jobtracker-backend/internal/posting"
	"testing"

	"github.com/stretchr/testify/require"
)

func sample(titles ...string) []posting.Posting {
	out := make([]posting.Posting, 0, len(titles))
	for _, title := range titles {
		out = append(out, posting.New(posting.Fields{Source: "career", Company: "A", Title: title}))
	}
	return out
}

func titles(postings []posting.Posting) []string {
	out := []string{}
	for _, p := range postings {
		out = append(out, p.Title)
	}
	return out
}

func TestApplyKeepsMatchingTitles(t *testing.T) {
	cfg := Config{Enabled: true, LevelLabel: "5-7년", Keywords: []string{"5년", "7년"}}
	input := sample("Backend Engineer - 5-7년", "Frontend Intern - 신입")

	out := Apply(input, &cfg, false)
	require.Equal(t, []string{"Backend Engineer - 5-7년"}, titles(out))
	require.Equal(t, "5-7년", out[0].Level)
	require.Equal(t, input[0].UniqueKey, out[0].UniqueKey)
}

func TestApplyCaseInsensitive(t *testing.T) {
	cfg := Config{Enabled: true, LevelLabel: "senior", Keywords: []string{"Senior"}}
	out := Apply(sample("SENIOR backend", "junior backend"), &cfg, false)
	require.Equal(t, []string{"SENIOR backend"}, titles(out))
}

func TestApplyMatchesLevel(t *testing.T) {
	cfg := Config{Enabled: true, LevelLabel: "x", Keywords: []string{"6년"}}
	p := posting.New(posting.Fields{Title: "Server Developer", Level: "경력 6년"})
	out := Apply([]posting.Posting{p}, &cfg, false)
	require.Len(t, out, 1)
	require.Equal(t, "x", out[0].Level)
}

func TestApplyNilConfig(t *testing.T) {
	input := sample("a", "b")
	require.Equal(t, input, Apply(input, nil, false))
	require.Equal(t, input, Apply(input, nil, true))
}

func TestApplySkipStillRelabels(t *testing.T) {
	cfg := DefaultConfig()
	input := sample("Frontend Intern - 신입", "Designer")

	out := Apply(input, &cfg, true)
	require.Equal(t, titles(input), titles(out))
	for _, p := range out {
		require.Equal(t, DefaultLevelLabel, p.Level)
	}
}

func TestApplyDisabledStillRelabels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	cfg.LevelLabel = "any"

	out := Apply(sample("Frontend Intern - 신입"), &cfg, false)
	require.Len(t, out, 1)
	require.Equal(t, "any", out[0].Level)
}

func TestApplyEmptyKeywordsDropsAll(t *testing.T) {
	cfg := Config{Enabled: true, LevelLabel: "x"}
	require.Empty(t, Apply(sample("a", "b"), &cfg, false))
}
