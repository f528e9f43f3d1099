package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContainsAny(t *testing.T) {
	cases := []struct {
		text     string
		keywords []string
		expected bool
	}{
		{text: "Backend Engineer - 5-7년", keywords: []string{"5년", "7년"}, expected: true},
		{text: "Frontend Intern - 신입", keywords: []string{"5년", "7년"}, expected: false},
		{text: "SENIOR Backend", keywords: []string{"backend"}, expected: true},
		{text: "anything", keywords: []string{""}, expected: false},
		{text: "anything", keywords: nil, expected: false},
	}
	for _, c := range cases {
		require.Equal(t, c.expected, ContainsAny(c.text, c.keywords), c.text)
	}
}

func TestFirstContaining(t *testing.T) {
	found, ok := FirstContaining([]string{"Engineering", "경력 5년 이상", "신입"}, []string{"경력", "신입"})
	require.True(t, ok)
	require.Equal(t, "경력 5년 이상", found)

	_, ok = FirstContaining([]string{"Engineering"}, []string{"경력"})
	require.False(t, ok)
}

func TestCollapseSpace(t *testing.T) {
	require.Equal(t, "Backend Engineer (Go)", CollapseSpace("\n  Backend \t Engineer\n (Go)  "))
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"backend", "서버", "java"}, SplitList(" backend, 서버,,java ,"))
	require.Nil(t, SplitList(""))
}

func TestNormalizeKey(t *testing.T) {
	require.Equal(t, "career", NormalizeKey("  Career "))
}
