package sources

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	markup string
	err    error
	links  []string
}

func (f *fakeRenderer) Render(_ context.Context, link string) (string, error) {
	f.links = append(f.links, link)
	return f.markup, f.err
}

const renderedPage = `<html><body><div id="root">
	<ul class="position-list">
		<li><a class="card" href="positions/11"><strong class="title">Backend Engineer</strong><em class="exp">경력 6년</em></a></li>
		<li><a class="card" href="/positions/12"><strong class="title">Infra Engineer</strong></a></li>
		<li><span class="tag">hiring</span></li>
	</ul>
</div></body></html>`

func TestRenderExtractsRenderedMarkup(t *testing.T) {
	renderer := &fakeRenderer{markup: renderedPage}
	src := NewRender(renderer, testClock)
	require.True(t, src.Available())

	got, err := src.FetchCompany(context.Background(), Target{
		Name: "SPA Corp",
		URL:  "https://spa.example.com/careers/",
		Selectors: map[string]string{
			RoleExperience: "em.exp",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []string{"https://spa.example.com/careers/"}, renderer.links)
	require.Equal(t, []string{"Backend Engineer - 경력 6년", "Infra Engineer"}, titlesOf(got))
	require.Equal(t, "https://spa.example.com/careers/positions/11", got[0].URL)
	require.Equal(t, "https://spa.example.com/positions/12", got[1].URL)
	require.Equal(t, "playwright", got[0].Source)
}

func TestRenderSelfSelectors(t *testing.T) {
	renderer := &fakeRenderer{markup: `<div class="board">
		<a class="row" href="/o/1">Backend Engineer</a>
		<a class="row" href="/o/2">Data Engineer</a>
	</div>`}
	src := NewRender(renderer, testClock)

	got, err := src.FetchCompany(context.Background(), Target{
		Name: "SPA Corp",
		URL:  "https://spa.example.com/",
		Selectors: map[string]string{
			RoleJobList: "div.board a.row",
			RoleTitle:   "자체",
			RoleLink:    SelfSelector,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []string{"Backend Engineer", "Data Engineer"}, titlesOf(got))
	require.Equal(t, "https://spa.example.com/o/2", got[1].URL)
}

func TestRenderSelfLinkNeedsAnchor(t *testing.T) {
	renderer := &fakeRenderer{markup: `<ul class="board">
		<li class="row" href="/o/1"><span>Backend Engineer</span><a href="/o/1/apply">apply</a></li>
	</ul>`}
	src := NewRender(renderer, testClock)

	got, err := src.FetchCompany(context.Background(), Target{
		Name: "SPA Corp",
		URL:  "https://spa.example.com/",
		Selectors: map[string]string{
			RoleJobList: "ul.board li.row",
			RoleTitle:   "span",
			RoleLink:    SelfSelector,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, got, 1)
	require.Equal(t, "", got[0].URL)
}

func TestRenderFailureIsReturned(t *testing.T) {
	src := NewRender(&fakeRenderer{err: errors.New("navigation crashed")}, testClock)
	_, err := src.FetchCompany(context.Background(), Target{Name: "SPA Corp"})
	require.Error(t, err)
	require.False(t, IsPermanent(err))
}

func TestRenderUnavailable(t *testing.T) {
	src := NewRender(nil, testClock)
	require.False(t, src.Available())

	for _, name := range []string{"A", "B"} {
		got, err := src.FetchCompany(context.Background(), Target{Name: name, URL: "https://spa.example.com"})
		require.Nil(t, got)
		require.ErrorIs(t, err, ErrCapabilityUnavailable)
		require.True(t, IsPermanent(err))
	}
}

func TestDetectBrowserExplicitPath(t *testing.T) {
	_, ok := DetectBrowser(filepath.Join(t.TempDir(), "missing-chrome"))
	require.False(t, ok)

	_, ok = DetectBrowser(t.TempDir())
	require.False(t, ok)
}

func TestNewChromeRendererWithoutBrowser(t *testing.T) {
	_, err := NewChromeRenderer(RenderConfig{ExecPath: filepath.Join(t.TempDir(), "missing-chrome")})
	require.ErrorIs(t, err, ErrCapabilityUnavailable)
}
