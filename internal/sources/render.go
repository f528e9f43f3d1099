package sources

import (
	"context"
	"errors"
	"fmt"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/chrono"
	"jobtracker-backend/lib/restyutil"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var renderLayout = listLayout{
	jobList: []string{
		"ul[class*='job'] li",
		"ul[class*='list'] li",
		"div[class*='job'] div[class*='item']",
		"div[class*='recruit'] div[class*='item']",
		"table[class*='job'] tbody tr",
		"table[class*='recruit'] tbody tr",
		"div.card",
		"li.card",
		"div[class*='position'] div[class*='item']",
		"a[class*='job']",
		"a[class*='card']",
	},
	title: []string{
		"a[class*='title']",
		"a[class*='tit']",
		"h3[class*='title']",
		"h4[class*='title']",
		"strong[class*='title']",
		"span[class*='title']",
		"td.title a",
		"a[href]",
		"strong",
		"h3",
		"h4",
	},
	link:               []string{"a[href]"},
	resolveAgainstPage: true,
	containerHref:      true,
}

var browserCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

type RenderConfig struct {
	// path to a chrome/chromium binary, looked up on PATH when empty
	ExecPath                 string `json:"exec_path"`
	NavigationTimeoutSeconds int    `json:"navigation_timeout_seconds"`
	InitialWaitMs            int    `json:"initial_wait_ms"`
	ScrollCount              int    `json:"scroll_count"`
	ScrollWaitMs             int    `json:"scroll_wait_ms"`
	FinalWaitMs              int    `json:"final_wait_ms"`
}

func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		NavigationTimeoutSeconds: 30,
		InitialWaitMs:            3000,
		ScrollCount:              5,
		ScrollWaitMs:             1000,
		FinalWaitMs:              3000,
	}
}

// DetectBrowser resolves the browser binary the headless renderer runs.
func DetectBrowser(execPath string) (string, bool) {
	if execPath != "" {
		info, err := os.Stat(execPath)
		if err != nil || info.IsDir() {
			return "", false
		}
		return execPath, true
	}
	for _, candidate := range browserCandidates {
		path, err := exec.LookPath(candidate)
		if err == nil {
			return path, true
		}
	}
	return "", false
}

// Renderer returns the markup of a page after its scripts have run.
type Renderer interface {
	Render(ctx context.Context, link string) (string, error)
}

// ChromeRenderer drives a headless chrome through chromedp, every render
// owns its own browser process.
type ChromeRenderer struct {
	execPath string
	config   RenderConfig
}

// NewChromeRenderer fails with ErrCapabilityUnavailable when no browser
// binary can be found.
func NewChromeRenderer(config RenderConfig) (ChromeRenderer, error) {
	path, ok := DetectBrowser(config.ExecPath)
	if !ok {
		return ChromeRenderer{}, fmt.Errorf("headless browser: %w", ErrCapabilityUnavailable)
	}
	return ChromeRenderer{execPath: path, config: config}, nil
}

func (c ChromeRenderer) ExecPath() string {
	return c.execPath
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func (c ChromeRenderer) Render(ctx context.Context, link string) (string, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(c.execPath),
		chromedp.UserAgent(restyutil.BrowserUserAgent),
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("lang", "ko-KR"),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// the first Run starts the browser, a timeout on it would kill the browser
	err := chromedp.Run(browserCtx)
	if err != nil {
		return "", fmt.Errorf("start browser: %w", err)
	}

	navCtx, cancelNav := context.WithTimeout(browserCtx, time.Duration(c.config.NavigationTimeoutSeconds)*time.Second)
	err = chromedp.Run(navCtx, chromedp.Navigate(link))
	cancelNav()
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return "", fmt.Errorf("navigate %s: %w", link, err)
		}
		slog.DebugContext(ctx, "navigation did not settle in time, continuing", "url", link)
	}

	actions := []chromedp.Action{chromedp.Sleep(millis(c.config.InitialWaitMs))}
	for range c.config.ScrollCount {
		actions = append(
			actions,
			chromedp.Evaluate(`window.scrollBy(0, 800)`, nil),
			chromedp.Sleep(millis(c.config.ScrollWaitMs)),
		)
	}
	var markup string
	actions = append(
		actions,
		chromedp.Sleep(millis(c.config.FinalWaitMs)),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	err = chromedp.Run(browserCtx, actions...)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", link, err)
	}
	return markup, nil
}

// Render reads pages that only fill in their job list with javascript.
// a nil renderer means no browser is available, every fetch then fails.
type Render struct {
	renderer Renderer
	clock    chrono.API
}

func NewRender(renderer Renderer, clock chrono.API) Render {
	return Render{renderer: renderer, clock: clock}
}

func (Render) Name() string {
	return "playwright"
}

func (r Render) Available() bool {
	return r.renderer != nil
}

func (r Render) FetchCompany(ctx context.Context, target Target) ([]posting.Posting, error) {
	ctx, span := tracer.Start(ctx, "render:FetchCompany", trace.WithAttributes(
		attribute.String("company", target.Name),
		attribute.String("url", target.URL),
	))
	defer span.End()

	if r.renderer == nil {
		slog.ErrorContext(ctx, "headless browser capability unavailable", "company", target.Name)
		span.SetStatus(codes.Error, "capability unavailable")
		return nil, Permanent(fmt.Errorf("headless browser: %w", ErrCapabilityUnavailable))
	}

	markup, err := r.renderer.Render(ctx, target.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to render page")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	page := listPage{
		source: r.Name(),
		target: target,
		today:  chrono.Today(r.clock),
		layout: renderLayout,
	}
	return page.extract(ctx, doc.Selection), nil
}
