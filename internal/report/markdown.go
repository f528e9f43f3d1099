package report

import (
	"context"
	"fmt"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/chrono"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("jobtracker/report")

const (
	DefaultPath = "JOB_TRACKER.md"
	// MaxNew caps the rows of the new postings section.
	MaxNew = 20
)

// Reporter receives the outcome of every run.
type Reporter interface {
	Report(ctx context.Context, diff posting.DiffResult, all []posting.Posting) error
}

type Options struct {
	Path string
	// human readable schedule, omitted from the header when empty
	Schedule string
}

// Markdown writes the tracker document.
type Markdown struct {
	path     string
	schedule string
	clock    chrono.API
}

func NewMarkdown(opts Options, clock chrono.API) Markdown {
	path := opts.Path
	if path == "" {
		path = DefaultPath
	}
	return Markdown{path: path, schedule: opts.Schedule, clock: clock}
}

func (m Markdown) Path() string {
	return m.path
}

func link(url string) string {
	if url == "" {
		return "-"
	}
	return fmt.Sprintf("[링크](%s)", url)
}

func renderTable(postings []posting.Posting) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"DateFound", "Source", "Company", "Title", "Level", "Location", "Link"})
	for _, p := range postings {
		t.AppendRow(table.Row{p.DateFound, p.Source, p.Company, p.Title, p.Level, p.Location, link(p.URL)})
	}
	return t.RenderMarkdown()
}

// newestFirst orders by date_found descending, postings found on the same
// day keep their snapshot order.
func newestFirst(postings []posting.Posting) []posting.Posting {
	out := append([]posting.Posting(nil), postings...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateFound > out[j].DateFound
	})
	return out
}

// Render builds the document for one run.
func (m Markdown) Render(diff posting.DiffResult, all []posting.Posting) string {
	sorted := newestFirst(all)
	now := m.clock.Now().In(chrono.Seoul()).Format("2006-01-02 15:04:05") + " KST"

	b := &strings.Builder{}
	b.WriteString("# 📋 백엔드 이직공고 트래커\n\n")
	b.WriteString("> **백엔드 5~7년차 이직공고**를 자동으로 수집하여 정리합니다.\n>\n")
	if m.schedule != "" {
		fmt.Fprintf(b, "> - 실행 스케줄: `%s` (KST)\n", m.schedule)
	}
	fmt.Fprintf(b, "> - 마지막 업데이트: `%s`\n", now)
	fmt.Fprintf(b, "> - 전체 공고 수: **%d건**\n\n", len(sorted))

	b.WriteString("---\n\n## 🆕 New (최근 추가)\n\n")
	if len(diff.New) > 0 {
		fmt.Fprintf(b, "> 이번 실행에서 **%d건**의 신규 공고가 발견되었습니다.\n", len(diff.New))
		shown := diff.New
		if len(shown) > MaxNew {
			shown = shown[:MaxNew]
			fmt.Fprintf(b, "> (상위 %d건만 표시)\n", MaxNew)
		}
		b.WriteString("\n")
		b.WriteString(renderTable(shown))
		b.WriteString("\n")
	} else {
		b.WriteString("_이번 실행에서 신규 공고가 없습니다._\n")
	}

	b.WriteString("\n---\n\n## 📑 All Jobs (전체)\n\n")
	if len(sorted) > 0 {
		b.WriteString(renderTable(sorted))
		b.WriteString("\n")
	} else {
		b.WriteString("_수집된 공고가 없습니다._\n")
	}
	return b.String()
}

func (m Markdown) Report(ctx context.Context, diff posting.DiffResult, all []posting.Posting) error {
	ctx, span := tracer.Start(ctx, "Report")
	defer span.End()

	dir := filepath.Dir(m.path)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create report directory")
		return err
	}
	err = os.WriteFile(m.path, []byte(m.Render(diff, all)), 0644)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write report")
		return err
	}
	slog.InfoContext(ctx, "wrote report", "path", m.path, "postings", len(all), "new", len(diff.New))
	return nil
}
