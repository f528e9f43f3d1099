package sources

import (
	"context"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/chrono"
	"jobtracker-backend/lib/htmlutil"
	"jobtracker-backend/lib/textutil"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// greetinghr opening links look like /ko/o/<id>
const greetingOpeningSelector = "a[href*='/ko/o/']"

var greetingExperienceMarkers = []string{"경력", "신입", "년 이상", "년이상"}

// GreetingHR reads career sites hosted on greetinghr.
type GreetingHR struct {
	client *resty.Client
	clock  chrono.API
}

func NewGreetingHR(client *resty.Client, clock chrono.API) GreetingHR {
	return GreetingHR{client: client, clock: clock}
}

func (GreetingHR) Name() string {
	return "greetinghr"
}

func (g GreetingHR) FetchCompany(ctx context.Context, target Target) ([]posting.Posting, error) {
	ctx, span := tracer.Start(ctx, "greetinghr:FetchCompany", trace.WithAttributes(
		attribute.String("company", target.Name),
		attribute.String("url", target.URL),
	))
	defer span.End()

	doc, err := getDocument(ctx, g.client, target.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch greetinghr page")
		return nil, err
	}

	links := doc.Find(greetingOpeningSelector)
	if links.Length() == 0 {
		slog.WarnContext(ctx, "no greetinghr openings found", "company", target.Name, "url", target.URL)
		return []posting.Posting{}, nil
	}

	today := chrono.Today(g.clock)
	out := []posting.Posting{}
	links.Each(func(_ int, link *goquery.Selection) {
		p, ok := g.opening(link, target, today)
		if ok {
			out = append(out, p)
		}
	})
	return out, nil
}

func (g GreetingHR) opening(link *goquery.Selection, target Target, today string) (posting.Posting, bool) {
	spans := link.Find("span")
	if spans.Length() == 0 {
		return posting.Posting{}, false
	}
	title := htmlutil.Text(spans.First())
	if title == "" {
		return posting.Posting{}, false
	}

	var meta []string
	spans.Slice(1, spans.Length()).Each(func(_ int, span *goquery.Selection) {
		if text := htmlutil.Text(span); text != "" {
			meta = append(meta, text)
		}
	})
	experience, _ := textutil.FirstContaining(meta, greetingExperienceMarkers)
	category := ""
	if len(meta) > 0 {
		category = meta[0]
	}

	href, _ := link.Attr("href")
	return posting.New(posting.Fields{
		Source:    g.Name(),
		Company:   target.Name,
		Title:     withExperience(title, experience),
		Location:  category,
		URL:       htmlutil.JoinReference(target.URL, href),
		DateFound: today,
	}), true
}
