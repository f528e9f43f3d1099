package sources

import (
	"context"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/chrono"
	"jobtracker-backend/lib/htmlutil"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	linkedinCards = []string{
		"ul.jobs-search__results-list li",
		"div.base-card",
		"a[data-tracking-control-name*='job']",
	}
	linkedinTitles = []string{
		"h3.base-search-card__title",
		"h3[class*='title']",
		"span.sr-only",
	}
	linkedinLinks = []string{
		"a.base-card__full-link",
		"a[href*='linkedin.com/jobs']",
	}
	linkedinLocations = []string{
		"span.job-search-card__location",
		"span[class*='location']",
	}
)

// LinkedIn reads the public jobs tab of a company page.
type LinkedIn struct {
	client *resty.Client
	clock  chrono.API
}

func NewLinkedIn(client *resty.Client, clock chrono.API) LinkedIn {
	return LinkedIn{client: client, clock: clock}
}

func (LinkedIn) Name() string {
	return "linkedin"
}

// JobsURL points a company page url at its jobs tab.
func JobsURL(companyURL string) string {
	trimmed := strings.TrimRight(companyURL, "/")
	if strings.HasSuffix(trimmed, "/jobs") {
		return trimmed + "/"
	}
	return trimmed + "/jobs/"
}

func (l LinkedIn) FetchCompany(ctx context.Context, target Target) ([]posting.Posting, error) {
	link := JobsURL(target.URL)
	ctx, span := tracer.Start(ctx, "linkedin:FetchCompany", trace.WithAttributes(
		attribute.String("company", target.Name),
		attribute.String("url", link),
	))
	defer span.End()

	doc, err := getDocument(ctx, l.client, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch linkedin jobs")
		return nil, err
	}

	cards, _ := htmlutil.Resolve(doc.Selection, "", linkedinCards)
	if cards.Length() == 0 {
		slog.WarnContext(ctx, "no linkedin job cards found", "company", target.Name, "url", link)
		return []posting.Posting{}, nil
	}

	today := chrono.Today(l.clock)
	out := []posting.Posting{}
	cards.Each(func(_ int, card *goquery.Selection) {
		title := htmlutil.FirstText(card, "", linkedinTitles)
		if title == "" {
			return
		}

		href := htmlutil.FirstAttr(card, "href", "", linkedinLinks)
		if href == "" && htmlutil.IsTag(card, "a") {
			href, _ = card.Attr("href")
		}
		href = htmlutil.StripQuery(htmlutil.JoinReference(link, strings.TrimSpace(href)))

		posted := htmlutil.FirstAttr(card, "datetime", "", []string{"time[datetime]"})
		if posted == "" {
			posted = today
		}

		out = append(out, posting.New(posting.Fields{
			Source:    l.Name(),
			Company:   target.Name,
			Title:     title,
			Location:  htmlutil.FirstText(card, "", linkedinLocations),
			URL:       href,
			DateFound: posted,
		}))
	})
	return out, nil
}
