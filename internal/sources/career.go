package sources

import (
	"bytes"
	"context"
	"fmt"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/chrono"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var careerLayout = listLayout{
	jobList: []string{
		"ul.job-list li",
		"div.recruit-list div.item",
		"table.job-table tbody tr",
		"div[class*='job'] div[class*='item']",
		"ul[class*='recruit'] li",
		"div[class*='career'] div[class*='list'] li",
		"div[class*='vacancy'] div[class*='item']",
	},
	title: []string{
		"a[class*='title']",
		"h3[class*='title']",
		"h4[class*='title']",
		"a.str_tit",
		"td.title a",
		"a[href]",
		"strong",
	},
	link: []string{"a[href]"},
}

// CareerPage reads server-rendered company career pages, the page layout
// is described by the target's selectors.
type CareerPage struct {
	client *resty.Client
	clock  chrono.API
}

func NewCareerPage(client *resty.Client, clock chrono.API) CareerPage {
	return CareerPage{client: client, clock: clock}
}

func (CareerPage) Name() string {
	return "career"
}

func getDocument(ctx context.Context, client *resty.Client, link string) (*goquery.Document, error) {
	res, err := client.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("GET %s: unexpected status %s", link, res.Status())
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

func (c CareerPage) FetchCompany(ctx context.Context, target Target) ([]posting.Posting, error) {
	ctx, span := tracer.Start(ctx, "career:FetchCompany", trace.WithAttributes(
		attribute.String("company", target.Name),
		attribute.String("url", target.URL),
	))
	defer span.End()

	doc, err := getDocument(ctx, c.client, target.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch career page")
		return nil, err
	}

	page := listPage{
		source: c.Name(),
		target: target,
		today:  chrono.Today(c.clock),
		layout: careerLayout,
	}
	return page.extract(ctx, doc.Selection), nil
}
