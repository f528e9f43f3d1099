package sources

import (
	"bytes"
	"context"
	"fmt"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/chrono"
	"jobtracker-backend/lib/htmlutil"
	"jobtracker-backend/lib/textutil"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const SaraminSearchURL = "https://www.saramin.co.kr/zf_user/search/recruit"

var (
	saraminItems   = []string{"div.item_recruit", "div.list_item"}
	saraminTitles  = []string{"h2.job_tit a", "a.str_tit", "a[title]"}
	saraminCorps   = []string{"strong.corp_name a", "a.corp_name", "div.area_corp strong"}
	saraminRegions = []string{
		"서울", "경기", "인천", "부산", "대구", "대전", "광주", "울산", "세종",
		"강원", "충북", "충남", "전북", "전남", "경북", "경남", "제주",
	}
)

type SaraminConfig struct {
	SearchURL     string `json:"search_url"`
	Keywords      string `json:"keywords"`
	JobCode       string `json:"job_cd"`
	ExperienceMin int    `json:"experience_min"`
	ExperienceMax int    `json:"experience_max"`
	PageCount     int    `json:"page_count"`
	MaxPages      int    `json:"max_pages"`
}

func DefaultSaraminConfig() SaraminConfig {
	return SaraminConfig{
		SearchURL:     SaraminSearchURL,
		Keywords:      "백엔드 자바",
		JobCode:       "84",
		ExperienceMin: 5,
		ExperienceMax: 7,
		PageCount:     40,
		MaxPages:      3,
	}
}

// Saramin reads the saramin.co.kr recruit search result pages.
type Saramin struct {
	client *resty.Client
	clock  chrono.API
	config SaraminConfig
}

func NewSaramin(client *resty.Client, clock chrono.API, config SaraminConfig) Saramin {
	defaults := DefaultSaraminConfig()
	if config.SearchURL == "" {
		config.SearchURL = defaults.SearchURL
	}
	if config.PageCount <= 0 {
		config.PageCount = defaults.PageCount
	}
	if config.MaxPages <= 0 {
		config.MaxPages = defaults.MaxPages
	}
	return Saramin{client: client, clock: clock, config: config}
}

func (Saramin) Name() string {
	return "saramin"
}

func (s Saramin) search(ctx context.Context, page int) (*goquery.Document, error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetHeader("referer", "https://www.saramin.co.kr/").
		SetQueryParams(map[string]string{
			"searchType":       "search",
			"searchword":       s.config.Keywords,
			"cat_kewd":         s.config.JobCode,
			"exp_cd":           "2",
			"exp_min":          strconv.Itoa(s.config.ExperienceMin),
			"exp_max":          strconv.Itoa(s.config.ExperienceMax),
			"recruitPage":      strconv.Itoa(page),
			"recruitSort":      "relation",
			"recruitPageCount": strconv.Itoa(s.config.PageCount),
		}).
		Get(s.config.SearchURL)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("saramin search: unexpected status %s", res.Status())
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

func (s Saramin) FetchCompany(ctx context.Context, target Target) ([]posting.Posting, error) {
	ctx, span := tracer.Start(ctx, "saramin:FetchCompany", trace.WithAttributes(
		attribute.String("company", target.Name),
		attribute.String("keywords", s.config.Keywords),
	))
	defer span.End()

	today := chrono.Today(s.clock)
	out := []posting.Posting{}
	for page := 1; page <= s.config.MaxPages; page++ {
		doc, err := s.search(ctx, page)
		if err != nil {
			if page == 1 {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to search saramin")
				return nil, err
			}
			slog.WarnContext(ctx, "saramin page failed, keeping earlier pages", "page", page, "err", err)
			break
		}

		found := s.parse(doc.Selection, target.Name, today)
		if len(found) == 0 {
			break
		}
		out = append(out, found...)
		slog.DebugContext(ctx, "saramin page", "page", page, "items", len(found), "total", len(out))
	}
	return out, nil
}

func (s Saramin) parse(doc *goquery.Selection, defaultCompany, today string) []posting.Posting {
	items, _ := htmlutil.Resolve(doc, "", saraminItems)

	out := []posting.Posting{}
	items.Each(func(_ int, item *goquery.Selection) {
		titleEl, _ := htmlutil.Resolve(item, "", saraminTitles)
		title := htmlutil.Text(titleEl.First())
		if title == "" {
			return
		}
		href, _ := titleEl.First().Attr("href")

		company := htmlutil.FirstText(item, "", saraminCorps)
		if company == "" {
			company = defaultCompany
		}

		// later conditions overwrite earlier ones
		location, experience := "", ""
		item.Find("div.job_condition span").Each(func(_ int, cond *goquery.Selection) {
			text := htmlutil.Text(cond)
			switch {
			case textutil.ContainsAny(text, saraminRegions):
				location = text
			case strings.Contains(text, "경력") || strings.Contains(text, "년"):
				experience = text
			}
		})

		out = append(out, posting.New(posting.Fields{
			Source:    s.Name(),
			Company:   company,
			Title:     withExperience(title, experience),
			Location:  location,
			URL:       htmlutil.JoinOrigin(s.config.SearchURL, strings.TrimSpace(href)),
			DateFound: today,
		}))
	})
	return out
}
