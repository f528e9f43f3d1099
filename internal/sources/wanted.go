package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/chrono"
	"jobtracker-backend/lib/textutil"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	WantedEndpoint    = "https://www.wanted.co.kr/api/v4/jobs"
	wantedJobTemplate = "https://www.wanted.co.kr/wd/%d"
)

type WantedConfig struct {
	Endpoint   string   `json:"endpoint"`
	Keywords   []string `json:"keywords"`
	TagTypeIDs []int    `json:"tag_type_ids"`
	YearsMin   int      `json:"years_min"`
	YearsMax   int      `json:"years_max"`
	Limit      int      `json:"limit"`
	MaxPages   int      `json:"max_pages"`
}

func DefaultWantedConfig() WantedConfig {
	return WantedConfig{
		Endpoint:   WantedEndpoint,
		Keywords:   []string{"백엔드", "backend", "서버", "server", "java", "자바", "spring"},
		TagTypeIDs: []int{872, 660},
		YearsMin:   5,
		YearsMax:   7,
		Limit:      100,
		MaxPages:   5,
	}
}

type wantedResponse struct {
	Data  []wantedJob `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type wantedJob struct {
	ID       int64  `json:"id"`
	Position string `json:"position"`
	Company  struct {
		Name string `json:"name"`
	} `json:"company"`
	Address struct {
		Location string `json:"location"`
		District string `json:"district"`
	} `json:"address"`
	AnnualFrom int `json:"annual_from"`
	AnnualTo   int `json:"annual_to"`
}

// Wanted queries the wanted.co.kr job search api with a fixed set of
// category tags and an experience range.
type Wanted struct {
	client   *resty.Client
	clock    chrono.API
	config   WantedConfig
	keywords []string
}

func NewWanted(client *resty.Client, clock chrono.API, config WantedConfig) Wanted {
	defaults := DefaultWantedConfig()
	if config.Endpoint == "" {
		config.Endpoint = defaults.Endpoint
	}
	if config.Limit <= 0 {
		config.Limit = defaults.Limit
	}
	if config.MaxPages <= 0 {
		config.MaxPages = defaults.MaxPages
	}

	var keywords []string
	for _, k := range config.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	return Wanted{client: client, clock: clock, config: config, keywords: keywords}
}

func (Wanted) Name() string {
	return "wanted"
}

func (w Wanted) query(offset int) url.Values {
	query := url.Values{}
	for _, id := range w.config.TagTypeIDs {
		query.Add("tag_type_ids", strconv.Itoa(id))
	}
	query.Set("job_sort", "job.latest_order")
	query.Add("years", strconv.Itoa(w.config.YearsMin))
	query.Add("years", strconv.Itoa(w.config.YearsMax))
	query.Set("country", "kr")
	query.Set("locations", "all")
	query.Set("limit", strconv.Itoa(w.config.Limit))
	query.Set("offset", strconv.Itoa(offset))
	return query
}

func (w Wanted) page(ctx context.Context, offset int) (wantedResponse, error) {
	var out wantedResponse
	res, err := w.client.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"accept":               "application/json, text/plain, */*",
			"referer":              "https://www.wanted.co.kr/",
			"wanted-user-country":  "KR",
			"wanted-user-language": "ko",
		}).
		SetQueryParamsFromValues(w.query(offset)).
		Get(w.config.Endpoint)
	if err != nil {
		return out, err
	}
	if res.IsError() {
		return out, fmt.Errorf("wanted api: unexpected status %s", res.Status())
	}
	err = json.Unmarshal(res.Body(), &out)
	if err != nil {
		return out, fmt.Errorf("wanted api: decode response: %w", err)
	}
	return out, nil
}

func (w Wanted) FetchCompany(ctx context.Context, target Target) ([]posting.Posting, error) {
	ctx, span := tracer.Start(ctx, "wanted:FetchCompany", trace.WithAttributes(
		attribute.String("company", target.Name),
	))
	defer span.End()

	today := chrono.Today(w.clock)
	out := []posting.Posting{}
	for page := 0; page < w.config.MaxPages; page++ {
		offset := page * w.config.Limit
		res, err := w.page(ctx, offset)
		if err != nil {
			if page == 0 {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to query wanted")
				return nil, err
			}
			slog.WarnContext(ctx, "wanted page failed, keeping earlier pages", "offset", offset, "err", err)
			break
		}
		if len(res.Data) == 0 {
			break
		}

		matched := 0
		for _, job := range res.Data {
			p, ok := w.parse(job, target.Name, today)
			if ok {
				out = append(out, p)
				matched++
			}
		}
		slog.DebugContext(
			ctx, "wanted page",
			"offset", offset,
			"items", len(res.Data),
			"matched", matched,
			"total", len(out),
		)

		if res.Links.Next == "" {
			break
		}
	}
	return out, nil
}

func wantedExperience(from, to int) string {
	if from == 0 && to == 0 {
		return ""
	}
	if to >= 100 {
		return fmt.Sprintf("경력 %d년 이상", from)
	}
	return fmt.Sprintf("경력 %d~%d년", from, to)
}

func (w Wanted) parse(job wantedJob, defaultCompany, today string) (posting.Posting, bool) {
	position := strings.TrimSpace(job.Position)
	if position == "" {
		return posting.Posting{}, false
	}
	if len(w.keywords) > 0 && !textutil.ContainsAny(position, w.keywords) {
		return posting.Posting{}, false
	}

	company := job.Company.Name
	if company == "" {
		company = defaultCompany
	}
	link := ""
	if job.ID != 0 {
		link = fmt.Sprintf(wantedJobTemplate, job.ID)
	}
	location := job.Address.Location
	if job.Address.District != "" {
		location = strings.TrimSpace(location + " " + job.Address.District)
	}

	return posting.New(posting.Fields{
		Source:    w.Name(),
		Company:   company,
		Title:     withExperience(position, wantedExperience(job.AnnualFrom, job.AnnualTo)),
		Location:  location,
		URL:       link,
		DateFound: today,
	}), true
}
