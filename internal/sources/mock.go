package sources

import (
	"context"
	"fmt"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/chrono"
	"strings"
)

type sample struct {
	title    string
	location string
}

var mockSamples = map[string][]sample{
	"네이버": {
		{"백엔드 엔지니어 (Java/Kotlin) - 경력 5년 이상", "성남시 분당구"},
		{"서버 플랫폼 개발자 (6년 이상)", "성남시 분당구"},
	},
	"카카오": {
		{"서버 개발자 (Spring Boot) - 5~7년", "성남시 판교"},
		{"Backend Engineer - 경력 5년", "성남시 판교"},
	},
	"라인플러스": {
		{"Platform Backend Engineer (5+ years)", "서울시 강남구"},
	},
	"쿠팡": {
		{"Backend Software Engineer - 경력 6년 이상", "서울시 송파구"},
	},
	"토스": {
		{"Server Developer (MSA) - 5~7년차", "서울시 강남구"},
	},
}

var mockDefault = []sample{
	{"백엔드 개발자 - 경력 5년 이상", "서울"},
	{"서버 개발자 (Go) - 경력 7년", "서울"},
}

// Mock serves fixed sample postings without any network access.
type Mock struct {
	clock chrono.API
}

func NewMock(clock chrono.API) Mock {
	return Mock{clock: clock}
}

func (Mock) Name() string {
	return "mock"
}

func (m Mock) FetchCompany(_ context.Context, target Target) ([]posting.Posting, error) {
	samples, ok := mockSamples[target.Name]
	if !ok {
		samples = mockDefault
	}

	today := chrono.Today(m.clock)
	out := make([]posting.Posting, 0, len(samples))
	for i, s := range samples {
		link := ""
		if target.URL != "" {
			link = fmt.Sprintf("%s/%d", strings.TrimRight(target.URL, "/"), i+1)
		}
		out = append(out, posting.New(posting.Fields{
			Source:    m.Name(),
			Company:   target.Name,
			Title:     s.title,
			Level:     "5-7년",
			Location:  s.location,
			URL:       link,
			DateFound: today,
		}))
	}
	return out, nil
}
