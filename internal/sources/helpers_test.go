package sources

import (
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/restyutil"
	"jobtracker-backend/lib/telemetry"
	"jobtracker-backend/lib/testutil"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
)

var testClock = testutil.Clock(2024, time.May, 1)

const testToday = "2024-05-01"

func newTestClient(t testing.TB) *resty.Client {
	telemetry.SetupForTesting(t)
	return restyutil.NewClient(restyutil.ClientOptions{Timeout: 5 * time.Second})
}

func titlesOf(postings []posting.Posting) []string {
	out := []string{}
	for _, p := range postings {
		out = append(out, p.Title)
	}
	return out
}
