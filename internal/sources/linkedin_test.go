package sources

import (
	"context"
	"jobtracker-backend/lib/testutil"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJobsURL(t *testing.T) {
	require.Equal(t, "https://www.linkedin.com/company/acme/jobs/", JobsURL("https://www.linkedin.com/company/acme"))
	require.Equal(t, "https://www.linkedin.com/company/acme/jobs/", JobsURL("https://www.linkedin.com/company/acme/"))
	require.Equal(t, "https://www.linkedin.com/company/acme/jobs/", JobsURL("https://www.linkedin.com/company/acme/jobs"))
	require.Equal(t, "https://www.linkedin.com/company/acme/jobs/", JobsURL("https://www.linkedin.com/company/acme/jobs/"))
}

const linkedinPage = `<html><body>
<ul class="jobs-search__results-list">
	<li>
		<div class="base-card">
			<a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/111?refId=abc&trackingId=x"></a>
			<h3 class="base-search-card__title">  Senior Backend Engineer </h3>
			<span class="job-search-card__location">Seoul, South Korea</span>
			<time datetime="2024-04-28">3 days ago</time>
		</div>
	</li>
	<li>
		<div class="base-card">
			<a href="https://www.linkedin.com/jobs/view/222?trk=public">Server Engineer</a>
			<h3 class="card-title">Server Engineer</h3>
			<span class="job-location">Pangyo</span>
		</div>
	</li>
	<li><div class="base-card"><span class="job-location">no title</span></div></li>
</ul>
</body></html>`

func TestLinkedIn(t *testing.T) {
	server := testutil.NewServer(t, map[string]testutil.Route{
		"/company/acme/jobs/": testutil.HTML(linkedinPage),
	})
	src := NewLinkedIn(newTestClient(t), testClock)

	got, err := src.FetchCompany(context.Background(), Target{Name: "Acme", URL: server.Link("/company/acme")})
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []string{"Senior Backend Engineer", "Server Engineer"}, titlesOf(got))

	require.Equal(t, "https://www.linkedin.com/jobs/view/111", got[0].URL)
	require.Equal(t, "Seoul, South Korea", got[0].Location)
	require.Equal(t, "2024-04-28", got[0].DateFound)

	require.Equal(t, "https://www.linkedin.com/jobs/view/222", got[1].URL)
	require.Equal(t, "Pangyo", got[1].Location)
	require.Equal(t, testToday, got[1].DateFound)
}

func TestLinkedInAnchorCards(t *testing.T) {
	server := testutil.NewServer(t, map[string]testutil.Route{
		"/company/acme/jobs/": testutil.HTML(`<html><body>
			<a data-tracking-control-name="public_jobs_jserp-result" href="/jobs/view/333?x=1">
				<span class="sr-only">Platform Engineer</span>
			</a>
		</body></html>`),
	})
	src := NewLinkedIn(newTestClient(t), testClock)

	got, err := src.FetchCompany(context.Background(), Target{Name: "Acme", URL: server.Link("/company/acme/jobs")})
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, got, 1)
	require.Equal(t, "Platform Engineer", got[0].Title)
	require.Equal(t, server.URL+"/jobs/view/333", got[0].URL)
}
