package sources

import (
	"context"
	"jobtracker-backend/lib/testutil"
	"testing"

	"github.com/stretchr/testify/require"
)

const greetingPage = `<html><body><div id="__next">
	<a href="/ko/o/1001">
		<div><span>Backend Engineer (Kotlin)</span></div>
		<span>Engineering</span>
		<span></span>
		<span>경력 5년 이상</span>
		<span>정규직</span>
	</a>
	<a href="https://acme.career.greetinghr.com/ko/o/1002">
		<span>Frontend Engineer</span>
		<span>Engineering</span>
		<span>신입</span>
	</a>
	<a href="/ko/o/1003"><span>  </span><span>Design</span></a>
	<a href="/ko/o/1004">no spans at all</a>
	<a href="/about">about us</a>
</div></body></html>`

func TestGreetingHR(t *testing.T) {
	server := testutil.NewServer(t, map[string]testutil.Route{
		"/ko/main": testutil.HTML(greetingPage),
	})
	src := NewGreetingHR(newTestClient(t), testClock)

	got, err := src.FetchCompany(context.Background(), Target{Name: "Acme", URL: server.Link("/ko/main")})
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []string{
		"Backend Engineer (Kotlin) - 경력 5년 이상",
		"Frontend Engineer - 신입",
	}, titlesOf(got))

	require.Equal(t, "Engineering", got[0].Location)
	require.Equal(t, server.URL+"/ko/o/1001", got[0].URL)
	require.Equal(t, "greetinghr", got[0].Source)
	require.Equal(t, "Acme", got[0].Company)
	require.Equal(t, testToday, got[0].DateFound)

	require.Equal(t, "https://acme.career.greetinghr.com/ko/o/1002", got[1].URL)
}

func TestGreetingHRNoOpenings(t *testing.T) {
	server := testutil.NewServer(t, map[string]testutil.Route{
		"/": testutil.HTML(`<html><body><a href="/about">about</a></body></html>`),
	})
	src := NewGreetingHR(newTestClient(t), testClock)

	got, err := src.FetchCompany(context.Background(), Target{Name: "Acme", URL: server.URL + "/"})
	require.NoError(t, err)
	require.Empty(t, got)
}
