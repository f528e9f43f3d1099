package store

import (
	"context"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/configutil/dbconfig"
	"jobtracker-backend/lib/telemetry"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func samplePostings() []posting.Posting {
	return []posting.Posting{
		posting.New(posting.Fields{
			Source:    "career",
			Company:   "Acme & Co",
			Title:     "Backend <Go> Engineer - 경력 5년",
			Level:     "5-7년",
			Location:  "서울",
			URL:       "https://acme.example.com/jobs/1?a=1&b=2",
			DateFound: "2024-05-01",
		}),
		posting.New(posting.Fields{
			Source:    "mock",
			Company:   "TestCo",
			Title:     "Backend Engineer",
			Level:     "5-7년",
			DateFound: "2024-04-30",
		}),
	}
}

func requireSamePostings(t *testing.T, want, got []posting.Posting) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected snapshot (-want +got):\n%s", diff)
	}
}

func TestFileMissingAndEmpty(t *testing.T) {
	telemetry.SetupForTesting(t)
	ctx := context.Background()
	dir := t.TempDir()

	missing := NewFile(filepath.Join(dir, "missing.json"))
	got := missing.Load(ctx)
	require.NotNil(t, got)
	require.Empty(t, got)

	emptyPath := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(emptyPath, []byte("  \n"), 0644))
	require.Empty(t, NewFile(emptyPath).Load(ctx))

	nullPath := filepath.Join(dir, "null.json")
	require.NoError(t, os.WriteFile(nullPath, []byte("null"), 0644))
	require.NotNil(t, NewFile(nullPath).Load(ctx))
}

func TestFileMalformed(t *testing.T) {
	telemetry.SetupForTesting(t)

	path := filepath.Join(t.TempDir(), "jobs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title": `), 0644))
	got := NewFile(path).Load(context.Background())
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestFileRoundTrip(t *testing.T) {
	telemetry.SetupForTesting(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "nested", "data", "jobs.json")
	f := NewFile(path)
	require.NoError(t, f.Save(ctx, samplePostings()))
	requireSamePostings(t, samplePostings(), f.Load(ctx))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(contents)
	require.True(t, strings.HasPrefix(text, "[\n  {\n    \"source\": \"career\""))
	require.Contains(t, text, "Backend <Go> Engineer - 경력 5년")
	require.Contains(t, text, "Acme & Co")

	// saving overwrites the previous snapshot
	require.NoError(t, f.Save(ctx, samplePostings()[1:]))
	requireSamePostings(t, samplePostings()[1:], f.Load(ctx))

	require.NoError(t, f.Save(ctx, nil))
	got := f.Load(ctx)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestFileDerivesMissingKeys(t *testing.T) {
	telemetry.SetupForTesting(t)

	path := filepath.Join(t.TempDir(), "jobs.json")
	legacy := `[{"source": "mock", "company": "TestCo", "title": "Backend Engineer", "level": "5-7년", "location": "Seoul", "url": "https://x.com/1", "date_found": "2024-05-01"}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	got := NewFile(path).Load(context.Background())
	require.Len(t, got, 1)
	require.Equal(t, "73b7f25effda40cc", got[0].UniqueKey)
}

func TestFileSkipsNullRecords(t *testing.T) {
	telemetry.SetupForTesting(t)

	path := filepath.Join(t.TempDir(), "jobs.json")
	contents := `[null, {"source": "mock", "company": "TestCo", "title": "Backend Engineer", "level": "5-7년", "location": "Seoul", "url": "https://x.com/1", "date_found": "2024-05-01"}, null]`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	got := NewFile(path).Load(context.Background())
	require.Len(t, got, 1)
	require.Equal(t, "73b7f25effda40cc", got[0].UniqueKey)
	require.Equal(t, "Backend Engineer", got[0].Title)
}

func openMemorySQL(t *testing.T) SQL {
	t.Helper()
	config := dbconfig.Config{Driver: dbconfig.DriverSqlite, File: ":memory:"}
	db, err := config.OpenDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewSQL(context.Background(), db, config)
	require.NoError(t, err)
	return s
}

func TestSQLRoundTrip(t *testing.T) {
	telemetry.SetupForTesting(t)
	ctx := context.Background()
	s := openMemorySQL(t)

	require.Empty(t, s.Load(ctx))

	require.NoError(t, s.Save(ctx, samplePostings()))
	requireSamePostings(t, samplePostings(), s.Load(ctx))

	reversed := []posting.Posting{samplePostings()[1], samplePostings()[0]}
	require.NoError(t, s.Save(ctx, reversed))
	requireSamePostings(t, reversed, s.Load(ctx))

	require.NoError(t, s.Save(ctx, nil))
	require.Empty(t, s.Load(ctx))
}

func TestSQLSchemaIsIdempotent(t *testing.T) {
	telemetry.SetupForTesting(t)
	ctx := context.Background()
	s := openMemorySQL(t)

	require.NoError(t, s.Save(ctx, samplePostings()))
	again, err := NewSQL(ctx, s.db, dbconfig.Config{Driver: dbconfig.DriverSqlite})
	require.NoError(t, err)
	requireSamePostings(t, samplePostings(), again.Load(ctx))
}

func TestOpen(t *testing.T) {
	telemetry.SetupForTesting(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "jobs.json")
	s, closeStore, err := Open(ctx, Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, samplePostings()))
	require.NoError(t, closeStore())
	require.FileExists(t, path)

	dbPath := filepath.Join(t.TempDir(), "db", "jobs.db")
	s, closeStore, err = Open(ctx, Config{
		Backend: BackendSQL,
		DB:      dbconfig.Config{Driver: dbconfig.DriverSqlite, File: dbPath},
	})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, samplePostings()))
	requireSamePostings(t, samplePostings(), s.Load(ctx))
	require.NoError(t, closeStore())

	_, _, err = Open(ctx, Config{Backend: "cassandra"})
	require.Error(t, err)

	_, _, err = Open(ctx, Config{Backend: BackendRedis})
	require.Error(t, err)
}

func TestRedisRoundTrip(t *testing.T) {
	redisURL := os.Getenv("JOBTRACKER_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("JOBTRACKER_TEST_REDIS_URL is not set")
	}
	telemetry.SetupForTesting(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	key := "jobtracker:test:" + t.Name()
	t.Cleanup(func() { client.Del(context.Background(), key) })
	r := NewRedis(client, key)

	require.Empty(t, r.Load(ctx))
	require.NoError(t, r.Save(ctx, samplePostings()))
	requireSamePostings(t, samplePostings(), r.Load(ctx))
}
