package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/configutil/dbconfig"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed schema.sql
var Schema string

// MakeTx starts a transaction, `discard` rolls it back and `commit`
// commits it.
type MakeTx = func(ctx context.Context) (tx *sql.Tx, discard, commit func() error, err error)

func NewMakeTx(db *sql.DB) MakeTx {
	return func(ctx context.Context) (*sql.Tx, func() error, func() error, error) {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		return tx, tx.Rollback, tx.Commit, nil
	}
}

// SQL keeps the snapshot in the postings table, one row per posting in
// snapshot order.
type SQL struct {
	db     *sql.DB
	makeTx MakeTx
	insert string
}

// NewSQL creates the postings table when it does not exist yet.
func NewSQL(ctx context.Context, db *sql.DB, config dbconfig.Config) (SQL, error) {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return SQL{}, fmt.Errorf("create schema: %w", err)
	}

	params := make([]string, 9)
	for i := range params {
		params[i] = config.Placeholder(i + 1)
	}
	insert := fmt.Sprintf(
		"INSERT INTO postings (position, unique_key, source, company, title, level, location, url, date_found) VALUES (%s)",
		strings.Join(params, ", "),
	)
	return SQL{db: db, makeTx: NewMakeTx(db), insert: insert}, nil
}

func (s SQL) load(ctx context.Context) ([]posting.Posting, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"SELECT unique_key, source, company, title, level, location, url, date_found FROM postings ORDER BY position",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []posting.Posting{}
	for rows.Next() {
		var p posting.Posting
		err = rows.Scan(&p.UniqueKey, &p.Source, &p.Company, &p.Title, &p.Level, &p.Location, &p.URL, &p.DateFound)
		if err != nil {
			return nil, err
		}
		if p.UniqueKey == "" {
			p.UniqueKey = posting.Identity(p.Source, p.Company, p.Title, p.Location, p.URL)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s SQL) Load(ctx context.Context) []posting.Posting {
	ctx, span := tracer.Start(ctx, "sql:Load")
	defer span.End()

	out, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load snapshot")
		slog.ErrorContext(ctx, "failed to load snapshot from database", "err", err)
		return []posting.Posting{}
	}
	return out
}

func (s SQL) Save(ctx context.Context, postings []posting.Posting) error {
	ctx, span := tracer.Start(ctx, "sql:Save", trace.WithAttributes(
		attribute.Int("postings", len(postings)),
	))
	defer span.End()

	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to begin transaction")
		return err
	}
	defer discard()

	_, err = tx.ExecContext(ctx, "DELETE FROM postings")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to clear snapshot")
		return err
	}
	for i, p := range postings {
		_, err = tx.ExecContext(
			ctx, s.insert,
			i, p.UniqueKey, p.Source, p.Company, p.Title, p.Level, p.Location, p.URL, p.DateFound,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to insert posting")
			return fmt.Errorf("insert posting %s: %w", p.UniqueKey, err)
		}
	}

	err = commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to commit snapshot")
		return err
	}
	return nil
}
