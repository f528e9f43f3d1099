package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"jobtracker-backend/internal/posting"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// File keeps the snapshot as a pretty printed json array.
type File struct {
	path string
}

func NewFile(path string) File {
	return File{path: path}
}

func (f File) Path() string {
	return f.path
}

func decodeSnapshot(data []byte) ([]posting.Posting, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []posting.Posting{}, nil
	}
	var records []*posting.Posting
	err := json.Unmarshal(data, &records)
	if err != nil {
		return nil, err
	}
	out := make([]posting.Posting, 0, len(records))
	for _, p := range records {
		if p == nil {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func encodeSnapshot(postings []posting.Posting) ([]byte, error) {
	if postings == nil {
		postings = []posting.Posting{}
	}
	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(postings)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f File) Load(ctx context.Context) []posting.Posting {
	_, span := tracer.Start(ctx, "file:Load", trace.WithAttributes(attribute.String("path", f.path)))
	defer span.End()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []posting.Posting{}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read snapshot")
		slog.ErrorContext(ctx, "failed to read snapshot", "path", f.path, "err", err)
		return []posting.Posting{}
	}

	out, err := decodeSnapshot(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed snapshot")
		slog.ErrorContext(ctx, "malformed snapshot, starting from empty", "path", f.path, "err", err)
		return []posting.Posting{}
	}
	return out
}

func (f File) Save(ctx context.Context, postings []posting.Posting) error {
	_, span := tracer.Start(ctx, "file:Save", trace.WithAttributes(
		attribute.String("path", f.path),
		attribute.Int("postings", len(postings)),
	))
	defer span.End()

	data, err := encodeSnapshot(postings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode snapshot")
		return err
	}
	err = os.MkdirAll(filepath.Dir(f.path), 0755)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create snapshot directory")
		return err
	}
	err = os.WriteFile(f.path, data, 0644)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write snapshot")
		return err
	}
	return nil
}
