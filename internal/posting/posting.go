package posting

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Posting is a single job advertisement observed from one source.
type Posting struct {
	Source    string `json:"source"`
	Company   string `json:"company"`
	Title     string `json:"title"`
	Level     string `json:"level"`
	Location  string `json:"location"`
	URL       string `json:"url"`
	DateFound string `json:"date_found"`
	UniqueKey string `json:"unique_key"`
}

type Fields struct {
	Source    string
	Company   string
	Title     string
	Level     string
	Location  string
	URL       string
	DateFound string
}

// Identity derives the stable key of a posting: the first 16 hex characters
// of sha256("source|company|title|location|url").
func Identity(source, company, title, location, url string) string {
	material := strings.Join([]string{source, company, title, location, url}, "|")
	digest := sha256.Sum256([]byte(material))
	return hex.EncodeToString(digest[:])[:16]
}

// New builds a posting and computes its identity key once.
func New(f Fields) Posting {
	return Posting{
		Source:    f.Source,
		Company:   f.Company,
		Title:     f.Title,
		Level:     f.Level,
		Location:  f.Location,
		URL:       f.URL,
		DateFound: f.DateFound,
		UniqueKey: Identity(f.Source, f.Company, f.Title, f.Location, f.URL),
	}
}

// WithLevel returns a copy carrying a new display level, the key is kept.
func (p Posting) WithLevel(level string) Posting {
	p.Level = level
	return p
}

// UnmarshalJSON keeps a stored key verbatim and derives one for records
// written without it.
func (p *Posting) UnmarshalJSON(data []byte) error {
	type record Posting
	var r record
	err := json.Unmarshal(data, &r)
	if err != nil {
		return err
	}
	*p = Posting(r)
	if p.UniqueKey == "" {
		p.UniqueKey = Identity(p.Source, p.Company, p.Title, p.Location, p.URL)
	}
	return nil
}

// Dedupe keeps the first posting seen for every identity key.
func Dedupe(postings []Posting) []Posting {
	seen := make(map[string]struct{}, len(postings))
	out := make([]Posting, 0, len(postings))
	for _, p := range postings {
		if _, ok := seen[p.UniqueKey]; ok {
			continue
		}
		seen[p.UniqueKey] = struct{}{}
		out = append(out, p)
	}
	return out
}
