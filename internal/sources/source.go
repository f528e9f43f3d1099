package sources

import (
	"context"
	"errors"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/textutil"
	"sort"

	"github.com/antzucaro/matchr"
)

// selector roles understood by the list extractors
const (
	RoleJobList    = "job_list"
	RoleTitle      = "title"
	RoleLink       = "link"
	RoleLocation   = "location"
	RoleExperience = "experience"
)

// SelfSelector as a title or link selector means the job container itself.
const (
	SelfSelector   = "self"
	selfSelectorKo = "자체"
)

var (
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrMissingTitle          = errors.New("item has no title")
)

// Target is one company entry of the configuration.
type Target struct {
	Name      string            `json:"name"`
	Source    string            `json:"source"`
	URL       string            `json:"url"`
	Selectors map[string]string `json:"selectors"`
}

func (t Target) Selector(role string) string {
	if t.Selectors == nil {
		return ""
	}
	return t.Selectors[role]
}

// Source fetches the currently open postings of a single target.
type Source interface {
	Name() string
	FetchCompany(ctx context.Context, target Target) ([]posting.Posting, error)
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string {
	return e.err.Error()
}

func (e permanentError) Unwrap() error {
	return e.err
}

// Permanent marks `err` as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Registry maps source keys to plugin instances, it is built once at
// startup and only read afterwards.
type Registry struct {
	sources map[string]Source
}

func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: map[string]Source{}}
	for _, src := range sources {
		r.Register(src)
	}
	return r
}

func (r *Registry) Register(src Source) {
	r.RegisterAs(src.Name(), src)
}

// RegisterAs makes `src` reachable under an additional key.
func (r *Registry) RegisterAs(key string, src Source) {
	r.sources[textutil.NormalizeKey(key)] = src
}

func (r *Registry) Get(key string) (Source, bool) {
	src, ok := r.sources[textutil.NormalizeKey(key)]
	return src, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suggest returns the registered key closest to an unknown `key`.
func (r *Registry) Suggest(key string) (string, bool) {
	key = textutil.NormalizeKey(key)
	best := ""
	bestScore := 0.0
	for _, name := range r.Names() {
		score := matchr.JaroWinkler(key, name, false)
		if score > bestScore {
			best = name
			bestScore = score
		}
	}
	if bestScore < 0.8 {
		return "", false
	}
	return best, true
}
