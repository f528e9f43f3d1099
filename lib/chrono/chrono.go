package chrono

import "time"

const DateLayout = "2006-01-02"

var seoul *time.Location

func init() {
	var err error
	seoul, err = time.LoadLocation("Asia/Seoul")
	if err != nil {
		// tzdata may be missing on minimal images
		seoul = time.FixedZone("KST", 9*60*60)
	}
}

// Seoul returns a [*time.Location] for Asia/Seoul.
func Seoul() *time.Location {
	return seoul
}

// API is the interface that anything depending on the system clock should use.
type API interface {
	Now() time.Time
	Location() *time.Location
}

// Today formats the current date of `api` as YYYY-MM-DD.
func Today(api API) string {
	return api.Now().In(api.Location()).Format(DateLayout)
}

// StandardImpl is the implementation of API backed by the system clock.
type StandardImpl struct {
	location *time.Location
}

func NewStandardImpl() StandardImpl {
	return StandardImpl{location: seoul}
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// FixedImpl always reports the same instant, it is used by tests and
// by replays of a given run date.
type FixedImpl struct {
	At time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.At
}

func (f FixedImpl) Location() *time.Location {
	return f.At.Location()
}
