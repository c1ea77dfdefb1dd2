package chrono

import (
	"time"
	_ "time/tzdata"
)

var la *time.Location

func init() {
	var err error
	la, err = time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(err)
	}
}

// LA returns a [*time.Location] for America/Los_Angeles, the timezone every date shown
// by the San Francisco legislative calendar is in.
func LA() *time.Location {
	return la
}

// API is the interface that anything depending on the system clock should use.
type API interface {
	// Now returns the current time in America/Los_Angeles.
	Now() time.Time
}

// StandardImpl is the standard implementation of API using the standard library.
type StandardImpl struct{}

func NewStandardImpl() StandardImpl {
	return StandardImpl{}
}

func (StandardImpl) Now() time.Time {
	return time.Now().In(la)
}

// FixedImpl is an API that always returns the same instant, advanced by Step on every call.
type FixedImpl struct {
	Current time.Time
	Step    time.Duration
}

func (f *FixedImpl) Now() time.Time {
	now := f.Current
	f.Current = f.Current.Add(f.Step)
	return now.In(la)
}
