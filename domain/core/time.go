package core

import (
	"time"
)

// Timestamp is a timezone-aware point in time.
type Timestamp time.Time

func NewTimestamp(t time.Time) Timestamp { return Timestamp(t) }

func Now() Timestamp { return Timestamp(time.Now()) }

func (t Timestamp) Time() time.Time { return time.Time(t) }

func (t Timestamp) IsZero() bool { return time.Time(t).IsZero() }

func (t Timestamp) Before(u Timestamp) bool { return time.Time(t).Before(time.Time(u)) }

func (t Timestamp) After(u Timestamp) bool { return time.Time(t).After(time.Time(u)) }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}

// EnsureZoned applies the local timezone to a naive timestamp, or UTC if
// the local zone cannot be determined. Recording.SessionStartTimeDt must
// never be exported as a naive timestamp.
func EnsureZoned(t time.Time) time.Time {
	if t.Location() != time.Local && t.Location() != time.UTC {
		return t
	}
	if t.Location() == time.UTC {
		if _, offset := t.Zone(); offset == 0 {
			loc := time.Now().Location()
			if loc != nil && loc.String() != "" && loc.String() != "UTC" {
				return t.In(loc)
			}
			return t.UTC()
		}
	}
	return t
}
