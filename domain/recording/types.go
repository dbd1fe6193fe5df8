// Package recording holds the data model: Recording, Channel,
// and the trial-indexed operations analyses consume. Values are immutable
// once loaded and owned by their parent; derived views (averages, time
// vectors) are computed lazily on request.
package recording

import (
	"time"

	"ephyscore/domain/core"
)

// Recording is produced by an external loader (ports.Loader) and is
// immutable from the core's perspective; no analysis mutates it.
type Recording struct {
	SourceFile          string
	Channels            map[string]*Channel
	SamplingRate         float64 // Hz; zero/absent when channels are heterogeneous
	TStart               float64 // seconds, relative to session start
	SessionStartTimeDt   *time.Time
	ProtocolName         string
	InjectedCurrent      *float64
	Metadata             map[string]interface{}
}

// Duration is the recording's derived duration in seconds: the longest
// channel duration across all channels, 0 if there are no channels.
func (r *Recording) Duration() float64 {
	var max float64
	for _, ch := range r.Channels {
		if d := ch.Duration(); d > max {
			max = d
		}
	}
	return max
}

// SessionStart returns a timezone-aware session start timestamp, applying
// the local zone (or UTC) when the loader did not supply one; callers must
// never receive a naive timestamp.
func (r *Recording) SessionStart() time.Time {
	if r.SessionStartTimeDt != nil {
		return core.EnsureZoned(*r.SessionStartTimeDt)
	}
	return core.EnsureZoned(time.Now())
}

// Channel is one logical data channel within a Recording: an ordered
// sequence of trials (sweeps), each a 1-D sample array, sharing a
// sampling rate and start offset.
type Channel struct {
	ID          string
	Name        string
	Units       string // "mV", "pA", "unknown", "dimensionless", ...
	SamplingRate float64 // Hz, > 0
	TStart       float64 // seconds, relative to recording start

	DataTrials [][]float64

	// Optional electrode metadata (§3); nil/"" when not supplied by the loader.
	Description string
	Location    string
	Filtering   string
	Gain        *float64
	Offset      *float64
	Resistance  *float64
	Seal        *float64
}

// NumTrials returns the number of recorded sweeps.
func (c *Channel) NumTrials() int { return len(c.DataTrials) }

// Duration is the longest trial's duration in seconds, 0 if the channel
// has no trials.
func (c *Channel) Duration() float64 {
	if c.SamplingRate <= 0 {
		return 0
	}
	var max int
	for _, trial := range c.DataTrials {
		if len(trial) > max {
			max = len(trial)
		}
	}
	return float64(max) / c.SamplingRate
}

// validTrial reports whether trial index i addresses a real, non-empty trial.
func (c *Channel) validTrial(i int) bool {
	return i >= 0 && i < len(c.DataTrials) && len(c.DataTrials[i]) > 0
}

// GetData returns trial i's raw samples. ok is false when i is out of
// range or the trial is empty — callers must not treat a false ok as an
// error, returning an absent value instead of raising an exception.
func (c *Channel) GetData(i int) (data []float64, ok bool) {
	if !c.validTrial(i) {
		return nil, false
	}
	return c.DataTrials[i], true
}

// GetRelativeTimeVector returns trial i's time vector with t[0] = 0. It is
// computed lazily: the caller asking only for its length should use
// TimeVectorLen instead of materializing the array.
func (c *Channel) GetRelativeTimeVector(i int) (t []float64, ok bool) {
	if !c.validTrial(i) || c.SamplingRate <= 0 {
		return nil, false
	}
	return timeVector(len(c.DataTrials[i]), c.SamplingRate, 0), true
}

// GetTimeVector returns trial i's time vector relative to the recording
// start (offset = c.TStart).
func (c *Channel) GetTimeVector(i int) (t []float64, ok bool) {
	if !c.validTrial(i) || c.SamplingRate <= 0 {
		return nil, false
	}
	return timeVector(len(c.DataTrials[i]), c.SamplingRate, c.TStart), true
}

// TimeVectorLen returns the length a time vector for trial i would have,
// without allocating it.
func (c *Channel) TimeVectorLen(i int) (n int, ok bool) {
	if !c.validTrial(i) {
		return 0, false
	}
	return len(c.DataTrials[i]), true
}

func timeVector(n int, rate, offset float64) []float64 {
	t := make([]float64, n)
	for k := range t {
		t[k] = float64(k)/rate + offset
	}
	return t
}

// GetAveragedData averages all trials sample-by-sample. It is defined iff
// there is at least one trial and every trial has the same length;
// otherwise ok is false.
func (c *Channel) GetAveragedData() (avg []float64, ok bool) {
	if len(c.DataTrials) == 0 {
		return nil, false
	}
	n := len(c.DataTrials[0])
	if n == 0 {
		return nil, false
	}
	for _, trial := range c.DataTrials {
		if len(trial) != n {
			return nil, false
		}
	}
	avg = make([]float64, n)
	for _, trial := range c.DataTrials {
		for k, v := range trial {
			avg[k] += v
		}
	}
	inv := 1.0 / float64(len(c.DataTrials))
	for k := range avg {
		avg[k] *= inv
	}
	return avg, true
}

// GetAveragedTimeVector is the relative time vector matching
// GetAveragedData's length, at the channel's own sampling rate.
func (c *Channel) GetAveragedTimeVector() (t []float64, ok bool) {
	avg, ok := c.GetAveragedData()
	if !ok || c.SamplingRate <= 0 {
		return nil, false
	}
	return timeVector(len(avg), c.SamplingRate, 0), true
}
