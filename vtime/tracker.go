// Package vtime estimates the current playback position between discrete player samples.
package vtime

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/mo"
)

// ErrNotReady is returned by EstimateNow before any sample has been recorded.
// Callers must defer scheduling rather than assume a position of zero.
var ErrNotReady = errors.New("no playback sample recorded")

// Snapshot is the most recent trustworthy pairing of a playback position and the
// wall-clock instant it was observed.
type Snapshot struct {
	VideoTime        float64
	PreciseTime      time.Time
	FromPause        bool
	ApproximateDelay time.Duration
}

// Tracker extrapolates "now" from the last Snapshot using elapsed wall-clock time.
// It is not safe for concurrent use.
type Tracker struct {
	clock    clockwork.Clock
	last     mo.Option[Snapshot]
	waiting  mo.Option[float64]
	duration float64
	rate     float64
}

// NewTracker creates a tracker reading wall-clock time from clock.
// A nil clock means the real clock.
func NewTracker(clock clockwork.Clock) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Tracker{
		clock: clock,
		rate:  1,
	}
}

// Sample records a ground-truth observation taken at now.
func (t *Tracker) Sample(videoTime float64, now time.Time, fromPause bool) {
	t.record(videoTime, now, mo.None[time.Time](), fromPause)
}

// SampleCaptured records an observation the host captured at capturedAt but only
// reported at now; the difference is kept as the snapshot's approximate delay.
func (t *Tracker) SampleCaptured(videoTime float64, now, capturedAt time.Time, fromPause bool) {
	t.record(videoTime, now, mo.Some(capturedAt), fromPause)
}

func (t *Tracker) record(videoTime float64, now time.Time, capturedAt mo.Option[time.Time], fromPause bool) {
	var delay time.Duration
	if at, ok := capturedAt.Get(); ok {
		delay = max(now.Sub(at), 0)
	}

	t.last = mo.Some(Snapshot{
		VideoTime:        videoTime,
		PreciseTime:      now,
		FromPause:        fromPause,
		ApproximateDelay: delay,
	})
}

// Waiting records that the player stalled to buffer at videoTime. The estimate stays
// frozen there until the next sample.
func (t *Tracker) Waiting(videoTime float64, now time.Time) {
	t.waiting = mo.Some(videoTime)
	t.Sample(videoTime, now, true)
}

// LastTimeFromWaitingEvent returns the position of the last buffering stall.
func (t *Tracker) LastTimeFromWaitingEvent() mo.Option[float64] {
	return t.waiting
}

// SetDuration bounds the estimate by the video's duration. Zero means unknown.
func (t *Tracker) SetDuration(seconds float64) {
	t.duration = max(seconds, 0)
}

// SetPlaybackRate scales elapsed wall-clock time. Non-positive rates are ignored.
func (t *Tracker) SetPlaybackRate(rate float64) {
	if rate > 0 {
		t.rate = rate
	}
}

// PlaybackRate returns the current playback rate.
func (t *Tracker) PlaybackRate() float64 {
	return t.rate
}

// Snapshot returns the last recorded observation, if any.
func (t *Tracker) Snapshot() mo.Option[Snapshot] {
	return t.last
}

// Paused reports whether the estimate is frozen. It is false when nothing was sampled.
func (t *Tracker) Paused() bool {
	s, ok := t.last.Get()
	return ok && s.FromPause
}

// EstimateNow returns the extrapolated playback position in seconds.
// The estimate never moves backwards from the sample and never passes a known duration.
func (t *Tracker) EstimateNow() (float64, error) {
	s, ok := t.last.Get()
	if !ok {
		return 0, ErrNotReady
	}

	if s.FromPause {
		return s.VideoTime, nil
	}

	elapsed := max(t.clock.Since(s.PreciseTime)-s.ApproximateDelay, 0)
	estimate := s.VideoTime + elapsed.Seconds()*t.rate
	if t.duration > 0 && estimate > t.duration {
		estimate = max(t.duration, s.VideoTime)
	}

	return estimate, nil
}

// Reset forgets every sample, the duration and the playback rate.
func (t *Tracker) Reset() {
	t.last = mo.None[Snapshot]()
	t.waiting = mo.None[float64]()
	t.duration = 0
	t.rate = 1
}
