// Package coordinator decides when the segments of the current video are skipped or
// announced, reconciling unreliable playback samples with wall-clock timers.
//
// The coordinator never drives playback itself. It hands skip requests to a
// PlayerControl and notices to a NoticeRenderer, and owns the canonical segment
// store, the virtual time tracker, the timers and the notice registry.
package coordinator

import (
	"time"

	"github.com/anisan-cli/skipsync/notice"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/anisan-cli/skipsync/syncutil"
	"github.com/anisan-cli/skipsync/timer"
	"github.com/anisan-cli/skipsync/vtime"
	"github.com/jonboulle/clockwork"
	"github.com/samber/mo"
)

// PlayerControl performs skips on the host player.
type PlayerControl interface {
	// Skip moves playback of segment id to target seconds. It runs on the
	// coordinator's thread, which waits for it, so it must return promptly and must
	// not call back into the coordinator.
	Skip(id segment.ID, target float64) error
}

// Urgency grades how close an upcoming segment is.
type Urgency int

const (
	Low Urgency = iota
	High
)

func (u Urgency) String() string {
	if u == High {
		return "high"
	}
	return "low"
}

// NoticeRenderer shows notices on behalf of the coordinator.
// A nil Notice means nothing was shown.
type NoticeRenderer interface {
	// ShowSkipNotice announces seg. auto is true when the segment was skipped
	// automatically and false when the user is left to skip it.
	ShowSkipNotice(seg segment.Segment, auto bool) notice.Notice
	// ShowAdvanceNotice warns that seg starts in remaining seconds.
	ShowAdvanceNotice(seg segment.Segment, remaining float64, urgency Urgency) notice.Notice
}

// Options tunes scheduling.
type Options struct {
	// Clock drives timers and the virtual time. Nil means the real clock.
	Clock clockwork.Clock
	// MinDuration ignores segments shorter than this many seconds.
	MinDuration float64
	// AdvanceNoticeLead is how long before a segment the advance notice appears.
	// Zero disables advance notices.
	AdvanceNoticeLead time.Duration
	// AdvanceNoticeRefresh is how often a shown advance notice is refreshed.
	AdvanceNoticeRefresh time.Duration
	// SkipCheckInterval is the period of the safety check for segments the
	// one-shot schedule missed. Zero disables it.
	SkipCheckInterval time.Duration
	// VirtualTimeRefresh is the period the virtual time is re-evaluated while
	// playing. Zero disables it.
	VirtualTimeRefresh time.Duration
	// CategoryActions overrides the default action of a category.
	CategoryActions map[segment.Category]segment.Action
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		AdvanceNoticeLead:    3 * time.Second,
		AdvanceNoticeRefresh: 500 * time.Millisecond,
		SkipCheckInterval:    time.Second,
		VirtualTimeRefresh:   250 * time.Millisecond,
	}
}

// Lookup is the state of fetching segment data for the current video.
type Lookup struct {
	DataFound          bool
	LastResponseStatus int
	ShownFetchWarning  bool
	Waiting            bool
}

// Coordinator is the playback-time tracking and skip-scheduling coordinator.
// It is safe for concurrent use: every method runs on its single logical thread.
type Coordinator struct {
	loop     syncutil.Loop
	clock    clockwork.Clock
	opts     Options
	player   PlayerControl
	renderer NoticeRenderer

	store   *segment.Store
	tracker *vtime.Tracker
	timers  *timer.Manager
	notices *notice.Registry
	expiry  map[notice.Notice]clockwork.Timer

	advance    notice.Notice
	advanceFor segment.ID
	submission notice.Notice

	announced map[segment.ID]struct{}
	target    mo.Option[segment.ID]
	selected  mo.Option[segment.ID]
	switching Switching
	lookup    Lookup

	lastCheckTime      time.Time
	lastCheckVideoTime float64
	previewed          bool
	closed             bool
}

// New creates a coordinator. Nil collaborators are replaced by ones that do nothing.
func New(player PlayerControl, renderer NoticeRenderer, opts Options) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.AdvanceNoticeRefresh <= 0 {
		opts.AdvanceNoticeRefresh = DefaultOptions().AdvanceNoticeRefresh
	}
	if player == nil {
		player = nopPlayer{}
	}
	if renderer == nil {
		renderer = nopRenderer{}
	}

	c := &Coordinator{
		clock:              opts.Clock,
		opts:               opts,
		player:             player,
		renderer:           renderer,
		store:              segment.NewStore(),
		tracker:            vtime.NewTracker(opts.Clock),
		notices:            notice.NewRegistry(),
		expiry:             make(map[notice.Notice]clockwork.Timer),
		announced:          make(map[segment.ID]struct{}),
		lastCheckVideoTime: -1,
	}
	c.timers = timer.NewManager(opts.Clock, &c.loop)

	return c
}

// do runs fn on the loop unless the coordinator was closed.
func (c *Coordinator) do(fn func()) {
	c.loop.Do(func() {
		if c.closed {
			return
		}
		fn()
	})
}

// Close cancels every timer and closes every notice, including the submission notice.
// Later calls on the coordinator are ignored.
func (c *Coordinator) Close() {
	c.do(func() {
		c.timers.CancelAll()
		c.closeAllNotices()
		if c.submission != nil {
			c.submission.Close()
			c.submission = nil
		}
		c.closed = true
	})
}

// Segments returns a copy of the confirmed segments.
func (c *Coordinator) Segments() (list []segment.Segment) {
	c.loop.Do(func() { list = c.store.Segments() })
	return
}

// Submissions returns a copy of the pending submissions.
func (c *Coordinator) Submissions() (list []segment.Segment) {
	c.loop.Do(func() { list = c.store.Submissions() })
	return
}

// Segment looks up a confirmed segment.
func (c *Coordinator) Segment(id segment.ID) (seg segment.Segment, ok bool) {
	c.loop.Do(func() { seg, ok = c.store.Lookup(id) })
	return
}

// Video returns the current video context.
func (c *Coordinator) Video() (v segment.VideoContext) {
	c.loop.Do(func() { v = c.store.Video() })
	return
}

// IsLocked reports whether cat is locked for the current video.
func (c *Coordinator) IsLocked(cat segment.Category) (locked bool) {
	c.loop.Do(func() { locked = c.store.IsLocked(cat) })
	return
}

// Switching returns the switching-videos flag.
func (c *Coordinator) Switching() (s Switching) {
	c.loop.Do(func() { s = c.switching })
	return
}

// TimerState returns the state of a timer role.
func (c *Coordinator) TimerState(role timer.Role) (s timer.State) {
	c.loop.Do(func() { s = c.timers.State(role) })
	return
}

// EstimateNow returns the virtual playback position, or vtime.ErrNotReady.
func (c *Coordinator) EstimateNow() (now float64, err error) {
	c.loop.Do(func() { now, err = c.tracker.EstimateNow() })
	return
}

// Snapshot returns the last recorded playback sample.
func (c *Coordinator) Snapshot() (s mo.Option[vtime.Snapshot]) {
	c.loop.Do(func() { s = c.tracker.Snapshot() })
	return
}

// Lookup returns the segment lookup state.
func (c *Coordinator) Lookup() (l Lookup) {
	c.loop.Do(func() { l = c.lookup })
	return
}

// LastCheck returns when the virtual time was last re-evaluated while playing, and
// the position found then. The position is -1 before the first check.
func (c *Coordinator) LastCheck() (at time.Time, videoTime float64) {
	c.loop.Do(func() { at, videoTime = c.lastCheckTime, c.lastCheckVideoTime })
	return
}

// Selected returns the segment the user selected, if any.
func (c *Coordinator) Selected() (id mo.Option[segment.ID]) {
	c.loop.Do(func() { id = c.selected })
	return
}

// Previewed reports whether a segment was previewed during this video.
func (c *Coordinator) Previewed() (previewed bool) {
	c.loop.Do(func() { previewed = c.previewed })
	return
}

// NoticeCount returns the number of registered skip notices.
func (c *Coordinator) NoticeCount() (n int) {
	c.loop.Do(func() { n = c.notices.Len() })
	return
}

type nopPlayer struct{}

func (nopPlayer) Skip(segment.ID, float64) error { return nil }

type nopRenderer struct{}

func (nopRenderer) ShowSkipNotice(segment.Segment, bool) notice.Notice { return nil }

func (nopRenderer) ShowAdvanceNotice(segment.Segment, float64, Urgency) notice.Notice { return nil }
