package coordinator

import (
	"errors"
	"testing"
	"time"

	"github.com/anisan-cli/skipsync/notice"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/anisan-cli/skipsync/timer"
	"github.com/anisan-cli/skipsync/vtime"
	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

type skipCall struct {
	id     segment.ID
	target float64
}

type fakePlayer struct {
	calls chan skipCall
	err   error
}

func (p *fakePlayer) Skip(id segment.ID, target float64) error {
	p.calls <- skipCall{id, target}
	return p.err
}

type shown struct {
	id      segment.ID
	auto    bool
	advance bool
	urgency Urgency
	notice  *fakeNotice
}

type fakeNotice struct {
	closed   bool
	lifetime time.Duration
}

func (n *fakeNotice) Close() { n.closed = true }

func (n *fakeNotice) Lifetime() time.Duration { return n.lifetime }

type fakeRenderer struct {
	shown chan shown
	// lifetime of the skip notices shown, zero for notices that never expire.
	lifetime time.Duration
}

func (r *fakeRenderer) ShowSkipNotice(seg segment.Segment, auto bool) notice.Notice {
	n := &fakeNotice{lifetime: r.lifetime}
	r.shown <- shown{id: seg.ID, auto: auto, notice: n}
	return n
}

func (r *fakeRenderer) ShowAdvanceNotice(seg segment.Segment, _ float64, urgency Urgency) notice.Notice {
	n := &fakeNotice{}
	r.shown <- shown{id: seg.ID, advance: true, urgency: urgency, notice: n}
	return n
}

func receive[T any](ch chan T) (T, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(time.Second):
		var zero T
		return zero, false
	}
}

func silent[T any](ch chan T) bool {
	select {
	case <-ch:
		return false
	case <-time.After(50 * time.Millisecond):
		return true
	}
}

type fixture struct {
	clock    *clockwork.FakeClock
	player   *fakePlayer
	renderer *fakeRenderer
	c        *Coordinator
}

func newFixture(tune func(*Options)) *fixture {
	clock := clockwork.NewFakeClock()
	opts := Options{Clock: clock}
	if tune != nil {
		tune(&opts)
	}

	f := &fixture{
		clock:    clock,
		player:   &fakePlayer{calls: make(chan skipCall, 16)},
		renderer: &fakeRenderer{shown: make(chan shown, 16)},
	}
	f.c = New(f.player, f.renderer, opts)
	return f
}

func segments() []segment.Segment {
	return []segment.Segment{
		{ID: "sponsor", Start: 10, End: 20, Category: segment.Sponsor},
		{ID: "outro", Start: 50, End: 60, Category: segment.Outro},
	}
}

func TestSkipScheduling(t *testing.T) {
	Convey("Given a coordinator with two segments", t, func() {
		f := newFixture(nil)
		defer f.c.Close()

		f.c.OnVideoChanged(segment.VideoContext{VideoID: "v1", Duration: 55})
		f.c.SetSegments(segments())

		Convey("Nothing should be scheduled before the first sample", func() {
			So(f.c.TimerState(timer.SkipSchedule), ShouldEqual, timer.Idle)
			_, err := f.c.EstimateNow()
			So(errors.Is(err, vtime.ErrNotReady), ShouldBeTrue)
		})

		Convey("A sample should arm the skip schedule for the next segment", func() {
			f.c.OnTimeSample(5, f.clock.Now(), false)
			So(f.c.TimerState(timer.SkipSchedule), ShouldEqual, timer.Scheduled)

			f.clock.Advance(4 * time.Second)
			So(silent(f.player.calls), ShouldBeTrue)

			f.clock.Advance(time.Second)
			call, ok := receive(f.player.calls)
			So(ok, ShouldBeTrue)
			So(call, ShouldResemble, skipCall{"sponsor", 20})

			n, ok := receive(f.renderer.shown)
			So(ok, ShouldBeTrue)
			So(n.id, ShouldEqual, segment.ID("sponsor"))
			So(n.auto, ShouldBeTrue)

			seg, _ := f.c.Segment("sponsor")
			So(seg.Skipped, ShouldBeTrue)
			So(f.c.NoticeCount(), ShouldEqual, 1)

			Convey("and then the following segment, clamped to the duration", func() {
				f.clock.Advance(30 * time.Second)
				call, ok := receive(f.player.calls)
				So(ok, ShouldBeTrue)
				So(call, ShouldResemble, skipCall{"outro", 55})
			})
		})

		Convey("A seek into a segment should skip it at once", func() {
			f.c.OnSeek(12)
			call, ok := receive(f.player.calls)
			So(ok, ShouldBeTrue)
			So(call.id, ShouldEqual, segment.ID("sponsor"))

			now, err := f.c.EstimateNow()
			So(err, ShouldBeNil)
			So(now, ShouldEqual, 20)
		})

		Convey("Skipped segments should not be skipped again after seeking back", func() {
			f.c.OnSeek(12)
			_, _ = receive(f.player.calls)

			f.c.OnSeek(11)
			f.clock.Advance(38 * time.Second)
			So(silent(f.player.calls), ShouldBeTrue)

			f.clock.Advance(time.Second)
			call, ok := receive(f.player.calls)
			So(ok, ShouldBeTrue)
			So(call.id, ShouldEqual, segment.ID("outro"))
		})

		Convey("Pausing should defer scheduling until playback resumes", func() {
			f.c.OnTimeSample(5, f.clock.Now(), false)
			f.c.OnPause(6)
			So(f.c.TimerState(timer.SkipSchedule), ShouldEqual, timer.Idle)

			f.clock.Advance(10 * time.Second)
			So(silent(f.player.calls), ShouldBeTrue)

			f.c.OnPlay(6)
			So(f.c.TimerState(timer.SkipSchedule), ShouldEqual, timer.Scheduled)
			f.clock.Advance(4 * time.Second)
			_, ok := receive(f.player.calls)
			So(ok, ShouldBeTrue)
		})

		Convey("A locked category should never be armed", func() {
			f.c.LockCategory(segment.Sponsor)
			f.c.LockCategory(segment.Outro)
			f.c.OnTimeSample(5, f.clock.Now(), false)
			So(f.c.TimerState(timer.SkipSchedule), ShouldEqual, timer.Idle)

			f.c.OnSeek(12)
			So(silent(f.player.calls), ShouldBeTrue)

			So(f.c.ToggleCategoryLock(segment.Outro), ShouldBeFalse)
			So(f.c.TimerState(timer.SkipSchedule), ShouldEqual, timer.Scheduled)
		})

		Convey("A faster playback rate should shorten the wait", func() {
			f.c.OnTimeSample(0, f.clock.Now(), false)
			f.c.SetPlaybackRate(2)
			f.clock.Advance(5 * time.Second)
			call, ok := receive(f.player.calls)
			So(ok, ShouldBeTrue)
			So(call.id, ShouldEqual, segment.ID("sponsor"))
		})

		Convey("A manual skip of an unknown segment should be ignored", func() {
			f.c.RequestSkip("missing")
			So(silent(f.player.calls), ShouldBeTrue)
		})

		Convey("A manual skip should ignore locks", func() {
			f.c.LockCategory(segment.Sponsor)
			f.c.RequestSkip("sponsor")
			call, ok := receive(f.player.calls)
			So(ok, ShouldBeTrue)
			So(call.target, ShouldEqual, 20)
		})

		Convey("Skipping the current segment should find it from the estimate", func() {
			f.c.LockCategory(segment.Sponsor)
			f.c.OnTimeSample(15, f.clock.Now(), true)
			So(f.c.RequestSkipCurrent(), ShouldBeTrue)
			call, _ := receive(f.player.calls)
			So(call.id, ShouldEqual, segment.ID("sponsor"))
		})
	})
}

func TestSkipActions(t *testing.T) {
	Convey("Given a coordinator", t, func() {
		f := newFixture(func(o *Options) {
			o.CategoryActions = map[segment.Category]segment.Action{segment.Outro: segment.ActionNotice}
		})
		defer f.c.Close()
		f.c.OnVideoChanged(segment.VideoContext{VideoID: "v1"})

		Convey("Notice segments should be announced once without skipping", func() {
			f.c.SetSegments(segments())
			f.c.OnSeek(55)

			n, ok := receive(f.renderer.shown)
			So(ok, ShouldBeTrue)
			So(n.id, ShouldEqual, segment.ID("outro"))
			So(n.auto, ShouldBeFalse)
			So(silent(f.player.calls), ShouldBeTrue)

			f.c.OnSeek(52)
			So(silent(f.renderer.shown), ShouldBeTrue)
		})

		Convey("Whitelisted channels should schedule nothing", func() {
			f.c.OnVideoChanged(segment.VideoContext{VideoID: "v2", ChannelWhitelisted: true})
			f.c.SetSegments(segments())
			f.c.OnSeek(12)
			So(silent(f.player.calls), ShouldBeTrue)
			So(f.c.TimerState(timer.SkipSchedule), ShouldEqual, timer.Idle)
		})

		Convey("Segments below the minimum duration should be ignored", func() {
			g := newFixture(func(o *Options) { o.MinDuration = 15 })
			defer g.c.Close()
			g.c.SetSegments(segments())
			g.c.OnSeek(12)
			So(silent(g.player.calls), ShouldBeTrue)
		})

		Convey("A failed skip should fall back to a manual notice", func() {
			f.player.err = errors.New("ipc down")
			f.c.SetSegments(segments())
			f.c.OnSeek(12)

			_, ok := receive(f.player.calls)
			So(ok, ShouldBeTrue)
			n, ok := receive(f.renderer.shown)
			So(ok, ShouldBeTrue)
			So(n.auto, ShouldBeFalse)

			seg, _ := f.c.Segment("sponsor")
			So(seg.Skipped, ShouldBeFalse)
		})

		Convey("Invalid segments should be dropped", func() {
			f.c.SetSegments(append(segments(), segment.Segment{ID: "bad", Start: 5, End: 1, Category: segment.Sponsor}))
			So(f.c.Segments(), ShouldHaveLength, 2)
			So(f.c.Lookup().DataFound, ShouldBeTrue)
		})
	})
}

func TestRecurringTimers(t *testing.T) {
	Convey("Given a coordinator with recurring checks", t, func() {
		f := newFixture(func(o *Options) {
			o.SkipCheckInterval = time.Second
			o.VirtualTimeRefresh = 250 * time.Millisecond
			o.AdvanceNoticeLead = 4 * time.Second
			o.AdvanceNoticeRefresh = time.Second
		})
		defer f.c.Close()
		f.c.OnVideoChanged(segment.VideoContext{VideoID: "v1"})
		f.c.SetSegments(segments())

		Convey("Playing should arm every role and pausing should disarm them", func() {
			f.c.OnTimeSample(0, f.clock.Now(), false)
			for _, role := range timer.Roles() {
				So(f.c.TimerState(role), ShouldEqual, timer.Scheduled)
			}

			f.c.OnPause(1)
			for _, role := range timer.Roles() {
				So(f.c.TimerState(role), ShouldEqual, timer.Idle)
			}
		})

		Convey("The advance notice should show before the segment and close when it starts", func() {
			f.c.OnTimeSample(0, f.clock.Now(), false)

			f.clock.Advance(6 * time.Second)
			n, ok := receive(f.renderer.shown)
			So(ok, ShouldBeTrue)
			So(n.advance, ShouldBeTrue)
			So(n.urgency, ShouldEqual, Low)

			f.clock.Advance(2 * time.Second)
			var urgent shown
			for i := 0; i < 4; i++ {
				s, ok := receive(f.renderer.shown)
				So(ok, ShouldBeTrue)
				if s.urgency == High {
					urgent = s
					break
				}
			}
			So(urgent.advance, ShouldBeTrue)

			f.clock.Advance(2 * time.Second)
			_, ok = receive(f.player.calls)
			So(ok, ShouldBeTrue)
			So(urgent.notice.closed, ShouldBeTrue)
		})

		Convey("Locking the category of a shown advance notice should close it", func() {
			f.c.SetSegments(segments()[:1])
			f.c.OnTimeSample(0, f.clock.Now(), false)

			f.clock.Advance(6 * time.Second)
			n, ok := receive(f.renderer.shown)
			So(ok, ShouldBeTrue)
			So(n.advance, ShouldBeTrue)

			f.c.LockCategory(segment.Sponsor)
			So(n.notice.closed, ShouldBeTrue)
			So(f.c.TimerState(timer.AdvanceSkipSchedule), ShouldEqual, timer.Idle)
			So(f.c.TimerState(timer.SkipSchedule), ShouldEqual, timer.Idle)
		})

		Convey("Seeking past the last segment should close its advance notice", func() {
			f.c.SetSegments(segments()[:1])
			f.c.OnTimeSample(0, f.clock.Now(), false)

			f.clock.Advance(6 * time.Second)
			n, ok := receive(f.renderer.shown)
			So(ok, ShouldBeTrue)
			So(n.advance, ShouldBeTrue)

			f.c.OnSeek(30)
			So(n.notice.closed, ShouldBeTrue)
			So(f.c.TimerState(timer.AdvanceSkipSchedule), ShouldEqual, timer.Idle)
			So(silent(f.player.calls), ShouldBeTrue)
		})

		Convey("The virtual time refresh should record its checks", func() {
			f.c.OnTimeSample(0, f.clock.Now(), false)
			f.clock.Advance(time.Second)

			So(waitFor(func() bool {
				_, v := f.c.LastCheck()
				return v > 0
			}), ShouldBeTrue)
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestVideoChanged(t *testing.T) {
	Convey("Given a coordinator in the middle of a video", t, func() {
		f := newFixture(func(o *Options) {
			o.SkipCheckInterval = time.Second
			o.VirtualTimeRefresh = time.Second
			o.AdvanceNoticeLead = 2 * time.Second
		})
		defer f.c.Close()

		So(f.c.Switching(), ShouldEqual, Unset)
		f.c.OnVideoChanged(segment.VideoContext{VideoID: "v1", LockedCategories: []segment.Category{segment.Filler}})
		So(f.c.Switching(), ShouldEqual, FirstLoad)
		So(f.c.IsLocked(segment.Filler), ShouldBeTrue)

		f.c.SetSegments(segments())
		_, err := f.c.SubmitSegment(segment.Segment{Start: 30, End: 40, Category: segment.Sponsor})
		So(err, ShouldBeNil)
		f.c.RecordLookup(200, true)
		f.c.OnSeek(12)
		_, _ = receive(f.player.calls)
		f.c.OnTimeSample(21, f.clock.Now(), false)

		Convey("A video change should clear the store and every timer", func() {
			f.c.OnVideoChanged(segment.VideoContext{VideoID: "v2"})

			So(f.c.Segments(), ShouldBeEmpty)
			So(f.c.Submissions(), ShouldBeEmpty)
			So(f.c.IsLocked(segment.Filler), ShouldBeFalse)
			So(f.c.Lookup(), ShouldResemble, Lookup{})
			for _, role := range timer.Roles() {
				So(f.c.TimerState(role), ShouldEqual, timer.Idle)
			}
			_, v := f.c.LastCheck()
			So(v, ShouldEqual, -1)
			So(f.c.Switching(), ShouldEqual, Switched)

			f.c.OnVideoChanged(segment.VideoContext{VideoID: "v3"})
			So(f.c.Switching(), ShouldEqual, Switched)
		})

		Convey("No timer of the previous video should reach the player", func() {
			f.c.OnVideoChanged(segment.VideoContext{VideoID: "v2"})
			f.clock.Advance(time.Minute)
			So(silent(f.player.calls), ShouldBeTrue)
		})

		Convey("Notices should survive until closed explicitly", func() {
			So(f.c.NoticeCount(), ShouldEqual, 1)
			n, _ := receive(f.renderer.shown)

			f.c.OnVideoChanged(segment.VideoContext{VideoID: "v2"})
			So(f.c.NoticeCount(), ShouldEqual, 1)
			So(n.notice.closed, ShouldBeFalse)

			f.c.CloseAllNotices()
			So(f.c.NoticeCount(), ShouldEqual, 0)
			So(n.notice.closed, ShouldBeTrue)
		})

		Convey("The submission notice should survive resets and notice sweeps", func() {
			sub := &fakeNotice{}
			f.c.SetSubmissionNotice(sub)
			f.c.OnVideoChanged(segment.VideoContext{VideoID: "v2"})
			f.c.CloseAllNotices()
			So(sub.closed, ShouldBeFalse)

			f.c.CloseSubmissionNotice()
			So(sub.closed, ShouldBeTrue)
		})
	})
}

func TestNoticeExpiry(t *testing.T) {
	Convey("Given a coordinator that skipped a segment", t, func() {
		f := newFixture(nil)
		f.renderer.lifetime = 4 * time.Second
		defer f.c.Close()

		f.c.OnVideoChanged(segment.VideoContext{VideoID: "v1"})
		f.c.SetSegments(segments())
		f.c.OnSeek(12)
		_, ok := receive(f.player.calls)
		So(ok, ShouldBeTrue)
		n, ok := receive(f.renderer.shown)
		So(ok, ShouldBeTrue)
		So(f.c.NoticeCount(), ShouldEqual, 1)

		Convey("The notice should leave the registry once it expired", func() {
			f.clock.Advance(3 * time.Second)
			So(f.c.NoticeCount(), ShouldEqual, 1)

			f.clock.Advance(time.Second)
			So(waitFor(func() bool { return f.c.NoticeCount() == 0 }), ShouldBeTrue)
			So(n.notice.closed, ShouldBeFalse)
		})

		Convey("Unregistering should forget the notice without closing it", func() {
			f.c.UnregisterNotice(n.notice)
			So(f.c.NoticeCount(), ShouldEqual, 0)
			So(n.notice.closed, ShouldBeFalse)

			f.c.UnregisterNotice(n.notice)
			So(f.c.NoticeCount(), ShouldEqual, 0)
		})

		Convey("Notices shown after a sweep should still expire", func() {
			f.c.CloseAllNotices()
			So(n.notice.closed, ShouldBeTrue)

			f.c.OnSeek(52)
			_, _ = receive(f.player.calls)
			_, _ = receive(f.renderer.shown)
			So(f.c.NoticeCount(), ShouldEqual, 1)

			f.clock.Advance(4 * time.Second)
			So(waitFor(func() bool { return f.c.NoticeCount() == 0 }), ShouldBeTrue)
		})
	})
}

func TestSamples(t *testing.T) {
	Convey("Given a coordinator with two segments", t, func() {
		f := newFixture(nil)
		defer f.c.Close()
		f.c.OnVideoChanged(segment.VideoContext{VideoID: "v1"})
		f.c.SetSegments(segments())

		Convey("A time update should count as running playback sampled now", func() {
			f.c.OnTimeUpdate(5)
			s, ok := f.c.Snapshot().Get()
			So(ok, ShouldBeTrue)
			So(s.VideoTime, ShouldEqual, 5)
			So(s.FromPause, ShouldBeFalse)
			So(s.ApproximateDelay, ShouldEqual, time.Duration(0))
			So(f.c.TimerState(timer.SkipSchedule), ShouldEqual, timer.Scheduled)

			f.clock.Advance(2 * time.Second)
			now, err := f.c.EstimateNow()
			So(err, ShouldBeNil)
			So(now, ShouldEqual, 7)
		})

		Convey("A late sample should discount how long it took to arrive", func() {
			f.c.OnTimeSampleCaptured(5, f.clock.Now(), f.clock.Now().Add(-500*time.Millisecond), false)
			s, _ := f.c.Snapshot().Get()
			So(s.ApproximateDelay, ShouldEqual, 500*time.Millisecond)

			f.clock.Advance(time.Second)
			now, _ := f.c.EstimateNow()
			So(now, ShouldEqual, 5.5)

			f.clock.Advance(4 * time.Second)
			call, ok := receive(f.player.calls)
			So(ok, ShouldBeTrue)
			So(call.id, ShouldEqual, segment.ID("sponsor"))
		})

		Convey("Previews should be remembered until the video changes", func() {
			So(f.c.Previewed(), ShouldBeFalse)
			f.c.MarkPreviewed()
			So(f.c.Previewed(), ShouldBeTrue)

			f.c.OnVideoChanged(segment.VideoContext{VideoID: "v2"})
			So(f.c.Previewed(), ShouldBeFalse)
		})
	})
}

func TestSubmissions(t *testing.T) {
	Convey("Given a playing coordinator", t, func() {
		f := newFixture(nil)
		defer f.c.Close()
		f.c.OnVideoChanged(segment.VideoContext{VideoID: "v1"})
		f.c.OnTimeSample(0, f.clock.Now(), false)

		Convey("Submissions should get an id and wait for confirmation", func() {
			id, err := f.c.SubmitSegment(segment.Segment{Start: 3, End: 8, Category: segment.SelfPromo})
			So(err, ShouldBeNil)
			So(id, ShouldNotBeEmpty)
			So(f.c.Submissions(), ShouldHaveLength, 1)
			So(f.c.TimerState(timer.SkipSchedule), ShouldEqual, timer.Idle)

			f.c.ConfirmSubmission(id)
			So(f.c.Submissions(), ShouldBeEmpty)
			So(f.c.TimerState(timer.SkipSchedule), ShouldEqual, timer.Scheduled)

			f.clock.Advance(3 * time.Second)
			call, ok := receive(f.player.calls)
			So(ok, ShouldBeTrue)
			So(call.id, ShouldEqual, id)
		})

		Convey("Invalid submissions should be rejected", func() {
			_, err := f.c.SubmitSegment(segment.Segment{Start: 8, End: 3, Category: segment.SelfPromo})
			So(errors.Is(err, segment.ErrInvalidSegment), ShouldBeTrue)
		})

		Convey("Cancelled submissions should be dropped", func() {
			id, _ := f.c.SubmitSegment(segment.Segment{Start: 3, End: 8, Category: segment.SelfPromo})
			f.c.CancelSubmission(id)
			So(f.c.Submissions(), ShouldBeEmpty)
		})
	})
}

func TestClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Close should stop every timer", t, func() {
		f := newFixture(func(o *Options) {
			o.SkipCheckInterval = time.Second
			o.VirtualTimeRefresh = time.Second
		})
		f.c.OnVideoChanged(segment.VideoContext{VideoID: "v1"})
		f.c.SetSegments(segments())
		f.c.OnTimeSample(0, f.clock.Now(), false)

		f.c.Close()
		for _, role := range timer.Roles() {
			So(f.c.TimerState(role), ShouldEqual, timer.Idle)
		}

		f.clock.Advance(time.Minute)
		So(silent(f.player.calls), ShouldBeTrue)

		f.c.OnSeek(12)
		So(silent(f.player.calls), ShouldBeTrue)
	})
}
