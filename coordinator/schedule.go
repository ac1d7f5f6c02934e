package coordinator

import (
	"time"

	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/notice"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/anisan-cli/skipsync/timer"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// action resolves what to do when playback reaches seg.
func (c *Coordinator) action(seg segment.Segment) segment.Action {
	if seg.Action != "" {
		return seg.Action
	}
	if a, ok := c.opts.CategoryActions[seg.Category]; ok {
		return a
	}
	return seg.Category.DefaultAction()
}

// eligible reports whether seg may still be acted on automatically.
func (c *Coordinator) eligible(seg segment.Segment) bool {
	if seg.Skipped || c.store.IsLocked(seg.Category) || c.store.Video().ChannelWhitelisted {
		return false
	}
	if _, done := c.announced[seg.ID]; done {
		return false
	}
	return c.action(seg).Automatic() && seg.Length() > 0 && seg.Length() >= c.opts.MinDuration
}

// nextTarget returns the earliest eligible segment that has not ended by now.
func (c *Coordinator) nextTarget(now float64) (segment.Segment, bool) {
	return lo.Find(c.store.Segments(), func(seg segment.Segment) bool {
		return seg.End > now && c.eligible(seg)
	})
}

// seconds converts a distance in video seconds to wall-clock time at the current rate.
func (c *Coordinator) seconds(videoSeconds float64) time.Duration {
	return time.Duration(videoSeconds / c.tracker.PlaybackRate() * float64(time.Second))
}

// reschedule arms the skip schedule for the next eligible segment. When there is no
// usable estimate, or playback is paused, scheduling is deferred.
func (c *Coordinator) reschedule() {
	now, err := c.tracker.EstimateNow()
	if err != nil || c.tracker.Paused() {
		c.deferSchedule()
		return
	}

	seg, ok := c.nextTarget(now)
	if !ok {
		c.deferSchedule()
		return
	}

	if now >= seg.Start {
		c.fire(seg)
		return
	}

	id := seg.ID
	c.target = mo.Some(id)
	c.timers.Schedule(timer.SkipSchedule, c.seconds(seg.Start-now), func() {
		c.onSkipSchedule(id)
	})
	c.scheduleAdvance(seg, now)

	log.Debugf("coordinator: %s (%s) scheduled at %.2fs, now %.2fs", id, seg.Category, seg.Start, now)
}

// deferSchedule disarms the skip schedule. An advance notice shown for the old target
// is closed with it.
func (c *Coordinator) deferSchedule() {
	c.target = mo.None[segment.ID]()
	c.timers.Cancel(timer.SkipSchedule)
	c.timers.Cancel(timer.AdvanceSkipSchedule)
	if c.advanceFor != "" {
		c.closeAdvance()
	}
}

func (c *Coordinator) onSkipSchedule(id segment.ID) {
	seg, ok := c.store.Lookup(id)
	if !ok || !c.eligible(seg) {
		c.reschedule()
		return
	}
	c.fire(seg)
}

// fire performs the action of seg and schedules the next segment.
func (c *Coordinator) fire(seg segment.Segment) {
	c.target = mo.None[segment.ID]()
	if c.advanceFor == seg.ID {
		c.timers.Cancel(timer.AdvanceSkipSchedule)
		c.closeAdvance()
	}

	switch c.action(seg) {
	case segment.ActionSkip:
		if c.skip(seg) {
			c.showSkipNotice(seg, true)
			break
		}
		c.announce(seg)
	default:
		c.announce(seg)
	}

	c.reschedule()
}

// skip asks the player to jump past seg and records the skip on success.
func (c *Coordinator) skip(seg segment.Segment) bool {
	target := seg.End
	if d := c.store.Video().Duration; d > 0 && target > d {
		target = d
	}

	if err := c.player.Skip(seg.ID, target); err != nil {
		log.Warnf("coordinator: skip %s to %.2fs failed: %v", seg.ID, target, err)
		return false
	}

	c.store.RecordSkip(seg.ID)
	c.tracker.Sample(target, c.clock.Now(), c.tracker.Paused())
	log.Infof("coordinator: skipped %s (%s) %.2fs -> %.2fs", seg.ID, seg.Category, seg.Start, target)
	return true
}

// announce shows a manual notice for seg once per video.
func (c *Coordinator) announce(seg segment.Segment) {
	c.announced[seg.ID] = struct{}{}
	c.showSkipNotice(seg, false)
}

func (c *Coordinator) showSkipNotice(seg segment.Segment, auto bool) {
	n := c.renderer.ShowSkipNotice(seg, auto)
	if n == nil {
		return
	}
	c.notices.Register(n)

	// Notices that close on their own leave the registry when they do.
	if e, ok := n.(notice.Expiring); ok && e.Lifetime() > 0 {
		if t, armed := c.expiry[n]; armed {
			t.Stop()
		}
		c.expiry[n] = c.clock.AfterFunc(e.Lifetime(), func() { c.UnregisterNotice(n) })
	}
}

// scheduleAdvance arms the advance notice of seg, starting AdvanceNoticeLead before it.
func (c *Coordinator) scheduleAdvance(seg segment.Segment, now float64) {
	lead := c.opts.AdvanceNoticeLead
	if lead <= 0 {
		return
	}

	if c.advanceFor == seg.ID && c.timers.State(timer.AdvanceSkipSchedule) == timer.Scheduled {
		return
	}
	if c.advanceFor != "" {
		c.closeAdvance()
	}

	first := max(c.seconds(seg.Start-now)-lead, 0)
	id := seg.ID
	c.timers.ScheduleEvery(timer.AdvanceSkipSchedule, first, c.opts.AdvanceNoticeRefresh, func() {
		c.onAdvance(id)
	})
}

func (c *Coordinator) onAdvance(id segment.ID) {
	seg, ok := c.store.Lookup(id)
	now, err := c.tracker.EstimateNow()
	if !ok || err != nil || !c.eligible(seg) || now >= seg.Start {
		c.timers.Cancel(timer.AdvanceSkipSchedule)
		c.closeAdvance()
		return
	}

	remaining := seg.Start - now
	if c.seconds(remaining) > c.opts.AdvanceNoticeLead {
		c.closeAdvance()
		c.scheduleAdvance(seg, now)
		return
	}

	urgency := Low
	if c.seconds(remaining) <= c.opts.AdvanceNoticeLead/2 {
		urgency = High
	}

	c.closeAdvance()
	c.advance = c.renderer.ShowAdvanceNotice(seg, remaining, urgency)
	c.advanceFor = id
}

func (c *Coordinator) closeAdvance() {
	if c.advance != nil {
		c.advance.Close()
	}
	c.advance = nil
	c.advanceFor = ""
}

// startPlaybackTimers arms the recurring checks that only run while playing.
func (c *Coordinator) startPlaybackTimers() {
	if c.opts.SkipCheckInterval > 0 && c.timers.State(timer.SkipInterval) == timer.Idle {
		c.timers.Schedule(timer.SkipInterval, c.opts.SkipCheckInterval, c.checkInside)
	}
	if c.opts.VirtualTimeRefresh > 0 && c.timers.State(timer.VirtualTimeInterval) == timer.Idle {
		c.timers.Schedule(timer.VirtualTimeInterval, c.opts.VirtualTimeRefresh, c.refreshVirtualTime)
	}
}

func (c *Coordinator) stopPlaybackTimers() {
	c.timers.Cancel(timer.SkipInterval)
	c.timers.Cancel(timer.VirtualTimeInterval)
	c.deferSchedule()
}

// checkInside fires a segment playback is already inside of, which happens when a
// seek lands in a segment between samples.
func (c *Coordinator) checkInside() {
	now, err := c.tracker.EstimateNow()
	if err != nil || c.tracker.Paused() {
		return
	}

	if seg, ok := lo.Find(c.store.Segments(), func(seg segment.Segment) bool {
		return seg.Contains(now) && c.eligible(seg)
	}); ok {
		log.Debugf("coordinator: %s caught by the skip check at %.2fs", seg.ID, now)
		c.fire(seg)
	}
}

// refreshVirtualTime re-evaluates the estimate and reschedules when the next segment
// is no longer the one the skip schedule is armed for.
func (c *Coordinator) refreshVirtualTime() {
	now, err := c.tracker.EstimateNow()
	if err != nil {
		return
	}

	c.lastCheckTime = c.clock.Now()
	c.lastCheckVideoTime = now

	next := mo.None[segment.ID]()
	if seg, ok := c.nextTarget(now); ok {
		next = mo.Some(seg.ID)
	}
	if next.OrEmpty() != c.target.OrEmpty() {
		c.reschedule()
	}
}
