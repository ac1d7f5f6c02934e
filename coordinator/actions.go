package coordinator

import (
	"fmt"
	"time"

	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/notice"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// OnTimeSample records a playback sample taken at now. fromPause freezes the virtual
// time at videoTime and suspends scheduling until a sample says otherwise.
func (c *Coordinator) OnTimeSample(videoTime float64, now time.Time, fromPause bool) {
	c.do(func() {
		c.tracker.Sample(videoTime, now, fromPause)
		c.afterSample()
	})
}

// OnTimeSampleCaptured records a sample the host captured at capturedAt but reported at now.
func (c *Coordinator) OnTimeSampleCaptured(videoTime float64, now, capturedAt time.Time, fromPause bool) {
	c.do(func() {
		c.tracker.SampleCaptured(videoTime, now, capturedAt, fromPause)
		c.afterSample()
	})
}

// OnTimeUpdate records a sample of running playback taken now.
func (c *Coordinator) OnTimeUpdate(videoTime float64) {
	c.do(func() {
		c.tracker.Sample(videoTime, c.clock.Now(), false)
		c.afterSample()
	})
}

// OnPause freezes playback at videoTime.
func (c *Coordinator) OnPause(videoTime float64) {
	c.OnTimeSample(videoTime, c.clock.Now(), true)
}

// OnPlay resumes playback from videoTime.
func (c *Coordinator) OnPlay(videoTime float64) {
	c.OnTimeSample(videoTime, c.clock.Now(), false)
}

// OnSeek records where a seek landed, keeping the current pause state.
func (c *Coordinator) OnSeek(videoTime float64) {
	c.do(func() {
		c.tracker.Sample(videoTime, c.clock.Now(), c.tracker.Paused())
		c.afterSample()
	})
}

// OnWaiting records that the player stalled to buffer at videoTime.
func (c *Coordinator) OnWaiting(videoTime float64) {
	c.do(func() {
		c.tracker.Waiting(videoTime, c.clock.Now())
		c.afterSample()
	})
}

func (c *Coordinator) afterSample() {
	if c.tracker.Paused() {
		c.stopPlaybackTimers()
		return
	}
	c.startPlaybackTimers()
	c.reschedule()
}

// SetPlaybackRate records the player's playback rate.
func (c *Coordinator) SetPlaybackRate(rate float64) {
	c.do(func() {
		if now, err := c.tracker.EstimateNow(); err == nil {
			c.tracker.Sample(now, c.clock.Now(), c.tracker.Paused())
		}
		c.tracker.SetPlaybackRate(rate)
		c.reschedule()
	})
}

// SetDuration records the duration of the current video once known.
func (c *Coordinator) SetDuration(seconds float64) {
	c.do(func() {
		c.store.SetDuration(seconds)
		c.tracker.SetDuration(seconds)
	})
}

// SetSegments replaces the confirmed segments of the current video.
// Invalid segments are dropped.
func (c *Coordinator) SetSegments(list []segment.Segment) {
	c.do(func() {
		c.store.Replace(valid(list))
		c.lookup.DataFound = c.store.Len() > 0
		c.reschedule()
	})
}

// MergeSegments adds segments not known yet, keeping the state of known ones.
func (c *Coordinator) MergeSegments(list []segment.Segment) {
	c.do(func() {
		if c.store.Merge(valid(list)) > 0 {
			c.lookup.DataFound = true
			c.reschedule()
		}
	})
}

func valid(list []segment.Segment) []segment.Segment {
	out := make([]segment.Segment, 0, len(list))
	for _, seg := range list {
		if err := seg.Validate(); err != nil {
			log.Warnf("coordinator: dropping segment: %v", err)
			continue
		}
		out = append(out, seg)
	}
	return out
}

// RecordLookup records the outcome of fetching segment data.
func (c *Coordinator) RecordLookup(status int, found bool) {
	c.do(func() {
		c.lookup.LastResponseStatus = status
		c.lookup.DataFound = c.lookup.DataFound || found
		c.lookup.Waiting = false
	})
}

// SetLookupWaiting records whether a segment lookup is in flight.
func (c *Coordinator) SetLookupWaiting(waiting bool) {
	c.do(func() { c.lookup.Waiting = waiting })
}

// MarkFetchWarningShown records that the fetch failure warning was shown and reports
// whether it had already been shown for this video.
func (c *Coordinator) MarkFetchWarningShown() (already bool) {
	c.do(func() {
		already = c.lookup.ShownFetchWarning
		c.lookup.ShownFetchWarning = true
	})
	return
}

// SubmitSegment records a local submission awaiting confirmation. An empty id is
// replaced by a random one; the id in use is returned.
func (c *Coordinator) SubmitSegment(seg segment.Segment) (segment.ID, error) {
	if seg.ID == "" {
		seg.ID = segment.ID(uuid.NewString())
	}
	if err := seg.Validate(); err != nil {
		return "", fmt.Errorf("submit segment: %w", err)
	}

	c.do(func() { c.store.AddSubmission(seg) })
	return seg.ID, nil
}

// ConfirmSubmission moves a pending submission into the confirmed segments.
func (c *Coordinator) ConfirmSubmission(id segment.ID) {
	c.do(func() {
		c.store.ConfirmSubmission(id)
		c.reschedule()
	})
}

// CancelSubmission drops a pending submission.
func (c *Coordinator) CancelSubmission(id segment.ID) {
	c.do(func() { c.store.RemoveSubmission(id) })
}

// SetSubmissionNotice installs the notice tracking pending submissions, closing the
// previous one. It survives video changes and CloseAllNotices.
func (c *Coordinator) SetSubmissionNotice(n notice.Notice) {
	c.do(func() {
		if c.submission != nil && c.submission != n {
			c.submission.Close()
		}
		c.submission = n
	})
}

// CloseSubmissionNotice closes the submission notice, if any.
func (c *Coordinator) CloseSubmissionNotice() {
	c.do(func() {
		if c.submission != nil {
			c.submission.Close()
			c.submission = nil
		}
	})
}

// LockCategory suppresses automatic action for cat on the current video.
func (c *Coordinator) LockCategory(cat segment.Category) {
	c.do(func() {
		c.store.LockCategory(cat)
		c.reschedule()
	})
}

// UnlockCategory lifts a category lock.
func (c *Coordinator) UnlockCategory(cat segment.Category) {
	c.do(func() {
		c.store.UnlockCategory(cat)
		c.reschedule()
	})
}

// ToggleCategoryLock flips the lock of cat and reports whether it is now locked.
func (c *Coordinator) ToggleCategoryLock(cat segment.Category) (locked bool) {
	c.do(func() {
		if c.store.IsLocked(cat) {
			c.store.UnlockCategory(cat)
		} else {
			c.store.LockCategory(cat)
		}
		locked = c.store.IsLocked(cat)
		c.reschedule()
	})
	return
}

// RequestSkip skips a segment on the user's behalf, regardless of locks and actions.
// Unknown ids are ignored.
func (c *Coordinator) RequestSkip(id segment.ID) {
	c.do(func() {
		seg, ok := c.store.Lookup(id)
		if !ok {
			log.Debugf("coordinator: manual skip of unknown segment %s ignored", id)
			return
		}

		if c.skip(seg) {
			c.showSkipNotice(seg, true)
		}
		c.reschedule()
	})
}

// RequestSkipCurrent skips the segment playback is inside of, if any, and reports
// whether one was found.
func (c *Coordinator) RequestSkipCurrent() (found bool) {
	c.do(func() {
		now, err := c.tracker.EstimateNow()
		if err != nil {
			return
		}

		for _, seg := range c.store.Segments() {
			if seg.Contains(now) {
				found = true
				if c.skip(seg) {
					c.showSkipNotice(seg, true)
				}
				c.reschedule()
				return
			}
		}
	})
	return
}

// Select marks the segment the user is working with, or clears it with an empty id.
func (c *Coordinator) Select(id segment.ID) {
	c.do(func() {
		if id == "" {
			c.selected = mo.None[segment.ID]()
			return
		}
		c.selected = mo.Some(id)
	})
}

// MarkPreviewed records that a segment was previewed during this video.
func (c *Coordinator) MarkPreviewed() {
	c.do(func() { c.previewed = true })
}
