package coordinator

import (
	"time"

	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/notice"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/samber/mo"
)

// Switching tells first loads apart from navigation within a session.
type Switching int

const (
	// Unset means no video was loaded yet.
	Unset Switching = iota
	// FirstLoad means exactly one video has been loaded.
	FirstLoad
	// Switched means the session moved on from an earlier video.
	Switched
)

func (s Switching) String() string {
	switch s {
	case FirstLoad:
		return "first-load"
	case Switched:
		return "switched"
	default:
		return "unset"
	}
}

// next applies a reset: the first reset is a first load, every later one a switch.
func (s Switching) next() Switching {
	if s == Unset {
		return FirstLoad
	}
	return Switched
}

// OnVideoChanged resets every per-video state and installs v as the current video.
//
// Timers are cancelled first, then segments, submissions, locks, lookup state and
// virtual time are cleared, then the switching flag advances. Open notices are left
// alone; callers that want them gone call CloseAllNotices.
func (c *Coordinator) OnVideoChanged(v segment.VideoContext) {
	c.do(func() {
		c.reset()
		c.store.SetVideo(v)
		c.tracker.SetDuration(v.Duration)
		log.Infof("coordinator: video changed to %q (%s)", v.VideoID, c.switching)
	})
}

func (c *Coordinator) reset() {
	c.timers.CancelAll()

	c.store.Clear()
	c.tracker.Reset()
	c.announced = make(map[segment.ID]struct{})
	c.target = mo.None[segment.ID]()
	c.advanceFor = ""
	c.lookup = Lookup{}
	c.lastCheckTime = time.Time{}
	c.lastCheckVideoTime = -1
	c.previewed = false

	c.switching = c.switching.next()
}

// UnregisterNotice forgets n without closing it, once the notice went away on its own.
// It is a no-op for notices that are not registered.
func (c *Coordinator) UnregisterNotice(n notice.Notice) {
	c.do(func() {
		if t, ok := c.expiry[n]; ok {
			t.Stop()
			delete(c.expiry, n)
		}
		c.notices.Unregister(n)
	})
}

// CloseAllNotices closes every registered skip notice and the advance notice.
// The submission notice survives; it is closed by CloseSubmissionNotice.
func (c *Coordinator) CloseAllNotices() {
	c.do(c.closeAllNotices)
}

func (c *Coordinator) closeAllNotices() {
	for _, t := range c.expiry {
		t.Stop()
	}
	clear(c.expiry)

	c.notices.CloseAll()
	if c.advance != nil {
		c.advance.Close()
		c.advance = nil
	}
}
