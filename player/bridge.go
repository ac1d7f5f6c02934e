package player

import (
	"time"

	"github.com/anisan-cli/skipsync/coordinator"
	"github.com/anisan-cli/skipsync/log"
	"github.com/jonboulle/clockwork"
	"github.com/samber/mo"
)

// Bridge turns mpv events into coordinator samples. time-pos changes are sampled at
// most once per interval; pause, seek and buffering changes are always sampled.
//
// Handle is not safe for concurrent use; the event listener calls it from one goroutine.
type Bridge struct {
	c        *coordinator.Coordinator
	clock    clockwork.Clock
	interval time.Duration

	pos        mo.Option[float64]
	rate       float64
	paused     bool
	seeking    bool
	buffering  bool
	lastSample time.Time

	// OnLoad is called when mpv loads new media, before any sample of it is reported.
	OnLoad func(path string)
	// OnMessage receives the arguments of script messages sent to skipsync.
	OnMessage func(args []string)
}

// NewBridge creates a bridge feeding c. A nil clock means the real clock.
func NewBridge(c *coordinator.Coordinator, clock clockwork.Clock, interval time.Duration) *Bridge {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Bridge{c: c, clock: clock, interval: interval, rate: 1}
}

// Handle applies one mpv event.
func (b *Bridge) Handle(ev Event) {
	switch ev.Name {
	case "path":
		path, _ := ev.Data.(string)
		if path == "" {
			return
		}
		b.pos = mo.None[float64]()
		b.lastSample = time.Time{}
		if b.OnLoad != nil {
			b.OnLoad(path)
		}
		if b.rate != 1 {
			b.c.SetPlaybackRate(b.rate)
		}

	case "duration":
		if d, ok := ev.Data.(float64); ok {
			b.c.SetDuration(d)
		}

	case "speed":
		if r, ok := ev.Data.(float64); ok && r > 0 {
			b.rate = r
			b.c.SetPlaybackRate(r)
		}

	case "time-pos":
		pos, ok := ev.Data.(float64)
		if !ok {
			return
		}
		b.pos = mo.Some(pos)
		if b.seeking || b.buffering {
			return
		}

		now := b.clock.Now()
		if b.lastSample.IsZero() || now.Sub(b.lastSample) >= b.interval {
			b.position(pos, now, ev.At)
		}

	case "pause":
		b.paused, _ = ev.Data.(bool)
		b.sample(b.clock.Now())

	case "seeking":
		b.seeking, _ = ev.Data.(bool)
		if pos, ok := b.pos.Get(); ok && !b.seeking {
			b.c.OnSeek(pos)
			b.lastSample = b.clock.Now()
		}

	case "paused-for-cache":
		b.buffering, _ = ev.Data.(bool)
		pos, ok := b.pos.Get()
		if !ok {
			return
		}
		if b.buffering {
			b.c.OnWaiting(pos)
			return
		}
		b.sample(b.clock.Now())

	case "eof-reached":
		if eof, _ := ev.Data.(bool); eof {
			if pos, ok := b.pos.Get(); ok {
				b.c.OnPause(pos)
			}
		}

	case "client-message":
		if b.OnMessage != nil && len(ev.Args) > 0 {
			b.OnMessage(ev.Args)
		}

	case "shutdown":
		log.Debugf("bridge: mpv is shutting down")
	}
}

// position reports a time-pos change. Positions read from mpv carry the time they were
// read, so the coordinator can discount how long they waited behind other events.
func (b *Bridge) position(pos float64, now, readAt time.Time) {
	switch {
	case b.paused:
		b.c.OnTimeSample(pos, now, true)
	case readAt.IsZero():
		b.c.OnTimeUpdate(pos)
	default:
		b.c.OnTimeSampleCaptured(pos, now, readAt, false)
	}
	b.lastSample = now
}

func (b *Bridge) sample(now time.Time) {
	pos, ok := b.pos.Get()
	if !ok {
		return
	}
	b.c.OnTimeSample(pos, now, b.paused)
	b.lastSample = now
}
