package player

import (
	"testing"
	"time"

	"github.com/anisan-cli/skipsync/coordinator"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBridge(t *testing.T) {
	Convey("Given a bridge feeding a coordinator", t, func() {
		clock := clockwork.NewFakeClock()
		c := coordinator.New(nil, nil, coordinator.Options{Clock: clock})
		defer c.Close()

		b := NewBridge(c, clock, time.Second)
		var loaded []string
		var messages [][]string
		b.OnLoad = func(path string) { loaded = append(loaded, path) }
		b.OnMessage = func(args []string) { messages = append(messages, args) }

		last := func() float64 {
			s, ok := c.Snapshot().Get()
			So(ok, ShouldBeTrue)
			return s.VideoTime
		}

		b.Handle(Event{Name: "path", Data: "/videos/a.mkv"})
		b.Handle(Event{Name: "time-pos", Data: 1.0})

		Convey("Loading media should be reported once per path", func() {
			So(loaded, ShouldResemble, []string{"/videos/a.mkv"})
			b.Handle(Event{Name: "path", Data: nil})
			So(loaded, ShouldHaveLength, 1)
		})

		Convey("Position changes should be throttled", func() {
			So(last(), ShouldEqual, 1.0)

			clock.Advance(200 * time.Millisecond)
			b.Handle(Event{Name: "time-pos", Data: 1.2})
			So(last(), ShouldEqual, 1.0)

			clock.Advance(800 * time.Millisecond)
			b.Handle(Event{Name: "time-pos", Data: 2.0})
			So(last(), ShouldEqual, 2.0)
		})

		Convey("Positions read from mpv should carry how long they waited", func() {
			clock.Advance(time.Second)
			b.Handle(Event{Name: "time-pos", Data: 3.0, At: clock.Now().Add(-200 * time.Millisecond)})

			s, ok := c.Snapshot().Get()
			So(ok, ShouldBeTrue)
			So(s.VideoTime, ShouldEqual, 3.0)
			So(s.ApproximateDelay, ShouldEqual, 200*time.Millisecond)
			So(s.FromPause, ShouldBeFalse)
		})

		Convey("Pausing should always sample and freeze the estimate", func() {
			clock.Advance(100 * time.Millisecond)
			b.Handle(Event{Name: "time-pos", Data: 1.1})
			b.Handle(Event{Name: "pause", Data: true})

			s, _ := c.Snapshot().Get()
			So(s.VideoTime, ShouldEqual, 1.1)
			So(s.FromPause, ShouldBeTrue)

			clock.Advance(5 * time.Second)
			now, err := c.EstimateNow()
			So(err, ShouldBeNil)
			So(now, ShouldEqual, 1.1)
		})

		Convey("A seek should be reported where it lands", func() {
			b.Handle(Event{Name: "seeking", Data: true})
			b.Handle(Event{Name: "time-pos", Data: 50.0})
			So(last(), ShouldEqual, 1.0)

			b.Handle(Event{Name: "seeking", Data: false})
			So(last(), ShouldEqual, 50.0)
		})

		Convey("Buffering should freeze the estimate until playback resumes", func() {
			b.Handle(Event{Name: "paused-for-cache", Data: true})
			clock.Advance(3 * time.Second)
			now, _ := c.EstimateNow()
			So(now, ShouldEqual, 1.0)

			b.Handle(Event{Name: "paused-for-cache", Data: false})
			clock.Advance(time.Second)
			now, _ = c.EstimateNow()
			So(now, ShouldEqual, 2.0)
		})

		Convey("The playback rate should scale the estimate and survive new media", func() {
			b.Handle(Event{Name: "speed", Data: 2.0})
			clock.Advance(time.Second)
			now, _ := c.EstimateNow()
			So(now, ShouldEqual, 3.0)

			c.OnVideoChanged(segment.VideoContext{VideoID: "b"})
			b.Handle(Event{Name: "path", Data: "/videos/b.mkv"})
			b.Handle(Event{Name: "time-pos", Data: 0.0})
			clock.Advance(time.Second)
			now, _ = c.EstimateNow()
			So(now, ShouldEqual, 2.0)
		})

		Convey("Script messages should be forwarded", func() {
			b.Handle(Event{Name: "client-message", Args: []string{MessageLock, "intro"}})
			b.Handle(Event{Name: "client-message"})
			So(messages, ShouldResemble, [][]string{{MessageLock, "intro"}})
		})
	})
}
