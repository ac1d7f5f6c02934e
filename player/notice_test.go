package player

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/anisan-cli/skipsync/coordinator"
	"github.com/anisan-cli/skipsync/key"
	"github.com/anisan-cli/skipsync/notice"
	"github.com/anisan-cli/skipsync/segment"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

type osdCall struct {
	text string
	d    time.Duration
}

type fakeController struct {
	seeks []float64
	texts []osdCall
	err   error
}

func (f *fakeController) Seek(seconds float64) error {
	f.seeks = append(f.seeks, seconds)
	return f.err
}

func (f *fakeController) ShowText(text string, d time.Duration) error {
	f.texts = append(f.texts, osdCall{text, d})
	return f.err
}

var sponsor = segment.Segment{ID: "s1", Start: 65, End: 3725, Category: segment.MusicOfftopic}

func TestFormat(t *testing.T) {
	Convey("Formatting helpers", t, func() {
		So(Timestamp(0), ShouldEqual, "0:00")
		So(Timestamp(65.9), ShouldEqual, "1:05")
		So(Timestamp(3725), ShouldEqual, "1:02:05")
		So(Timestamp(-3), ShouldEqual, "0:00")
		So(Title(segment.MusicOfftopic), ShouldEqual, "Music offtopic")
		So(Describe(sponsor), ShouldEqual, "Music offtopic 1:05-1:02:05")
	})
}

func TestSkipper(t *testing.T) {
	Convey("Skipper should seek to the target", t, func() {
		player := &fakeController{}
		So(Skipper{Player: player}.Skip("s1", 42), ShouldBeNil)
		So(player.seeks, ShouldResemble, []float64{42})

		player.err = errors.New("closed")
		So(Skipper{Player: player}.Skip("s1", 43), ShouldNotBeNil)
	})
}

func TestOSD(t *testing.T) {
	Convey("Given an OSD", t, func() {
		viper.Set(key.IconsVariant, "plain")
		player := &fakeController{}
		osd := &OSD{Player: player, Duration: 4 * time.Second}

		Convey("Skip notices should describe the segment", func() {
			osd.ShowSkipNotice(sponsor, true)
			osd.ShowSkipNotice(sponsor, false)

			So(player.texts[0], ShouldResemble, osdCall{">> Skipped Music offtopic 1:05-1:02:05", 4 * time.Second})
			So(player.texts[1].text, ShouldContainSubstring, MessageSkip)
		})

		Convey("Advance notices should count down", func() {
			osd.ShowAdvanceNotice(sponsor, 2.2, coordinator.Low)
			So(player.texts[0].text, ShouldEqual, "~ Music offtopic in 3s")
			So(player.texts[0].d, ShouldEqual, 3200*time.Millisecond)

			osd.ShowAdvanceNotice(sponsor, 1, coordinator.High)
			So(player.texts[1].text, ShouldEqual, ">> Skipping Music offtopic in 1s")
		})

		Convey("Closing should only clear the latest notice", func() {
			first := osd.ShowText("first")
			second := osd.ShowText("second")

			first.Close()
			So(player.texts, ShouldHaveLength, 2)

			second.Close()
			So(player.texts, ShouldHaveLength, 3)
			So(player.texts[2].text, ShouldBeEmpty)
		})

		Convey("Notices should expire with their text", func() {
			n, ok := osd.ShowSkipNotice(sponsor, true).(notice.Expiring)
			So(ok, ShouldBeTrue)
			So(n.Lifetime(), ShouldEqual, 4*time.Second)
		})

		Convey("Failures should show nothing", func() {
			player.err = errors.New("gone")
			So(osd.ShowSkipNotice(sponsor, true), ShouldBeNil)
		})
	})
}

func TestTerminal(t *testing.T) {
	Convey("Given a terminal", t, func() {
		var out bytes.Buffer
		term := &Terminal{Out: &out, Width: 30}

		Convey("Lines should be truncated to the width", func() {
			term.ShowSkipNotice(sponsor, true)
			line := strings.TrimSuffix(out.String(), "\n")
			So(line, ShouldContainSubstring, "SKIP")
			So(line, ShouldContainSubstring, "…")
		})

		Convey("Advance notices should print once per urgency", func() {
			term.ShowAdvanceNotice(sponsor, 3, coordinator.Low)
			term.ShowAdvanceNotice(sponsor, 2.5, coordinator.Low)
			term.ShowAdvanceNotice(sponsor, 1, coordinator.High)
			So(strings.Count(out.String(), "\n"), ShouldEqual, 2)
		})
	})
}

func TestNotices(t *testing.T) {
	Convey("Given several renderers", t, func() {
		a, b := &fakeController{}, &fakeController{}
		ns := Notices{&OSD{Player: a}, &OSD{Player: b}, &Terminal{Out: &bytes.Buffer{}, Width: 80}}

		Convey("Closing the joined notice should close every shown notice", func() {
			n := ns.ShowSkipNotice(sponsor, true)
			So(n, ShouldNotBeNil)
			n.Close()
			So(a.texts, ShouldHaveLength, 2)
			So(b.texts, ShouldHaveLength, 2)
		})

		Convey("The joined notice should expire with its longest notice", func() {
			n := Notices{&OSD{Player: a, Duration: time.Second}, &OSD{Player: b, Duration: 3 * time.Second}}.ShowSkipNotice(sponsor, true)
			e, ok := n.(notice.Expiring)
			So(ok, ShouldBeTrue)
			So(e.Lifetime(), ShouldEqual, 3*time.Second)

			n = Notices{&OSD{Player: a, Duration: time.Second}, &OSD{Player: b}}.ShowSkipNotice(sponsor, true)
			So(n.(notice.Expiring).Lifetime(), ShouldEqual, time.Duration(0))
		})

		Convey("A single notice should be returned as is", func() {
			n := Notices{&OSD{Player: a}}.ShowAdvanceNotice(sponsor, 1, coordinator.High)
			_, ok := n.(*osdNotice)
			So(ok, ShouldBeTrue)
		})

		Convey("No notice should be returned when nothing was shown", func() {
			So(Notices{&Terminal{Out: &bytes.Buffer{}, Width: 80}}.ShowSkipNotice(sponsor, false), ShouldBeNil)
		})
	})
}
