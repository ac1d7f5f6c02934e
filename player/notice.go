package player

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/anisan-cli/skipsync/color"
	"github.com/anisan-cli/skipsync/coordinator"
	"github.com/anisan-cli/skipsync/icon"
	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/notice"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/anisan-cli/skipsync/style"
	"github.com/anisan-cli/skipsync/util"
	"github.com/muesli/reflow/truncate"
)

// Script messages skipsync answers to, sent with mpv's script-message command.
const (
	MessageSkip    = "skipsync-skip"
	MessageLock    = "skipsync-lock"
	MessageMark    = "skipsync-mark"
	MessagePreview = "skipsync-preview"
)

// Timestamp formats seconds as m:ss or h:mm:ss.
func Timestamp(seconds float64) string {
	total := int(math.Max(seconds, 0))
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Title is the display name of a category.
func Title(c segment.Category) string {
	return util.Capitalize(strings.ReplaceAll(string(c), "_", " "))
}

// Describe names a segment and its bounds.
func Describe(seg segment.Segment) string {
	return fmt.Sprintf("%s %s-%s", Title(seg.Category), Timestamp(seg.Start), Timestamp(seg.End))
}

// OSD shows notices on mpv's on-screen display. Closing a notice clears the OSD only
// while that notice is the last text shown.
type OSD struct {
	Player   Controller
	Duration time.Duration

	mu    sync.Mutex
	shown uint64
}

var _ coordinator.NoticeRenderer = (*OSD)(nil)

func (o *OSD) ShowSkipNotice(seg segment.Segment, auto bool) notice.Notice {
	if auto {
		return o.show(fmt.Sprintf("%s Skipped %s", icon.Get(icon.Skip), Describe(seg)), o.Duration)
	}
	return o.show(fmt.Sprintf("%s %s (script-message %s)", icon.Get(icon.Notice), Describe(seg), MessageSkip), o.Duration)
}

func (o *OSD) ShowAdvanceNotice(seg segment.Segment, remaining float64, urgency coordinator.Urgency) notice.Notice {
	text := fmt.Sprintf("%s %s in %.0fs", icon.Get(icon.Clock), Title(seg.Category), math.Ceil(remaining))
	if urgency == coordinator.High {
		text = fmt.Sprintf("%s Skipping %s in %.0fs", icon.Get(icon.Skip), Title(seg.Category), math.Ceil(remaining))
	}
	return o.show(text, time.Duration(remaining*float64(time.Second))+time.Second)
}

// ShowText shows a notice that is not tied to a segment.
func (o *OSD) ShowText(text string) notice.Notice {
	return o.show(text, o.Duration)
}

func (o *OSD) show(text string, d time.Duration) notice.Notice {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.Player.ShowText(text, d); err != nil {
		log.Warnf("osd: %v", err)
		return nil
	}
	o.shown++
	return &osdNotice{osd: o, id: o.shown, lifetime: d}
}

type osdNotice struct {
	osd      *OSD
	id       uint64
	lifetime time.Duration
}

// Lifetime is how long mpv keeps the text on screen.
func (n *osdNotice) Lifetime() time.Duration {
	return n.lifetime
}

func (n *osdNotice) Close() {
	n.osd.mu.Lock()
	defer n.osd.mu.Unlock()

	if n.osd.shown == n.id {
		_ = n.osd.Player.ShowText("", time.Millisecond)
	}
}

// Terminal prints notices as lines truncated to the terminal width.
type Terminal struct {
	Out io.Writer
	// Width overrides the terminal width.
	Width int

	mu       sync.Mutex
	advanced map[segment.ID]coordinator.Urgency
}

var _ coordinator.NoticeRenderer = (*Terminal)(nil)

func (t *Terminal) ShowSkipNotice(seg segment.Segment, auto bool) notice.Notice {
	tag := style.Tag(color.Black, color.Green)("SKIP")
	if !auto {
		tag = style.Tag(color.Black, color.Yellow)("NOTICE")
	}
	t.println(fmt.Sprintf("%s %s %s", tag, Describe(seg), style.Faint(string(seg.ID))))
	return nil
}

// ShowAdvanceNotice prints once per segment and urgency; refreshes are not repeated.
func (t *Terminal) ShowAdvanceNotice(seg segment.Segment, remaining float64, urgency coordinator.Urgency) notice.Notice {
	t.mu.Lock()
	if t.advanced == nil {
		t.advanced = make(map[segment.ID]coordinator.Urgency)
	}
	last, seen := t.advanced[seg.ID]
	t.advanced[seg.ID] = urgency
	t.mu.Unlock()

	if seen && last == urgency {
		return nil
	}

	tag := style.Tag(color.Black, color.Blue)("SOON")
	if urgency == coordinator.High {
		tag = style.Tag(color.Black, color.Red)("SOON")
	}
	t.println(fmt.Sprintf("%s %s in %s", tag, Describe(seg), style.Bold(fmt.Sprintf("%.0fs", math.Ceil(remaining)))))
	return nil
}

// Println prints a free-form line.
func (t *Terminal) Println(line string) {
	t.println(line)
}

func (t *Terminal) println(line string) {
	width := t.Width
	if width <= 0 {
		if w, _, err := util.TerminalSize(); err == nil {
			width = w
		}
	}
	if width > 0 {
		line = truncate.StringWithTail(line, uint(width), "…")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.Out, line)
}

// Notices shows every notice on all of its renderers.
type Notices []coordinator.NoticeRenderer

var _ coordinator.NoticeRenderer = Notices(nil)

func (ns Notices) ShowSkipNotice(seg segment.Segment, auto bool) notice.Notice {
	return join(ns, func(r coordinator.NoticeRenderer) notice.Notice {
		return r.ShowSkipNotice(seg, auto)
	})
}

func (ns Notices) ShowAdvanceNotice(seg segment.Segment, remaining float64, urgency coordinator.Urgency) notice.Notice {
	return join(ns, func(r coordinator.NoticeRenderer) notice.Notice {
		return r.ShowAdvanceNotice(seg, remaining, urgency)
	})
}

func join(ns Notices, show func(coordinator.NoticeRenderer) notice.Notice) notice.Notice {
	var shown []notice.Notice
	for _, r := range ns {
		if n := show(r); n != nil {
			shown = append(shown, n)
		}
	}

	switch len(shown) {
	case 0:
		return nil
	case 1:
		return shown[0]
	default:
		return &multiNotice{shown}
	}
}

// multiNotice is a pointer so the registry can compare it.
type multiNotice struct {
	notices []notice.Notice
}

// Lifetime is the longest lifetime of its notices, or zero when one of them never expires.
func (m *multiNotice) Lifetime() time.Duration {
	var longest time.Duration
	for _, n := range m.notices {
		e, ok := n.(notice.Expiring)
		if !ok || e.Lifetime() <= 0 {
			return 0
		}
		longest = max(longest, e.Lifetime())
	}
	return longest
}

func (m *multiNotice) Close() {
	for _, n := range m.notices {
		n.Close()
	}
}
