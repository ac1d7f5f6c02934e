// Package session runs skipsync next to an mpv instance: it loads segments whenever mpv
// opens new media and answers the script messages sent from mpv.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anisan-cli/skipsync/coordinator"
	"github.com/anisan-cli/skipsync/icon"
	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/player"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/anisan-cli/skipsync/source"
	"github.com/anisan-cli/skipsync/util"
	"github.com/samber/mo"
)

// Options configures a session.
type Options struct {
	// Media is played by a new mpv. Empty when attaching to Socket.
	Media string
	// Socket of an mpv started with --input-ipc-server.
	Socket string
	// Title overrides the media title shown by mpv.
	Title string
	// MPVPath and MPVArgs start mpv.
	MPVPath string
	MPVArgs []string

	// MALID and Episode identify Media for AniSkip.
	MALID   int
	Episode int

	// Locked categories apply to every video.
	Locked  []segment.Category
	Sources []source.Source
	// Files receives the segments marked from mpv.
	Files source.Files

	MarkCategory   segment.Category
	MarkSpan       time.Duration
	SampleInterval time.Duration
	NoticeDuration time.Duration
	Coordinator    coordinator.Options
}

// previewLead is how many seconds before a segment a preview starts.
const previewLead = 2.0

type chapterSetter interface {
	SetChapters([]player.Chapter) error
}

// Host reacts to media loads and script messages on behalf of a coordinator.
type Host struct {
	opts   Options
	c      *coordinator.Coordinator
	player player.Controller
	osd    *player.OSD
	term   *player.Terminal

	mu    sync.Mutex
	ctx   context.Context
	stop  context.CancelFunc
	req   source.Request
	mark  mo.Option[float64]
	fetch sync.WaitGroup
}

// NewHost creates a host driving c and showing messages on osd and term.
func NewHost(opts Options, c *coordinator.Coordinator, p player.Controller, osd *player.OSD, term *player.Terminal) *Host {
	if opts.MarkCategory == "" {
		opts.MarkCategory = segment.Sponsor
	}
	if opts.MarkSpan <= 0 {
		opts.MarkSpan = 30 * time.Second
	}

	ctx, stop := context.WithCancel(context.Background())
	return &Host{opts: opts, c: c, player: p, osd: osd, term: term, ctx: ctx, stop: stop}
}

// Load resets the coordinator for media at path and starts looking up its segments.
func (h *Host) Load(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stop()
	h.ctx, h.stop = context.WithCancel(context.Background())

	h.req = source.Request{Media: path}
	if path == h.opts.Media {
		h.req.MALID, h.req.Episode = h.opts.MALID, h.opts.Episode
	}
	h.mark = mo.None[float64]()

	h.c.OnVideoChanged(segment.VideoContext{VideoID: path, LockedCategories: h.opts.Locked})
	h.c.CloseAllNotices()
	h.term.Println(fmt.Sprintf("%s %s", icon.Get(icon.Progress), path))

	if len(h.opts.Sources) == 0 {
		return
	}

	h.c.SetLookupWaiting(true)
	ctx, req := h.ctx, h.req
	h.fetch.Add(1)
	go func() {
		defer h.fetch.Done()
		_ = source.Lookup(ctx, req, func(r source.Result, err error) {
			h.found(ctx, r, err)
		}, h.opts.Sources...)
		h.lookupDone(ctx)
	}()
}

// found applies one source result unless the media changed since the lookup started.
func (h *Host) found(ctx context.Context, r source.Result, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	if err != nil {
		log.Warnf("session: %s lookup failed: %v", r.Source, err)
		h.c.RecordLookup(r.Status, false)
		if !h.c.MarkFetchWarningShown() {
			h.osd.ShowText(fmt.Sprintf("%s Could not fetch segments from %s", icon.Get(icon.Fail), r.Source))
		}
		return
	}

	h.c.RecordLookup(r.Status, r.Found)
	if !r.Found {
		return
	}

	for _, c := range r.Locked {
		h.c.LockCategory(c)
	}
	if r.Duration > 0 && h.c.Video().Duration == 0 {
		h.c.SetDuration(r.Duration)
	}
	h.c.MergeSegments(r.Segments)
	h.term.Println(fmt.Sprintf("%s %s from %s", icon.Get(icon.Success), util.Quantify(len(r.Segments), "segment", "segments"), r.Source))
}

func (h *Host) lookupDone(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	h.c.SetLookupWaiting(false)
	h.markChapters()
}

func (h *Host) markChapters() {
	cs, ok := h.player.(chapterSetter)
	if !ok {
		return
	}

	var chapters []player.Chapter
	for _, seg := range h.c.Segments() {
		chapters = append(chapters,
			player.Chapter{Title: player.Title(seg.Category), Time: seg.Start},
			player.Chapter{Title: "", Time: seg.End},
		)
	}
	if len(chapters) == 0 {
		return
	}
	if err := cs.SetChapters(chapters); err != nil {
		log.Warnf("session: set chapters: %v", err)
	}
}

// Message answers a script message sent from mpv.
func (h *Host) Message(args []string) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case player.MessageSkip:
		h.skip(args[1:])
	case player.MessageLock:
		h.toggleLock(args[1:])
	case player.MessageMark:
		h.markSegment(args[1:])
	case player.MessagePreview:
		h.preview(args[1:])
	default:
		log.Debugf("session: ignoring script message %q", args[0])
	}
}

func (h *Host) skip(args []string) {
	if len(args) > 0 {
		h.c.RequestSkip(segment.ID(args[0]))
		return
	}
	if !h.c.RequestSkipCurrent() {
		h.osd.ShowText("Nothing to skip here")
	}
}

// preview seeks to just before a segment, the selected one unless an id is given,
// so its skip can be watched.
func (h *Host) preview(args []string) {
	id := h.c.Selected().OrEmpty()
	if len(args) > 0 {
		id = segment.ID(args[0])
	}

	seg, ok := h.c.Segment(id)
	if !ok {
		h.osd.ShowText("Nothing to preview")
		return
	}

	if err := h.player.Seek(max(seg.Start-previewLead, 0)); err != nil {
		h.osd.ShowText(fmt.Sprintf("%s Could not preview %s: %v", icon.Get(icon.Fail), player.Describe(seg), err))
		return
	}
	h.c.MarkPreviewed()
	h.osd.ShowText(fmt.Sprintf("%s Previewing %s", icon.Get(icon.Skip), player.Describe(seg)))
}

func (h *Host) toggleLock(args []string) {
	if len(args) == 0 {
		h.osd.ShowText(fmt.Sprintf("%s %s needs a category", icon.Get(icon.Fail), player.MessageLock))
		return
	}

	category, err := segment.ParseCategory(args[0])
	if err != nil {
		h.osd.ShowText(fmt.Sprintf("%s %v", icon.Get(icon.Fail), err))
		return
	}

	if h.c.ToggleCategoryLock(category) {
		h.osd.ShowText(fmt.Sprintf("%s %s will not be skipped", icon.Get(icon.Lock), player.Title(category)))
	} else {
		h.osd.ShowText(fmt.Sprintf("%s %s will be skipped", icon.Get(icon.Unlock), player.Title(category)))
	}
}

// markSegment records the start of a segment on the first call and saves it on the second.
// "cancel" drops a started mark; any other argument names the category to save.
func (h *Host) markSegment(args []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(args) > 0 && args[0] == "cancel" {
		h.mark = mo.None[float64]()
		h.osd.ShowText("Mark cancelled")
		return
	}

	pos, err := h.c.EstimateNow()
	if err != nil {
		h.osd.ShowText(fmt.Sprintf("%s Nothing is playing", icon.Get(icon.Fail)))
		return
	}

	start, ok := h.mark.Get()
	if !ok {
		h.mark = mo.Some(pos)
		h.osd.ShowText(fmt.Sprintf("%s Segment starts at %s, mark again at its end", icon.Get(icon.Mark), player.Timestamp(pos)))
		return
	}
	h.mark = mo.None[float64]()

	category := h.opts.MarkCategory
	if len(args) > 0 {
		if category, err = segment.ParseCategory(args[0]); err != nil {
			h.osd.ShowText(fmt.Sprintf("%s %v", icon.Get(icon.Fail), err))
			return
		}
	}

	end := pos
	if end <= start {
		end = start + h.opts.MarkSpan.Seconds()
	}
	seg := segment.Segment{Start: start, End: end, Category: category}

	id, err := h.c.SubmitSegment(seg)
	if err != nil {
		h.osd.ShowText(fmt.Sprintf("%s %v", icon.Get(icon.Fail), err))
		return
	}
	seg.ID = id
	h.c.Select(id)
	h.c.SetSubmissionNotice(h.osd.ShowText(fmt.Sprintf("%s Saving %s", icon.Get(icon.Progress), player.Describe(seg))))

	req := h.req
	req.Duration = h.c.Video().Duration
	path, err := h.opts.Files.Save(req, seg)
	if err != nil {
		h.c.CancelSubmission(id)
		h.c.CloseSubmissionNotice()
		h.osd.ShowText(fmt.Sprintf("%s Could not save %s: %v", icon.Get(icon.Fail), player.Describe(seg), err))
		return
	}

	h.c.ConfirmSubmission(id)
	h.c.CloseSubmissionNotice()
	h.markChapters()
	h.osd.ShowText(fmt.Sprintf("%s Saved %s", icon.Get(icon.Success), player.Describe(seg)))
	h.term.Println(fmt.Sprintf("%s %s saved to %s", icon.Get(icon.Success), player.Describe(seg), path))
}

// Close cancels running lookups and waits for them.
func (h *Host) Close() {
	h.mu.Lock()
	h.stop()
	h.mu.Unlock()

	h.fetch.Wait()
}
