package session

import (
	"context"
	"errors"
	"io"

	"github.com/anisan-cli/skipsync/coordinator"
	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/player"
)

// Run plays opts.Media in mpv, or attaches to opts.Socket, and skips segments until mpv
// exits or ctx is done. Terminal notices are written to out.
func Run(ctx context.Context, opts Options, out io.Writer) error {
	var (
		mpv *player.MPV
		err error
	)

	switch {
	case opts.Socket != "":
		if mpv, err = player.Attach(opts.Socket); err != nil {
			return err
		}
		log.Infof("session: attached to %s", opts.Socket)
	case opts.Media != "":
		mpv = player.NewMPV(opts.MPVPath, opts.MPVArgs...)
	default:
		return errors.New("nothing to play: no media and no socket")
	}
	defer mpv.Close()

	osd := &player.OSD{Player: mpv, Duration: opts.NoticeDuration}
	term := &player.Terminal{Out: out}

	c := coordinator.New(player.Skipper{Player: mpv}, player.Notices{osd, term}, opts.Coordinator)
	defer c.Close()

	host := NewHost(opts, c, mpv, osd, term)
	defer host.Close()

	bridge := player.NewBridge(c, opts.Coordinator.Clock, opts.SampleInterval)
	bridge.OnLoad = host.Load
	bridge.OnMessage = host.Message

	if opts.Media != "" {
		if err := mpv.Play(opts.Media, opts.Title); err != nil {
			return err
		}
	}

	listener := player.NewEventListener(mpv.Socket(), bridge.Handle)
	if err := listener.Start(); err != nil {
		return err
	}
	defer listener.Stop()

	log.Infof("session: watching %s", mpv.Socket())

	select {
	case <-ctx.Done():
		log.Info("session: interrupted")
	case <-mpv.Wait():
		log.Info("session: mpv exited")
	case <-listener.Done():
		log.Info("session: mpv closed the connection")
	}
	return nil
}
