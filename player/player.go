// Package player connects skipsync to mpv: it reports playback as coordinator samples,
// performs skips by seeking, and shows notices on mpv's OSD and in the terminal.
package player

import "time"

// Controller is the part of mpv the skip and notice adapters drive.
type Controller interface {
	// Seek moves playback to an absolute position in seconds.
	Seek(seconds float64) error

	// ShowText shows text on the OSD for d.
	ShowText(text string, d time.Duration) error
}

var _ Controller = (*MPV)(nil)
