package player

import (
	"github.com/anisan-cli/skipsync/coordinator"
	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/segment"
)

// Skipper performs coordinator skips by seeking. With an *MPV player each skip is a
// single IPC round trip.
type Skipper struct {
	Player Controller
}

var _ coordinator.PlayerControl = Skipper{}

func (s Skipper) Skip(id segment.ID, target float64) error {
	log.Debugf("player: seeking to %.2fs to skip %s", target, id)
	return s.Player.Seek(target)
}
