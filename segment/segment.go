// Package segment holds the canonical record of the segments of the current video.
package segment

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSegment is returned by lookups that reference an id the store does not hold.
	ErrUnknownSegment = errors.New("unknown segment")

	// ErrInvalidSegment is returned when a segment's bounds or category are malformed.
	ErrInvalidSegment = errors.New("invalid segment")
)

// ID identifies a segment within a video's lifetime.
type ID string

// Segment is a time range of a video eligible for a skip or a notice.
type Segment struct {
	ID       ID       `json:"id" jsonschema:"required,description=Identifier unique within the video"`
	Start    float64  `json:"start" jsonschema:"required,minimum=0,description=Start of the segment in seconds"`
	End      float64  `json:"end" jsonschema:"required,minimum=0,description=End of the segment in seconds"`
	Category Category `json:"category" jsonschema:"required,enum=sponsor,enum=selfpromo,enum=interaction,enum=intro,enum=outro,enum=preview,enum=music_offtopic,enum=filler,enum=poi_highlight,enum=chapter"`
	Action   Action   `json:"action,omitempty" jsonschema:"enum=skip,enum=notice,enum=mute,enum=poi,description=Overrides the category default"`

	// Skipped is set once the segment has been skipped during this video.
	Skipped bool `json:"-"`
	// Submitting is set while a local submission awaits confirmation.
	Submitting bool `json:"-"`
}

// Length returns the duration of the segment in seconds.
func (s Segment) Length() float64 {
	return s.End - s.Start
}

// Contains reports whether t lies inside [Start, End).
func (s Segment) Contains(t float64) bool {
	return t >= s.Start && t < s.End
}

// ResolvedAction returns the segment's action, falling back to its category default.
func (s Segment) ResolvedAction() Action {
	if s.Action != "" {
		return s.Action
	}
	return s.Category.DefaultAction()
}

// Validate checks bounds and category.
func (s Segment) Validate() error {
	switch {
	case s.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidSegment)
	case !s.Category.Valid():
		return fmt.Errorf("%w %s: %w", ErrInvalidSegment, s.ID, ErrUnknownCategory)
	case s.Start < 0:
		return fmt.Errorf("%w %s: negative start %v", ErrInvalidSegment, s.ID, s.Start)
	case s.End < s.Start:
		return fmt.Errorf("%w %s: end %v before start %v", ErrInvalidSegment, s.ID, s.End, s.Start)
	}
	return nil
}

// VideoContext describes the currently loaded video.
type VideoContext struct {
	VideoID            string
	Duration           float64
	ChannelWhitelisted bool
	LockedCategories   []Category
}
