package segment

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// ErrUnknownCategory is returned when a category name is not recognized.
var ErrUnknownCategory = errors.New("unknown category")

// Category classifies what a segment contains.
type Category string

const (
	Sponsor       Category = "sponsor"
	SelfPromo     Category = "selfpromo"
	Interaction   Category = "interaction"
	Intro         Category = "intro"
	Outro         Category = "outro"
	Preview       Category = "preview"
	MusicOfftopic Category = "music_offtopic"
	Filler        Category = "filler"
	Highlight     Category = "poi_highlight"
	Chapter       Category = "chapter"
)

var categories = []Category{
	Sponsor,
	SelfPromo,
	Interaction,
	Intro,
	Outro,
	Preview,
	MusicOfftopic,
	Filler,
	Highlight,
	Chapter,
}

// Categories returns every known category in canonical order.
func Categories() []Category {
	return slices.Clone(categories)
}

// CategoryNames returns the names of every known category.
func CategoryNames() []string {
	return lo.Map(categories, func(c Category, _ int) string {
		return string(c)
	})
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return lo.Contains(categories, c)
}

// DefaultAction is the action taken for c when no override is configured.
func (c Category) DefaultAction() Action {
	switch c {
	case Highlight, Chapter:
		return ActionPOI
	default:
		return ActionSkip
	}
}

// ParseCategory resolves a category name case-insensitively.
// Unknown names fail with ErrUnknownCategory, suggesting the closest match when there is one.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if c.Valid() {
		return c, nil
	}

	ranks := fuzzy.RankFindNormalizedFold(name, CategoryNames())
	if len(ranks) == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}

	sort.Sort(ranks)
	return "", fmt.Errorf("%w: %q, did you mean %q?", ErrUnknownCategory, name, ranks[0].Target)
}

// Action is what happens when playback reaches a segment.
type Action string

const (
	// ActionSkip seeks past the segment automatically.
	ActionSkip Action = "skip"
	// ActionNotice shows a notice and leaves the skip to the user.
	ActionNotice Action = "notice"
	// ActionMute is recorded but handled like ActionNotice.
	ActionMute Action = "mute"
	// ActionPOI marks a point of interest; it is never acted on automatically.
	ActionPOI Action = "poi"
)

// Automatic reports whether the scheduler fires anything for a.
func (a Action) Automatic() bool {
	switch a {
	case ActionSkip, ActionNotice, ActionMute:
		return true
	default:
		return false
	}
}
