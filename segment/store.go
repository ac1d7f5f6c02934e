package segment

import (
	"slices"
	"sort"

	"github.com/samber/lo"
)

// Store is the canonical record of segments for the current video.
//
// A Store is not safe for concurrent use; it is owned by the coordinator and only
// touched from its loop. Operations naming an id the store does not hold are no-ops:
// ids arrive from an external source and may be stale.
type Store struct {
	confirmed []Segment
	pending   []Segment
	locked    []Category
	video     VideoContext
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Replace overwrites the confirmed segments. Skip flags are taken from list as given,
// so a fresh list starts unskipped. Duplicate ids keep their first occurrence.
func (s *Store) Replace(list []Segment) {
	s.confirmed = sortByStart(lo.UniqBy(list, func(seg Segment) ID {
		return seg.ID
	}))
}

// Merge adds the segments of list whose ids are not yet known, keeping the state of
// segments already held.
func (s *Store) Merge(list []Segment) int {
	fresh := lo.Filter(lo.UniqBy(list, func(seg Segment) ID { return seg.ID }), func(seg Segment, _ int) bool {
		_, known := s.index(seg.ID)
		return !known
	})
	if len(fresh) == 0 {
		return 0
	}

	s.confirmed = sortByStart(append(s.confirmed, fresh...))
	return len(fresh)
}

// RecordSkip marks a confirmed segment as skipped. Skipping twice is a no-op.
func (s *Store) RecordSkip(id ID) {
	if i, ok := s.index(id); ok {
		s.confirmed[i].Skipped = true
	}
}

// Lookup returns a copy of the confirmed segment with the given id.
func (s *Store) Lookup(id ID) (Segment, bool) {
	if i, ok := s.index(id); ok {
		return s.confirmed[i], true
	}
	return Segment{}, false
}

// Segments returns a copy of the confirmed segments ordered by start.
func (s *Store) Segments() []Segment {
	return slices.Clone(s.confirmed)
}

// Len returns the number of confirmed segments.
func (s *Store) Len() int {
	return len(s.confirmed)
}

// AddSubmission records a locally submitted segment awaiting confirmation.
// A submission with an id that is already pending replaces it.
func (s *Store) AddSubmission(seg Segment) {
	seg.Submitting = true
	seg.Skipped = false

	if _, i, ok := lo.FindIndexOf(s.pending, func(p Segment) bool { return p.ID == seg.ID }); ok {
		s.pending[i] = seg
		return
	}
	s.pending = append(s.pending, seg)
}

// RemoveSubmission drops a pending submission, for instance after it failed.
func (s *Store) RemoveSubmission(id ID) {
	s.pending = lo.Reject(s.pending, func(p Segment, _ int) bool {
		return p.ID == id
	})
}

// ConfirmSubmission moves a pending submission into the confirmed segments.
func (s *Store) ConfirmSubmission(id ID) {
	seg, ok := lo.Find(s.pending, func(p Segment) bool { return p.ID == id })
	if !ok {
		return
	}

	s.RemoveSubmission(id)
	seg.Submitting = false
	s.Merge([]Segment{seg})
}

// Submissions returns a copy of the pending submissions in insertion order.
func (s *Store) Submissions() []Segment {
	return slices.Clone(s.pending)
}

// LockCategory suppresses automatic action for every segment of c.
func (s *Store) LockCategory(c Category) {
	if !lo.Contains(s.locked, c) {
		s.locked = append(s.locked, c)
	}
}

// UnlockCategory lifts a lock placed by LockCategory.
func (s *Store) UnlockCategory(c Category) {
	s.locked = lo.Without(s.locked, c)
}

// IsLocked reports whether c is locked for the current video.
func (s *Store) IsLocked(c Category) bool {
	return lo.Contains(s.locked, c)
}

// SetVideo installs the context of a newly loaded video, including its locks.
func (s *Store) SetVideo(v VideoContext) {
	s.video = v
	s.video.LockedCategories = nil
	s.locked = lo.Uniq(slices.Clone(v.LockedCategories))
}

// SetDuration records the duration of the current video once it becomes known.
func (s *Store) SetDuration(d float64) {
	s.video.Duration = d
}

// Video returns a copy of the current video context.
func (s *Store) Video() VideoContext {
	v := s.video
	v.LockedCategories = slices.Clone(s.locked)
	return v
}

// Clear forgets every segment, submission, lock and the video context.
func (s *Store) Clear() {
	s.confirmed = nil
	s.pending = nil
	s.locked = nil
	s.video = VideoContext{}
}

func (s *Store) index(id ID) (int, bool) {
	_, i, ok := lo.FindIndexOf(s.confirmed, func(seg Segment) bool {
		return seg.ID == id
	})
	return i, ok
}

func sortByStart(list []Segment) []Segment {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Start < list[j].Start
	})
	return list
}
