package explorer

import (
	"sort"
	"sync"
)

// Modifiers are the pointer-event modifiers that change what a click means.
type Modifiers struct {
	Shift     bool
	CtrlOrCmd bool
}

// SelectionTracker holds the set of selected entry ids and the anchor used as
// the pivot for range selection. Every selected id exists in the listing the
// tracker is wired to; the listing's replace/remove hooks keep that true.
type SelectionTracker struct {
	mu       sync.Mutex
	selected map[string]struct{}
	anchorID string
}

func NewSelectionTracker() *SelectionTracker {
	return &SelectionTracker{
		selected: make(map[string]struct{}),
	}
}

// Select interprets a click on id against the current display order.
//
//   - Plain click: selection becomes {id}, unless id was already the sole
//     selected entry, in which case the selection clears (toggle-off). The
//     anchor moves to id either way.
//   - Ctrl/Cmd click: flips id's membership, leaving the rest untouched. The
//     anchor moves to id.
//   - Shift click: unions the contiguous range between the anchor and id into
//     the selection. The anchor does not move, so consecutive shift clicks
//     pivot around the same entry. Without a resolvable anchor a shift click
//     degrades to a plain click.
//
// A click on an id not present in orderedIDs is ignored.
func (s *SelectionTracker) Select(id string, mods Modifiers, orderedIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(orderedIDs, id)
	if idx < 0 {
		return
	}

	if mods.Shift {
		if anchorIdx := indexOf(orderedIDs, s.anchorID); anchorIdx >= 0 {
			lo, hi := anchorIdx, idx
			if lo > hi {
				lo, hi = hi, lo
			}
			for _, rangeID := range orderedIDs[lo : hi+1] {
				s.selected[rangeID] = struct{}{}
			}
			return
		}
		// No anchor to pivot on yet.
		s.plainClick(id)
		return
	}

	if mods.CtrlOrCmd {
		if _, ok := s.selected[id]; ok {
			delete(s.selected, id)
		} else {
			s.selected[id] = struct{}{}
		}
		s.anchorID = id
		return
	}

	s.plainClick(id)
}

// plainClick must be called with the lock held.
func (s *SelectionTracker) plainClick(id string) {
	_, wasSelected := s.selected[id]
	soleSelection := wasSelected && len(s.selected) == 1

	s.selected = make(map[string]struct{})
	if !soleSelection {
		s.selected[id] = struct{}{}
	}
	s.anchorID = id
}

// Reset clears the selection and the anchor. Called whenever the listing is
// replaced.
func (s *SelectionTracker) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = make(map[string]struct{})
	s.anchorID = ""
}

// Discard drops the given ids from the selection, clearing the anchor if it
// was one of them. Called when entries leave the listing.
func (s *SelectionTracker) Discard(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.selected, id)
		if s.anchorID == id {
			s.anchorID = ""
		}
	}
}

// Selected returns the selected ids, sorted for deterministic output.
func (s *SelectionTracker) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *SelectionTracker) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.selected[id]
	return ok
}

func (s *SelectionTracker) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

// AnchorID returns the current range pivot, or "" when none is set.
func (s *SelectionTracker) AnchorID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchorID
}

func indexOf(ids []string, id string) int {
	if id == "" {
		return -1
	}
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}
