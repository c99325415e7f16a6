package explorer

import (
	"context"
	"fmt"
	"sync"

	"cloud-disk/internal/model"
	"cloud-disk/internal/notify"
)

// Filters are the listing parameters that, together with the folder id,
// define what the store is showing. Changing any of them replaces the page.
type Filters struct {
	Search        string
	SortBy        string
	PinFoldersTop bool
	PageSize      int
}

// ListingStore materializes one folder's contents: the fetched entries, the
// pagination cursor, and the loading flags the view renders from.
//
// Fetches are serialized through a single in-flight guard, and every fetch
// carries a sequence token. A new LoadInitial bumps the token, so a response
// from a superseded fetch is recognized on arrival and discarded without
// touching entries or flags (model.ErrStaleResponse).
type ListingStore struct {
	backend  Backend
	notifier *notify.Notifier

	mu       sync.Mutex
	folderID string
	filters  Filters
	entries  []model.Entry
	cursor   string
	hasMore  bool

	isLoading     bool
	isLoadingMore bool
	isRefreshing  bool
	isUploading   bool

	inFlight bool
	fetchSeq uint64

	onReplaced func()
	onRemoved  func(ids []string)
}

func NewListingStore(backend Backend, notifier *notify.Notifier) *ListingStore {
	return &ListingStore{
		backend:  backend,
		notifier: notifier,
	}
}

// OnReplaced registers a hook called after the listing is replaced by a
// successful initial fetch. The hook runs with the store lock held and must
// not call back into the store.
func (s *ListingStore) OnReplaced(fn func()) {
	s.onReplaced = fn
}

// OnRemoved registers a hook called with the ids actually removed by
// RemoveEntries. Same locking rule as OnReplaced.
func (s *ListingStore) OnRemoved(fn func(ids []string)) {
	s.onRemoved = fn
}

// LoadInitial fetches the first page for folderID under filters and replaces
// the listing. It supersedes any fetch still in flight: that fetch's response
// will be discarded when it arrives. On failure the prior entries are kept
// and a fetch failure is reported.
func (s *ListingStore) LoadInitial(ctx context.Context, folderID string, filters Filters) error {
	return s.fetchInitial(ctx, folderID, filters, false)
}

// Refresh re-runs the initial fetch for the current folder and filters,
// raising isRefreshing instead of isLoading.
func (s *ListingStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	folderID := s.folderID
	filters := s.filters
	s.mu.Unlock()

	return s.fetchInitial(ctx, folderID, filters, true)
}

func (s *ListingStore) fetchInitial(ctx context.Context, folderID string, filters Filters, refreshing bool) error {
	s.mu.Lock()
	s.fetchSeq++
	token := s.fetchSeq
	s.inFlight = true
	if refreshing {
		s.isRefreshing = true
	} else {
		s.isLoading = true
	}
	req := model.ListRequest{
		FolderID:      folderID,
		Search:        filters.Search,
		PageSize:      filters.PageSize,
		SortBy:        filters.SortBy,
		PinFoldersTop: filters.PinFoldersTop,
	}
	s.mu.Unlock()

	resp, err := s.backend.List(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.fetchSeq {
		// Superseded while in flight. The newer fetch owns the flags now.
		return model.ErrStaleResponse
	}

	s.clearFetchFlags()

	if err != nil {
		s.notifier.Error("list", "could not load folder contents", err)
		return fmt.Errorf("load folder %s: %w", folderID, err)
	}

	s.folderID = folderID
	s.filters = filters
	s.entries = pinFoldersFirst(resp.Results, filters.PinFoldersTop)
	s.cursor = resp.NextCursor
	s.hasMore = resp.HasMore

	if s.onReplaced != nil {
		s.onReplaced()
	}

	return nil
}

// LoadMore appends the next page using the stored cursor. It is a no-op when
// no more pages remain or another fetch is already in flight, so repeated
// scroll triggers cannot fetch the same page twice.
func (s *ListingStore) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight || !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	token := s.fetchSeq
	s.inFlight = true
	s.isLoadingMore = true
	req := model.ListRequest{
		FolderID:      s.folderID,
		Search:        s.filters.Search,
		PageSize:      s.filters.PageSize,
		Cursor:        s.cursor,
		SortBy:        s.filters.SortBy,
		PinFoldersTop: s.filters.PinFoldersTop,
	}
	s.mu.Unlock()

	resp, err := s.backend.List(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.fetchSeq {
		return model.ErrStaleResponse
	}

	s.clearFetchFlags()

	if err != nil {
		s.notifier.Error("list", "could not load more entries", err)
		return fmt.Errorf("load more in folder %s: %w", req.FolderID, err)
	}

	s.entries = append(s.entries, s.withoutKnownIDs(pinFoldersFirst(resp.Results, req.PinFoldersTop))...)
	s.cursor = resp.NextCursor
	s.hasMore = resp.HasMore

	return nil
}

// clearFetchFlags must be called with the lock held, by the fetch that still
// owns the current token.
func (s *ListingStore) clearFetchFlags() {
	s.inFlight = false
	s.isLoading = false
	s.isLoadingMore = false
	s.isRefreshing = false
}

// AppendEntries adds just-created entries to the listing without a refetch.
// Ids already present are skipped.
func (s *ListingStore) AppendEntries(entries []model.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, s.withoutKnownIDs(entries)...)
}

// PatchEntry applies fn to the entry with the given id in place. It reports
// whether the entry was found.
func (s *ListingStore) PatchEntry(id string, fn func(*model.Entry)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			fn(&s.entries[i])
			return true
		}
	}

	return false
}

// RemoveEntries drops the given ids from the listing and reports the removal
// through the OnRemoved hook so the selection can drop them too. Unknown ids
// are ignored.
func (s *ListingStore) RemoveEntries(ids []string) {
	if len(ids) == 0 {
		return
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var removed []string
	for _, e := range s.entries {
		if _, gone := drop[e.ID]; gone {
			removed = append(removed, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept

	if len(removed) > 0 && s.onRemoved != nil {
		s.onRemoved(removed)
	}
}

// Entries returns a copy of the current listing in display order.
func (s *ListingStore) Entries() []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// OrderedIDs returns the entry ids in display order, for range selection.
func (s *ListingStore) OrderedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.ID
	}
	return ids
}

func (s *ListingStore) EntryByID(id string) (model.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}

	return model.Entry{}, false
}

func (s *ListingStore) FolderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folderID
}

func (s *ListingStore) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

func (s *ListingStore) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

func (s *ListingStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *ListingStore) IsLoadingMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoadingMore
}

func (s *ListingStore) IsRefreshing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRefreshing
}

func (s *ListingStore) IsUploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isUploading
}

func (s *ListingStore) setUploading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isUploading = v
}

// withoutKnownIDs must be called with the lock held.
func (s *ListingStore) withoutKnownIDs(entries []model.Entry) []model.Entry {
	known := make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		known[e.ID] = struct{}{}
	}

	out := entries[:0:0]
	for _, e := range entries {
		if _, dup := known[e.ID]; dup {
			continue
		}
		out = append(out, e)
	}
	return out
}

// pinFoldersFirst stably partitions one fetched page so folders precede
// files, keeping the server order within each group. It is applied per page,
// never across page boundaries, so already-rendered rows never reorder.
func pinFoldersFirst(entries []model.Entry, pin bool) []model.Entry {
	if !pin {
		return entries
	}

	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsFolder() {
			out = append(out, e)
		}
	}
	for _, e := range entries {
		if !e.IsFolder() {
			out = append(out, e)
		}
	}
	return out
}
