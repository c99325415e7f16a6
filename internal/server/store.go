package server

import (
	"encoding/base64"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cloud-disk/internal/model"
	"cloud-disk/internal/util"
)

const defaultPageSize = 50

// DiskStore is the in-memory backing tree of the disk API. Entries hang off
// the root sentinel folder; file contents and generated thumbnails are kept
// alongside so uploads, used-space accounting, and thumbnail serving work
// without any external storage.
type DiskStore struct {
	thumbnailSize int

	mu      sync.RWMutex
	entries map[string]*model.Entry
	content map[string][]byte
	thumbs  map[string][]byte
}

func NewDiskStore(thumbnailSize int) *DiskStore {
	if thumbnailSize <= 0 {
		thumbnailSize = 256
	}

	return &DiskStore{
		thumbnailSize: thumbnailSize,
		entries:       map[string]*model.Entry{},
		content:       map[string][]byte{},
		thumbs:        map[string][]byte{},
	}
}

// List returns one page of a folder's children, ordered by the requested sort
// key. The cursor is an opaque offset token; pinFoldersTop is a client-side
// concern and ignored here.
func (s *DiskStore) List(req model.ListRequest) (*model.ListResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	offset := 0
	if req.Cursor != "" {
		decoded, err := decodeCursor(req.Cursor)
		if err != nil {
			return nil, model.ErrInvalidCursor
		}
		offset = decoded
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireFolderLocked(req.FolderID); err != nil {
		return nil, err
	}

	children := s.childrenLocked(req.FolderID)

	if search := strings.ToLower(strings.TrimSpace(req.Search)); search != "" {
		filtered := children[:0]
		for _, e := range children {
			if strings.Contains(strings.ToLower(e.Name), search) {
				filtered = append(filtered, e)
			}
		}
		children = filtered
	}

	sortEntries(children, req.SortBy)

	if offset > len(children) {
		offset = len(children)
	}

	end := offset + pageSize
	if end > len(children) {
		end = len(children)
	}

	resp := &model.ListResponse{
		Results: children[offset:end],
		HasMore: end < len(children),
	}
	if resp.HasMore {
		resp.NextCursor = encodeCursor(end)
	}

	return resp, nil
}

// ListAll returns every immediate child of a folder, name-ordered, minus the
// excluded ids. The move dialog browses candidate destinations with it.
func (s *DiskStore) ListAll(folderID string, excludeIDs []string) ([]model.Entry, error) {
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireFolderLocked(folderID); err != nil {
		return nil, err
	}

	children := s.childrenLocked(folderID)
	kept := children[:0]
	for _, e := range children {
		if _, skip := excluded[e.ID]; skip {
			continue
		}
		kept = append(kept, e)
	}

	sortEntries(kept, model.SortByName)
	return kept, nil
}

// CreateFolder adds an empty folder under parentID.
func (s *DiskStore) CreateFolder(name, parentID string) (*model.Entry, error) {
	cleaned, err := util.SanitizeEntryName(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireFolderLocked(parentID); err != nil {
		return nil, err
	}
	if s.nameTakenLocked(parentID, cleaned, "") {
		return nil, model.ErrNameConflict
	}

	now := time.Now().UTC()
	entry := &model.Entry{
		ID:         uuid.NewString(),
		Kind:       model.KindFolder,
		Name:       cleaned,
		ParentID:   parentID,
		ModifiedAt: now,
		CreatedAt:  now,
	}
	s.entries[entry.ID] = entry

	out := *entry
	return &out, nil
}

// Rename changes an entry's name, refusing sibling collisions.
func (s *DiskStore) Rename(id, name string) (*model.Entry, error) {
	cleaned, err := util.SanitizeEntryName(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[id]
	if !exists {
		return nil, model.ErrEntryNotFound
	}
	if s.nameTakenLocked(entry.ParentID, cleaned, id) {
		return nil, model.ErrNameConflict
	}

	entry.Name = cleaned
	if entry.Kind == model.KindFile {
		entry.Extension = util.Extension(cleaned)
	}
	entry.ModifiedAt = time.Now().UTC()

	out := *entry
	return &out, nil
}

// Delete removes the given entries and all their descendants. Unknown ids
// are skipped rather than errored; the returned slice holds the top-level
// entries that actually went away, which is the authoritative confirmation
// the client reconciles against.
func (s *DiskStore) Delete(ids []string) []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var confirmed []model.Entry
	for _, id := range ids {
		entry, exists := s.entries[id]
		if !exists {
			continue
		}
		confirmed = append(confirmed, *entry)
		s.deleteSubtreeLocked(id)
	}

	return confirmed
}

func (s *DiskStore) deleteSubtreeLocked(id string) {
	for _, e := range s.entries {
		if e.ParentID == id {
			s.deleteSubtreeLocked(e.ID)
		}
	}
	delete(s.entries, id)
	delete(s.content, id)
	delete(s.thumbs, id)
}

// Move re-parents entries under targetID. It refuses moving a folder into
// its own subtree by walking the target's parent chain, a structural check
// the client's breadcrumb heuristic cannot fully make. Unknown ids are
// skipped; a destination name conflict refuses the whole batch, so a failed
// move changes nothing. The returned slice is the confirmed set.
func (s *DiskStore) Move(ids []string, targetID string) ([]model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireFolderLocked(targetID); err != nil {
		return nil, err
	}

	moving := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, exists := s.entries[id]; exists {
			moving[id] = struct{}{}
		}
	}

	// The target must not be one of the moved folders or sit below one.
	for cursor := targetID; cursor != model.RootFolderID; {
		if _, hit := moving[cursor]; hit {
			return nil, model.ErrMoveCycle
		}
		parent, exists := s.entries[cursor]
		if !exists {
			break
		}
		cursor = parent.ParentID
	}

	// Validate every destination name before touching anything, so a failed
	// move leaves the tree exactly as it was.
	claimed := map[string]struct{}{}
	for _, id := range ids {
		entry, exists := s.entries[id]
		if !exists || entry.ParentID == targetID {
			continue
		}
		lower := strings.ToLower(entry.Name)
		if _, dup := claimed[lower]; dup {
			return nil, model.ErrNameConflict
		}
		if s.nameTakenLocked(targetID, entry.Name, id) {
			return nil, model.ErrNameConflict
		}
		claimed[lower] = struct{}{}
	}

	var confirmed []model.Entry
	now := time.Now().UTC()
	for _, id := range ids {
		entry, exists := s.entries[id]
		if !exists {
			continue
		}
		if entry.ParentID == targetID {
			continue
		}
		entry.ParentID = targetID
		entry.ModifiedAt = now
		confirmed = append(confirmed, *entry)
	}

	return confirmed, nil
}

// Path returns the breadcrumb trail from the root to the given entry, root
// first.
func (s *DiskStore) Path(id string) ([]model.PathNode, error) {
	root := model.PathNode{ID: model.RootFolderID, Name: "My Disk"}
	if id == model.RootFolderID {
		return []model.PathNode{root}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var reversed []model.PathNode
	for cursor := id; cursor != model.RootFolderID; {
		entry, exists := s.entries[cursor]
		if !exists {
			return nil, model.ErrEntryNotFound
		}
		reversed = append(reversed, model.PathNode{ID: entry.ID, Name: entry.Name})
		cursor = entry.ParentID
	}

	trail := make([]model.PathNode, 0, len(reversed)+1)
	trail = append(trail, root)
	for i := len(reversed) - 1; i >= 0; i-- {
		trail = append(trail, reversed[i])
	}

	return trail, nil
}

// Upload stores files under parentID. Image uploads get a downscaled JPEG
// thumbnail rendered immediately.
func (s *DiskStore) Upload(parentID string, files []model.UploadFile) ([]model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireFolderLocked(parentID); err != nil {
		return nil, err
	}

	// Sanitize and conflict-check the whole batch up front; a rejected file
	// must not leave earlier files of the same request behind.
	cleanedNames := make([]string, len(files))
	claimed := map[string]struct{}{}
	for i, f := range files {
		cleaned, err := util.SanitizeEntryName(f.Name)
		if err != nil {
			return nil, err
		}
		lower := strings.ToLower(cleaned)
		if _, dup := claimed[lower]; dup {
			return nil, model.ErrNameConflict
		}
		if s.nameTakenLocked(parentID, cleaned, "") {
			return nil, model.ErrNameConflict
		}
		claimed[lower] = struct{}{}
		cleanedNames[i] = cleaned
	}

	created := make([]model.Entry, 0, len(files))
	now := time.Now().UTC()
	for i, f := range files {
		cleaned := cleanedNames[i]
		mimeType := util.DetectMIME(cleaned, f.Data)
		entry := &model.Entry{
			ID:         uuid.NewString(),
			Kind:       model.KindFile,
			Name:       cleaned,
			ParentID:   parentID,
			Size:       int64(len(f.Data)),
			Extension:  util.Extension(cleaned),
			MimeType:   mimeType,
			ModifiedAt: now,
			CreatedAt:  now,
		}

		s.entries[entry.ID] = entry
		s.content[entry.ID] = f.Data

		if util.IsImageMIME(mimeType) {
			if thumb, err := renderThumbnail(f.Data, s.thumbnailSize); err == nil {
				s.thumbs[entry.ID] = thumb
			}
		}

		created = append(created, *entry)
	}

	return created, nil
}

// Thumbnail returns the rendered JPEG thumbnail for an image entry.
func (s *DiskStore) Thumbnail(id string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thumb, ok := s.thumbs[id]
	return thumb, ok
}

// UsedSpace totals the stored file bytes.
func (s *DiskStore) UsedSpace() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, e := range s.entries {
		if e.Kind == model.KindFile {
			total += e.Size
		}
	}
	return total
}

// Entry returns a copy of the entry with the given id.
func (s *DiskStore) Entry(id string) (model.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[id]
	if !exists {
		return model.Entry{}, false
	}
	return *entry, true
}

// SeedDemo fills an empty store with a small browsable tree for local runs.
func (s *DiskStore) SeedDemo() error {
	docs, err := s.CreateFolder("Documents", model.RootFolderID)
	if err != nil {
		return err
	}
	if _, err := s.CreateFolder("Photos", model.RootFolderID); err != nil {
		return err
	}
	if _, err := s.CreateFolder("Archive", docs.ID); err != nil {
		return err
	}

	samples := []model.UploadFile{
		{Name: "welcome.txt", Data: []byte("Welcome to your cloud disk.\n")},
		{Name: "notes.md", Data: []byte("# Notes\n\n- first entry\n")},
	}
	if _, err := s.Upload(model.RootFolderID, samples); err != nil {
		return err
	}

	report := []model.UploadFile{{Name: "report.txt", Data: []byte("Quarterly numbers go here.\n")}}
	if _, err := s.Upload(docs.ID, report); err != nil {
		return err
	}

	return nil
}

// requireFolderLocked accepts the root sentinel or an existing folder id.
func (s *DiskStore) requireFolderLocked(id string) error {
	if id == model.RootFolderID {
		return nil
	}

	entry, exists := s.entries[id]
	if !exists {
		return model.ErrEntryNotFound
	}
	if entry.Kind != model.KindFolder {
		return model.ErrNotAFolder
	}
	return nil
}

func (s *DiskStore) childrenLocked(folderID string) []model.Entry {
	var children []model.Entry
	for _, e := range s.entries {
		if e.ParentID == folderID {
			children = append(children, *e)
		}
	}
	return children
}

func (s *DiskStore) nameTakenLocked(parentID, name, exceptID string) bool {
	for _, e := range s.entries {
		if e.ParentID == parentID && e.ID != exceptID && strings.EqualFold(e.Name, name) {
			return true
		}
	}
	return false
}

// sortEntries orders by the active sort key: names ascending (case folded),
// modification times newest first. Ties keep a deterministic secondary order
// so pagination never shuffles entries between requests.
func sortEntries(entries []model.Entry, sortBy string) {
	switch sortBy {
	case model.SortByModifiedAt:
		sort.SliceStable(entries, func(i, j int) bool {
			if !entries[i].ModifiedAt.Equal(entries[j].ModifiedAt) {
				return entries[i].ModifiedAt.After(entries[j].ModifiedAt)
			}
			return entries[i].ID < entries[j].ID
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			a := strings.ToLower(entries[i].Name)
			b := strings.ToLower(entries[j].Name)
			if a != b {
				return a < b
			}
			return entries[i].ID < entries[j].ID
		})
	}
}

func encodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, err
	}

	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0, model.ErrInvalidCursor
	}
	return offset, nil
}
