// Package explorer holds the view-state core of the disk client: the listing
// of the open folder, the selection over it, and the mutation and move flows
// that keep the listing in step with the server without refetching.
//
// One View owns one open folder. Views never share state; every instance
// talks to the server independently through its Backend.
package explorer

import (
	"context"
	"fmt"

	"cloud-disk/internal/model"
	"cloud-disk/internal/notify"
)

// Backend is the slice of the disk API the explorer core consumes. The REST
// client implements it; tests substitute fakes.
type Backend interface {
	List(ctx context.Context, req model.ListRequest) (*model.ListResponse, error)
	CreateFolder(ctx context.Context, name, parentID string) (*model.Entry, error)
	Rename(ctx context.Context, id, name string, kind model.EntryKind) (*model.Entry, error)
	Delete(ctx context.Context, ids []string) ([]model.Entry, error)
	Move(ctx context.Context, ids []string, parentID string) ([]model.Entry, error)
	Path(ctx context.Context, fileID string) ([]model.PathNode, error)
	Upload(ctx context.Context, parentID string, files []model.UploadFile) ([]model.Entry, error)
}

// View wires the four state components together for one open folder and
// exposes the operations a rendering surface calls.
type View struct {
	Store     *ListingStore
	Selection *SelectionTracker
	Mutations *MutationCoordinator
	Moves     *MoveNegotiator

	backend    Backend
	notifier   *notify.Notifier
	breadcrumb []model.PathNode
}

func NewView(backend Backend, notifier *notify.Notifier) *View {
	store := NewListingStore(backend, notifier)
	selection := NewSelectionTracker()

	// Listing replacement and removal keep the selection invariant: selected
	// ids always exist in the current entries.
	store.OnReplaced(selection.Reset)
	store.OnRemoved(selection.Discard)

	mutations := NewMutationCoordinator(backend, store, notifier)

	return &View{
		Store:     store,
		Selection: selection,
		Mutations: mutations,
		Moves:     NewMoveNegotiator(mutations),
		backend:   backend,
		notifier:  notifier,
	}
}

// OpenFolder navigates the view to folderID, replacing the listing and the
// breadcrumb trail. A breadcrumb fetch failure is reported but does not undo
// the navigation.
func (v *View) OpenFolder(ctx context.Context, folderID string, filters Filters) error {
	if err := v.Store.LoadInitial(ctx, folderID, filters); err != nil {
		return err
	}

	trail, err := v.backend.Path(ctx, folderID)
	if err != nil {
		v.notifier.Error("path", "could not load folder path", err)
		v.breadcrumb = []model.PathNode{{ID: folderID}}
		return nil
	}

	v.breadcrumb = trail
	return nil
}

// Refresh re-fetches the current folder under the current filters.
func (v *View) Refresh(ctx context.Context) error {
	return v.Store.Refresh(ctx)
}

// Select applies a pointer click with its modifiers to the selection, using
// the listing's current display order for range computation.
func (v *View) Select(id string, mods Modifiers) {
	v.Selection.Select(id, mods, v.Store.OrderedIDs())
}

// Breadcrumb returns the trail of the open folder, root first.
func (v *View) Breadcrumb() []model.PathNode {
	out := make([]model.PathNode, len(v.breadcrumb))
	copy(out, v.breadcrumb)
	return out
}

// DropOn stages a move of the current selection onto targetID, which must be
// either a folder in the current listing or a breadcrumb segment. It returns
// true when a PendingMove was staged and now awaits ConfirmMove/CancelMove.
func (v *View) DropOn(targetID string) bool {
	sourceIDs := v.Selection.Selected()
	if len(sourceIDs) == 0 {
		return false
	}

	ancestry, ok := v.targetAncestry(targetID)
	if !ok {
		return false
	}

	return v.Moves.ProposeMove(sourceIDs, v.sourceLabel(sourceIDs), targetID, ancestry)
}

// ConfirmMove executes the staged move. The PendingMove is cleared whether or
// not the move succeeds.
func (v *View) ConfirmMove(ctx context.Context) error {
	return v.Moves.Confirm(ctx)
}

func (v *View) CancelMove() {
	v.Moves.Cancel()
}

// targetAncestry resolves the breadcrumb trail of a drop target. For a
// breadcrumb segment that is the trail up to the segment; for a folder in the
// listing it is the open folder's trail plus the folder itself.
func (v *View) targetAncestry(targetID string) ([]model.PathNode, bool) {
	for i, node := range v.breadcrumb {
		if node.ID == targetID {
			trail := make([]model.PathNode, i+1)
			copy(trail, v.breadcrumb[:i+1])
			return trail, true
		}
	}

	entry, ok := v.Store.EntryByID(targetID)
	if !ok || !entry.IsFolder() {
		return nil, false
	}

	trail := make([]model.PathNode, 0, len(v.breadcrumb)+1)
	trail = append(trail, v.breadcrumb...)
	trail = append(trail, model.PathNode{ID: entry.ID, Name: entry.Name})
	return trail, true
}

func (v *View) sourceLabel(sourceIDs []string) string {
	if len(sourceIDs) == 1 {
		if entry, ok := v.Store.EntryByID(sourceIDs[0]); ok {
			return entry.Name
		}
	}

	return fmt.Sprintf("%d items", len(sourceIDs))
}
