package explorer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cloud-disk/internal/model"
	"cloud-disk/internal/notify"
)

func TestNavigationClearsSelection(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	view := newTestView(t, backend, file("a", "a"), file("b", "b"))

	view.Select("a", Modifiers{})
	view.Select("b", Modifiers{CtrlOrCmd: true})
	require.Equal(t, 2, view.Selection.Count())

	backend.listFn = singlePage(file("c", "c"))
	require.NoError(t, view.OpenFolder(context.Background(), "9", Filters{}))

	require.Empty(t, view.Selection.Selected())
	require.Empty(t, view.Selection.AnchorID())
}

func TestOpenFolderLoadsBreadcrumb(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{listFn: singlePage()}
	backend.pathFn = func(fileID string) ([]model.PathNode, error) {
		return trail(model.RootFolderID, "docs", fileID), nil
	}
	view := NewView(backend, notify.NewNotifier())

	require.NoError(t, view.OpenFolder(context.Background(), "reports", Filters{}))
	require.Equal(t, trail(model.RootFolderID, "docs", "reports"), view.Breadcrumb())
}

func TestDropOnListedFolderStagesMove(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	view := newTestView(t, backend, file("a", "notes.txt"), folder("z", "Archive"))

	view.Select("a", Modifiers{})
	require.True(t, view.DropOn("z"))

	pending := view.Moves.Pending()
	require.NotNil(t, pending)
	require.Equal(t, []string{"a"}, pending.SourceIDs)
	require.Equal(t, "notes.txt", pending.SourceLabel)
	require.Equal(t, "z", pending.TargetID)
}

func TestDropOnBreadcrumbSegmentStagesMoveToAncestor(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{listFn: singlePage(file("a", "a"), file("b", "b"))}
	backend.pathFn = func(fileID string) ([]model.PathNode, error) {
		return trail(model.RootFolderID, fileID), nil
	}
	view := NewView(backend, notify.NewNotifier())
	require.NoError(t, view.OpenFolder(context.Background(), "docs", Filters{}))

	view.Select("a", Modifiers{})
	view.Select("b", Modifiers{CtrlOrCmd: true})
	require.True(t, view.DropOn(model.RootFolderID))

	pending := view.Moves.Pending()
	require.NotNil(t, pending)
	require.Equal(t, []string{"a", "b"}, pending.SourceIDs)
	require.Equal(t, "2 items", pending.SourceLabel)
	require.Equal(t, model.RootFolderID, pending.TargetID)
}

func TestDropOnFileIsRejected(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	view := newTestView(t, backend, file("a", "a"), file("b", "b"))

	view.Select("a", Modifiers{})
	require.False(t, view.DropOn("b"))
	require.Nil(t, view.Moves.Pending())
}

func TestDropOnSelectedFolderIsRejected(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	view := newTestView(t, backend, folder("x", "x"))

	view.Select("x", Modifiers{})
	require.False(t, view.DropOn("x"))
	require.Nil(t, view.Moves.Pending())
}

func TestDropWithEmptySelectionIsRejected(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	view := newTestView(t, backend, folder("z", "z"))

	require.False(t, view.DropOn("z"))
	require.Nil(t, view.Moves.Pending())
}
