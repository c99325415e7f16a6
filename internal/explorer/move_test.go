package explorer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"cloud-disk/internal/model"
	"cloud-disk/internal/notify"
)

func trail(nodes ...string) []model.PathNode {
	out := make([]model.PathNode, len(nodes))
	for i, id := range nodes {
		out[i] = model.PathNode{ID: id, Name: id}
	}
	return out
}

func TestProposeMoveRejectsSelfMove(t *testing.T) {
	t.Parallel()

	n := NewMoveNegotiator(nil)

	ok := n.ProposeMove([]string{"folderX"}, "folderX", "folderX", trail(model.RootFolderID))
	require.False(t, ok)
	require.Nil(t, n.Pending())
}

func TestProposeMoveRejectsDescendantTarget(t *testing.T) {
	t.Parallel()

	n := NewMoveNegotiator(nil)

	// childOfX sits under folderX: moving folderX into it would detach the
	// destination from the tree.
	ancestry := trail(model.RootFolderID, "folderX", "childOfX")
	ok := n.ProposeMove([]string{"folderX"}, "folderX", "childOfX", ancestry)
	require.False(t, ok)
	require.Nil(t, n.Pending())
}

func TestProposeMoveAcceptsValidTarget(t *testing.T) {
	t.Parallel()

	n := NewMoveNegotiator(nil)

	ok := n.ProposeMove([]string{"a", "b"}, "2 items", "folderZ", trail(model.RootFolderID, "folderZ"))
	require.True(t, ok)

	pending := n.Pending()
	require.NotNil(t, pending)
	require.Equal(t, []string{"a", "b"}, pending.SourceIDs)
	require.Equal(t, "2 items", pending.SourceLabel)
	require.Equal(t, "folderZ", pending.TargetID)
}

func TestProposeMoveRejectsEmptySources(t *testing.T) {
	t.Parallel()

	n := NewMoveNegotiator(nil)
	require.False(t, n.ProposeMove(nil, "", "folderZ", nil))
}

func TestConfirmDelegatesAndClears(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	var gotIDs []string
	var gotTarget string
	backend.moveFn = func(ids []string, parentID string) ([]model.Entry, error) {
		gotIDs = ids
		gotTarget = parentID
		return []model.Entry{file("a", "a")}, nil
	}
	view := newTestView(t, backend, file("a", "a"), folder("z", "z"))

	require.True(t, view.Moves.ProposeMove([]string{"a"}, "a", "z", trail(model.RootFolderID, "z")))
	require.NoError(t, view.Moves.Confirm(context.Background()))

	require.Equal(t, []string{"a"}, gotIDs)
	require.Equal(t, "z", gotTarget)
	require.Nil(t, view.Moves.Pending())
	require.Equal(t, []string{"z"}, view.Store.OrderedIDs())
}

func TestConfirmClearsPendingEvenWhenMoveFails(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	backend.moveFn = func([]string, string) ([]model.Entry, error) {
		return nil, errors.New("boom")
	}
	view := newTestView(t, backend, file("a", "a"), folder("z", "z"))

	require.True(t, view.Moves.ProposeMove([]string{"a"}, "a", "z", trail(model.RootFolderID, "z")))
	require.Error(t, view.Moves.Confirm(context.Background()))

	require.Nil(t, view.Moves.Pending())
	// The failed move changed nothing.
	require.Equal(t, []string{"a", "z"}, view.Store.OrderedIDs())
}

func TestConfirmWithoutPendingIsNoOp(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	view := NewView(backend, notify.NewNotifier())

	require.NoError(t, view.Moves.Confirm(context.Background()))
	require.Zero(t, backend.calls(&backend.moveCalls))
}

func TestCancelClearsPendingSilently(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	view := newTestView(t, backend, file("a", "a"), folder("z", "z"))

	require.True(t, view.Moves.ProposeMove([]string{"a"}, "a", "z", trail(model.RootFolderID, "z")))
	view.Moves.Cancel()

	require.Nil(t, view.Moves.Pending())
	require.Zero(t, backend.calls(&backend.moveCalls))
}
