package server

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cloud-disk/internal/model"
)

func TestListPaginatesWithCursor(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	for _, name := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		_, err := store.CreateFolder(name, model.RootFolderID)
		require.NoError(t, err)
	}

	page1, err := store.List(model.ListRequest{FolderID: model.RootFolderID, PageSize: 2, SortBy: model.SortByName})
	require.NoError(t, err)
	require.Len(t, page1.Results, 2)
	require.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextCursor)
	require.Equal(t, "alpha", page1.Results[0].Name)
	require.Equal(t, "bravo", page1.Results[1].Name)

	page2, err := store.List(model.ListRequest{FolderID: model.RootFolderID, PageSize: 2, SortBy: model.SortByName, Cursor: page1.NextCursor})
	require.NoError(t, err)
	require.Equal(t, "charlie", page2.Results[0].Name)
	require.Equal(t, "delta", page2.Results[1].Name)
	require.True(t, page2.HasMore)

	page3, err := store.List(model.ListRequest{FolderID: model.RootFolderID, PageSize: 2, SortBy: model.SortByName, Cursor: page2.NextCursor})
	require.NoError(t, err)
	require.Len(t, page3.Results, 1)
	require.Equal(t, "echo", page3.Results[0].Name)
	require.False(t, page3.HasMore)
	require.Empty(t, page3.NextCursor)
}

func TestListRejectsGarbageCursor(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	_, err := store.List(model.ListRequest{FolderID: model.RootFolderID, Cursor: "!!not-base64!!"})
	require.ErrorIs(t, err, model.ErrInvalidCursor)
}

func TestListSortsByModifiedAtDescending(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	old, err := store.CreateFolder("old", model.RootFolderID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	fresh, err := store.CreateFolder("fresh", model.RootFolderID)
	require.NoError(t, err)

	page, err := store.List(model.ListRequest{FolderID: model.RootFolderID, SortBy: model.SortByModifiedAt})
	require.NoError(t, err)
	require.Equal(t, fresh.ID, page.Results[0].ID)
	require.Equal(t, old.ID, page.Results[1].ID)
}

func TestListFiltersBySearch(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	_, err := store.CreateFolder("Quarterly Reports", model.RootFolderID)
	require.NoError(t, err)
	_, err = store.CreateFolder("Photos", model.RootFolderID)
	require.NoError(t, err)

	page, err := store.List(model.ListRequest{FolderID: model.RootFolderID, Search: "report"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	require.Equal(t, "Quarterly Reports", page.Results[0].Name)
}

func TestListUnknownFolder(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	_, err := store.List(model.ListRequest{FolderID: "ghost"})
	require.ErrorIs(t, err, model.ErrEntryNotFound)
}

func TestCreateFolderRejectsSiblingConflict(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	_, err := store.CreateFolder("Docs", model.RootFolderID)
	require.NoError(t, err)

	_, err = store.CreateFolder("docs", model.RootFolderID)
	require.ErrorIs(t, err, model.ErrNameConflict)
}

func TestRenameUpdatesExtensionAndModifiedAt(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	created, err := store.Upload(model.RootFolderID, []model.UploadFile{{Name: "draft.txt", Data: []byte("x")}})
	require.NoError(t, err)

	renamed, err := store.Rename(created[0].ID, "final.md")
	require.NoError(t, err)
	require.Equal(t, "final.md", renamed.Name)
	require.Equal(t, "md", renamed.Extension)
	require.False(t, renamed.ModifiedAt.Before(created[0].ModifiedAt))
}

func TestRenameRejectsSiblingConflict(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	_, err := store.CreateFolder("A", model.RootFolderID)
	require.NoError(t, err)
	b, err := store.CreateFolder("B", model.RootFolderID)
	require.NoError(t, err)

	_, err = store.Rename(b.ID, "a")
	require.ErrorIs(t, err, model.ErrNameConflict)
}

func TestDeleteRemovesSubtreeAndConfirmsTopLevel(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	parent, err := store.CreateFolder("parent", model.RootFolderID)
	require.NoError(t, err)
	child, err := store.CreateFolder("child", parent.ID)
	require.NoError(t, err)
	_, err = store.Upload(child.ID, []model.UploadFile{{Name: "deep.txt", Data: []byte("x")}})
	require.NoError(t, err)

	confirmed := store.Delete([]string{parent.ID, "ghost"})
	require.Len(t, confirmed, 1)
	require.Equal(t, parent.ID, confirmed[0].ID)

	_, exists := store.Entry(child.ID)
	require.False(t, exists)
	require.Zero(t, store.UsedSpace())
}

func TestMoveReparentsConfirmedEntries(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	target, err := store.CreateFolder("target", model.RootFolderID)
	require.NoError(t, err)
	a, err := store.CreateFolder("a", model.RootFolderID)
	require.NoError(t, err)

	moved, err := store.Move([]string{a.ID, "ghost"}, target.ID)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	require.Equal(t, target.ID, moved[0].ParentID)

	entry, _ := store.Entry(a.ID)
	require.Equal(t, target.ID, entry.ParentID)
}

func TestMoveConflictLeavesEveryEntryInPlace(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	src, err := store.CreateFolder("src", model.RootFolderID)
	require.NoError(t, err)
	dst, err := store.CreateFolder("dst", model.RootFolderID)
	require.NoError(t, err)

	fine, err := store.CreateFolder("fine", src.ID)
	require.NoError(t, err)
	clash, err := store.CreateFolder("clash", src.ID)
	require.NoError(t, err)
	_, err = store.CreateFolder("clash", dst.ID)
	require.NoError(t, err)

	// "clash" collides in dst, so the whole batch must be refused with
	// "fine" still under src.
	_, err = store.Move([]string{fine.ID, clash.ID}, dst.ID)
	require.ErrorIs(t, err, model.ErrNameConflict)

	entry, _ := store.Entry(fine.ID)
	require.Equal(t, src.ID, entry.ParentID)
	entry, _ = store.Entry(clash.ID)
	require.Equal(t, src.ID, entry.ParentID)
}

func TestMoveRejectsDuplicateNamesWithinBatch(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	srcA, err := store.CreateFolder("srcA", model.RootFolderID)
	require.NoError(t, err)
	srcB, err := store.CreateFolder("srcB", model.RootFolderID)
	require.NoError(t, err)
	dst, err := store.CreateFolder("dst", model.RootFolderID)
	require.NoError(t, err)

	a, err := store.CreateFolder("Notes", srcA.ID)
	require.NoError(t, err)
	b, err := store.CreateFolder("notes", srcB.ID)
	require.NoError(t, err)

	_, err = store.Move([]string{a.ID, b.ID}, dst.ID)
	require.ErrorIs(t, err, model.ErrNameConflict)

	entry, _ := store.Entry(a.ID)
	require.Equal(t, srcA.ID, entry.ParentID)
	entry, _ = store.Entry(b.ID)
	require.Equal(t, srcB.ID, entry.ParentID)
}

func TestMoveSameParentConfirmsNothing(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	dst, err := store.CreateFolder("dst", model.RootFolderID)
	require.NoError(t, err)
	already, err := store.CreateFolder("already", dst.ID)
	require.NoError(t, err)

	moved, err := store.Move([]string{already.ID}, dst.ID)
	require.NoError(t, err)
	require.Empty(t, moved)

	entry, _ := store.Entry(already.ID)
	require.Equal(t, dst.ID, entry.ParentID)
}

func TestMoveIntoOwnSubtreeIsRefused(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	x, err := store.CreateFolder("x", model.RootFolderID)
	require.NoError(t, err)
	childOfX, err := store.CreateFolder("child", x.ID)
	require.NoError(t, err)
	grandchild, err := store.CreateFolder("grandchild", childOfX.ID)
	require.NoError(t, err)

	_, err = store.Move([]string{x.ID}, x.ID)
	require.ErrorIs(t, err, model.ErrMoveCycle)

	_, err = store.Move([]string{x.ID}, grandchild.ID)
	require.ErrorIs(t, err, model.ErrMoveCycle)
}

func TestPathReturnsRootFirstTrail(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	docs, err := store.CreateFolder("Docs", model.RootFolderID)
	require.NoError(t, err)
	nested, err := store.CreateFolder("Nested", docs.ID)
	require.NoError(t, err)

	trail, err := store.Path(nested.ID)
	require.NoError(t, err)
	require.Equal(t, []model.PathNode{
		{ID: model.RootFolderID, Name: "My Disk"},
		{ID: docs.ID, Name: "Docs"},
		{ID: nested.ID, Name: "Nested"},
	}, trail)

	rootTrail, err := store.Path(model.RootFolderID)
	require.NoError(t, err)
	require.Len(t, rootTrail, 1)
}

func TestListAllExcludesIDs(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	a, err := store.CreateFolder("a", model.RootFolderID)
	require.NoError(t, err)
	_, err = store.CreateFolder("b", model.RootFolderID)
	require.NoError(t, err)

	children, err := store.ListAll(model.RootFolderID, []string{a.ID})
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, "b", children[0].Name)
}

func TestUploadRejectedBatchStoresNothing(t *testing.T) {
	t.Parallel()

	store := NewDiskStore(64)
	_, err := store.Upload(model.RootFolderID, []model.UploadFile{
		{Name: "existing.txt", Data: []byte("keep")},
	})
	require.NoError(t, err)
	usedBefore := store.UsedSpace()

	// The second file collides with an existing entry: the first must not
	// be stored either.
	_, err = store.Upload(model.RootFolderID, []model.UploadFile{
		{Name: "fresh.txt", Data: []byte("abc")},
		{Name: "EXISTING.txt", Data: []byte("boom")},
	})
	require.ErrorIs(t, err, model.ErrNameConflict)

	page, err := store.List(model.ListRequest{FolderID: model.RootFolderID})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	require.Equal(t, "existing.txt", page.Results[0].Name)
	require.Equal(t, usedBefore, store.UsedSpace())

	// Duplicates inside one batch are refused the same way.
	_, err = store.Upload(model.RootFolderID, []model.UploadFile{
		{Name: "twin.txt", Data: []byte("a")},
		{Name: "Twin.txt", Data: []byte("b")},
	})
	require.ErrorIs(t, err, model.ErrNameConflict)
	require.Equal(t, usedBefore, store.UsedSpace())

	// An unsanitizable name rejects the batch before anything lands.
	_, err = store.Upload(model.RootFolderID, []model.UploadFile{
		{Name: "ok.txt", Data: []byte("x")},
		{Name: "   ", Data: []byte("y")},
	})
	require.Error(t, err)
	require.Equal(t, usedBefore, store.UsedSpace())
}

func TestUploadGeneratesThumbnailForImages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	src := image.NewRGBA(image.Rect(0, 0, 300, 200))
	require.NoError(t, png.Encode(&buf, src))

	store := NewDiskStore(64)
	created, err := store.Upload(model.RootFolderID, []model.UploadFile{
		{Name: "photo.png", Data: buf.Bytes()},
		{Name: "notes.txt", Data: []byte("plain text")},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	thumb, ok := store.Thumbnail(created[0].ID)
	require.True(t, ok)

	decoded, err := jpeg.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	require.Equal(t, 64, decoded.Bounds().Dx())

	_, ok = store.Thumbnail(created[1].ID)
	require.False(t, ok)

	require.Equal(t, int64(buf.Len()+len("plain text")), store.UsedSpace())
}
