package explorer

import (
	"context"
	"sync"
	"time"

	"cloud-disk/internal/model"
)

// fakeBackend satisfies Backend with per-operation hooks so each test scripts
// exactly the responses it needs. Unset hooks answer with empty results.
type fakeBackend struct {
	mu          sync.Mutex
	listCalls   int
	createCalls int
	renameCalls int
	deleteCalls int
	moveCalls   int
	uploadCalls int

	listFn   func(req model.ListRequest) (*model.ListResponse, error)
	createFn func(name, parentID string) (*model.Entry, error)
	renameFn func(id, name string, kind model.EntryKind) (*model.Entry, error)
	deleteFn func(ids []string) ([]model.Entry, error)
	moveFn   func(ids []string, parentID string) ([]model.Entry, error)
	pathFn   func(fileID string) ([]model.PathNode, error)
	uploadFn func(parentID string, files []model.UploadFile) ([]model.Entry, error)
}

func (f *fakeBackend) List(_ context.Context, req model.ListRequest) (*model.ListResponse, error) {
	f.count(&f.listCalls)
	if f.listFn != nil {
		return f.listFn(req)
	}
	return &model.ListResponse{}, nil
}

func (f *fakeBackend) CreateFolder(_ context.Context, name, parentID string) (*model.Entry, error) {
	f.count(&f.createCalls)
	if f.createFn != nil {
		return f.createFn(name, parentID)
	}
	e := folder("created", name)
	e.ParentID = parentID
	return &e, nil
}

func (f *fakeBackend) Rename(_ context.Context, id, name string, kind model.EntryKind) (*model.Entry, error) {
	f.count(&f.renameCalls)
	if f.renameFn != nil {
		return f.renameFn(id, name, kind)
	}
	return &model.Entry{ID: id, Kind: kind, Name: name}, nil
}

func (f *fakeBackend) Delete(_ context.Context, ids []string) ([]model.Entry, error) {
	f.count(&f.deleteCalls)
	if f.deleteFn != nil {
		return f.deleteFn(ids)
	}
	return nil, nil
}

func (f *fakeBackend) Move(_ context.Context, ids []string, parentID string) ([]model.Entry, error) {
	f.count(&f.moveCalls)
	if f.moveFn != nil {
		return f.moveFn(ids, parentID)
	}
	return nil, nil
}

func (f *fakeBackend) Path(_ context.Context, fileID string) ([]model.PathNode, error) {
	if f.pathFn != nil {
		return f.pathFn(fileID)
	}
	return []model.PathNode{{ID: model.RootFolderID, Name: "My Disk"}}, nil
}

func (f *fakeBackend) Upload(_ context.Context, parentID string, files []model.UploadFile) ([]model.Entry, error) {
	f.count(&f.uploadCalls)
	if f.uploadFn != nil {
		return f.uploadFn(parentID, files)
	}
	return nil, nil
}

func (f *fakeBackend) count(c *int) {
	f.mu.Lock()
	*c++
	f.mu.Unlock()
}

func (f *fakeBackend) calls(c *int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *c
}

func folder(id, name string) model.Entry {
	return model.Entry{ID: id, Kind: model.KindFolder, Name: name, ParentID: model.RootFolderID}
}

func file(id, name string) model.Entry {
	return model.Entry{ID: id, Kind: model.KindFile, Name: name, ParentID: model.RootFolderID}
}

func modified(e model.Entry, t time.Time) model.Entry {
	e.ModifiedAt = t
	return e
}

func singlePage(entries ...model.Entry) func(model.ListRequest) (*model.ListResponse, error) {
	return func(model.ListRequest) (*model.ListResponse, error) {
		return &model.ListResponse{Results: entries}, nil
	}
}
