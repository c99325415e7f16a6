package server

import (
	"io"
	"net/http"
	"strings"

	"cloud-disk/internal/model"
	"cloud-disk/pkg/apierror"
)

type FilesHandler struct {
	store         *DiskStore
	maxUploadSize int64
}

func NewFilesHandler(store *DiskStore, maxUploadSize int64) *FilesHandler {
	return &FilesHandler{store: store, maxUploadSize: maxUploadSize}
}

func (h *FilesHandler) ListPaginated(w http.ResponseWriter, r *http.Request) {
	var req model.ListRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.FolderID == "" {
		req.FolderID = model.RootFolderID
	}

	resp, err := h.store.List(req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp)
}

func (h *FilesHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	var req model.ListAllRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.FileID == "" {
		req.FileID = model.RootFolderID
	}

	entries, err := h.store.ListAll(req.FileID, req.ExcludeIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entries)
}

func (h *FilesHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req model.CreateFolderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.ParentID == "" {
		req.ParentID = model.RootFolderID
	}

	entry, err := h.store.CreateFolder(req.Name, req.ParentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, entry)
}

func (h *FilesHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req model.RenameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if strings.TrimSpace(req.ID) == "" {
		writeError(w, apierror.New("BAD_REQUEST", "id is required", "", http.StatusBadRequest))
		return
	}

	entry, err := h.store.Rename(req.ID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entry)
}

func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req model.DeleteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if len(req.IDs) == 0 {
		writeError(w, apierror.New("BAD_REQUEST", "ids are required", "", http.StatusBadRequest))
		return
	}

	deleted := h.store.Delete(req.IDs)
	if deleted == nil {
		deleted = []model.Entry{}
	}

	writeSuccess(w, http.StatusOK, deleted)
}

func (h *FilesHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req model.MoveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if len(req.IDs) == 0 {
		writeError(w, apierror.New("BAD_REQUEST", "ids are required", "", http.StatusBadRequest))
		return
	}
	if req.ParentID == "" {
		req.ParentID = model.RootFolderID
	}

	moved, err := h.store.Move(req.IDs, req.ParentID)
	if err != nil {
		writeError(w, err)
		return
	}
	if moved == nil {
		moved = []model.Entry{}
	}

	writeSuccess(w, http.StatusOK, moved)
}

func (h *FilesHandler) Path(w http.ResponseWriter, r *http.Request) {
	var req model.PathRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.FileID == "" {
		req.FileID = model.RootFolderID
	}

	trail, err := h.store.Path(req.FileID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, trail)
}

func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid multipart payload", err.Error(), http.StatusBadRequest))
		return
	}

	parentID := r.FormValue("parentId")
	if parentID == "" {
		parentID = model.RootFolderID
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, apierror.New("BAD_REQUEST", "no files in upload", "", http.StatusBadRequest))
		return
	}

	files := make([]model.UploadFile, 0, len(headers))
	for _, header := range headers {
		part, err := header.Open()
		if err != nil {
			writeError(w, apierror.New("BAD_REQUEST", "unreadable upload part", header.Filename, http.StatusBadRequest))
			return
		}
		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			writeError(w, apierror.New("BAD_REQUEST", "unreadable upload part", header.Filename, http.StatusBadRequest))
			return
		}
		files = append(files, model.UploadFile{Name: header.Filename, Data: data})
	}

	created, err := h.store.Upload(parentID, files)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, created)
}

func (h *FilesHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, apierror.New("BAD_REQUEST", "id query parameter is required", "", http.StatusBadRequest))
		return
	}

	thumb, ok := h.store.Thumbnail(id)
	if !ok {
		writeError(w, apierror.New("NOT_FOUND", "no thumbnail for entry", id, http.StatusNotFound))
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	_, _ = w.Write(thumb)
}

func (h *FilesHandler) UsedSpace(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, model.UsedSpaceResponse{UsedSpace: h.store.UsedSpace()})
}
