package model

const (
	SortByName       = "name"
	SortByModifiedAt = "modifiedAt"
)

type ListRequest struct {
	FolderID      string `json:"folderId"`
	Search        string `json:"search,omitempty"`
	PageSize      int    `json:"pageSize"`
	Cursor        string `json:"cursor,omitempty"`
	SortBy        string `json:"sortBy"`
	PinFoldersTop bool   `json:"pinFoldersTop"`
}

type ListResponse struct {
	Results    []Entry `json:"results"`
	NextCursor string  `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
}

type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

type RenameRequest struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Kind EntryKind `json:"type"`
}

type DeleteRequest struct {
	IDs []string `json:"ids"`
}

type MoveRequest struct {
	IDs      []string `json:"ids"`
	ParentID string   `json:"parentId"`
}

type PathRequest struct {
	FileID string `json:"fileId"`
}

// ListAllRequest asks for the immediate children of a folder without
// pagination. The move dialog uses it to browse candidate destinations while
// hiding the entries being moved.
type ListAllRequest struct {
	FileID     string   `json:"fileId"`
	ExcludeIDs []string `json:"excludeIds,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
