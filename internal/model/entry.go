package model

import "time"

type EntryKind string

const (
	KindFolder EntryKind = "FOLDER"
	KindFile   EntryKind = "FILE"
)

// RootFolderID is the sentinel id of the disk root. It is a valid parent and
// a valid listing target but never appears as an entry itself.
const RootFolderID = "0"

// Entry is a file or folder record as exchanged with the disk API. All
// metadata besides Name and ParentID is server-authoritative.
type Entry struct {
	ID         string    `json:"id"`
	Kind       EntryKind `json:"type"`
	Name       string    `json:"name"`
	ParentID   string    `json:"parentId"`
	Size       int64     `json:"size"`
	Extension  string    `json:"fileType,omitempty"`
	MimeType   string    `json:"mimeType,omitempty"`
	ModifiedAt time.Time `json:"modifiedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e Entry) IsFolder() bool {
	return e.Kind == KindFolder
}

// PathNode is one breadcrumb segment, ordered root-first in path responses.
type PathNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UploadFile is one file submitted through a multipart upload.
type UploadFile struct {
	Name string
	Data []byte
}
