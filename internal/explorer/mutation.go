package explorer

import (
	"context"
	"fmt"
	"log/slog"

	"cloud-disk/internal/model"
	"cloud-disk/internal/notify"
	"cloud-disk/internal/util"
)

// MutationCoordinator executes create/rename/delete/move/upload against the
// backend and patches the listing afterwards, so a confirmed mutation shows
// up without a refetch. Mutations are confirm-then-apply: nothing in the
// listing or the selection changes until the server has answered, and a
// failed call changes nothing at all.
type MutationCoordinator struct {
	backend  Backend
	store    *ListingStore
	notifier *notify.Notifier
}

func NewMutationCoordinator(backend Backend, store *ListingStore, notifier *notify.Notifier) *MutationCoordinator {
	return &MutationCoordinator{
		backend:  backend,
		store:    store,
		notifier: notifier,
	}
}

// CreateFolder creates a folder under parentID and appends the created entry
// to the listing.
func (c *MutationCoordinator) CreateFolder(ctx context.Context, name, parentID string) (*model.Entry, error) {
	cleaned, err := util.SanitizeEntryName(name)
	if err != nil {
		c.notifier.Error("create", "invalid folder name", err)
		return nil, err
	}

	entry, err := c.backend.CreateFolder(ctx, cleaned, parentID)
	if err != nil {
		c.notifier.Error("create", fmt.Sprintf("could not create folder %q", cleaned), err)
		return nil, fmt.Errorf("create folder %q: %w", cleaned, err)
	}

	c.store.AppendEntries([]model.Entry{*entry})
	c.notifier.Info("create", fmt.Sprintf("folder %q created", entry.Name))
	return entry, nil
}

// Rename changes an entry's display name. Renaming to the current name is a
// no-op and never reaches the network.
func (c *MutationCoordinator) Rename(ctx context.Context, id, newName string) error {
	current, ok := c.store.EntryByID(id)
	if !ok {
		return fmt.Errorf("rename %s: %w", id, model.ErrEntryNotFound)
	}

	cleaned, err := util.SanitizeEntryName(newName)
	if err != nil {
		c.notifier.Error("rename", "invalid name", err)
		return err
	}

	if cleaned == current.Name {
		return nil
	}

	updated, err := c.backend.Rename(ctx, id, cleaned, current.Kind)
	if err != nil {
		c.notifier.Error("rename", fmt.Sprintf("could not rename %q", current.Name), err)
		return fmt.Errorf("rename %q: %w", current.Name, err)
	}

	c.store.PatchEntry(id, func(e *model.Entry) {
		e.Name = updated.Name
		if !updated.ModifiedAt.IsZero() {
			e.ModifiedAt = updated.ModifiedAt
		}
	})

	c.notifier.Info("rename", fmt.Sprintf("renamed to %q", updated.Name))
	return nil
}

// Delete removes entries. The server's response decides which ids actually
// went away; only those leave the listing and the selection.
func (c *MutationCoordinator) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	deleted, err := c.backend.Delete(ctx, ids)
	if err != nil {
		c.notifier.Error("delete", fmt.Sprintf("could not delete %d items", len(ids)), err)
		return fmt.Errorf("delete %d entries: %w", len(ids), err)
	}

	confirmed := entryIDs(deleted)
	if len(confirmed) < len(ids) {
		slog.Debug("delete confirmed a subset", "requested", len(ids), "confirmed", len(confirmed))
	}

	c.store.RemoveEntries(confirmed)
	c.notifier.Info("delete", fmt.Sprintf("deleted %d items", len(confirmed)))
	return nil
}

// Move re-parents entries to targetID. Confirmed entries leave the current
// listing, since they now live elsewhere.
func (c *MutationCoordinator) Move(ctx context.Context, ids []string, targetID string) error {
	if len(ids) == 0 {
		return nil
	}

	moved, err := c.backend.Move(ctx, ids, targetID)
	if err != nil {
		c.notifier.Error("move", fmt.Sprintf("could not move %d items", len(ids)), err)
		return fmt.Errorf("move %d entries: %w", len(ids), err)
	}

	confirmed := entryIDs(moved)
	c.store.RemoveEntries(confirmed)
	c.notifier.Info("move", fmt.Sprintf("moved %d items", len(confirmed)))
	return nil
}

// Upload sends files to parentID and appends the created entries to the
// listing. The store's uploading flag is raised for the duration.
func (c *MutationCoordinator) Upload(ctx context.Context, parentID string, files []model.UploadFile) ([]model.Entry, error) {
	if len(files) == 0 {
		return nil, nil
	}

	c.store.setUploading(true)
	defer c.store.setUploading(false)

	created, err := c.backend.Upload(ctx, parentID, files)
	if err != nil {
		c.notifier.Error("upload", fmt.Sprintf("could not upload %d files", len(files)), err)
		return nil, fmt.Errorf("upload %d files: %w", len(files), err)
	}

	c.store.AppendEntries(created)
	c.notifier.Info("upload", fmt.Sprintf("uploaded %d files", len(created)))
	return created, nil
}

func entryIDs(entries []model.Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
