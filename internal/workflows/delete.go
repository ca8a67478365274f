package workflows

import (
	"context"

	"github.com/securevault/securevault/internal/audit"
)

// DeleteOptions configures the delete workflow.
type DeleteOptions struct {
	// IDs are file or folder ids, or unique id prefixes. Files must be in
	// the current folder; folders may be anywhere.
	IDs []string

	// StorePath overrides the configured store directory.
	StorePath string
}

// DeleteResult contains the outcome of a delete operation.
type DeleteResult struct {
	// Files lists the names of the removed files, including those inside
	// removed folders.
	Files []string

	// Folders lists the paths of the removed folders.
	Folders []string

	// BlobErr is set when some encrypted payloads could not be removed from
	// disk. The items are gone from the vault either way.
	BlobErr error
}

// Delete removes files and folders, folders with all of their contents.
//
// Returns ErrItemNotFound if an id matches nothing; nothing is deleted then.
// Returns ErrRootFolder if asked to delete the root.
func Delete(ctx context.Context, opts DeleteOptions) (*DeleteResult, error) {
	session, err := OpenSession(ctx, SessionOptions{StorePath: opts.StorePath})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(opts.IDs))
	for _, prefix := range opts.IDs {
		id, _, err := session.Manager.ResolveID(prefix)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	removed, blobErr := session.Manager.Delete(ctx, ids)
	if len(removed.Files) == 0 && len(removed.Folders) == 0 && blobErr != nil {
		return nil, blobErr
	}

	if err := session.Save(); err != nil {
		return nil, err
	}

	result := &DeleteResult{Folders: removed.Folders, BlobErr: blobErr}
	auditEntry := audit.LogWithUser("delete")
	for _, item := range removed.Files {
		result.Files = append(result.Files, item.Name)
		auditEntry.FileIDs = append(auditEntry.FileIDs, item.ID)
	}
	auditEntry.Files = result.Files
	auditEntry.Folders = result.Folders
	auditEntry.FilesCount = len(result.Files)
	audit.Log(session.StorePath, auditEntry)

	return result, nil
}
