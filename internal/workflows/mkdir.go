package workflows

import (
	"context"

	"github.com/securevault/securevault/internal/audit"
	"github.com/securevault/securevault/internal/vault"
)

// MkdirOptions configures the mkdir workflow.
type MkdirOptions struct {
	Name string

	// StorePath overrides the configured store directory.
	StorePath string
}

// MkdirResult contains the created folder.
type MkdirResult struct {
	Folder vault.Folder
}

// Mkdir creates a folder inside the current folder.
//
// Returns ErrInvalidName for an empty name or one containing "/".
// Returns ErrFolderExists if a sibling with the same name exists.
func Mkdir(ctx context.Context, opts MkdirOptions) (*MkdirResult, error) {
	session, err := OpenSession(ctx, SessionOptions{StorePath: opts.StorePath})
	if err != nil {
		return nil, err
	}

	folder, err := session.Manager.CreateFolder(opts.Name)
	if err != nil {
		return nil, err
	}

	if err := session.Save(); err != nil {
		return nil, err
	}

	auditEntry := audit.LogWithUser("mkdir")
	auditEntry.Folders = []string{folder.Path}
	audit.Log(session.StorePath, auditEntry)

	return &MkdirResult{Folder: folder}, nil
}
