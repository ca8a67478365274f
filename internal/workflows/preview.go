package workflows

import (
	"context"
	"fmt"
	"os"

	"github.com/securevault/securevault/internal/audit"
	"github.com/securevault/securevault/internal/vault"
)

// PreviewOptions configures the preview workflow.
type PreviewOptions struct {
	// ID is a file id or a unique id prefix.
	ID string

	// Dir is where the preview copy is written. Defaults to the system
	// temporary directory.
	Dir string

	// StorePath overrides the configured store directory.
	StorePath string
}

// PreviewResult contains the outcome of a preview operation.
type PreviewResult struct {
	Item vault.FileItem
	MIME string

	// Path is a private temporary copy of the decrypted file. The caller
	// removes it when done.
	Path string
}

// Preview decrypts an image, PDF, video or audio file to a temporary file
// for viewing.
//
// Returns ErrNotPreviewable for other file types.
func Preview(ctx context.Context, opts PreviewOptions) (*PreviewResult, error) {
	session, err := OpenSession(ctx, SessionOptions{StorePath: opts.StorePath})
	if err != nil {
		return nil, err
	}

	item, err := session.resolveFile(opts.ID)
	if err != nil {
		return nil, err
	}

	_, mime, data, err := session.Manager.Preview(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	pattern := "securevault-preview-*"
	if item.Extension != "" {
		pattern += "." + item.Extension
	}
	f, err := os.CreateTemp(opts.Dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write preview file: %w", err)
	}

	auditEntry := audit.LogWithUser("preview")
	auditEntry.Files = []string{item.Name}
	auditEntry.FileIDs = []string{item.ID}
	auditEntry.Folder = item.Path
	audit.Log(session.StorePath, auditEntry)

	return &PreviewResult{Item: item, MIME: mime, Path: f.Name()}, nil
}
