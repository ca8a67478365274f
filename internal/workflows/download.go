package workflows

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/securevault/securevault/internal/audit"
	verrors "github.com/securevault/securevault/internal/errors"
	"github.com/securevault/securevault/internal/vault"
)

// DownloadOptions configures the download workflow.
type DownloadOptions struct {
	// ID is a file id or a unique id prefix.
	ID string

	// OutputPath is where the decrypted file is written. Defaults to the
	// file name in the working directory. "-" returns the content in the
	// result instead of writing it.
	OutputPath string

	// Force overwrites an existing output file.
	Force bool

	// StorePath overrides the configured store directory.
	StorePath string
}

// DownloadResult contains the outcome of a download operation.
type DownloadResult struct {
	Item vault.FileItem

	// OutputPath is the written file, empty when writing to stdout.
	OutputPath string

	// Data holds the content when OutputPath was "-".
	Data []byte
}

// Download decrypts a vault file.
//
// Returns ErrFileNotFound if no file matches the id.
// Returns ErrAuthentication if the stored data was modified or the key changed.
// Returns ErrFormat if the stored payload is truncated.
// Returns ErrOutputExists if the output file exists and Force is not set.
func Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	session, err := OpenSession(ctx, SessionOptions{StorePath: opts.StorePath})
	if err != nil {
		return nil, err
	}

	item, err := session.resolveFile(opts.ID)
	if err != nil {
		return nil, err
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = item.Name
	}
	if outputPath != "-" && !opts.Force {
		if _, err := os.Stat(outputPath); err == nil {
			return nil, fmt.Errorf("%w: %s", verrors.ErrOutputExists, outputPath)
		}
	}

	_, data, err := session.Manager.Download(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	result := &DownloadResult{Item: item}

	if outputPath == "-" {
		result.Data = data
	} else {
		absPath, err := filepath.Abs(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", outputPath, err)
		}
		if err := writePrivateFile(absPath, data); err != nil {
			return nil, err
		}
		result.OutputPath = absPath
	}

	auditEntry := audit.LogWithUser("download")
	auditEntry.Files = []string{item.Name}
	auditEntry.FileIDs = []string{item.ID}
	auditEntry.Folder = item.Path
	auditEntry.OutputPath = result.OutputPath
	audit.Log(session.StorePath, auditEntry)

	return result, nil
}

func writePrivateFile(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	return nil
}
