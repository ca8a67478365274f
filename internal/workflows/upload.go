package workflows

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/securevault/securevault/internal/audit"
	verrors "github.com/securevault/securevault/internal/errors"
	"github.com/securevault/securevault/internal/vault"
)

// UploadOptions configures the upload workflow.
type UploadOptions struct {
	// Patterns are file paths, directories or glob patterns (** supported).
	Patterns []string

	// Folder is the vault folder to upload into. Defaults to the current folder.
	Folder string

	// StorePath overrides the configured store directory.
	StorePath string
}

// FailedUpload is a file that could not be uploaded.
type FailedUpload struct {
	Path string
	Err  error
}

// UploadResult contains the outcome of an upload operation.
type UploadResult struct {
	// Uploaded lists the stored files in input order.
	Uploaded []vault.FileItem

	// Failed lists the files that could not be uploaded. A failure never
	// prevents the other files from uploading.
	Failed []FailedUpload

	// Folder is the vault folder the files were uploaded into.
	Folder string
}

// Upload encrypts local files into the vault.
//
// Returns ErrNoFilesFound if the patterns match no files.
// Returns ErrFolderNotFound if the target folder does not exist.
func Upload(ctx context.Context, opts UploadOptions) (*UploadResult, error) {
	paths, err := ResolveFiles(opts.Patterns)
	if err != nil {
		return nil, err
	}

	session, err := OpenSession(ctx, SessionOptions{StorePath: opts.StorePath})
	if err != nil {
		return nil, err
	}

	previous := session.Manager.CurrentPath()
	if opts.Folder != "" {
		if err := session.Manager.Navigate(resolveVaultPath(previous, opts.Folder)); err != nil {
			return nil, err
		}
	}
	folder := session.Manager.CurrentPath()

	inputs := make([]vault.UploadInput, len(paths))
	for i, p := range paths {
		inputs[i] = fileInput(p)
	}

	results := session.Manager.Upload(ctx, inputs)

	result := &UploadResult{Folder: folder}
	for i, r := range results {
		if r.Err != nil {
			result.Failed = append(result.Failed, FailedUpload{Path: paths[i], Err: r.Err})
			continue
		}
		result.Uploaded = append(result.Uploaded, *r.Item)
	}

	if err := session.Manager.Navigate(previous); err != nil {
		return nil, err
	}

	if len(result.Uploaded) == 0 {
		return result, nil
	}

	if err := session.Save(); err != nil {
		return nil, err
	}

	auditEntry := audit.LogWithUser("upload")
	auditEntry.Folder = folder
	for _, item := range result.Uploaded {
		auditEntry.Files = append(auditEntry.Files, item.Name)
		auditEntry.FileIDs = append(auditEntry.FileIDs, item.ID)
	}
	auditEntry.FilesCount = len(result.Uploaded)
	auditEntry.FailedCount = len(result.Failed)
	audit.Log(session.StorePath, auditEntry)

	return result, nil
}

func fileInput(path string) vault.UploadInput {
	input := vault.UploadInput{
		Name: filepath.Base(path),
		Load: func() ([]byte, error) {
			return os.ReadFile(path) // #nosec G304 -- path was chosen by the user
		},
	}
	if info, err := os.Stat(path); err == nil {
		input.LastModified = info.ModTime()
	}
	return input
}

// ResolveFiles expands paths, directories and glob patterns into a
// deduplicated list of regular files.
func ResolveFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		resolved, err := resolvePattern(pattern)
		if err != nil {
			return nil, err
		}

		for _, f := range resolved {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	if len(files) == 0 {
		return nil, verrors.ErrNoFilesFound
	}

	return files, nil
}

func resolvePattern(pattern string) ([]string, error) {
	absPattern, err := filepath.Abs(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", pattern, err)
	}

	info, err := os.Stat(absPattern)
	if err == nil && info.IsDir() {
		return findFilesInDir(absPattern)
	}

	if strings.ContainsAny(pattern, "*?[{") {
		return expandGlob(absPattern, pattern)
	}

	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", verrors.ErrNoFilesFound, pattern)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", pattern, err)
	}

	return []string{absPattern}, nil
}

func expandGlob(absPattern, pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var files []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	return files, nil
}

func findFilesInDir(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	return files, nil
}
