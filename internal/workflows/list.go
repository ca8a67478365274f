package workflows

import (
	"context"
	"fmt"

	verrors "github.com/securevault/securevault/internal/errors"
	"github.com/securevault/securevault/internal/vault"
)

// ListOptions configures the list workflow. Empty fields fall back to the
// display settings in config.toml.
type ListOptions struct {
	// Path is the folder to list. Defaults to the current folder.
	Path string

	// Search filters by case-insensitive substring of the name or file type.
	Search string

	Sort      string
	Direction string

	// StorePath overrides the configured store directory.
	StorePath string
}

// ListResult contains a folder listing.
type ListResult struct {
	Path    string
	Folders []vault.Folder
	Files   []vault.FileItem
	View    vault.ViewMode
	Sort    vault.SortConfig
}

// List returns the subfolders and files of a folder, filtered and sorted.
// It does not change the current folder.
//
// Returns ErrFolderNotFound if the folder does not exist.
// Returns ErrInvalidConfig if the sort type or direction is unknown.
func List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	session, err := OpenSession(ctx, SessionOptions{StorePath: opts.StorePath})
	if err != nil {
		return nil, err
	}
	m := session.Manager

	sortType := opts.Sort
	if sortType == "" {
		sortType = session.Config.Display.Sort
	}
	direction := opts.Direction
	if direction == "" {
		direction = session.Config.Display.Direction
	}
	sortConfig, err := vault.ParseSort(sortType, direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verrors.ErrInvalidConfig, err)
	}
	m.SetSort(sortConfig)
	m.SetSearchQuery(opts.Search)

	if opts.Path != "" {
		if err := m.Navigate(resolveVaultPath(m.CurrentPath(), opts.Path)); err != nil {
			return nil, err
		}
	}

	return &ListResult{
		Path:    m.CurrentPath(),
		Folders: m.CurrentSubfolders(),
		Files:   m.CurrentFiles(),
		View:    m.ViewMode(),
		Sort:    sortConfig,
	}, nil
}
