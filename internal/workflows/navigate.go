package workflows

import (
	"context"
	"path"
	"strings"

	"github.com/securevault/securevault/internal/audit"
	"github.com/securevault/securevault/internal/vault"
)

// ChangeDirOptions configures the change-directory workflow.
type ChangeDirOptions struct {
	// Path is an absolute vault path, a path relative to the current folder,
	// or "..".
	Path string

	// StorePath overrides the configured store directory.
	StorePath string
}

// ChangeDirResult contains the new current folder.
type ChangeDirResult struct {
	Path string
}

// ChangeDir changes the current folder. The current folder is kept in the
// manifest and applies to later commands.
//
// Returns ErrFolderNotFound if the folder does not exist.
func ChangeDir(ctx context.Context, opts ChangeDirOptions) (*ChangeDirResult, error) {
	session, err := OpenSession(ctx, SessionOptions{StorePath: opts.StorePath})
	if err != nil {
		return nil, err
	}
	m := session.Manager

	if opts.Path == ".." {
		err = m.NavigateToParent()
	} else {
		err = m.Navigate(resolveVaultPath(m.CurrentPath(), opts.Path))
	}
	if err != nil {
		return nil, err
	}

	if err := session.Save(); err != nil {
		return nil, err
	}

	return &ChangeDirResult{Path: m.CurrentPath()}, nil
}

// resolveVaultPath interprets target relative to the current vault folder.
func resolveVaultPath(current, target string) string {
	if target == "" {
		return current
	}
	if strings.HasPrefix(target, "/") {
		return path.Clean(target)
	}
	return path.Join(current, target)
}

// FavoriteOptions configures the favorite workflow.
type FavoriteOptions struct {
	// ID is a file id or a unique id prefix.
	ID string

	// StorePath overrides the configured store directory.
	StorePath string
}

// FavoriteResult contains the file and its new favorite state.
type FavoriteResult struct {
	Item      vault.FileItem
	Favorited bool
}

// Favorite toggles the favorite flag of a file.
//
// Returns ErrFileNotFound if no file matches the id.
func Favorite(ctx context.Context, opts FavoriteOptions) (*FavoriteResult, error) {
	session, err := OpenSession(ctx, SessionOptions{StorePath: opts.StorePath})
	if err != nil {
		return nil, err
	}

	item, err := session.resolveFile(opts.ID)
	if err != nil {
		return nil, err
	}

	favorited, err := session.Manager.ToggleFavorite(item.ID)
	if err != nil {
		return nil, err
	}
	item.Favorited = favorited

	if err := session.Save(); err != nil {
		return nil, err
	}

	auditEntry := audit.LogWithUser("favorite")
	auditEntry.Files = []string{item.Name}
	auditEntry.FileIDs = []string{item.ID}
	audit.Log(session.StorePath, auditEntry)

	return &FavoriteResult{Item: item, Favorited: favorited}, nil
}
