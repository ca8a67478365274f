// Package workflows implements the vault commands independent of the CLI.
//
// The cmd package stays thin: it parses flags, calls a workflow and
// formats the result. Workflows do everything else:
//   - Loading config.toml, the vault key and the manifest (OpenSession)
//   - Resolving user input such as id prefixes and file globs
//   - Performing the operation through vault.Manager
//   - Saving the manifest after changes
//   - Recording audit entries
//
// # Available Workflows
//
//   - Upload: Encrypts local files into the current folder
//   - Download: Decrypts a file to disk or stdout
//   - Preview: Decrypts an image, PDF, video or audio file for viewing
//   - List: Lists a folder with search and sorting
//   - Mkdir, ChangeDir, Delete, Favorite: Manage the folder tree
//   - KeyGenerate, KeyExport, KeyImport: Manage the vault key
//   - Log: Reads the audit log
//
// Each workflow has the shape
//
//	func X(ctx context.Context, opts XOptions) (*XResult, error)
//
// # Error Handling
//
// Workflows return errors wrapping the sentinels of internal/errors so the
// CLI can pick a message with errors.Is:
//
//	result, err := workflows.Download(ctx, opts)
//	if errors.Is(err, verrors.ErrAuthentication) {
//	    // the data was modified or the key changed
//	}
package workflows
