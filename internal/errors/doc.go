// Package errors provides typed error values for SecureVault.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Crypto errors: Encryption/decryption failures (ErrEncryptFailed, ErrAuthentication)
//   - Format errors: Malformed packed buffers (ErrFormat)
//   - Key errors: Key material issues (ErrDecoding, ErrKeyNotFound)
//   - Vault errors: Folder tree and file lookups (ErrFileNotFound, ErrFolderExists)
//   - Config errors: Invalid configuration values (ErrInvalidConfig)
//
// # Usage
//
// Return errors from internal packages:
//
//	if len(buf) < 4 {
//	    return nil, nil, errors.ErrFormat
//	}
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Download(ctx, opts)
//	if errors.Is(err, verrors.ErrAuthentication) {
//	    // Show the "key has changed" message
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("decrypting %s: %w", item.Name, errors.ErrAuthentication)
package errors
