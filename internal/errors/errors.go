package errors

import "errors"

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrEncryptFailed indicates the cipher refused to encrypt, usually an unusable key.
	ErrEncryptFailed = errors.New("failed to encrypt data")

	// ErrDecryptFailed indicates decryption could not be attempted, for example
	// because the key or IV has the wrong size.
	ErrDecryptFailed = errors.New("failed to decrypt data")

	// ErrAuthentication indicates the authentication tag did not verify. The data
	// was tampered with, or it was encrypted under a different key.
	ErrAuthentication = errors.New("authentication failed: data may be corrupted or the encryption key has changed")

	// ErrInvalidPassword indicates an empty password or salt was supplied for key derivation.
	ErrInvalidPassword = errors.New("invalid password or salt")
)

// Format errors indicate a stored payload cannot be parsed.
var (
	// ErrFormat indicates a packed buffer is too short or truncated.
	ErrFormat = errors.New("malformed encrypted payload")
)

// Key errors indicate issues with key material.
var (
	// ErrDecoding indicates an exported key string is not valid key material.
	ErrDecoding = errors.New("invalid encoded key material")

	// ErrKeyNotFound indicates the key file could not be located.
	ErrKeyNotFound = errors.New("encryption key not found")

	// ErrKeyExists indicates a key file already exists and would be overwritten.
	ErrKeyExists = errors.New("encryption key already exists")
)

// Vault errors indicate issues with the folder tree or stored files.
var (
	// ErrFileNotFound indicates no file with the given id exists in the vault.
	ErrFileNotFound = errors.New("file not found")

	// ErrFolderNotFound indicates no folder exists at the given path.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrItemNotFound indicates an id matches neither a file nor a folder.
	ErrItemNotFound = errors.New("item not found")

	// ErrFolderExists indicates a sibling folder with the same name exists.
	ErrFolderExists = errors.New("folder already exists")

	// ErrInvalidName indicates a folder name is empty or contains a separator.
	ErrInvalidName = errors.New("invalid folder name")

	// ErrRootFolder indicates an attempt to delete the root folder.
	ErrRootFolder = errors.New("cannot delete the root folder")

	// ErrNotPreviewable indicates the file type has no preview.
	ErrNotPreviewable = errors.New("file type cannot be previewed")

	// ErrBlobNotFound indicates the encrypted payload of a file is missing from the store.
	ErrBlobNotFound = errors.New("encrypted payload not found")

	// ErrAmbiguousID indicates an id prefix matches more than one item.
	ErrAmbiguousID = errors.New("id prefix matches more than one item")

	// ErrNoFilesFound indicates no files matched the provided patterns.
	ErrNoFilesFound = errors.New("no matching files found")
)

// Config errors indicate invalid configuration.
var (
	// ErrInvalidConfig indicates the configuration contains an unsupported value.
	ErrInvalidConfig = errors.New("configuration is invalid")
)

// Input errors indicate invalid command arguments.
var (
	// ErrInvalidDateFormat indicates a date filter is not in YYYY-MM-DD form.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrOutputExists indicates a download target exists and would be overwritten.
	ErrOutputExists = errors.New("output file already exists")
)

// UserMessage returns the message shown to the user for a vault failure.
// Format and authentication failures have different root causes and are
// never reported with the same text.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFormat):
		return "cannot read file: the stored payload is malformed"
	case errors.Is(err, ErrAuthentication):
		return "cannot decrypt: data may be corrupted or the encryption key has changed"
	case errors.Is(err, ErrEncryptFailed):
		return "upload failed: the file could not be encrypted"
	case errors.Is(err, ErrDecoding):
		return "the key is not valid encoded key material"
	case errors.Is(err, ErrKeyNotFound):
		return "no encryption key found, run `securevault keys generate` first"
	default:
		return err.Error()
	}
}
