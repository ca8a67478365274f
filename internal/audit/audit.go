package audit

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/securevault/securevault/internal/configs"
)

const logFile = "audit.jsonl"

// Entry is one line of the audit log.
type Entry struct {
	Timestamp string `json:"ts"` // UTC, microsecond precision.
	User      string `json:"user"`
	Operation string `json:"op"`

	Files       []string `json:"files,omitempty"`        // upload/download/preview/delete.
	FileIDs     []string `json:"file_ids,omitempty"`     // upload/download/preview/delete.
	Folder      string   `json:"folder,omitempty"`       // Folder the operation ran in.
	Folders     []string `json:"folders,omitempty"`      // mkdir/delete.
	FilesCount  int      `json:"files_count,omitempty"`  // upload/delete.
	FailedCount int      `json:"failed_count,omitempty"` // upload.
	OutputPath  string   `json:"output_path,omitempty"`  // download/key export.
	Wrapped     bool     `json:"wrapped,omitempty"`      // key export/import with a password.
}

// Log appends entry to the audit log in storeDir. Failures are ignored so
// that an operation never fails because it could not be audited.
func Log(storeDir string, entry Entry) {
	if storeDir == "" {
		return
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	if err := os.MkdirAll(storeDir, 0700); err != nil {
		return
	}

	f, err := os.OpenFile(LogPath(storeDir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogWithUser returns an entry for op with the current user filled in.
func LogWithUser(op string) Entry {
	entry := Entry{Operation: op}
	if configs.UserVaultSettings != nil {
		entry.User = configs.UserVaultSettings.Username
	}
	return entry
}

// LogPath returns the audit log location inside storeDir.
func LogPath(storeDir string) string {
	if storeDir == "" {
		return ""
	}
	return filepath.Join(storeDir, logFile)
}

// ReadEntries reads the audit log of storeDir. A missing log yields no
// entries.
func ReadEntries(storeDir string) ([]Entry, error) {
	logPath := LogPath(storeDir)
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath) // #nosec G304 -- path is inside the configured store
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data. Malformed lines, such as a partial
// write, are skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
