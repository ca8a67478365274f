package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/securevault/securevault/internal/configs"
)

func readLog(t *testing.T, storeDir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(storeDir, "audit.jsonl"))
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	return strings.TrimSpace(string(data))
}

func TestLog_CreatesFile(t *testing.T) {
	storeDir := filepath.Join(t.TempDir(), "store")

	Log(storeDir, Entry{User: "alice", Operation: "upload", Files: []string{"a.txt"}})

	info, err := os.Stat(filepath.Join(storeDir, "audit.jsonl"))
	if err != nil {
		t.Fatalf("Audit log file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	storeDir := t.TempDir()

	Log(storeDir, Entry{User: "alice", Operation: "upload"})
	Log(storeDir, Entry{User: "bob", Operation: "download"})
	Log(storeDir, Entry{User: "carol", Operation: "delete"})

	lines := strings.Split(readLog(t, storeDir), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(lines))
	}
}

func TestLog_ValidJSON(t *testing.T) {
	storeDir := t.TempDir()

	Log(storeDir, Entry{
		User:       "alice",
		Operation:  "upload",
		Files:      []string{"a.txt", "b.png"},
		FileIDs:    []string{"id-1", "id-2"},
		Folder:     "/photos",
		FilesCount: 2,
	})

	var parsed Entry
	if err := json.Unmarshal([]byte(readLog(t, storeDir)), &parsed); err != nil {
		t.Fatalf("Entry is not valid JSON: %v", err)
	}

	if parsed.User != "alice" {
		t.Errorf("Expected user alice, got %s", parsed.User)
	}
	if parsed.Operation != "upload" {
		t.Errorf("Expected operation upload, got %s", parsed.Operation)
	}
	if len(parsed.Files) != 2 || len(parsed.FileIDs) != 2 {
		t.Errorf("Expected 2 files and ids, got %v and %v", parsed.Files, parsed.FileIDs)
	}
	if parsed.Folder != "/photos" {
		t.Errorf("Expected folder /photos, got %s", parsed.Folder)
	}
}

func TestLog_TimestampFormat(t *testing.T) {
	storeDir := t.TempDir()

	Log(storeDir, Entry{User: "alice", Operation: "keygen"})

	var parsed Entry
	if err := json.Unmarshal([]byte(readLog(t, storeDir)), &parsed); err != nil {
		t.Fatalf("Entry is not valid JSON: %v", err)
	}

	if parsed.Timestamp == "" {
		t.Errorf("Timestamp should be auto-set")
	}
	if !strings.HasSuffix(parsed.Timestamp, "Z") {
		t.Errorf("Timestamp should end with Z, got %s", parsed.Timestamp)
	}
	if !strings.Contains(parsed.Timestamp, ".") {
		t.Errorf("Timestamp should contain microseconds, got %s", parsed.Timestamp)
	}
}

func TestLog_KeepsExplicitTimestamp(t *testing.T) {
	storeDir := t.TempDir()

	Log(storeDir, Entry{Timestamp: "2024-01-15T10:30:00.123456Z", Operation: "mkdir"})

	entries, err := ReadEntries(storeDir)
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Timestamp != "2024-01-15T10:30:00.123456Z" {
		t.Errorf("Expected explicit timestamp to be kept, got %+v", entries)
	}
}

func TestLog_OmitsEmptyFields(t *testing.T) {
	storeDir := t.TempDir()

	Log(storeDir, Entry{User: "alice", Operation: "keygen"})

	line := readLog(t, storeDir)
	for _, field := range []string{`"files"`, `"file_ids"`, `"folder"`, `"output_path"`, `"wrapped"`} {
		if strings.Contains(line, field) {
			t.Errorf("Empty %s field should be omitted", field)
		}
	}
}

func TestLog_NoStoreDir(t *testing.T) {
	// Should silently do nothing.
	Log("", Entry{User: "alice", Operation: "upload"})
}

func TestLogWithUser(t *testing.T) {
	original := configs.UserVaultSettings
	configs.UserVaultSettings = &configs.UserSettings{Username: "tester"}
	defer func() {
		configs.UserVaultSettings = original
	}()

	entry := LogWithUser("download")
	if entry.User != "tester" || entry.Operation != "download" {
		t.Errorf("Unexpected entry %+v", entry)
	}
}

func TestReadEntries_MissingLog(t *testing.T) {
	entries, err := ReadEntries(t.TempDir())
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries, got %v", entries)
	}
}

func TestParseEntries_ValidData(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.123456Z","user":"alice","op":"upload"}
{"ts":"2024-01-15T10:35:00.456789Z","user":"bob","op":"download"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].User != "alice" {
		t.Errorf("Expected first user alice, got %s", entries[0].User)
	}
	if entries[1].User != "bob" {
		t.Errorf("Expected second user bob, got %s", entries[1].User)
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.123456Z","user":"alice","op":"upload"}
this is not valid json
{"ts":"2024-01-15T10:35:00.456789Z","user":"bob","op":"download"}
{"ts":"2024-01-15T10:40:00.000000Z","user":"ca`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if len(entries) != 2 {
		t.Errorf("Expected 2 valid entries (malformed should be skipped), got %d", len(entries))
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries([]byte{})
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if entries != nil {
		t.Errorf("Expected nil entries for empty data, got %v", entries)
	}
}

func TestLogPath(t *testing.T) {
	if got := LogPath("/srv/vault"); got != "/srv/vault/audit.jsonl" {
		t.Errorf("Expected /srv/vault/audit.jsonl, got %s", got)
	}
	if got := LogPath(""); got != "" {
		t.Errorf("Expected empty path, got %s", got)
	}
}
