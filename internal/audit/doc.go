// Package audit records vault operations in an append-only log.
//
// Uploads, downloads, previews, deletions, folder creation and key
// management are each recorded as one JSON object per line in:
//
//	<store>/audit.jsonl
//
// Each entry carries a UTC timestamp with microseconds, the local user, the
// operation name and operation-specific details such as file names and ids.
// File contents and key material are never logged.
//
// # Usage
//
//	entry := audit.LogWithUser("upload")
//	entry.Files = names
//	audit.Log(storeDir, entry)
//
// Audit logging is best-effort: an operation never fails because its entry
// could not be written. ReadEntries skips malformed lines left by partial
// writes.
package audit
