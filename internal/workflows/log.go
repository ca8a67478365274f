package workflows

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/securevault/securevault/internal/audit"
	"github.com/securevault/securevault/internal/configs"
	verrors "github.com/securevault/securevault/internal/errors"
)

const auditTimeLayout = "2006-01-02T15:04:05.000000Z"

// LogOptions configures the log workflow.
type LogOptions struct {
	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// User filters entries by user name.
	User string

	// Operations filters entries by operation types (comma-separated).
	Operations string

	// Since filters entries after this date (YYYY-MM-DD format).
	Since string

	// Until filters entries before this date (YYYY-MM-DD format).
	Until string

	// StorePath overrides the configured store directory.
	StorePath string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int
}

// Log reads and filters the audit log.
//
// Returns ErrInvalidDateFormat if a date filter is malformed.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	storePath := opts.StorePath
	if storePath == "" {
		config, err := configs.LoadConfig()
		if err != nil {
			return nil, err
		}
		storePath = config.Vault.StorePath
	}

	entries, err := audit.ReadEntries(storePath)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	result := &LogResult{TotalEntriesBeforeFilter: len(entries)}
	filtered := entries

	if opts.User != "" {
		filtered = filterEntries(filtered, func(e audit.Entry) bool {
			return strings.EqualFold(e.User, opts.User)
		})
	}

	if opts.Operations != "" {
		ops := make(map[string]bool)
		for _, op := range strings.Split(opts.Operations, ",") {
			ops[strings.ToLower(strings.TrimSpace(op))] = true
		}
		filtered = filterEntries(filtered, func(e audit.Entry) bool {
			return ops[strings.ToLower(e.Operation)]
		})
	}

	if opts.Since != "" {
		since, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", verrors.ErrInvalidDateFormat)
		}
		filtered = filterEntries(filtered, func(e audit.Entry) bool {
			t, ok := parseTimestamp(e.Timestamp)
			return ok && !t.Before(since)
		})
	}

	if opts.Until != "" {
		until, err := time.Parse("2006-01-02", opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", verrors.ErrInvalidDateFormat)
		}
		// Include the entire day.
		until = until.Add(24*time.Hour - time.Nanosecond)
		filtered = filterEntries(filtered, func(e audit.Entry) bool {
			t, ok := parseTimestamp(e.Timestamp)
			return ok && !t.After(until)
		})
	}

	if opts.Reverse {
		slices.Reverse(filtered)
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		if opts.Reverse {
			filtered = filtered[:opts.Limit]
		} else {
			// The most recent entries are at the end.
			filtered = filtered[len(filtered)-opts.Limit:]
		}
	}

	result.Entries = filtered
	return result, nil
}

func filterEntries(entries []audit.Entry, keep func(audit.Entry) bool) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}

func parseTimestamp(ts string) (time.Time, bool) {
	t, err := time.Parse(auditTimeLayout, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	return t, err == nil
}

// FormatDateTime formats a timestamp string as YYYY-MM-DD HH:MM:SS.
func FormatDateTime(ts string) string {
	t, ok := parseTimestamp(ts)
	if !ok {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatDetails summarises an entry for display.
func FormatDetails(e audit.Entry) string {
	switch e.Operation {
	case "upload":
		details := describeFiles(e.Files)
		if e.Folder != "" {
			details += " -> " + e.Folder
		}
		if e.FailedCount > 0 {
			details += fmt.Sprintf(" (%d failed)", e.FailedCount)
		}
		return details
	case "download", "preview", "favorite":
		details := describeFiles(e.Files)
		if e.OutputPath != "" {
			details += " -> " + e.OutputPath
		}
		return details
	case "delete":
		parts := []string{}
		if len(e.Folders) > 0 {
			parts = append(parts, describeList(e.Folders, "folders"))
		}
		if len(e.Files) > 0 {
			parts = append(parts, describeFiles(e.Files))
		}
		return strings.Join(parts, ", ")
	case "mkdir":
		return strings.Join(e.Folders, ", ")
	case "keygen", "key-export":
		details := e.OutputPath
		if e.Wrapped {
			details = strings.TrimSpace(details + " (password protected)")
		}
		return details
	case "key-import":
		if e.Wrapped {
			return "password protected"
		}
		return ""
	default:
		return ""
	}
}

func describeFiles(files []string) string {
	return describeList(files, "files")
}

func describeList(items []string, noun string) string {
	if len(items) > 3 {
		return fmt.Sprintf("%d %s", len(items), noun)
	}
	return strings.Join(items, ", ")
}
