package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// maxPipedKeySize bounds ReadPipedKey. Raw and wrapped key exports are well
// under 200 bytes.
const maxPipedKeySize = 4096

// ReadPipedKey reads an exported key piped into f, normally os.Stdin, and
// trims surrounding whitespace. A terminal, empty input and oversized input
// are rejected.
func ReadPipedKey(f *os.File) (string, error) {
	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", f.Name(), err)
	}
	if stat.Mode()&os.ModeCharDevice != 0 {
		return "", fmt.Errorf("no key given: pass it as an argument or pipe it in")
	}

	data, err := io.ReadAll(io.LimitReader(f, maxPipedKeySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	if len(data) > maxPipedKeySize {
		return "", fmt.Errorf("piped input exceeds %d bytes and is not an exported key", maxPipedKeySize)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("piped input is empty")
	}
	return key, nil
}
