package utils

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"
)

// ReadPassword prompts for a password without echoing input. When stdin is
// not a terminal (for example a key is being piped in), the prompt is read
// from /dev/tty (CON on Windows) instead.
func ReadPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		return readPasswordFrom(fd, prompt)
	}

	ttyPath := "/dev/tty"
	if runtime.GOOS == "windows" {
		ttyPath = "CON"
	}

	tty, err := os.Open(ttyPath)
	if err != nil {
		return "", fmt.Errorf("cannot open %s for password input: %w", ttyPath, err)
	}
	defer tty.Close()

	ttyFd := int(tty.Fd())
	if !term.IsTerminal(ttyFd) {
		return "", fmt.Errorf("%s is not a terminal", ttyPath)
	}

	return readPasswordFrom(ttyFd, prompt)
}

func readPasswordFrom(fd int, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}
