package utils

import (
	"os"
	"os/user"
)

// GetUsername returns the current username, falling back to $USER when the
// user database is unavailable.
func GetUsername() (string, error) {
	current, err := user.Current()
	if err != nil {
		if name := os.Getenv("USER"); name != "" {
			return name, nil
		}
		return "", err
	}
	return current.Username, nil
}
