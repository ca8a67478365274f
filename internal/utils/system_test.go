package utils

import (
	"testing"
)

func TestGetUsername(t *testing.T) {
	name, err := GetUsername()
	if err != nil {
		t.Fatalf("GetUsername() returned error: %v", err)
	}
	if name == "" {
		t.Error("GetUsername() returned empty username")
	}
}
