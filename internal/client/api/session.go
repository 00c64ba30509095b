package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/filex"
)

// LoadSession reads a token saved by SaveSession. A missing file is not an error.
func LoadSession(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read session: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// SaveSession writes token with owner-only permissions; an empty token
// removes the file.
func SaveSession(path, token string) error {
	if token == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session: %w", err)
		}
		return nil
	}
	if err := filex.WritePrivate(path, []byte(token)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
