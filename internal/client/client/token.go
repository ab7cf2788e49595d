package client

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/dmitrijs2005/sitevault/internal/filex"
)

// LoadToken reads a saved session token. A missing file yields "".
func LoadToken(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// SaveToken writes token readable by the current user only.
func SaveToken(path, token string) error {
	return filex.WritePrivate(path, []byte(token))
}

// RemoveToken deletes the saved token, if any.
func RemoveToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
