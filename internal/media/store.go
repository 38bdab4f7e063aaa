package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes item images under Dir. Paths handed out are relative to Dir.
type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{Dir: dir}, nil
}

// Save copies r into a fresh file for the item and returns its relative path.
func (s *Store) Save(itemID int64, r io.Reader, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		ext = "jpg"
	}
	name := fmt.Sprintf("item_%d_%s.%s", itemID, uuid.NewString(), ext)
	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	return name, f.Close()
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *Store) Remove(rel string) error {
	err := os.Remove(s.Path(rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Store) Path(rel string) string {
	return filepath.Join(s.Dir, filepath.Clean("/"+rel))
}
