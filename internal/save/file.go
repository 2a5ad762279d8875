package save

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps each slot in its own JSON file under a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(slot int) string {
	return filepath.Join(s.dir, fmt.Sprintf("dynmech_save_%d.json", slot))
}

// Save writes through a temp file so a crash never leaves half a slot.
func (s *FileStore) Save(_ context.Context, slot int, data []byte) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "slot-*.tmp")
	if err != nil {
		return fmt.Errorf("save slot %d: %w", slot, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save slot %d: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save slot %d: %w", slot, err)
	}
	if err := os.Rename(tmp.Name(), s.path(slot)); err != nil {
		return fmt.Errorf("save slot %d: %w", slot, err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, slot int) ([]byte, error) {
	if err := checkSlot(slot); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("slot %d: %w", slot, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %d: %w", slot, err)
	}
	return b, nil
}

func (s *FileStore) Clear(_ context.Context, slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	err := os.Remove(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("slot %d: %w", slot, ErrNotFound)
	}
	return err
}

func (s *FileStore) List(_ context.Context) ([]Entry, error) {
	var out []Entry
	for slot := MinSlot; slot <= MaxSlot; slot++ {
		info, err := os.Stat(s.path(slot))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat slot %d: %w", slot, err)
		}
		out = append(out, Entry{Slot: slot, SavedAt: info.ModTime(), Size: int(info.Size())})
	}
	return out, nil
}
