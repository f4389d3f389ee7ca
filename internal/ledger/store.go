package ledger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"StockDesk/internal/model"
)

// Store is a whole-collection persistence boundary: Load reads every
// record, Save replaces them all.
type Store[T any] interface {
	Load() ([]T, error)
	Save(items []T) error
}

// JSONFile stores a collection as an indented JSON array.
type JSONFile[T any] struct {
	Path string
}

// NewJSONFile creates a JSON file store at path.
func NewJSONFile[T any](path string) *JSONFile[T] {
	return &JSONFile[T]{Path: path}
}

// Load reads the collection. A missing file is an empty collection.
func (f *JSONFile[T]) Load() ([]T, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, &model.PersistenceError{Op: "load", Path: f.Path, Err: err}
	}
	if len(data) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &model.PersistenceError{Op: "load", Path: f.Path, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save writes the collection to a temp file and renames it over the target.
func (f *JSONFile[T]) Save(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return &model.PersistenceError{Op: "save", Path: f.Path, Err: err}
	}
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &model.PersistenceError{Op: "save", Path: f.Path, Err: err}
		}
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &model.PersistenceError{Op: "save", Path: f.Path, Err: err}
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		os.Remove(tmp)
		return &model.PersistenceError{Op: "save", Path: f.Path, Err: err}
	}
	return nil
}
