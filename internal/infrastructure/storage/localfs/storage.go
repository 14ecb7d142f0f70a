package localfs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store serves the seed corpus from a local directory tree. Keys are
// slash-separated paths relative to the root.
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	if root == "" {
		root = "./data/reports"
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat document root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("document root %s is not a directory", root)
	}
	return &Store{root: root}, nil
}

// List walks the tree and returns every regular file, hidden entries
// excluded, in lexical order so seeding runs are reproducible.
func (s *Store) List(_ context.Context) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk document root: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return f, nil
}
