// SPDX-License-Identifier: MIT

package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FS stores each key as a file below a root directory. Writes go to a
// temporary file in the target directory and are renamed into place, so
// readers never see a partial record.
type FS struct {
	root string
}

// NewFS returns a filesystem store rooted at dir, creating it if needed.
func NewFS(dir string) (*FS, error) {
	if dir == "" {
		return nil, errors.New("checkpoint: filesystem store needs a directory")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, ioErr("mkdir", dir, err)
	}

	return &FS{root: dir}, nil
}

func (f *FS) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("checkpoint: invalid key %q", key)
	}

	return filepath.Join(f.root, clean), nil
}

// Put writes data atomically.
func (f *FS) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ioErr("mkdir", key, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return ioErr("create", key, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return ioErr("write", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return ioErr("sync", key, err)
	}
	if err := tmp.Close(); err != nil {
		return ioErr("close", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return ioErr("rename", key, err)
	}

	return nil
}

// Get reads the file for key.
func (f *FS) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, ioErr("read", key, err)
	}

	return data, nil
}

// List walks the root and returns slash-separated keys, skipping temporary
// files.
func (f *FS) List(ctx context.Context) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))

		return nil
	})
	if err != nil {
		return nil, ioErr("list", f.root, err)
	}
	sort.Strings(keys)

	return keys, nil
}

// Close is a no-op.
func (f *FS) Close() error { return nil }
