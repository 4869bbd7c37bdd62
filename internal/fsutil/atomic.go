// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fsutil holds filesystem helpers shared by the pipeline stages.
package fsutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteFile replaces path with data. Readers see either the old content or
// the new content, never a partial write.
func WriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	return WriteWith(fs, path, perm, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
}

// WriteWith streams content produced by write into a temporary file next to
// path and renames it into place once write and Close succeed. The
// temporary file is removed on any failure.
func WriteWith(fs afero.Fs, path string, perm os.FileMode, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			fs.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := fs.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path names an existing file or directory. Errors
// other than "not exist" are returned.
func Exists(fs afero.Fs, path string) (bool, error) {
	_, err := fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ModeOf returns the permission bits of path, or fallback when it does not
// exist.
func ModeOf(fs afero.Fs, path string, fallback os.FileMode) os.FileMode {
	info, err := fs.Stat(path)
	if err != nil {
		return fallback
	}
	return info.Mode().Perm()
}
