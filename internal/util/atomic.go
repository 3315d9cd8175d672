// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirPerm is used for parent directories created by AtomicWriteFile.
const DefaultDirPerm os.FileMode = 0755

// RELIABILITY: Atomic write with fsync prevents half-written reports and configs.
//
// AtomicWriteFile writes data to a temporary file next to path, syncs it,
// applies perm and renames it over path. Readers see either the previous file
// or the complete new one.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return AtomicWriteFileWithDir(path, data, perm, DefaultDirPerm)
}

// AtomicWriteFileWithDir is AtomicWriteFile with an explicit mode for any
// parent directories it has to create. Config files use 0700 here.
func AtomicWriteFileWithDir(path string, data []byte, filePerm, dirPerm os.FileMode) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path %q: %w", path, err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}

	// Same directory as the target so the rename never crosses filesystems.
	f, err := os.CreateTemp(dir, ".bazi-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := f.Name()

	committed := false
	defer func() {
		if !committed {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	// Windows refuses to rename an open file.
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, filePerm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tempPath, absPath); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}

	committed = true
	return nil
}
