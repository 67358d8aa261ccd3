// Package fileutil provides case-insensitive file lookup over fs.FS.
// MIDI files shipped with old titles often disagree with their references
// about casing (BGM.MID vs bgm.mid).
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no entry matches the requested name.
var ErrNotFound = errors.New("file not found")

// FindFileCaseInsensitiveFS searches dir in fsys for filename, ignoring case.
//
// Parameters:
//   - fsys: The file system to search in (os.DirFS, embed.FS, fstest.MapFS, ...)
//   - dir: The directory to search in, "." for the root
//   - filename: The filename to search for (case-insensitive)
//
// Returns:
//   - string: The actual path to the file if found
//   - error: ErrNotFound, or the error from reading the directory
func FindFileCaseInsensitiveFS(fsys fs.FS, dir, filename string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	// 完全一致を優先
	for _, entry := range entries {
		if !entry.IsDir() && entry.Name() == filename {
			return path.Join(dir, entry.Name()), nil
		}
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(entry.Name(), filename) {
			return path.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("%w: %s (searched in %s)", ErrNotFound, filename, dir)
}

// ResolveInsensitive resolves a slash-separated name in fsys, matching each
// directory component and the file name case-insensitively.
func ResolveInsensitive(fsys fs.FS, name string) (string, error) {
	name = strings.TrimPrefix(path.Clean(strings.ReplaceAll(name, "\\", "/")), "/")

	// まず直接アクセスを試みる
	if info, err := fs.Stat(fsys, name); err == nil && !info.IsDir() {
		return name, nil
	}

	dir := "."
	parts := strings.Split(name, "/")
	for _, component := range parts[:len(parts)-1] {
		if component == "." || component == "" {
			continue
		}
		next, err := findDirCaseInsensitiveFS(fsys, dir, component)
		if err != nil {
			return "", err
		}
		dir = next
	}
	return FindFileCaseInsensitiveFS(fsys, dir, parts[len(parts)-1])
}

func findDirCaseInsensitiveFS(fsys fs.FS, dir, component string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.EqualFold(entry.Name(), component) {
			return path.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: directory component %s in %s", ErrNotFound, component, dir)
}

// OpenInsensitive opens name from fsys using ResolveInsensitive.
// The caller must close the returned file.
func OpenInsensitive(fsys fs.FS, name string) (fs.File, error) {
	actual, err := ResolveInsensitive(fsys, name)
	if err != nil {
		return nil, err
	}
	return fsys.Open(actual)
}

// SplitOSPath turns an OS path into a file system rooted at its directory
// plus the base name, ready for OpenInsensitive.
func SplitOSPath(p string) (fs.FS, string) {
	return os.DirFS(filepath.Dir(p)), filepath.Base(p)
}

// FindFilesByExt walks fsys and returns every regular file whose extension
// matches one of exts, ignoring case. Paths are slash-separated and sorted.
func FindFilesByExt(fsys fs.FS, exts ...string) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		// 拡張子をcase-insensitiveで比較
		ext := path.Ext(p)
		for _, want := range exts {
			if strings.EqualFold(ext, want) {
				files = append(files, p)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// WalkDir visits entries in lexical order
	return files, nil
}
