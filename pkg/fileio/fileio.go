// Package fileio resolves the user-supplied input paths into the flat
// list of files a trace run operates on. Directories are walked
// recursively; symlinks are resolved only on request; listing files
// name one input path per line.
package fileio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inverted-tree/chunkIQ/internal/platform"
)

// CollectFiles expands paths into regular files. A path may be a file,
// a directory (walked recursively), or a symlink (followed only when
// followSymlinks is set, skipped otherwise). A missing path is an
// error; collection stops at the first failure.
func CollectFiles(paths []string, followSymlinks bool) ([]string, error) {
	var files []string

	for _, path := range paths {
		path = platform.LongPathname(path)

		info, err := os.Lstat(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("the specified file '%s' does not exist", path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to inspect '%s': %w", path, err)
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			if !followSymlinks {
				continue
			}
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve symlink '%s': %w", path, err)
			}
			resolved, err := CollectFiles([]string{target}, followSymlinks)
			if err != nil {
				return nil, err
			}
			files = append(files, resolved...)

		case info.IsDir():
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read contents of directory '%s': %w", path, err)
			}
			children := make([]string, 0, len(entries))
			for _, entry := range entries {
				children = append(children, filepath.Join(path, entry.Name()))
			}
			resolved, err := CollectFiles(children, followSymlinks)
			if err != nil {
				return nil, err
			}
			files = append(files, resolved...)

		case info.Mode().IsRegular():
			if err := ensureReadable(path, info); err != nil {
				return nil, err
			}
			files = append(files, path)

		default:
			return nil, fmt.Errorf("'%s' is neither a file, directory, nor symlink", path)
		}
	}

	return files, nil
}

// CollectFromListings reads newline-separated path lists from the given
// listing files and expands every named path via CollectFiles. Blank
// lines are skipped; a named path that does not exist is an error.
func CollectFromListings(listings []string, followSymlinks bool) ([]string, error) {
	var paths []string

	for _, listing := range listings {
		content, err := os.ReadFile(listing)
		if err != nil {
			return nil, fmt.Errorf("failed to read entry from listing '%s': %w", listing, err)
		}

		for _, line := range strings.Split(string(content), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if _, err := os.Lstat(line); os.IsNotExist(err) {
				return nil, fmt.Errorf("the specified file '%s' does not exist", line)
			} else if err != nil {
				return nil, fmt.Errorf("failed to inspect '%s': %w", line, err)
			}
			paths = append(paths, line)
		}
	}

	return CollectFiles(paths, followSymlinks)
}
