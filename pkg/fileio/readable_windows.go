//go:build windows

package fileio

import "io/fs"

// ensureReadable is a no-op on Windows; ACL evaluation is left to the
// open call itself.
func ensureReadable(path string, info fs.FileInfo) error {
	return nil
}
