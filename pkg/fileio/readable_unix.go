//go:build !windows

package fileio

import (
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// ensureReadable rejects an input the current user holds no read bit
// for, so the trace aborts during collection rather than after tasks
// have been mapped and enqueued. Elevated privileges might allow the
// read anyway; a file its owner locked down is still treated as an
// unavailable input.
func ensureReadable(path string, info fs.FileInfo) error {
	if info == nil {
		var err error
		if info, err = os.Stat(path); err != nil {
			return err
		}
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}

	class, bit := "others", fs.FileMode(0004)
	switch {
	case int(stat.Uid) == os.Geteuid():
		class, bit = "owner", 0400
	case memberOfGroup(int(stat.Gid)):
		class, bit = "group", 0040
	}

	if info.Mode().Perm()&bit == 0 {
		return fmt.Errorf("cannot trace '%s': %s read permission is missing", path, class)
	}

	return nil
}

func memberOfGroup(gid int) bool {
	if gid == os.Getegid() {
		return true
	}

	groups, err := syscall.Getgroups()
	if err != nil {
		return false
	}
	for _, g := range groups {
		if int(g) == gid {
			return true
		}
	}
	return false
}
