//go:build windows

package mmap

import (
	"fmt"
	"os"
)

// Open reads path into memory. Windows gets a plain read instead of a
// section mapping; the Mapping contract is identical.
func Open(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return &Mapping{}, nil
	}
	return &Mapping{data: data, closeFn: func() error { return nil }}, nil
}
