// Package chunker partitions byte buffers into chunks under three
// schemes: whole-file, fixed-stride, and content-defined (Rabin).
package chunker

import (
	"fmt"
	"strings"
)

// Scheme identifies how chunk boundaries are chosen.
type Scheme int

const (
	// SchemeFile emits the entire input as a single chunk.
	SchemeFile Scheme = iota
	// SchemeStatic emits fixed-stride chunks.
	SchemeStatic
	// SchemeContent emits content-defined chunks cut on Rabin
	// fingerprint matches.
	SchemeContent
)

// Type tags a chunking scheme together with its target size. Static and
// content-defined variants cover power-of-two targets from 1 KiB to
// 64 KiB; the whole-file variant has no target.
type Type int

const (
	TypeFile Type = iota
	TypeSC1K
	TypeSC2K
	TypeSC4K
	TypeSC8K
	TypeSC16K
	TypeSC32K
	TypeSC64K
	TypeCDC1K
	TypeCDC2K
	TypeCDC4K
	TypeCDC8K
	TypeCDC16K
	TypeCDC32K
	TypeCDC64K
)

var typeNames = map[Type]string{
	TypeFile:   "file",
	TypeSC1K:   "sc1k",
	TypeSC2K:   "sc2k",
	TypeSC4K:   "sc4k",
	TypeSC8K:   "sc8k",
	TypeSC16K:  "sc16k",
	TypeSC32K:  "sc32k",
	TypeSC64K:  "sc64k",
	TypeCDC1K:  "cdc1k",
	TypeCDC2K:  "cdc2k",
	TypeCDC4K:  "cdc4k",
	TypeCDC8K:  "cdc8k",
	TypeCDC16K: "cdc16k",
	TypeCDC32K: "cdc32k",
	TypeCDC64K: "cdc64k",
}

// Size returns the target chunk size in bytes. The whole-file type has
// no target and reports 0.
func (t Type) Size() int {
	switch t {
	case TypeSC1K, TypeCDC1K:
		return 1 << 10
	case TypeSC2K, TypeCDC2K:
		return 1 << 11
	case TypeSC4K, TypeCDC4K:
		return 1 << 12
	case TypeSC8K, TypeCDC8K:
		return 1 << 13
	case TypeSC16K, TypeCDC16K:
		return 1 << 14
	case TypeSC32K, TypeCDC32K:
		return 1 << 15
	case TypeSC64K, TypeCDC64K:
		return 1 << 16
	default:
		return 0
	}
}

// Scheme returns the boundary-selection scheme for the type.
func (t Type) Scheme() Scheme {
	switch {
	case t == TypeFile:
		return SchemeFile
	case t >= TypeSC1K && t <= TypeSC64K:
		return SchemeStatic
	default:
		return SchemeContent
	}
}

// String returns the canonical lowercase tag for the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("chunker.Type(%d)", int(t))
}

// ParseType maps a case-insensitive tag like "cdc4k" to its Type.
func ParseType(s string) (Type, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == needle {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown chunker type %q", s)
}

// ParseTypes maps a comma-separated tag list to chunker types.
func ParseTypes(list string) ([]Type, error) {
	var types []Type
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseType(part)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("no chunker types in %q", list)
	}
	return types, nil
}

// Config carries a chunker type plus the optional hash salt that rides
// along with each trace task. The salt never influences chunk
// boundaries; it is consumed by the hasher layer.
type Config struct {
	Type Type
	Salt []byte
}

// Iterator lazily yields successive chunk slices borrowed from the
// input buffer. Slices are contiguous, non-overlapping, emitted in
// increasing offset order, and jointly cover the input.
type Iterator interface {
	// Next returns the next chunk, or false once the input is
	// exhausted.
	Next() ([]byte, bool)
}

// Chunker is the chunking capability: it partitions one buffer per
// call. Implementations are single-use per Chunk invocation but may be
// called repeatedly.
type Chunker interface {
	Chunk(data []byte) Iterator
}

// New returns the chunker implementing the given type.
func New(t Type) Chunker {
	switch t.Scheme() {
	case SchemeFile:
		return fileChunker{}
	case SchemeStatic:
		return staticChunker{size: t.Size()}
	default:
		return newRabinChunker(t.Size())
	}
}
