package chunker

import (
	"math/bits"

	"github.com/inverted-tree/chunkIQ/pkg/rabin"
)

// rabinChunker cuts chunks where the rolling Rabin fingerprint of the
// last rabin.WindowSize bytes matches the breakmark, clamped to
// [target/4, target*4]. A chunk also ends unconditionally at the
// maximum length, and the final chunk may be shorter than the minimum.
type rabinChunker struct {
	minSize   int
	maxSize   int
	breakmark uint64
	rabin     *rabin.Rabin
}

func newRabinChunker(targetSize int) *rabinChunker {
	return &rabinChunker{
		minSize: targetSize / 4,
		maxSize: targetSize * 4,
		// The mask spans the bit width of the target size, one bit more
		// than log2(target), so past the minimum size a cut is found
		// about every 2*target bytes on random input.
		breakmark: (1 << (64 - bits.LeadingZeros64(uint64(targetSize)))) - 1,
		rabin:     rabin.New(rabin.Polynomial),
	}
}

type rabinIter struct {
	minSize   int
	maxSize   int
	breakmark uint64
	window    *rabin.Window
	data      []byte
	pos       int
	start     int
}

func (c *rabinChunker) Chunk(data []byte) Iterator {
	return &rabinIter{
		minSize:   c.minSize,
		maxSize:   c.maxSize,
		breakmark: c.breakmark,
		window:    rabin.NewWindow(c.rabin),
		data:      data,
	}
}

func (it *rabinIter) Next() ([]byte, bool) {
	for it.pos < len(it.data) {
		it.window.Append(it.data[it.pos])
		it.pos++

		length := it.pos - it.start
		if length < it.minSize {
			continue
		}

		if fp := it.window.Fingerprint(); fp&it.breakmark == it.breakmark || length >= it.maxSize {
			chunk := it.data[it.start:it.pos]
			it.start = it.pos
			it.window.Reset()
			return chunk, true
		}
	}

	// Tail below the minimum size, or the remainder after the last cut.
	if it.start < it.pos {
		chunk := it.data[it.start:it.pos]
		it.start = it.pos
		return chunk, true
	}

	return nil, false
}
