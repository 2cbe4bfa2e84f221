// Package rabin implements a Rabin polynomial fingerprint over byte
// streams, plus a fixed-width rolling window that tracks the
// fingerprint of only the most recent WindowSize bytes.
package rabin

import "github.com/inverted-tree/chunkIQ/pkg/poly"

// Polynomial is the canonical irreducible GF(2) polynomial used for
// chunk boundary detection. Changing it breaks fingerprint
// compatibility with every prior trace.
const Polynomial uint64 = 0xBFE6B8A5BF378D83

// WindowSize is the width of the rolling window in bytes.
const WindowSize = 64

// Rabin computes fingerprints of unbounded byte streams, one byte at a
// time, using a precomputed 256-entry lookup table.
type Rabin struct {
	polynomial  uint64
	appendTable [256]uint64
}

// New builds a fingerprinter for the given polynomial.
func New(polynomial uint64) *Rabin {
	r := &Rabin{polynomial: polynomial}

	// t1 is x^63 mod p. Each table entry carries the reduced
	// contribution of the byte about to leave the top of the
	// fingerprint, with the byte's low bit recorded at position 63 so
	// Append can cancel it.
	t1 := poly.Mod(0, 1<<63, polynomial)
	for i := uint64(0); i < 256; i++ {
		r.appendTable[i] = poly.ModMult(i, t1, polynomial) | (i << 63)
	}

	return r
}

// Append folds one byte into fingerprint and returns the new value.
func (r *Rabin) Append(fingerprint uint64, b byte) uint64 {
	shifted := fingerprint >> 55
	return ((fingerprint << 8) | uint64(b)) ^ r.appendTable[shifted]
}

// Window maintains the fingerprint of the last WindowSize bytes fed to
// it. Appending a byte implicitly removes the byte that falls out of
// the window.
type Window struct {
	rabin       *Rabin
	removeTable [256]uint64
	buffer      [WindowSize]byte
	pos         int
	fingerprint uint64
}

// NewWindow builds a rolling window on top of the given fingerprinter.
func NewWindow(r *Rabin) *Window {
	w := &Window{rabin: r}

	// Appending WindowSize zero bytes to the unit polynomial yields
	// x^(8*WindowSize) mod p, the factor a byte has picked up by the
	// time it leaves the window.
	shift := uint64(1)
	for i := 0; i < WindowSize; i++ {
		shift = r.Append(shift, 0)
	}
	for i := uint64(0); i < 256; i++ {
		w.removeTable[i] = poly.ModMult(i, shift, r.polynomial)
	}

	return w
}

// Reset clears the window buffer and fingerprint.
func (w *Window) Reset() {
	w.buffer = [WindowSize]byte{}
	w.pos = 0
	w.fingerprint = 0
}

// Append pushes b into the window, displacing the oldest byte.
func (w *Window) Append(b byte) {
	out := w.buffer[w.pos]
	w.buffer[w.pos] = b
	w.pos = (w.pos + 1) % WindowSize

	w.fingerprint = w.rabin.Append(w.fingerprint^w.removeTable[out], b)
}

// Fingerprint returns the fingerprint of the window's current contents.
func (w *Window) Fingerprint() uint64 {
	return w.fingerprint
}
