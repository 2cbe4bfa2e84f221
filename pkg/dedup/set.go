// Package dedup provides the shared set of chunk digests observed
// during a trace run.
package dedup

import "github.com/puzpuzpuz/xsync/v3"

// Set is a concurrent insert-only digest set. The first insert of a
// digest wins; every later insert of the same digest reports a
// duplicate. Safe for use from many workers at once.
type Set struct {
	digests *xsync.MapOf[string, struct{}]
}

// NewSet returns an empty digest set.
func NewSet() *Set {
	return &Set{digests: xsync.NewMapOf[string, struct{}]()}
}

// Insert adds a digest and reports whether it was absent. Exactly one
// concurrent insert of the same digest observes true.
func (s *Set) Insert(digest []byte) bool {
	_, loaded := s.digests.LoadOrStore(string(digest), struct{}{})
	return !loaded
}

// Len returns the number of distinct digests inserted so far.
func (s *Set) Len() int {
	return s.digests.Size()
}
