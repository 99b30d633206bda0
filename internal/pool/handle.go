package pool

import "fmt"

// Handle refers to one pooled instance while it is acquired.
//
// A handle encodes its owning tag, the slot index inside that tag's arena,
// and the slot generation at the time of Acquire. Releasing bumps the
// generation, so a handle kept after Release is detectably stale.
// The zero Handle is the empty handle returned on failure.
type Handle struct {
	tag   string
	index uint32
	gen   uint32
}

// Tag returns the pool tag the handle belongs to.
func (h Handle) Tag() string { return h.tag }

// Index returns the slot index inside the tag's arena.
func (h Handle) Index() uint32 { return h.index }

// Generation returns the slot generation captured at Acquire.
func (h Handle) Generation() uint32 { return h.gen }

// IsZero reports whether h is the empty handle.
func (h Handle) IsZero() bool { return h.tag == "" }

func (h Handle) String() string {
	if h.IsZero() {
		return "handle(empty)"
	}
	return fmt.Sprintf("%s[%d@%d]", h.tag, h.index, h.gen)
}
