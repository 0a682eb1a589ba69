package frame

import "sync/atomic"

// ResizeFlag carries a geometry-change notice from the window event pump to
// the renderer. One side raises it, the other consumes it once per frame.
type ResizeFlag struct {
	raised atomic.Bool
}

func (f *ResizeFlag) Raise() {
	f.raised.Store(true)
}

// Consume reports whether the flag was raised and clears it.
func (f *ResizeFlag) Consume() bool {
	return f.raised.Swap(false)
}
