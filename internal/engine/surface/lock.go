package surface

import "github.com/Faultbox/enroth-render/internal/engine/clip"

// Lock is scoped CPU access to a rectangle of pixel memory. Pix starts at the
// top-left of the locked rectangle and rows are Pitch bytes apart; pixels are
// RGBA8. Release is idempotent.
type Lock struct {
	Pix    []uint8
	Pitch  int
	Width  int
	Height int
	Rect   clip.Rect // locked area in target coordinates

	release func()
	done    bool
}

// Locker is anything that can hand out a Lock.
type Locker interface {
	Lock(r clip.Rect) (*Lock, error)
}

// NewLock maps r within bounds over pix, whose first byte is the top-left of
// bounds. A zero r locks the whole target. release runs once, on the first
// Release.
func NewLock(pix []uint8, pitch int, bounds, r clip.Rect, release func()) *Lock {
	if r == (clip.Rect{}) {
		r = bounds
	}
	r = r.Normalize().Intersect(bounds)

	l := &Lock{Pitch: pitch, Width: r.Width(), Height: r.Height(), Rect: r, release: release}
	if !r.Empty() {
		start := (r.Y-bounds.Y)*pitch + (r.X-bounds.X)*4
		end := start + (r.Height()-1)*pitch + r.Width()*4
		l.Pix = pix[start:end:end]
	}
	return l
}

// PixOffset returns the index of (x, y), relative to the locked rectangle.
func (l *Lock) PixOffset(x, y int) int {
	return y*l.Pitch + x*4
}

// Release unlocks the target. Calling it again does nothing.
func (l *Lock) Release() {
	if l == nil || l.done {
		return
	}
	l.done = true
	l.Pix = nil
	if l.release != nil {
		l.release()
	}
}

// Released reports whether Release has run.
func (l *Lock) Released() bool {
	return l.done
}

// WithLock locks target, runs fn and releases the lock on every exit path,
// panics included.
func WithLock(target Locker, r clip.Rect, fn func(*Lock) error) error {
	l, err := target.Lock(r)
	if err != nil {
		return err
	}
	defer l.Release()
	return fn(l)
}
