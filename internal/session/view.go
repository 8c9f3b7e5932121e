package session

import (
	"errors"
	"sync"
)

// ErrViewDetached is returned by Manager.Run when the view went away before
// the run could apply its result.
var ErrViewDetached = errors.New("view detached")

// View is the attachment handle of one consumer of a lifecycle run, such as
// a single profile command invocation. Once detached, pending store
// mutations and outcomes of runs bound to it are dropped.
type View struct {
	mu       sync.Mutex
	detached bool
}

// NewView returns an attached view.
func NewView() *View {
	return &View{}
}

// Active reports whether the view is still attached.
func (v *View) Active() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.detached
}

// Detach marks the view as gone. Safe to call more than once and from any goroutine.
func (v *View) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detached = true
}

// apply runs fn while holding the view lock, only if the view is attached.
// A nil fn checks attachment only.
func (v *View) apply(fn func() error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.detached {
		return ErrViewDetached
	}
	if fn == nil {
		return nil
	}
	return fn()
}
