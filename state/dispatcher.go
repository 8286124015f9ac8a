package state

import (
	"sync"

	"github.com/easelkit/easel"
)

// ChangeFunc observes the canvas after each applied action. Used to
// trigger redraws and autosave.
type ChangeFunc func(c *Canvas, a Action)

// BroadcastFunc forwards locally originated actions to collaboration
// peers. Remote actions are never rebroadcast, preventing echo loops.
type BroadcastFunc func(a Action)

// Dispatcher owns the canvas and serializes every mutation through the
// reducer. Dispatch and DispatchRemote may be called from any goroutine;
// a mutex guarantees that no two reductions interleave, so the reducer
// never observes torn state.
type Dispatcher struct {
	mu        sync.Mutex
	canvas    *Canvas
	committed *Canvas // canvas as of the last recorded action
	history   History
	onChange  []ChangeFunc
	broadcast BroadcastFunc
}

// NewDispatcher creates a dispatcher owning the given canvas.
func NewDispatcher(c *Canvas) *Dispatcher {
	return &Dispatcher{canvas: c, committed: c}
}

// Canvas returns the current document. The returned value must be
// treated as immutable.
func (d *Dispatcher) Canvas() *Canvas {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canvas
}

// OnChange registers a post-dispatch observer.
func (d *Dispatcher) OnChange(f ChangeFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onChange = append(d.onChange, f)
}

// SetBroadcast installs the collaboration fan-out for local actions.
func (d *Dispatcher) SetBroadcast(f BroadcastFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.broadcast = f
}

// Dispatch applies a locally originated action.
func (d *Dispatcher) Dispatch(a Action) error {
	return d.dispatch(a, false)
}

// DispatchRemote applies an action received from a collaboration peer.
// It flows through the identical reducer path but is not rebroadcast.
func (d *Dispatcher) DispatchRemote(a Action) error {
	return d.dispatch(a, true)
}

func (d *Dispatcher) dispatch(a Action, remote bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := Reduce(d.canvas, a)
	if err != nil {
		return err
	}
	// Transient actions (gesture previews, selection) apply but are not
	// recorded. The snapshot pushed for a recorded action is the last
	// committed state, so undoing a finalized gesture restores the
	// pre-gesture geometry, not some mid-drag preview.
	if !transient(a) {
		d.history.Push(d.committed)
		d.committed = next
	}
	d.canvas = next

	if !remote && d.broadcast != nil {
		d.broadcast(a)
	}
	for _, f := range d.onChange {
		f(next, a)
	}
	easel.Logger().Debug("action applied", "action", actionName(a), "remote", remote)
	return nil
}

// Undo reverts the last recorded action. Returns false when history is
// empty.
func (d *Dispatcher) Undo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.history.Undo(d.committed)
	if prev == nil {
		return false
	}
	d.canvas = prev
	d.committed = prev
	for _, f := range d.onChange {
		f(prev, RestoreProject{Canvas: prev})
	}
	return true
}

// Redo reapplies the last undone action. Returns false when there is
// nothing to redo.
func (d *Dispatcher) Redo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := d.history.Redo(d.committed)
	if next == nil {
		return false
	}
	d.canvas = next
	d.committed = next
	for _, f := range d.onChange {
		f(next, RestoreProject{Canvas: next})
	}
	return true
}
