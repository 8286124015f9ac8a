package state

import "testing"

func TestDispatchNotifiesAndBroadcasts(t *testing.T) {
	d := NewDispatcher(NewCanvas(800, 600))

	var changes int
	d.OnChange(func(c *Canvas, a Action) { changes++ })
	var sent []Action
	d.SetBroadcast(func(a Action) { sent = append(sent, a) })

	l := testImageLayer(100, 100, 50)
	if err := d.Dispatch(AddLayer{Layer: l}); err != nil {
		t.Fatal(err)
	}
	if changes != 1 {
		t.Errorf("changes = %d, want 1", changes)
	}
	if len(sent) != 1 {
		t.Errorf("broadcasts = %d, want 1", len(sent))
	}
	if d.Canvas().ActiveID != l.ID {
		t.Error("dispatch did not apply the action")
	}
}

func TestDispatchRemoteDoesNotRebroadcast(t *testing.T) {
	d := NewDispatcher(NewCanvas(800, 600))
	var sent int
	d.SetBroadcast(func(Action) { sent++ })

	if err := d.DispatchRemote(AddLayer{Layer: testImageLayer(0, 0, 10)}); err != nil {
		t.Fatal(err)
	}
	if sent != 0 {
		t.Errorf("remote dispatch broadcast %d times, want 0 (echo loop)", sent)
	}
}

func TestFailedDispatchLeavesStateUntouched(t *testing.T) {
	d := NewDispatcher(NewCanvas(800, 600))
	var changes int
	d.OnChange(func(*Canvas, Action) { changes++ })

	if err := d.Dispatch(DeleteLayer{ID: "missing"}); err == nil {
		t.Fatal("expected error")
	}
	if changes != 0 {
		t.Error("failed dispatch notified observers")
	}
}

func TestUndoRedo(t *testing.T) {
	d := NewDispatcher(NewCanvas(800, 600))
	l := testImageLayer(100, 100, 50)
	if err := d.Dispatch(AddLayer{Layer: l}); err != nil {
		t.Fatal(err)
	}
	x := 400.0
	if err := d.Dispatch(LayerTransformed{ID: l.ID, X: &x}); err != nil {
		t.Fatal(err)
	}

	if !d.Undo() {
		t.Fatal("undo unavailable")
	}
	got, _ := d.Canvas().Find(l.ID)
	if got.X != 100 {
		t.Errorf("after undo X = %v, want 100", got.X)
	}

	if !d.Redo() {
		t.Fatal("redo unavailable")
	}
	got, _ = d.Canvas().Find(l.ID)
	if got.X != 400 {
		t.Errorf("after redo X = %v, want 400", got.X)
	}
}

func TestTransientActionsSkipHistory(t *testing.T) {
	d := NewDispatcher(NewCanvas(800, 600))
	l := testImageLayer(100, 100, 50)
	if err := d.Dispatch(AddLayer{Layer: l}); err != nil {
		t.Fatal(err)
	}

	// Preview moves and selection do not create undo entries.
	for _, x := range []float64{150, 200, 250} {
		x := x
		if err := d.Dispatch(LayerTransformed{ID: l.ID, X: &x, Preview: true}); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.Dispatch(SelectLayer{ID: l.ID}); err != nil {
		t.Fatal(err)
	}

	if !d.Undo() {
		t.Fatal("undo unavailable")
	}
	// One undo steps past all of it, back to the empty canvas.
	if len(d.Canvas().Layers) != 0 {
		t.Error("previews created history entries")
	}
}

func TestUndoOfFinalizedGestureSkipsPreviews(t *testing.T) {
	d := NewDispatcher(NewCanvas(800, 600))
	l := testImageLayer(100, 100, 50)
	if err := d.Dispatch(AddLayer{Layer: l}); err != nil {
		t.Fatal(err)
	}

	for _, x := range []float64{150, 200, 250} {
		x := x
		if err := d.Dispatch(LayerTransformed{ID: l.ID, X: &x, Preview: true}); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.Dispatch(FinalizeGesture{ID: l.ID}); err != nil {
		t.Fatal(err)
	}

	// The recorded snapshot is the pre-gesture state, not a mid-drag
	// preview.
	if !d.Undo() {
		t.Fatal("undo unavailable")
	}
	got, _ := d.Canvas().Find(l.ID)
	if got.X != 100 {
		t.Errorf("after undo X = %v, want the pre-gesture 100", got.X)
	}

	if !d.Redo() {
		t.Fatal("redo unavailable")
	}
	got, _ = d.Canvas().Find(l.ID)
	if got.X != 250 {
		t.Errorf("after redo X = %v, want the finalized 250", got.X)
	}
}

func TestRedoClearedByNewAction(t *testing.T) {
	d := NewDispatcher(NewCanvas(800, 600))
	if err := d.Dispatch(AddLayer{Layer: testImageLayer(0, 0, 10)}); err != nil {
		t.Fatal(err)
	}
	d.Undo()
	if err := d.Dispatch(AddLayer{Layer: testImageLayer(5, 5, 10)}); err != nil {
		t.Fatal(err)
	}
	if d.Redo() {
		t.Error("redo should be cleared by a fresh dispatch")
	}
}
