package watcher

import (
	"testing"
	"time"
)

const testInterval = 50 * time.Millisecond

func receiveBatch(t *testing.T, d *Debouncer, timeout time.Duration) []DebouncedEvent {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(timeout):
		t.Fatal("timed out waiting for debouncer batch")
		return nil
	}
}

func Test_Debouncer_SingleEvent(t *testing.T) {
	d := NewDebouncer(testInterval)
	defer d.Close()

	d.Add("App.jsx", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)

	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
	if batch[0].Path != "App.jsx" {
		t.Errorf("expected path 'App.jsx', got '%s'", batch[0].Path)
	}
	if batch[0].Op != OpWrite {
		t.Errorf("expected OpWrite, got %s", batch[0].Op)
	}
}

func Test_Debouncer_EventCollapsing(t *testing.T) {
	d := NewDebouncer(testInterval)
	defer d.Close()

	// Same path twice collapses to one event with the latest op
	d.Add("App.jsx", OpCreate)
	d.Add("App.jsx", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)

	if len(batch) != 1 {
		t.Fatalf("expected 1 event (collapsed), got %d", len(batch))
	}
	if batch[0].Op != OpWrite {
		t.Errorf("expected latest op OpWrite, got %s", batch[0].Op)
	}
}

func Test_Debouncer_BatchSortedByPath(t *testing.T) {
	d := NewDebouncer(testInterval)
	defer d.Close()

	d.Add("lib/utils.js", OpWrite)
	d.Add("components/Button.jsx", OpCreate)
	d.Add("App.jsx", OpRemove)

	batch := receiveBatch(t, d, 500*time.Millisecond)

	expectedPaths := []string{"App.jsx", "components/Button.jsx", "lib/utils.js"}
	if len(batch) != len(expectedPaths) {
		t.Fatalf("expected %d events, got %d", len(expectedPaths), len(batch))
	}
	for i, expected := range expectedPaths {
		if batch[i].Path != expected {
			t.Errorf("event[%d]: expected path '%s', got '%s'", i, expected, batch[i].Path)
		}
	}
}

func Test_Debouncer_TimerReset(t *testing.T) {
	d := NewDebouncer(testInterval)
	defer d.Close()

	d.Add("App.jsx", OpWrite)

	// A second event inside the window resets the timer
	time.Sleep(testInterval / 2)
	d.Add("lib/utils.js", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)

	if len(batch) != 2 {
		t.Fatalf("expected 2 events in single batch, got %d", len(batch))
	}
}

func Test_Debouncer_CloseDropsPending(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("App.jsx", OpWrite)
	d.Close()
	d.Add("late.jsx", OpCreate)
	d.Close()

	select {
	case batch, ok := <-d.Output():
		if ok {
			t.Errorf("expected closed channel, got batch %v", batch)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected output channel to be closed")
	}
}

func Test_EventOp_String(t *testing.T) {
	if OpCreate.String() != "create" || OpRename.String() != "rename" || EventOp(9).String() != "unknown" {
		t.Error("unexpected op names")
	}
}
