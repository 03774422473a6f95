package training_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amf-prep/trainer/internal/training"
)

func newFileStore(t *testing.T) *training.FileStore {
	t.Helper()
	store, err := training.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return store
}

func TestFileStore_LoadIDSet_Missing(t *testing.T) {
	store := newFileStore(t)

	ids := store.LoadIDSet(t.Context(), training.DocSeen)
	if len(ids) != 0 {
		t.Errorf("LoadIDSet() = %v, want empty for missing file", ids.Sorted())
	}
}

func TestFileStore_IDSetRoundTrip(t *testing.T) {
	store := newFileStore(t)
	ctx := t.Context()

	if err := store.SaveIDSet(ctx, training.DocWrong, training.NewIDSet(3, 1, 2)); err != nil {
		t.Fatalf("SaveIDSet() error = %v", err)
	}

	got := store.LoadIDSet(ctx, training.DocWrong)
	want := []int{1, 2, 3}
	sorted := got.Sorted()
	if len(sorted) != len(want) {
		t.Fatalf("LoadIDSet() = %v, want %v", sorted, want)
	}
	for i := range want {
		if sorted[i] != want[i] {
			t.Errorf("Sorted()[%d] = %d, want %d", i, sorted[i], want[i])
		}
	}
}

func TestFileStore_CursorRoundTrip(t *testing.T) {
	store := newFileStore(t)
	ctx := t.Context()

	st := training.CursorState{Order: []int{5, 6, 7}, Cursor: 2}
	if err := store.SaveCursor(ctx, training.DocSequence, st); err != nil {
		t.Fatalf("SaveCursor() error = %v", err)
	}

	got := store.LoadCursor(ctx, training.DocSequence)
	if got.Cursor != 2 || len(got.Order) != 3 {
		t.Errorf("LoadCursor() = %+v, want %+v", got, st)
	}
}

func TestFileStore_CorruptDocuments(t *testing.T) {
	dir := t.TempDir()
	store, err := training.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := t.Context()

	tests := []struct {
		name string
		file string
		body string
	}{
		{"not json", "seen_ids.json", "{{{"},
		{"wrong type", "seen_ids.json", `{"a":1}`},
		{"non-integer ids", "seen_ids.json", `[1, "two", 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.body), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if ids := store.LoadIDSet(ctx, training.DocSeen); len(ids) != 0 {
				t.Errorf("LoadIDSet() = %v, want empty for corrupt file", ids.Sorted())
			}
		})
	}
}

func TestFileStore_CorruptCursor(t *testing.T) {
	dir := t.TempDir()
	store, err := training.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := t.Context()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "!!"},
		{"order not array", `{"order": "abc", "cursor": 0}`},
		{"negative cursor", `{"order": [1], "cursor": -4}`},
		{"missing cursor", `{"order": [1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(filepath.Join(dir, "progress.json"), []byte(tt.body), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			st := store.LoadCursor(ctx, training.DocSequence)
			if len(st.Order) != 0 || st.Cursor != 0 {
				t.Errorf("LoadCursor() = %+v, want zero state for corrupt file", st)
			}
		})
	}
}

func TestFileStore_Reset(t *testing.T) {
	store := newFileStore(t)
	ctx := t.Context()

	if err := store.SaveIDSet(ctx, training.DocSeen, training.NewIDSet(1, 2)); err != nil {
		t.Fatalf("SaveIDSet() error = %v", err)
	}
	if err := store.Reset(ctx, training.DocSeen); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if ids := store.LoadIDSet(ctx, training.DocSeen); len(ids) != 0 {
		t.Errorf("LoadIDSet() = %v after reset, want empty", ids.Sorted())
	}

	// Resetting an absent document is not an error.
	if err := store.Reset(ctx, training.DocSprint); err != nil {
		t.Errorf("Reset() of missing doc error = %v", err)
	}
}
