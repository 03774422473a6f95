package training

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// Doc names one persisted state document.
type Doc string

const (
	// DocSeen is the set of ids whose correct answer has been revealed.
	DocSeen Doc = "seen_ids"
	// DocWrong is the set of ids currently needing review.
	DocWrong Doc = "wrong_ids"
	// DocSequence is the fixed order and cursor of the sequential walk.
	DocSequence Doc = "progress"
	// DocSprint is the fixed order and cursor of the sprint.
	DocSprint Doc = "sprint"
)

// IDSet is a set of question ids.
type IDSet map[int]struct{}

// NewIDSet builds a set from the given ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Add inserts an id.
func (s IDSet) Add(id int) { s[id] = struct{}{} }

// Remove deletes an id.
func (s IDSet) Remove(id int) { delete(s, id) }

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// CursorState is a fixed question ordering plus the next unconsumed position.
type CursorState struct {
	Order  []int `json:"order"`
	Cursor int   `json:"cursor"`
}

// Store persists the four progress documents. Loads never fail: a missing or
// corrupt document reads as its zero value. Save errors are returned so
// callers can log them, but the contract is best-effort persistence.
type Store interface {
	LoadIDSet(ctx context.Context, doc Doc) IDSet
	SaveIDSet(ctx context.Context, doc Doc, ids IDSet) error
	LoadCursor(ctx context.Context, doc Doc) CursorState
	SaveCursor(ctx context.Context, doc Doc, st CursorState) error
	Reset(ctx context.Context, doc Doc) error
}

// State documents are validated before use so a hand-edited or truncated
// file degrades to defaults instead of feeding garbage into a session.
var (
	idSetSchema  = gojsonschema.NewStringLoader(`{"type":"array","items":{"type":"integer"}}`)
	cursorSchema = gojsonschema.NewStringLoader(`{
		"type": "object",
		"required": ["order", "cursor"],
		"properties": {
			"order":  {"type": "array", "items": {"type": "integer"}},
			"cursor": {"type": "integer", "minimum": 0}
		}
	}`)
)

func validDocument(schema gojsonschema.JSONLoader, data []byte) bool {
	res, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	return err == nil && res.Valid()
}

// FileStore keeps each document as a JSON file in a state directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the state directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(doc Doc) string {
	return filepath.Join(s.dir, string(doc)+".json")
}

func (s *FileStore) LoadIDSet(_ context.Context, doc Doc) IDSet {
	data, err := os.ReadFile(s.path(doc))
	if err != nil {
		return IDSet{}
	}
	if !validDocument(idSetSchema, data) {
		slog.Warn("ignoring invalid state document", "doc", doc)
		return IDSet{}
	}
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return IDSet{}
	}
	return NewIDSet(ids...)
}

func (s *FileStore) SaveIDSet(_ context.Context, doc Doc, ids IDSet) error {
	data, err := json.MarshalIndent(ids.Sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", doc, err)
	}
	if err := os.WriteFile(s.path(doc), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", doc, err)
	}
	return nil
}

func (s *FileStore) LoadCursor(_ context.Context, doc Doc) CursorState {
	data, err := os.ReadFile(s.path(doc))
	if err != nil {
		return CursorState{}
	}
	if !validDocument(cursorSchema, data) {
		slog.Warn("ignoring invalid state document", "doc", doc)
		return CursorState{}
	}
	var st CursorState
	if err := json.Unmarshal(data, &st); err != nil {
		return CursorState{}
	}
	return st
}

func (s *FileStore) SaveCursor(_ context.Context, doc Doc, st CursorState) error {
	if st.Order == nil {
		st.Order = []int{}
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", doc, err)
	}
	if err := os.WriteFile(s.path(doc), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", doc, err)
	}
	return nil
}

func (s *FileStore) Reset(_ context.Context, doc Doc) error {
	if err := os.Remove(s.path(doc)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", doc, err)
	}
	return nil
}
