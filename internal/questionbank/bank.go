package questionbank

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/amf-prep/trainer/internal/platform/cache"
)

const cacheTTL = 7 * 24 * time.Hour

// Bank holds the parsed question table for the current source workbook.
// Reloading is a no-op while the file contents are unchanged; the content
// digest is the cache key, so an edited or re-imported workbook invalidates
// everything derived from the old one.
type Bank struct {
	mu     sync.RWMutex
	path   string
	sheet  string
	digest string
	list   []Question
	byID   map[int]Question

	cache *cache.Cache // optional, nil disables the Redis layer
}

// NewBank creates a bank for the given workbook path and sheet name.
// The cache may be nil.
func NewBank(path, sheet string, c *cache.Cache) *Bank {
	return &Bank{path: path, sheet: sheet, cache: c}
}

// SetSource points the bank at a different workbook file. The next Load
// re-extracts from it.
func (b *Bank) SetSource(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.path = path
	b.digest = ""
}

// Load parses the source workbook unless its contents are unchanged since
// the previous load. A missing file or sheet is returned as an error and
// leaves the previously loaded table in place.
func (b *Bank) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	digest, err := digestFile(b.path)
	if err != nil {
		return fmt.Errorf("reading workbook: %w", err)
	}
	if digest == b.digest {
		return nil
	}

	key := "questionbank:" + digest
	if b.cache != nil {
		var cached []Question
		hit, err := b.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			slog.Warn("question cache read failed", "error", err)
		} else if hit {
			slog.Info("question bank loaded from cache", "questions", len(cached))
			b.install(digest, cached)
			return nil
		}
	}

	questions, err := Extract(b.path, b.sheet)
	if err != nil {
		return err
	}
	b.install(digest, questions)
	slog.Info("question bank loaded", "path", b.path, "sheet", b.sheet, "questions", len(questions))

	if b.cache != nil {
		if err := b.cache.SetJSON(ctx, key, questions, cacheTTL); err != nil {
			slog.Warn("question cache write failed", "error", err)
		}
	}
	return nil
}

func (b *Bank) install(digest string, questions []Question) {
	b.digest = digest
	b.list = questions
	b.byID = make(map[int]Question, len(questions))
	for _, q := range questions {
		b.byID[q.ID] = q
	}
}

// Loaded reports whether a question table has been loaded.
func (b *Bank) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.byID != nil
}

// Len returns the number of loaded questions.
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.list)
}

// Get returns the question with the given id.
func (b *Bank) Get(id int) (Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.byID[id]
	return q, ok
}

// IDs returns all question ids sorted ascending.
func (b *Bank) IDs() []int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]int, 0, len(b.list))
	for _, q := range b.list {
		ids = append(ids, q.ID)
	}
	sort.Ints(ids)
	return ids
}

// Questions returns a copy of the loaded question table.
func (b *Bank) Questions() []Question {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Question(nil), b.list...)
}

func digestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
