package training

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"
)

// Sizes holds the batch sizes of the three modes.
type Sizes struct {
	Quiz        int
	Batch       int
	SprintBatch int
	SprintCount int
}

// DefaultSizes returns the certification trainer's standard sizes: an
// 84-question exam, 20-question sequential batches, and a 7×2 sprint.
func DefaultSizes() Sizes {
	return Sizes{Quiz: 84, Batch: 20, SprintBatch: 2, SprintCount: 7}
}

// Selector derives the question batch for each mode from the persisted
// progress state.
type Selector struct {
	store Store
	sizes Sizes
	rng   *rand.Rand
}

// NewSelector creates a selector. A nil rng gets a time-seeded one.
func NewSelector(store Store, sizes Sizes, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{store: store, sizes: sizes, rng: rng}
}

// StartExam starts an exam session: up to Sizes.Quiz shuffled ids, unseen
// first. With reviewWrongOnly the batch is drawn from the wrong set instead.
func (s *Selector) StartExam(ctx context.Context, allIDs []int, reviewWrongOnly bool) *Session {
	var chosen []int
	if reviewWrongOnly {
		wrong := s.store.LoadIDSet(ctx, DocWrong).Sorted()
		if len(wrong) <= s.sizes.Quiz {
			chosen = wrong
		} else {
			s.rng.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })
			chosen = wrong[:s.sizes.Quiz]
		}
	} else {
		seen := s.store.LoadIDSet(ctx, DocSeen)
		chosen = s.pickExamIDs(allIDs, seen, s.sizes.Quiz)
	}

	sess := NewSession(ModeExam, chosen)
	sess.ReviewWrongOnly = reviewWrongOnly
	return sess
}

// pickExamIDs prefers never-seen ids, then fills the remainder at random
// from the rest of the pool.
func (s *Selector) pickExamIDs(allIDs []int, seen IDSet, k int) []int {
	var unseen []int
	for _, id := range allIDs {
		if !seen.Has(id) {
			unseen = append(unseen, id)
		}
	}
	s.rng.Shuffle(len(unseen), func(i, j int) { unseen[i], unseen[j] = unseen[j], unseen[i] })

	if len(unseen) > k {
		unseen = unseen[:k]
	}
	chosen := unseen
	if len(chosen) < k {
		picked := NewIDSet(chosen...)
		var remaining []int
		for _, id := range allIDs {
			if !picked.Has(id) {
				remaining = append(remaining, id)
			}
		}
		s.rng.Shuffle(len(remaining), func(i, j int) { remaining[i], remaining[j] = remaining[j], remaining[i] })
		if need := k - len(chosen); len(remaining) > need {
			remaining = remaining[:need]
		}
		chosen = append(chosen, remaining...)
	}
	return chosen
}

// StartSequence starts the next sequential batch. On first use the order is
// fixed as all ids sorted ascending and persisted; it is never reshuffled.
func (s *Selector) StartSequence(ctx context.Context, allIDs []int) *Session {
	st := s.store.LoadCursor(ctx, DocSequence)
	if len(st.Order) == 0 {
		st.Order = append([]int(nil), allIDs...)
		sort.Ints(st.Order)
		st.Cursor = 0
		if err := s.store.SaveCursor(ctx, DocSequence, st); err != nil {
			slog.Warn("saving sequence state failed", "error", err)
		}
	}
	return s.batchSession(ModeSequence, st, s.sizes.Batch)
}

// StartSprint starts the next sprint mini-batch. On first use the order is
// fixed as a random subset of SprintBatch×SprintCount ids and persisted.
func (s *Selector) StartSprint(ctx context.Context, allIDs []int) *Session {
	st := s.store.LoadCursor(ctx, DocSprint)
	if len(st.Order) == 0 {
		ids := append([]int(nil), allIDs...)
		s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		if max := s.sizes.SprintBatch * s.sizes.SprintCount; len(ids) > max {
			ids = ids[:max]
		}
		st.Order = ids
		st.Cursor = 0
		if err := s.store.SaveCursor(ctx, DocSprint, st); err != nil {
			slog.Warn("saving sprint state failed", "error", err)
		}
	}
	return s.batchSession(ModeSprint, st, s.sizes.SprintBatch)
}

func (s *Selector) batchSession(mode Mode, st CursorState, size int) *Session {
	start := st.Cursor
	if start > len(st.Order) {
		start = len(st.Order)
	}
	end := start + size
	if end > len(st.Order) {
		end = len(st.Order)
	}

	sess := NewSession(mode, append([]int(nil), st.Order[start:end]...))
	sess.Cursor = start
	sess.OrderLen = len(st.Order)
	return sess
}

// CursorStats returns the persisted cursor state for a sequence or sprint
// without modifying it. Other modes return a zero state.
func (s *Selector) CursorStats(ctx context.Context, mode Mode) CursorState {
	switch mode {
	case ModeSequence:
		return s.store.LoadCursor(ctx, DocSequence)
	case ModeSprint:
		return s.store.LoadCursor(ctx, DocSprint)
	}
	return CursorState{}
}

// Advance moves the persisted cursor of a sequence or sprint one batch
// forward (dir > 0) or back (dir < 0), clipped to [0, len(order)], and
// returns the new state.
func (s *Selector) Advance(ctx context.Context, mode Mode, dir int) (CursorState, error) {
	var doc Doc
	var step int
	switch mode {
	case ModeSequence:
		doc, step = DocSequence, s.sizes.Batch
	case ModeSprint:
		doc, step = DocSprint, s.sizes.SprintBatch
	default:
		return CursorState{}, fmt.Errorf("mode %s has no cursor", mode)
	}

	st := s.store.LoadCursor(ctx, doc)
	if dir > 0 {
		st.Cursor += step
		if st.Cursor > len(st.Order) {
			st.Cursor = len(st.Order)
		}
	} else {
		st.Cursor -= step
		if st.Cursor < 0 {
			st.Cursor = 0
		}
	}
	if err := s.store.SaveCursor(ctx, doc, st); err != nil {
		slog.Warn("saving cursor failed", "doc", doc, "error", err)
	}
	return st, nil
}
