// Package training implements the session modes, batch selection, grading and
// progress bookkeeping of the trainer.
package training

import "fmt"

// Mode identifies a training session mode.
type Mode string

const (
	// ModeExam is a shuffled exam of Sizes.Quiz questions, unseen first.
	ModeExam Mode = "exam"
	// ModeSequence walks all questions in id order, Sizes.Batch at a time.
	ModeSequence Mode = "sequence"
	// ModeSprint walks a fixed random subset in mini-batches of
	// Sizes.SprintBatch.
	ModeSprint Mode = "sprint"
)

// ParseMode converts a wire string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeExam, ModeSequence, ModeSprint:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode: %q", s)
}

// Session is the transient state of one running batch. It is owned by the
// caller and discarded when the batch ends; nothing here is persisted.
type Session struct {
	Mode            Mode
	IDs             []int
	Answers         map[int]string // id -> "A"/"B"/"C"; absent = unanswered
	Flags           map[int]bool   // id -> flagged for review
	Submitted       bool
	ReviewWrongOnly bool

	// Cursor and OrderLen describe the position within the fixed order for
	// sequence and sprint modes. Both are zero in exam mode.
	Cursor   int
	OrderLen int
}

// NewSession creates a session over the given batch of question ids.
func NewSession(mode Mode, ids []int) *Session {
	return &Session{
		Mode:    mode,
		IDs:     ids,
		Answers: make(map[int]string),
		Flags:   make(map[int]bool),
	}
}

func (s *Session) contains(id int) bool {
	for _, v := range s.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// SetAnswer records the submitted letter for a question in the batch. An
// empty letter clears the answer.
func (s *Session) SetAnswer(id int, letter string) error {
	if s.Submitted {
		return fmt.Errorf("session already submitted")
	}
	if !s.contains(id) {
		return fmt.Errorf("question %d is not in the current batch", id)
	}
	switch letter {
	case "":
		delete(s.Answers, id)
	case "A", "B", "C":
		s.Answers[id] = letter
	default:
		return fmt.Errorf("invalid answer letter: %q", letter)
	}
	return nil
}

// SetFlag marks or unmarks a question in the batch for review.
func (s *Session) SetFlag(id int, flagged bool) error {
	if s.Submitted {
		return fmt.Errorf("session already submitted")
	}
	if !s.contains(id) {
		return fmt.Errorf("question %d is not in the current batch", id)
	}
	if flagged {
		s.Flags[id] = true
	} else {
		delete(s.Flags, id)
	}
	return nil
}

// Answered counts the questions with a recorded answer.
func (s *Session) Answered() int {
	return len(s.Answers)
}
