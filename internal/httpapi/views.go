package httpapi

import (
	"log/slog"

	"github.com/amf-prep/trainer/internal/questionbank"
	"github.com/amf-prep/trainer/internal/training"
)

// questionView is a question as presented to the user: no correct answer.
type questionView struct {
	ID      int       `json:"id"`
	Text    string    `json:"text"`
	Options [3]string `json:"options"`
}

type sessionView struct {
	Mode            string         `json:"mode"`
	ReviewWrongOnly bool           `json:"review_wrong_only,omitempty"`
	Questions       []questionView `json:"questions"`
	Answers         map[int]string `json:"answers"`
	Flags           map[int]bool   `json:"flags"`
	Answered        int            `json:"answered"`
	Submitted       bool           `json:"submitted"`
	Cursor          int            `json:"cursor"`
	OrderLen        int            `json:"order_len"`
}

type resultView struct {
	ID            int       `json:"id"`
	Text          string    `json:"text"`
	Options       [3]string `json:"options"`
	Submitted     string    `json:"submitted,omitempty"`
	CorrectLetter string    `json:"correct_letter,omitempty"`
	CorrectText   string    `json:"correct_text,omitempty"`
	Correct       bool      `json:"correct"`
	Flagged       bool      `json:"flagged,omitempty"`
	Undetermined  bool      `json:"undetermined,omitempty"`
}

type reportView struct {
	Score   int          `json:"score"`
	Total   int          `json:"total"`
	Results []resultView `json:"results"`
}

// newSessionView resolves the session's ids against the bank. Ids that have
// vanished from the bank (stale persisted order after a re-import) are shown
// to the caller as absent rather than failing the whole batch.
//
// Views are published to websocket subscribers, which marshal them after the
// handler has released s.mu, so the answer and flag maps are copied here
// instead of aliasing the live session.
func (s *Server) newSessionView(sess *training.Session) sessionView {
	answers := make(map[int]string, len(sess.Answers))
	for id, letter := range sess.Answers {
		answers[id] = letter
	}
	flags := make(map[int]bool, len(sess.Flags))
	for id, flagged := range sess.Flags {
		flags[id] = flagged
	}

	v := sessionView{
		Mode:            string(sess.Mode),
		ReviewWrongOnly: sess.ReviewWrongOnly,
		Questions:       []questionView{},
		Answers:         answers,
		Flags:           flags,
		Answered:        sess.Answered(),
		Submitted:       sess.Submitted,
		Cursor:          sess.Cursor,
		OrderLen:        sess.OrderLen,
	}
	for _, id := range sess.IDs {
		q, ok := s.bank.Get(id)
		if !ok {
			slog.Warn("question missing from bank", "id", id)
			continue
		}
		v.Questions = append(v.Questions, questionView{ID: q.ID, Text: q.Text, Options: q.Options})
	}
	return v
}

func newReportView(report training.Report) reportView {
	v := reportView{Score: report.Score, Total: report.Total, Results: []resultView{}}
	for _, r := range report.Results {
		v.Results = append(v.Results, resultView{
			ID:            r.Question.ID,
			Text:          r.Question.Text,
			Options:       r.Question.Options,
			Submitted:     r.Submitted,
			CorrectLetter: r.CorrectLetter,
			CorrectText:   r.Question.CorrectText(),
			Correct:       r.Correct,
			Flagged:       r.Flagged,
			Undetermined:  r.Undetermined(),
		})
	}
	return v
}

// batchQuestions resolves the session ids to full question records for
// grading, skipping ids no longer in the bank.
func (s *Server) batchQuestions(sess *training.Session) []questionbank.Question {
	questions := make([]questionbank.Question, 0, len(sess.IDs))
	for _, id := range sess.IDs {
		if q, ok := s.bank.Get(id); ok {
			questions = append(questions, q)
		}
	}
	return questions
}
