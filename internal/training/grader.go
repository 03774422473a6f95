package training

import (
	"context"
	"log/slog"
	"sort"

	"github.com/amf-prep/trainer/internal/questionbank"
)

// Result is the graded outcome for one question.
type Result struct {
	Question      questionbank.Question
	Submitted     string // "" when unanswered
	CorrectLetter string // "" when the correct answer could not be detected
	Correct       bool
	Flagged       bool
}

// Undetermined reports whether the question's correct answer is unknown.
func (r Result) Undetermined() bool {
	return r.CorrectLetter == ""
}

// Report is the outcome of grading one batch. Results are ordered with
// incorrect, unanswered and undetermined questions first.
type Report struct {
	Score   int
	Total   int
	Results []Result
}

// Grader scores submitted batches and maintains the seen and wrong sets.
type Grader struct {
	store Store
}

// NewGrader creates a grader backed by the given progress store.
func NewGrader(store Store) *Grader {
	return &Grader{store: store}
}

// Grade scores the session's answers against the given questions, persists
// the updated wrong and seen sets, and marks the session submitted.
//
// A question counts correct only when an answer was submitted and matches
// the detected correct letter. Correctly answered ids leave the wrong set;
// everything else joins it, and an explicit review flag forces membership
// even when the answer was correct. Every question whose correct answer is
// known joins the seen set, answered or not. Cursors are untouched: only
// explicit navigation advances them.
func (g *Grader) Grade(ctx context.Context, questions []questionbank.Question, sess *Session) Report {
	wrong := g.store.LoadIDSet(ctx, DocWrong)
	seen := g.store.LoadIDSet(ctx, DocSeen)

	report := Report{Total: len(questions)}
	for _, q := range questions {
		res := Result{
			Question:  q,
			Submitted: sess.Answers[q.ID],
			Flagged:   sess.Flags[q.ID],
		}
		if letter, ok := q.CorrectLetter(); ok {
			res.CorrectLetter = letter
			seen.Add(q.ID)
		}

		res.Correct = res.Submitted != "" && res.CorrectLetter != "" && res.Submitted == res.CorrectLetter
		if res.Correct {
			report.Score++
			wrong.Remove(q.ID)
		} else {
			wrong.Add(q.ID)
		}
		if res.Flagged {
			wrong.Add(q.ID)
		}

		report.Results = append(report.Results, res)
	}

	if err := g.store.SaveIDSet(ctx, DocWrong, wrong); err != nil {
		slog.Warn("saving wrong set failed", "error", err)
	}
	if err := g.store.SaveIDSet(ctx, DocSeen, seen); err != nil {
		slog.Warn("saving seen set failed", "error", err)
	}

	sort.SliceStable(report.Results, func(i, j int) bool {
		return !report.Results[i].Correct && report.Results[j].Correct
	})

	sess.Submitted = true
	return report
}
