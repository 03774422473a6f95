package training_test

import (
	"testing"

	"github.com/amf-prep/trainer/internal/questionbank"
	"github.com/amf-prep/trainer/internal/training"
)

func question(id, correctIdx int) questionbank.Question {
	return questionbank.Question{
		ID:         id,
		Text:       "question",
		Options:    [3]string{"un", "deux", "trois"},
		CorrectIdx: correctIdx,
	}
}

func TestGrade_ScoreAndSets(t *testing.T) {
	store := training.NewMemoryStore()
	ctx := t.Context()

	// Question 1 was previously wrong; answering it correctly must clear it.
	if err := store.SaveIDSet(ctx, training.DocWrong, training.NewIDSet(1)); err != nil {
		t.Fatalf("SaveIDSet() error = %v", err)
	}

	questions := []questionbank.Question{question(1, 0), question(2, 1)}
	sess := training.NewSession(training.ModeExam, []int{1, 2})
	if err := sess.SetAnswer(1, "A"); err != nil {
		t.Fatalf("SetAnswer() error = %v", err)
	}
	if err := sess.SetAnswer(2, "C"); err != nil {
		t.Fatalf("SetAnswer() error = %v", err)
	}

	grader := training.NewGrader(store)
	report := grader.Grade(ctx, questions, sess)

	if report.Score != 1 {
		t.Errorf("Score = %d, want 1", report.Score)
	}
	if report.Total != 2 {
		t.Errorf("Total = %d, want 2", report.Total)
	}
	if !sess.Submitted {
		t.Error("session not marked submitted")
	}

	wrong := store.LoadIDSet(ctx, training.DocWrong)
	if wrong.Has(1) {
		t.Error("id 1 answered correctly but still in wrong set")
	}
	if !wrong.Has(2) {
		t.Error("id 2 answered incorrectly but not in wrong set")
	}

	seen := store.LoadIDSet(ctx, training.DocSeen)
	if !seen.Has(1) || !seen.Has(2) {
		t.Errorf("seen set = %v, want both graded ids", seen.Sorted())
	}
}

func TestGrade_FlagForcesWrongSet(t *testing.T) {
	store := training.NewMemoryStore()
	ctx := t.Context()

	questions := []questionbank.Question{question(3, 0)}
	sess := training.NewSession(training.ModeExam, []int{3})
	if err := sess.SetAnswer(3, "A"); err != nil {
		t.Fatalf("SetAnswer() error = %v", err)
	}
	if err := sess.SetFlag(3, true); err != nil {
		t.Fatalf("SetFlag() error = %v", err)
	}

	report := training.NewGrader(store).Grade(ctx, questions, sess)

	// Correct for the score, but flagged for review anyway.
	if report.Score != 1 {
		t.Errorf("Score = %d, want 1", report.Score)
	}
	if !store.LoadIDSet(ctx, training.DocWrong).Has(3) {
		t.Error("flagged id 3 not in wrong set despite correct answer")
	}
}

func TestGrade_UnansweredCountsWrong(t *testing.T) {
	store := training.NewMemoryStore()
	ctx := t.Context()

	questions := []questionbank.Question{question(4, 2)}
	sess := training.NewSession(training.ModeExam, []int{4})

	report := training.NewGrader(store).Grade(ctx, questions, sess)

	if report.Score != 0 {
		t.Errorf("Score = %d, want 0", report.Score)
	}
	if !store.LoadIDSet(ctx, training.DocWrong).Has(4) {
		t.Error("unanswered id 4 not in wrong set")
	}
	if !store.LoadIDSet(ctx, training.DocSeen).Has(4) {
		t.Error("id 4 has a known answer, must join seen set")
	}
}

func TestGrade_UnknownCorrectAnswer(t *testing.T) {
	store := training.NewMemoryStore()
	ctx := t.Context()

	// Previously wrong, answer undetectable: a "matching" submission must
	// not clear it, and it never joins the seen set.
	if err := store.SaveIDSet(ctx, training.DocWrong, training.NewIDSet(5)); err != nil {
		t.Fatalf("SaveIDSet() error = %v", err)
	}

	questions := []questionbank.Question{question(5, -1)}
	sess := training.NewSession(training.ModeExam, []int{5})
	if err := sess.SetAnswer(5, "A"); err != nil {
		t.Fatalf("SetAnswer() error = %v", err)
	}

	report := training.NewGrader(store).Grade(ctx, questions, sess)

	if report.Score != 0 {
		t.Errorf("Score = %d, want 0 for undetermined question", report.Score)
	}
	if !report.Results[0].Undetermined() {
		t.Error("result not marked undetermined")
	}
	if !store.LoadIDSet(ctx, training.DocWrong).Has(5) {
		t.Error("undetermined id 5 removed from wrong set")
	}
	if store.LoadIDSet(ctx, training.DocSeen).Has(5) {
		t.Error("undetermined id 5 added to seen set")
	}
}

func TestGrade_WrongFirstOrdering(t *testing.T) {
	store := training.NewMemoryStore()
	ctx := t.Context()

	questions := []questionbank.Question{
		question(1, 0), // correct
		question(2, 0), // wrong
		question(3, 0), // correct
		question(4, -1), // undetermined
	}
	sess := training.NewSession(training.ModeExam, []int{1, 2, 3, 4})
	sess.SetAnswer(1, "A")
	sess.SetAnswer(2, "B")
	sess.SetAnswer(3, "A")

	report := training.NewGrader(store).Grade(ctx, questions, sess)

	gotOrder := []int{}
	for _, r := range report.Results {
		gotOrder = append(gotOrder, r.Question.ID)
	}
	// Incorrect and undetermined first, stable within each group.
	want := []int{2, 4, 1, 3}
	for i := range want {
		if gotOrder[i] != want[i] {
			t.Fatalf("result order = %v, want %v", gotOrder, want)
		}
	}
}

func TestGrade_CursorsUntouched(t *testing.T) {
	store := training.NewMemoryStore()
	ctx := t.Context()

	before := training.CursorState{Order: []int{1, 2, 3}, Cursor: 2}
	if err := store.SaveCursor(ctx, training.DocSequence, before); err != nil {
		t.Fatalf("SaveCursor() error = %v", err)
	}

	sess := training.NewSession(training.ModeSequence, []int{1})
	training.NewGrader(store).Grade(ctx, []questionbank.Question{question(1, 0)}, sess)

	after := store.LoadCursor(ctx, training.DocSequence)
	if after.Cursor != 2 || len(after.Order) != 3 {
		t.Errorf("cursor state changed by grading: %+v", after)
	}
}
