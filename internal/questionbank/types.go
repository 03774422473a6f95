// Package questionbank extracts multiple-choice questions from the AMF
// spreadsheet and keeps the parsed table cached in memory.
package questionbank

// Letters maps an option index to its display letter.
var Letters = [3]string{"A", "B", "C"}

// Question is a single multiple-choice question from the bank.
// CorrectIdx is -1 when no highlighted option could be detected.
type Question struct {
	ID         int       `json:"id"`
	Text       string    `json:"text"`
	Options    [3]string `json:"options"`
	CorrectIdx int       `json:"correct_idx"`
}

// CorrectLetter returns the letter of the correct option, or false when the
// correct answer could not be detected in the source.
func (q Question) CorrectLetter() (string, bool) {
	if q.CorrectIdx < 0 || q.CorrectIdx > 2 {
		return "", false
	}
	return Letters[q.CorrectIdx], true
}

// CorrectText returns the text of the correct option, empty when undetected.
func (q Question) CorrectText() string {
	if q.CorrectIdx < 0 || q.CorrectIdx > 2 {
		return ""
	}
	return q.Options[q.CorrectIdx]
}
