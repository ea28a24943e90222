package attempt

import "fmt"

// Outcome classifies a question by its attempt history.
type Outcome string

const (
	OutcomeUntaken   Outcome = "untaken"   // no attempts on record
	OutcomeCorrect   Outcome = "correct"   // at least one correct attempt, ever
	OutcomeIncorrect Outcome = "incorrect" // attempts exist, none correct
)

// Mode is a study-mode filter over question outcomes.
type Mode string

const (
	ModeAll       Mode = "all"
	ModeUntaken   Mode = "untaken"
	ModeCorrect   Mode = "correct"
	ModeIncorrect Mode = "incorrect"
)

// ParseMode validates a study mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAll, ModeUntaken, ModeCorrect, ModeIncorrect:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown study mode %q", s)
}

// Classify partitions one question's attempts. "Correct" means ever right,
// not most recent: a single correct attempt classifies the question as
// correct no matter how many wrong attempts surround it.
func Classify(attempts []Attempt) Outcome {
	if len(attempts) == 0 {
		return OutcomeUntaken
	}
	for _, a := range attempts {
		if a.IsCorrect {
			return OutcomeCorrect
		}
	}
	return OutcomeIncorrect
}

// ClassifyAll groups attempts by question id and classifies each group.
// Question ids absent from the result are untaken.
func ClassifyAll(attempts []Attempt) map[int]Outcome {
	outcomes := make(map[int]Outcome)
	for _, a := range attempts {
		if a.IsCorrect {
			outcomes[a.QuestionID] = OutcomeCorrect
			continue
		}
		if outcomes[a.QuestionID] != OutcomeCorrect {
			outcomes[a.QuestionID] = OutcomeIncorrect
		}
	}
	return outcomes
}
