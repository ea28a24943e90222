// Package stats derives per-question, per-category, and overall outcome
// counts by cross-referencing the question catalog against the attempt log.
// Every function is pure: stats are recomputed from the source of truth on
// each call and never cached or persisted.
package stats

import (
	"github.com/uwtopia/engine/internal/domain/attempt"
	"github.com/uwtopia/engine/internal/domain/question"
)

// Counts partitions a set of questions by attempt outcome.
// Correct + Incorrect + Untaken always equals Total.
type Counts struct {
	Total     int `json:"total"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Untaken   int `json:"untaken"`
}

func (c *Counts) add(outcome attempt.Outcome) {
	c.Total++
	switch outcome {
	case attempt.OutcomeCorrect:
		c.Correct++
	case attempt.OutcomeIncorrect:
		c.Incorrect++
	default:
		c.Untaken++
	}
}

func outcomeFor(q question.Question, outcomes map[int]attempt.Outcome) attempt.Outcome {
	if o, ok := outcomes[q.ID]; ok {
		return o
	}
	return attempt.OutcomeUntaken
}

// QuestionOutcome classifies a single question against the attempt log.
func QuestionOutcome(questionID int, attempts []attempt.Attempt) attempt.Outcome {
	var relevant []attempt.Attempt
	for _, a := range attempts {
		if a.QuestionID == questionID {
			relevant = append(relevant, a)
		}
	}
	return attempt.Classify(relevant)
}

// Overall applies the outcome partition across all given questions.
func Overall(questions []question.Question, attempts []attempt.Attempt) Counts {
	outcomes := attempt.ClassifyAll(attempts)

	var counts Counts
	for _, q := range questions {
		counts.add(outcomeFor(q, outcomes))
	}
	return counts
}

// ByCategory applies the outcome partition grouped by question category.
// Categories with zero questions never appear in the result.
func ByCategory(questions []question.Question, attempts []attempt.Attempt) map[string]Counts {
	outcomes := attempt.ClassifyAll(attempts)

	perCategory := make(map[string]Counts)
	for _, q := range questions {
		counts := perCategory[q.Category]
		counts.add(outcomeFor(q, outcomes))
		perCategory[q.Category] = counts
	}
	return perCategory
}

// FilterByMode keeps the questions matching a study mode. ModeAll returns
// the input unchanged.
func FilterByMode(mode attempt.Mode, questions []question.Question, attempts []attempt.Attempt) []question.Question {
	if mode == attempt.ModeAll {
		return questions
	}

	outcomes := attempt.ClassifyAll(attempts)

	var out []question.Question
	for _, q := range questions {
		if attempt.Mode(outcomeFor(q, outcomes)) == mode {
			out = append(out, q)
		}
	}
	return out
}
