package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// AllCategories is the sentinel category that matches every question.
const AllCategories = "All"

// ErrCatalogLoad marks a missing or malformed question corpus. Callers are
// expected to continue with an empty catalog and surface the condition.
var ErrCatalogLoad = errors.New("catalog load failed")

// Question is one entry of the immutable question corpus.
type Question struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Category      string   `json:"category"`
}

// Catalog is a read-only index over the question corpus. It is built once at
// startup and never mutated afterwards.
type Catalog struct {
	questions []Question
	byID      map[int]Question
}

// Load reads the corpus file and builds a catalog from it.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}

	return NewCatalog(questions)
}

// NewCatalog validates the given questions and indexes them.
func NewCatalog(questions []Question) (*Catalog, error) {
	byID := make(map[int]Question, len(questions))
	for _, q := range questions {
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d has %d options, need at least 2", ErrCatalogLoad, q.ID, len(q.Options))
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return nil, fmt.Errorf("%w: question %d correct answer %d out of range", ErrCatalogLoad, q.ID, q.CorrectAnswer)
		}
		if _, exists := byID[q.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate question id %d", ErrCatalogLoad, q.ID)
		}
		byID[q.ID] = q
	}

	return &Catalog{
		questions: questions,
		byID:      byID,
	}, nil
}

// Empty returns a catalog with no questions. Used when the corpus failed to
// load and the app keeps running with zero questions.
func Empty() *Catalog {
	return &Catalog{byID: make(map[int]Question)}
}

// All returns every question in corpus order.
func (c *Catalog) All() []Question {
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// ByCategory returns the questions whose category matches exactly.
// The "All" sentinel returns the full catalog.
func (c *Catalog) ByCategory(category string) []Question {
	if category == AllCategories {
		return c.All()
	}

	var out []Question
	for _, q := range c.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

// ByID looks up a single question.
func (c *Catalog) ByID(id int) (Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Categories returns the distinct category labels, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, q := range c.questions {
		if !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Len reports the number of questions in the catalog.
func (c *Catalog) Len() int {
	return len(c.questions)
}
