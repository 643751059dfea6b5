package quiz

import "sort"

// Bank is the loaded, read-only question collection.
// It is built once by the dataset loader and shared by every controller;
// accessors hand out copies so callers cannot mutate it.
type Bank struct {
	lessonID  string
	title     string
	questions []Question
	byID      map[string]int
}

// NewBank copies questions into a new Bank.
func NewBank(lessonID, title string, questions []Question) *Bank {
	qs := make([]Question, len(questions))
	byID := make(map[string]int, len(questions))
	for i, q := range questions {
		qs[i] = q.clone()
		byID[q.ID] = i
	}
	return &Bank{
		lessonID:  lessonID,
		title:     title,
		questions: qs,
		byID:      byID,
	}
}

func (b *Bank) LessonID() string { return b.lessonID }

func (b *Bank) Title() string { return b.title }

// Len returns the number of questions in the bank.
func (b *Bank) Len() int { return len(b.questions) }

// Questions returns a copy of all questions in dataset order.
func (b *Bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = q.clone()
	}
	return out
}

// Question looks up a question by id.
func (b *Bank) Question(id string) (Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i].clone(), true
}

// Categories returns the distinct categories, sorted.
func (b *Bank) Categories() []string {
	seen := make(map[string]struct{})
	var cats []string
	for _, q := range b.questions {
		if _, ok := seen[q.Category]; ok {
			continue
		}
		seen[q.Category] = struct{}{}
		cats = append(cats, q.Category)
	}
	sort.Strings(cats)
	return cats
}
