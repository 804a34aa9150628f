package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/edusloth/edusloth-backend/internal/types"
)

// Model output routinely wraps JSON in prose or markdown fences. Slicing
// between the first opening and last closing bracket recovers the payload
// without depending on the wrapper shape.
func extractJSONArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// parseFlashcardList decodes a model response into flashcards without
// substituting anything. ok is false when no usable array was found.
func parseFlashcardList(raw string) ([]types.Flashcard, bool) {
	payload, found := extractJSONArray(raw)
	if !found {
		return nil, false
	}
	var cards []types.Flashcard
	if err := json.Unmarshal([]byte(payload), &cards); err != nil || len(cards) == 0 {
		return nil, false
	}
	return cards, true
}

// ParseFlashcards decodes a model response into flashcards. The bool reports
// whether placeholder content was substituted for unparseable output.
func ParseFlashcards(raw string) ([]types.Flashcard, bool) {
	cards, ok := parseFlashcardList(raw)
	if !ok {
		return placeholderFlashcards(), true
	}
	return cards, false
}

func placeholderFlashcards() []types.Flashcard {
	return []types.Flashcard{{
		Question: "What is this?",
		Answer:   "A sample flashcard",
	}}
}

func errorFlashcard(part int) types.Flashcard {
	return types.Flashcard{
		Question: fmt.Sprintf("[Error processing part %d]", part),
		Answer:   "Please try again or split the document.",
	}
}

// quizItem mirrors types.QuizQuestion with pointer fields so missing keys are
// distinguishable from zero values.
type quizItem struct {
	Question      *string  `json:"question"`
	Options       []string `json:"options"`
	CorrectOption *int     `json:"correct_option"`
	Explanation   *string  `json:"explanation"`
}

func (q quizItem) validate() (types.QuizQuestion, bool) {
	if q.Question == nil || *q.Question == "" {
		return types.QuizQuestion{}, false
	}
	if len(q.Options) != 4 {
		return types.QuizQuestion{}, false
	}
	if q.CorrectOption == nil || *q.CorrectOption < 0 || *q.CorrectOption > 3 {
		return types.QuizQuestion{}, false
	}
	out := types.QuizQuestion{
		Question:      *q.Question,
		Options:       q.Options,
		CorrectOption: *q.CorrectOption,
	}
	if q.Explanation != nil {
		out.Explanation = *q.Explanation
	}
	return out, true
}

// parseQuizList decodes a model response into quiz questions. Malformed items
// are replaced with the placeholder question; substituted reports whether that
// happened. ok is false when no usable array was found at all.
func parseQuizList(raw string) (questions []types.QuizQuestion, substituted, ok bool) {
	payload, found := extractJSONArray(raw)
	if !found {
		return nil, false, false
	}
	var items []quizItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil || len(items) == 0 {
		return nil, false, false
	}
	questions = make([]types.QuizQuestion, 0, len(items))
	for _, item := range items {
		q, valid := item.validate()
		if !valid {
			q = placeholderQuiz()[0]
			substituted = true
		}
		questions = append(questions, q)
	}
	return questions, substituted, true
}

// ParseQuiz decodes a model response into quiz questions, replacing malformed
// items with a placeholder. The bool reports whether any substitution happened.
func ParseQuiz(raw string) ([]types.QuizQuestion, bool) {
	questions, substituted, ok := parseQuizList(raw)
	if !ok {
		return placeholderQuiz(), true
	}
	return questions, substituted
}

func placeholderQuiz() []types.QuizQuestion {
	return []types.QuizQuestion{{
		Question:      "What is this?",
		Options:       []string{"A", "B", "C", "D"},
		CorrectOption: 0,
		Explanation:   "Sample fallback quiz question",
	}}
}

func errorQuizQuestion(part int) types.QuizQuestion {
	return types.QuizQuestion{
		Question:      fmt.Sprintf("[Error processing part %d]", part),
		Options:       []string{"Error", "Could not process", "Document too large", "Try again"},
		CorrectOption: 0,
		Explanation:   "There was an error processing this section of the document.",
	}
}

// ParseMindmap decodes a model response into a mindmap tree. The bool reports
// whether the placeholder tree was substituted.
func ParseMindmap(raw string) (*types.MindmapNode, bool) {
	payload, ok := extractJSONObject(raw)
	if !ok {
		return placeholderMindmap(), true
	}
	var root types.MindmapNode
	if err := json.Unmarshal([]byte(payload), &root); err != nil || root.Name == "" {
		return placeholderMindmap(), true
	}
	return &root, false
}

func placeholderMindmap() *types.MindmapNode {
	return &types.MindmapNode{
		Name:     "Error",
		Children: []*types.MindmapNode{{Name: "Could not generate mindmap"}},
	}
}
