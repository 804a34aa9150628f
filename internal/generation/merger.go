package generation

import (
	"fmt"
	"strings"

	"github.com/edusloth/edusloth-backend/internal/types"
)

// MergeSummaries joins per-chunk summaries in document order. The result is
// either fed to a synthesis call or, when that call fails, returned as-is.
func MergeSummaries(parts []string) string {
	return strings.Join(parts, "\n\n")
}

// CapFlashcards enforces the flashcard ceiling after merging chunk results.
func CapFlashcards(cards []types.Flashcard) []types.Flashcard {
	if len(cards) > maxFlashcards {
		return cards[:maxFlashcards]
	}
	return cards
}

// CapQuiz enforces the quiz ceiling after merging chunk results.
func CapQuiz(questions []types.QuizQuestion) []types.QuizQuestion {
	if len(questions) > maxQuizQuestions {
		return questions[:maxQuizQuestions]
	}
	return questions
}

// SectionStubMindmap is the deliberate stand-in for documents too large to
// mindmap in one call: a flat overview with one node per section. Chunked
// mindmap synthesis is not attempted.
func SectionStubMindmap(numChunks int) *types.MindmapNode {
	children := make([]*types.MindmapNode, 0, numChunks)
	for i := 1; i <= numChunks; i++ {
		children = append(children, &types.MindmapNode{Name: fmt.Sprintf("Section %d", i)})
	}
	return &types.MindmapNode{
		Name:     "Document Overview",
		Children: children,
	}
}
