package generation

import (
	"fmt"
)

// systemInstruction is shared by every generation call.
const systemInstruction = "You are a helpful educational assistant."

// Output caps applied after merging chunk results.
const (
	maxFlashcards    = 10
	maxQuizQuestions = 5
)

// Per-chunk floors so even a heavily split document yields usable material.
const (
	minCardsPerChunk     = 2
	minQuestionsPerChunk = 1
)

// Token ceilings per call type.
const (
	summaryTokens      = 1000
	chunkSummaryTokens = 500
	flashcardTokens    = 1500
	chunkCardTokens    = 1000
	quizTokens         = 1500
	chunkQuizTokens    = 1000
	mindmapTokens      = 1500
	answerTokens       = 1000
)

// CardsPerChunk divides the flashcard budget across chunks, never below the
// per-chunk floor.
func CardsPerChunk(numChunks int) int {
	if numChunks <= 0 {
		return maxFlashcards
	}
	n := maxFlashcards / numChunks
	if n < minCardsPerChunk {
		n = minCardsPerChunk
	}
	return n
}

// QuestionsPerChunk divides the quiz budget across chunks, never below the
// per-chunk floor.
func QuestionsPerChunk(numChunks int) int {
	if numChunks <= 0 {
		return maxQuizQuestions
	}
	n := maxQuizQuestions / numChunks
	if n < minQuestionsPerChunk {
		n = minQuestionsPerChunk
	}
	return n
}

func summaryPrompt(text string) string {
	return fmt.Sprintf("Summarize the following document in a concise, well-structured way. Focus on the key ideas and keep the summary readable for a student reviewing the material:\n\n%s", text)
}

func chunkSummaryPrompt(index, total int, chunk string) string {
	return fmt.Sprintf("This is part %d of %d of a larger document. Summarize this part concisely, focusing on its key ideas:\n\n%s", index, total, chunk)
}

func synthesisPrompt(combined string) string {
	return fmt.Sprintf("The following are summaries of consecutive parts of one document. Combine them into a single coherent summary of the whole document:\n\n%s", combined)
}

func flashcardsPrompt(count int, text string) string {
	return fmt.Sprintf("Create %d flashcards from the following document. Respond with ONLY a JSON array where each element is an object with \"question\" and \"answer\" string fields. No other text.\n\nDocument:\n%s", count, text)
}

func chunkFlashcardsPrompt(index, total, count int, chunk string) string {
	return fmt.Sprintf("This is part %d of %d of a larger document. Create %d flashcards from this part. Respond with ONLY a JSON array where each element is an object with \"question\" and \"answer\" string fields. No other text.\n\nDocument part:\n%s", index, total, count, chunk)
}

func quizPrompt(count int, text string) string {
	return fmt.Sprintf("Create a quiz with %d multiple-choice questions from the following document. Respond with ONLY a JSON array where each element is an object with \"question\" (string), \"options\" (array of exactly 4 strings), \"correct_option\" (index 0-3), and \"explanation\" (string) fields. No other text.\n\nDocument:\n%s", count, text)
}

func chunkQuizPrompt(index, total, count int, chunk string) string {
	return fmt.Sprintf("This is part %d of %d of a larger document. Create %d multiple-choice questions from this part. Respond with ONLY a JSON array where each element is an object with \"question\" (string), \"options\" (array of exactly 4 strings), \"correct_option\" (index 0-3), and \"explanation\" (string) fields. No other text.\n\nDocument part:\n%s", index, total, count, chunk)
}

func mindmapPrompt(text string) string {
	return fmt.Sprintf("Create a mindmap of the following document. Respond with ONLY a JSON object representing the root node, where every node has a \"name\" string field and an optional \"children\" array of nodes. No other text.\n\nDocument:\n%s", text)
}

func qaPrompt(question, text string) string {
	return fmt.Sprintf("Answer the following question using only the document below. If the document does not contain the answer, say so.\n\nQuestion: %s\n\nDocument:\n%s", question, text)
}

func chunkQAPrompt(question string, index, total int, chunk string) string {
	return fmt.Sprintf("This is part %d of %d of a larger document. Answer the following question using only this part. If this part does not contain relevant information, say \"No relevant information in this part.\"\n\nQuestion: %s\n\nDocument part:\n%s", index, total, question, chunk)
}

func qaSynthesisPrompt(question, combined string) string {
	return fmt.Sprintf("The following are partial answers drawn from consecutive parts of one document. Combine them into a single coherent answer to the question. Ignore parts that contained no relevant information.\n\nQuestion: %s\n\nPartial answers:\n%s", question, combined)
}

// Native prompts are used when the document itself is attached to the call
// instead of inlined as text.
func nativeSummaryPrompt() string {
	return "Summarize the attached document in a concise, well-structured way. Focus on the key ideas and keep the summary readable for a student reviewing the material."
}

func nativeFlashcardsPrompt(count int) string {
	return fmt.Sprintf("Create %d flashcards from the attached document. Respond with ONLY a JSON array where each element is an object with \"question\" and \"answer\" string fields. No other text.", count)
}

func nativeQuizPrompt(count int) string {
	return fmt.Sprintf("Create a quiz with %d multiple-choice questions from the attached document. Respond with ONLY a JSON array where each element is an object with \"question\" (string), \"options\" (array of exactly 4 strings), \"correct_option\" (index 0-3), and \"explanation\" (string) fields. No other text.", count)
}

func nativeMindmapPrompt() string {
	return "Create a mindmap of the attached document. Respond with ONLY a JSON object representing the root node, where every node has a \"name\" string field and an optional \"children\" array of nodes. No other text."
}

func nativeQAPrompt(question string) string {
	return fmt.Sprintf("Answer the following question using only the attached document. If the document does not contain the answer, say so.\n\nQuestion: %s", question)
}
