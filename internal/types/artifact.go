package types

import (
	"time"
)

const (
	ArtifactTypeSummary    = "summary"
	ArtifactTypeFlashcards = "flashcards"
	ArtifactTypeQuiz       = "quiz"
	ArtifactTypeMindmap    = "mindmap"
	ArtifactTypeQA         = "qa"
)

const (
	ArtifactStatusProcessing = "processing"
	ArtifactStatusCompleted  = "completed"
	ArtifactStatusFailed     = "failed"
)

func ValidArtifactType(t string) bool {
	switch t {
	case ArtifactTypeSummary, ArtifactTypeFlashcards, ArtifactTypeQuiz, ArtifactTypeMindmap, ArtifactTypeQA:
		return true
	}
	return false
}

type Flashcard struct {
	Question string `bson:"question" json:"question"`
	Answer   string `bson:"answer" json:"answer"`
}

type QuizQuestion struct {
	Question      string   `bson:"question" json:"question"`
	Options       []string `bson:"options" json:"options"`
	CorrectOption int      `bson:"correct_option" json:"correct_option"`
	Explanation   string   `bson:"explanation" json:"explanation"`
}

type MindmapNode struct {
	Name     string         `bson:"name" json:"name"`
	Children []*MindmapNode `bson:"children,omitempty" json:"children,omitempty"`
}

// ArtifactPayload holds the type-specific result of a generation run.
// Exactly one field is populated, matching the artifact type.
type ArtifactPayload struct {
	Summary    string          `bson:"summary,omitempty" json:"summary,omitempty"`
	Flashcards []Flashcard     `bson:"flashcards,omitempty" json:"flashcards,omitempty"`
	Quiz       []QuizQuestion  `bson:"quiz,omitempty" json:"quiz,omitempty"`
	Mindmap    *MindmapNode    `bson:"mindmap,omitempty" json:"mindmap,omitempty"`
	Answer     string          `bson:"answer,omitempty" json:"answer,omitempty"`
}

// GeneratedArtifact is unique per (content_id, type). The payload fields are
// populated if and only if status is completed. FallbackUsed records that the
// payload is a parser placeholder rather than usable model output.
type GeneratedArtifact struct {
	ID           string    `bson:"id" json:"id"`
	ContentID    string    `bson:"content_id" json:"content_id"`
	Type         string    `bson:"type" json:"type"`
	Status       string    `bson:"status" json:"status"`
	Question     string    `bson:"question,omitempty" json:"question,omitempty"`
	Error        string    `bson:"error,omitempty" json:"error,omitempty"`
	FallbackUsed bool      `bson:"fallback_used" json:"fallback_used"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`

	ArtifactPayload `bson:",inline"`
}
