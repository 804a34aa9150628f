package types

import (
	"time"
)

const (
	TranscriptionStatusPending    = "pending"
	TranscriptionStatusProcessing = "processing"
	TranscriptionStatusCompleted  = "completed"
	TranscriptionStatusFailed     = "failed"
)

type TranscriptSegment struct {
	Start float64 `bson:"start" json:"start"`
	End   float64 `bson:"end" json:"end"`
	Text  string  `bson:"text" json:"text"`
}

// Transcription is one-to-one with an audio/video Content. It is written
// once at start (processing) and once at its terminal state, never again.
type Transcription struct {
	ID        string              `bson:"id" json:"id"`
	ContentID string              `bson:"content_id" json:"content_id"`
	Status    string              `bson:"status" json:"status"`
	Text      string              `bson:"text,omitempty" json:"text,omitempty"`
	Segments  []TranscriptSegment `bson:"segments,omitempty" json:"segments,omitempty"`
	Error     string              `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
