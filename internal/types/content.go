package types

import (
	"time"
)

const (
	ContentTypeDocument = "document"
	ContentTypeAudio    = "audio"
	ContentTypeVideo    = "video"
	ContentTypeText     = "text"
	ContentTypeImage    = "image"
)

// Content is one uploaded study item. FilePath is the storage reference:
// "s3://bucket/key" for S3 objects, a plain path for the local-disk fallback.
type Content struct {
	ID          string    `bson:"id" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	ContentType string    `bson:"content_type" json:"content_type"`
	FilePath    string    `bson:"file_path" json:"file_path"`
	FileURL     string    `bson:"file_url,omitempty" json:"file_url,omitempty"`
	Processed   bool      `bson:"processed" json:"processed"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

func IsTranscribable(contentType string) bool {
	return contentType == ContentTypeAudio || contentType == ContentTypeVideo
}
