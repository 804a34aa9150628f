package generation

import (
	"errors"
)

var (
	ErrContentNotFound        = errors.New("content not found")
	ErrUnsupportedContentType = errors.New("unsupported content type for generation")
	ErrPrecursorNotReady      = errors.New("transcription must be completed before generating AI content")
	ErrMissingQuestion        = errors.New("qa generation requires a question")
	ErrInvalidArtifactType    = errors.New("invalid generation type")
)
