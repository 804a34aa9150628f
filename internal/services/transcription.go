package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/edusloth/edusloth-backend/internal/clients/openai"
	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/types"
)

var (
	ErrContentNotTranscribable = errors.New("content type does not support transcription")
	ErrTranscriptionInFlight   = errors.New("transcription already in progress for this content")
	ErrTranscriberUnavailable  = errors.New("transcription is not configured")
)

// Transcriber converts an audio file into text with segment timings.
type Transcriber interface {
	TranscribeFile(ctx context.Context, path string) (*openai.TranscriptResult, error)
}

type TranscriptionService interface {
	// Start claims the transcription slot for an audio/video content item and
	// returns the processing-state record. A completed transcription is
	// returned as-is; a failed one is discarded and retried.
	Start(ctx context.Context, userID, contentID string) (*types.Transcription, error)
	// Run drives a claimed transcription to a terminal state in the
	// background. Failures are recorded on the record, never returned.
	Run(ctx context.Context, transcription *types.Transcription, userID string)
	// MarkFailed drives a claimed transcription to the failed state without
	// running it. Used when the work queue rejects the job.
	MarkFailed(ctx context.Context, transcriptionID, reason string)
	Get(ctx context.Context, userID, contentID string) (*types.Transcription, error)
}

type transcriptionService struct {
	log               *logger.Logger
	contentRepo       repos.ContentRepo
	transcriptionRepo repos.TranscriptionRepo
	bucket            BucketService
	transcriber       Transcriber
}

func NewTranscriptionService(
	contentRepo repos.ContentRepo,
	transcriptionRepo repos.TranscriptionRepo,
	bucket BucketService,
	transcriber Transcriber,
	baseLog *logger.Logger,
) TranscriptionService {
	return &transcriptionService{
		log:               baseLog.With("service", "TranscriptionService"),
		contentRepo:       contentRepo,
		transcriptionRepo: transcriptionRepo,
		bucket:            bucket,
		transcriber:       transcriber,
	}
}

func (ts *transcriptionService) Start(ctx context.Context, userID, contentID string) (*types.Transcription, error) {
	if ts.transcriber == nil {
		return nil, ErrTranscriberUnavailable
	}
	content, err := ts.contentRepo.GetByID(ctx, contentID, userID)
	if err != nil {
		return nil, err
	}
	if !types.IsTranscribable(content.ContentType) {
		return nil, ErrContentNotTranscribable
	}

	existing, err := ts.transcriptionRepo.GetByContent(ctx, contentID)
	if err != nil && !errors.Is(err, repos.ErrNotFound) {
		return nil, fmt.Errorf("load transcription: %w", err)
	}
	if existing != nil {
		switch existing.Status {
		case types.TranscriptionStatusCompleted:
			return existing, nil
		case types.TranscriptionStatusProcessing, types.TranscriptionStatusPending:
			return nil, ErrTranscriptionInFlight
		case types.TranscriptionStatusFailed:
			if err := ts.transcriptionRepo.DeleteByContent(ctx, contentID); err != nil {
				return nil, fmt.Errorf("discard failed transcription: %w", err)
			}
		}
	}

	now := time.Now().UTC()
	fresh := &types.Transcription{
		ID:        uuid.NewString(),
		ContentID: contentID,
		Status:    types.TranscriptionStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ts.transcriptionRepo.Insert(ctx, fresh); err != nil {
		// A concurrent Start can win the insert race on the unique
		// content_id index.
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrTranscriptionInFlight
		}
		return nil, fmt.Errorf("claim transcription: %w", err)
	}
	return fresh, nil
}

func (ts *transcriptionService) Run(ctx context.Context, transcription *types.Transcription, userID string) {
	runLog := ts.log.With("transcription_id", transcription.ID, "content_id", transcription.ContentID)

	content, err := ts.contentRepo.GetByID(ctx, transcription.ContentID, userID)
	if err != nil {
		ts.finishFailed(ctx, transcription.ID, fmt.Errorf("load content: %w", err), runLog)
		return
	}

	path, cleanup, err := ts.localAudioPath(ctx, content)
	if err != nil {
		ts.finishFailed(ctx, transcription.ID, err, runLog)
		return
	}
	defer cleanup()

	result, err := ts.transcriber.TranscribeFile(ctx, path)
	if err != nil {
		ts.finishFailed(ctx, transcription.ID, err, runLog)
		return
	}

	segments := make([]types.TranscriptSegment, 0, len(result.Segments))
	for _, s := range result.Segments {
		segments = append(segments, types.TranscriptSegment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	if err := ts.transcriptionRepo.Complete(ctx, transcription.ID, result.Text, segments); err != nil {
		runLog.Error("failed to persist completed transcription", "error", err)
		return
	}
	runLog.Info("transcription completed", "chars", len(result.Text), "segments", len(segments))
}

func (ts *transcriptionService) MarkFailed(ctx context.Context, transcriptionID, reason string) {
	if err := ts.transcriptionRepo.Fail(ctx, transcriptionID, reason); err != nil {
		ts.log.Error("failed to mark transcription as failed", "transcription_id", transcriptionID, "error", err)
	}
}

func (ts *transcriptionService) Get(ctx context.Context, userID, contentID string) (*types.Transcription, error) {
	if _, err := ts.contentRepo.GetByID(ctx, contentID, userID); err != nil {
		return nil, err
	}
	return ts.transcriptionRepo.GetByContent(ctx, contentID)
}

func (ts *transcriptionService) finishFailed(ctx context.Context, id string, cause error, runLog *logger.Logger) {
	runLog.Error("transcription failed", "error", cause)
	if err := ts.transcriptionRepo.Fail(ctx, id, cause.Error()); err != nil {
		runLog.Error("failed to persist failed transcription", "error", err)
	}
}

// localAudioPath resolves the content's audio file to a local path,
// downloading S3 objects to a temp file first.
func (ts *transcriptionService) localAudioPath(ctx context.Context, content *types.Content) (string, func(), error) {
	noop := func() {}
	bucket, key, ok := ParseStorageRef(content.FilePath)
	if !ok {
		if _, err := os.Stat(content.FilePath); err != nil {
			return "", noop, fmt.Errorf("audio file unavailable: %w", err)
		}
		return content.FilePath, noop, nil
	}

	body, err := ts.bucket.Download(ctx, bucket, key)
	if err != nil {
		return "", noop, fmt.Errorf("download audio object: %w", err)
	}
	defer body.Close()

	tmp, err := os.CreateTemp("", "edusloth-audio-*"+filepath.Ext(key))
	if err != nil {
		return "", noop, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", noop, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", noop, fmt.Errorf("close temp file: %w", err)
	}

	name := tmp.Name()
	cleanup := func() {
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			ts.log.Warn("failed to remove temp audio file", "path", name, "error", err)
		}
	}
	return name, cleanup, nil
}
