package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/types"
)

// localUploadDir is the on-disk fallback used when S3 rejects an upload.
const localUploadDir = "uploads"

type CreateContentInput struct {
	Title       string
	Description string
	ContentType string
	Filename    string
	MimeType    string
	Body        io.Reader
}

// ContentDetail is the detail view: the record plus a presigned access URL
// and the derived records hanging off it.
type ContentDetail struct {
	types.Content
	AccessURL     string                     `json:"access_url,omitempty"`
	Transcription *types.Transcription       `json:"transcription,omitempty"`
	Generated     []*types.GeneratedArtifact `json:"generated_contents"`
}

type ContentService interface {
	CreateContent(ctx context.Context, userID string, in CreateContentInput) (*types.Content, error)
	GetContent(ctx context.Context, id, userID string) (*ContentDetail, error)
	ListContent(ctx context.Context, userID string, skip, limit int64) ([]*types.Content, error)
	DeleteContent(ctx context.Context, id, userID string) error
}

type contentService struct {
	log               *logger.Logger
	contentRepo       repos.ContentRepo
	transcriptionRepo repos.TranscriptionRepo
	artifactRepo      repos.ArtifactRepo
	bucketService     BucketService
}

func NewContentService(
	log *logger.Logger,
	contentRepo repos.ContentRepo,
	transcriptionRepo repos.TranscriptionRepo,
	artifactRepo repos.ArtifactRepo,
	bucketService BucketService,
) ContentService {
	return &contentService{
		log:               log.With("service", "ContentService"),
		contentRepo:       contentRepo,
		transcriptionRepo: transcriptionRepo,
		artifactRepo:      artifactRepo,
		bucketService:     bucketService,
	}
}

func (cs *contentService) CreateContent(ctx context.Context, userID string, in CreateContentInput) (*types.Content, error) {
	contentID := uuid.NewString()
	ext := filepath.Ext(in.Filename)

	bucket := cs.bucketService.DocumentBucket()
	if types.IsTranscribable(in.ContentType) {
		bucket = cs.bucketService.AudioBucket()
	}
	key := fmt.Sprintf("%s/%s/%s%s", userID, in.ContentType, contentID, ext)

	var filePath, fileURL string
	if err := cs.bucketService.Upload(ctx, bucket, key, in.Body, in.MimeType); err != nil {
		cs.log.Error("S3 upload failed, falling back to local storage", "error", err, "bucket", bucket, "key", key)
		if seeker, ok := in.Body.(io.Seeker); ok {
			if _, seekErr := seeker.Seek(0, io.SeekStart); seekErr != nil {
				return nil, fmt.Errorf("failed to store uploaded file: %w", err)
			}
		}
		localPath, localErr := cs.saveLocal(contentID+ext, in.Body)
		if localErr != nil {
			return nil, fmt.Errorf("failed to store uploaded file: %w", err)
		}
		filePath = localPath
	} else {
		filePath = StorageRef(bucket, key)
		fileURL = cs.bucketService.PublicURL(bucket, key)
	}

	content := &types.Content{
		ID:          contentID,
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		ContentType: in.ContentType,
		FilePath:    filePath,
		FileURL:     fileURL,
		Processed:   false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := cs.contentRepo.Insert(ctx, content); err != nil {
		return nil, fmt.Errorf("failed to save content record: %w", err)
	}
	return content, nil
}

// saveLocal only works when the reader has not been consumed by the failed
// S3 attempt; callers hand us a re-readable source.
func (cs *contentService) saveLocal(name string, body io.Reader) (string, error) {
	if err := os.MkdirAll(localUploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(localUploadDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return "", err
	}
	return path, nil
}

func (cs *contentService) GetContent(ctx context.Context, id, userID string) (*ContentDetail, error) {
	content, err := cs.contentRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	detail := &ContentDetail{Content: *content}

	if bucket, key, ok := ParseStorageRef(content.FilePath); ok {
		url, presignErr := cs.bucketService.PresignGet(ctx, bucket, key)
		if presignErr != nil {
			cs.log.Error("Failed to generate presigned URL", "error", presignErr, "content_id", id)
		} else {
			detail.AccessURL = url
		}
	}

	if types.IsTranscribable(content.ContentType) {
		if t, tErr := cs.transcriptionRepo.GetByContent(ctx, id); tErr == nil {
			detail.Transcription = t
		}
	}

	generated, gErr := cs.artifactRepo.GetByContent(ctx, id)
	if gErr != nil {
		return nil, gErr
	}
	detail.Generated = generated
	return detail, nil
}

func (cs *contentService) ListContent(ctx context.Context, userID string, skip, limit int64) ([]*types.Content, error) {
	return cs.contentRepo.ListByUser(ctx, userID, skip, limit)
}

func (cs *contentService) DeleteContent(ctx context.Context, id, userID string) error {
	content, err := cs.contentRepo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if bucket, key, ok := ParseStorageRef(content.FilePath); ok {
		if dErr := cs.bucketService.Delete(ctx, bucket, key); dErr != nil {
			cs.log.Error("Failed to delete stored file", "error", dErr, "content_id", id)
		}
	} else if content.FilePath != "" {
		if rmErr := os.Remove(content.FilePath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			cs.log.Error("Failed to delete local file", "error", rmErr, "content_id", id)
		}
	}

	if err := cs.contentRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := cs.transcriptionRepo.DeleteByContent(ctx, id); err != nil {
		cs.log.Error("Failed to delete transcriptions", "error", err, "content_id", id)
	}
	if err := cs.artifactRepo.DeleteByContent(ctx, id); err != nil {
		cs.log.Error("Failed to delete generated artifacts", "error", err, "content_id", id)
	}
	return nil
}
