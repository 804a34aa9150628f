package repos

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/types"
)

type TranscriptionRepo interface {
	Insert(ctx context.Context, t *types.Transcription) error
	GetByContent(ctx context.Context, contentID string) (*types.Transcription, error)
	Complete(ctx context.Context, id, text string, segments []types.TranscriptSegment) error
	Fail(ctx context.Context, id, errMsg string) error
	DeleteByContent(ctx context.Context, contentID string) error
}

type transcriptionRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewTranscriptionRepo(db *mongo.Database, baseLog *logger.Logger) TranscriptionRepo {
	return &transcriptionRepo{
		coll: db.Collection("transcriptions"),
		log:  baseLog.With("repo", "TranscriptionRepo"),
	}
}

func (r *transcriptionRepo) Insert(ctx context.Context, t *types.Transcription) error {
	_, err := r.coll.InsertOne(ctx, t)
	return err
}

func (r *transcriptionRepo) GetByContent(ctx context.Context, contentID string) (*types.Transcription, error) {
	var t types.Transcription
	err := r.coll.FindOne(ctx, bson.M{"content_id": contentID}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transcriptionRepo) Complete(ctx context.Context, id, text string, segments []types.TranscriptSegment) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{
		"status":     types.TranscriptionStatusCompleted,
		"text":       text,
		"segments":   segments,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

func (r *transcriptionRepo) Fail(ctx context.Context, id, errMsg string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{
		"status":     types.TranscriptionStatusFailed,
		"error":      errMsg,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

func (r *transcriptionRepo) DeleteByContent(ctx context.Context, contentID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"content_id": contentID})
	return err
}
