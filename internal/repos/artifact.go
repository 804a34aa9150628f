package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/types"
)

// ErrGenerationInFlight means another generation of the same type for the
// same content currently holds the (content_id, type) slot.
var ErrGenerationInFlight = errors.New("generation already in flight for this content and type")

type ArtifactRepo interface {
	// Claim takes exclusive ownership of the (content_id, type) slot and
	// returns the processing-state record. It is a compare-and-set: a slot
	// whose record is still processing cannot be claimed again.
	Claim(ctx context.Context, contentID, artifactType, question string) (*types.GeneratedArtifact, error)
	Complete(ctx context.Context, id string, payload types.ArtifactPayload, fallbackUsed bool) error
	Fail(ctx context.Context, id, errMsg string) error
	GetByContent(ctx context.Context, contentID string) ([]*types.GeneratedArtifact, error)
	GetByContentAndType(ctx context.Context, contentID, artifactType string) (*types.GeneratedArtifact, error)
	DeleteByContent(ctx context.Context, contentID string) error
}

type artifactRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewArtifactRepo(db *mongo.Database, baseLog *logger.Logger) ArtifactRepo {
	return &artifactRepo{
		coll: db.Collection("generated_content"),
		log:  baseLog.With("repo", "ArtifactRepo"),
	}
}

func (r *artifactRepo) Claim(ctx context.Context, contentID, artifactType, question string) (*types.GeneratedArtifact, error) {
	now := time.Now().UTC()
	fresh := &types.GeneratedArtifact{
		ID:        uuid.NewString(),
		ContentID: contentID,
		Type:      artifactType,
		Status:    types.ArtifactStatusProcessing,
		Question:  question,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Re-claim a terminal (completed/failed) record first. A record still in
	// processing does not match, so the caller gets ErrGenerationInFlight.
	res, err := r.coll.UpdateOne(ctx,
		bson.M{
			"content_id": contentID,
			"type":       artifactType,
			"status":     bson.M{"$ne": types.ArtifactStatusProcessing},
		},
		bson.M{
			"$set": bson.M{
				"status":        types.ArtifactStatusProcessing,
				"question":      question,
				"error":         "",
				"fallback_used": false,
				"summary":       "",
				"flashcards":    nil,
				"quiz":          nil,
				"mindmap":       nil,
				"answer":        "",
				"updated_at":    now,
			},
		},
	)
	if err != nil {
		return nil, err
	}
	if res.ModifiedCount > 0 {
		return r.GetByContentAndType(ctx, contentID, artifactType)
	}

	// No terminal record to take over; race the unique (content_id, type)
	// index on insert.
	if _, err := r.coll.InsertOne(ctx, fresh); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrGenerationInFlight
		}
		return nil, err
	}
	return fresh, nil
}

func (r *artifactRepo) Complete(ctx context.Context, id string, payload types.ArtifactPayload, fallbackUsed bool) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{
		"status":        types.ArtifactStatusCompleted,
		"summary":       payload.Summary,
		"flashcards":    payload.Flashcards,
		"quiz":          payload.Quiz,
		"mindmap":       payload.Mindmap,
		"answer":        payload.Answer,
		"fallback_used": fallbackUsed,
		"updated_at":    time.Now().UTC(),
	}})
	return err
}

func (r *artifactRepo) Fail(ctx context.Context, id, errMsg string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{
		"status":     types.ArtifactStatusFailed,
		"error":      errMsg,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

func (r *artifactRepo) GetByContent(ctx context.Context, contentID string) ([]*types.GeneratedArtifact, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"content_id": contentID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []*types.GeneratedArtifact{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *artifactRepo) GetByContentAndType(ctx context.Context, contentID, artifactType string) (*types.GeneratedArtifact, error) {
	var artifact types.GeneratedArtifact
	err := r.coll.FindOne(ctx, bson.M{"content_id": contentID, "type": artifactType}).Decode(&artifact)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

func (r *artifactRepo) DeleteByContent(ctx context.Context, contentID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"content_id": contentID})
	return err
}
