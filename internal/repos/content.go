package repos

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/types"
)

type ContentRepo interface {
	Insert(ctx context.Context, content *types.Content) error
	GetByID(ctx context.Context, id, userID string) (*types.Content, error)
	ListByUser(ctx context.Context, userID string, skip, limit int64) ([]*types.Content, error)
	MarkProcessed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type contentRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewContentRepo(db *mongo.Database, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{
		coll: db.Collection("content"),
		log:  baseLog.With("repo", "ContentRepo"),
	}
}

func (r *contentRepo) Insert(ctx context.Context, content *types.Content) error {
	_, err := r.coll.InsertOne(ctx, content)
	return err
}

func (r *contentRepo) GetByID(ctx context.Context, id, userID string) (*types.Content, error) {
	var content types.Content
	err := r.coll.FindOne(ctx, bson.M{"id": id, "user_id": userID}).Decode(&content)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepo) ListByUser(ctx context.Context, userID string, skip, limit int64) ([]*types.Content, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []*types.Content{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contentRepo) MarkProcessed(ctx context.Context, id string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"processed": true}})
	return err
}

func (r *contentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	return err
}
