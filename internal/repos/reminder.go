package repos

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/types"
)

type ReminderRepo interface {
	Insert(ctx context.Context, reminder *types.Reminder) error
	GetByID(ctx context.Context, id, userID string) (*types.Reminder, error)
	ListByUser(ctx context.Context, userID string, includeCompleted bool, skip, limit int64) ([]*types.Reminder, error)
	ListUpcoming(ctx context.Context, userID string, from, to time.Time) ([]*types.Reminder, error)
	Update(ctx context.Context, id, userID string, set bson.M) error
	Delete(ctx context.Context, id, userID string) (bool, error)
}

type reminderRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewReminderRepo(db *mongo.Database, baseLog *logger.Logger) ReminderRepo {
	return &reminderRepo{
		coll: db.Collection("reminders"),
		log:  baseLog.With("repo", "ReminderRepo"),
	}
}

func (r *reminderRepo) Insert(ctx context.Context, reminder *types.Reminder) error {
	_, err := r.coll.InsertOne(ctx, reminder)
	return err
}

func (r *reminderRepo) GetByID(ctx context.Context, id, userID string) (*types.Reminder, error) {
	var reminder types.Reminder
	err := r.coll.FindOne(ctx, bson.M{"id": id, "user_id": userID}).Decode(&reminder)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *reminderRepo) ListByUser(ctx context.Context, userID string, includeCompleted bool, skip, limit int64) ([]*types.Reminder, error) {
	filter := bson.M{"user_id": userID}
	if !includeCompleted {
		filter["is_completed"] = false
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "due_date", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []*types.Reminder{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reminderRepo) ListUpcoming(ctx context.Context, userID string, from, to time.Time) ([]*types.Reminder, error) {
	filter := bson.M{
		"user_id":      userID,
		"is_completed": false,
		"due_date":     bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []*types.Reminder{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reminderRepo) Update(ctx context.Context, id, userID string, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "user_id": userID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *reminderRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
