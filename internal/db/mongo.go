package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edusloth/edusloth-backend/internal/config"
	"github.com/edusloth/edusloth-backend/internal/logger"
)

type MongoService struct {
	client *mongo.Client
	db     *mongo.Database
	log    *logger.Logger
}

func NewMongoService(cfg config.MongoConfig, log *logger.Logger) (*MongoService, error) {
	serviceLog := log.With("service", "MongoService")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	serviceLog.Info("Connecting to MongoDB...", "database", cfg.Database)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoService{
		client: client,
		db:     client.Database(cfg.Database),
		log:    serviceLog,
	}, nil
}

func (s *MongoService) DB() *mongo.Database {
	return s.db
}

func (s *MongoService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the lookup indexes plus the unique (content_id, type)
// index that backs the at-most-one-generation-per-type claim.
func (s *MongoService) EnsureIndexes(ctx context.Context) error {
	type indexSpec struct {
		collection string
		model      mongo.IndexModel
	}
	specs := []indexSpec{
		{"users", mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"users", mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}}},
		{"content", mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}},
		{"content", mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}}},
		{"transcriptions", mongo.IndexModel{
			Keys:    bson.D{{Key: "content_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"generated_content", mongo.IndexModel{
			Keys:    bson.D{{Key: "content_id", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"reminders", mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "due_date", Value: 1}}}},
	}
	for _, sp := range specs {
		if _, err := s.db.Collection(sp.collection).Indexes().CreateOne(ctx, sp.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", sp.collection, err)
		}
	}
	s.log.Info("Mongo indexes ensured")
	return nil
}
