package persistence

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureIndexes creates the collection indexes the repositories rely on.
// Safe to run on every boot; index creation is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"issues": {
			{Keys: bson.D{{Key: "author", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		"comments": {
			{Keys: bson.D{{Key: "issue", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
		logger.Info("ensured indexes", zap.String("collection", collection), zap.Int("count", len(models)))
	}
	return nil
}
