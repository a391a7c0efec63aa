package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Malinda-kawshalya/issue-web/internal/domain"
)

// CommentRepository manages issue comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByIssue(ctx context.Context, issueID primitive.ObjectID) ([]domain.Comment, error)
	CountByIssueIDs(ctx context.Context, issueIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
	DeleteAllForIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error)
}

type commentRepository struct {
	collection *mongo.Collection
}

// NewCommentRepository builds repository.
func NewCommentRepository(db *mongo.Database) CommentRepository {
	return &commentRepository{collection: db.Collection("comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	comment.CreatedAt = time.Now().UTC()

	res, err := r.collection.InsertOne(ctx, comment)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		comment.ID = id
	}
	return nil
}

// ListByIssue returns comments newest first. Issue existence is checked by
// the service layer so an empty result means "no comments", never "no issue".
func (r *commentRepository) ListByIssue(ctx context.Context, issueID primitive.ObjectID) ([]domain.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"issue": issueID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []domain.Comment
	for cursor.Next(ctx) {
		var comment domain.Comment
		if err := cursor.Decode(&comment); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, cursor.Err()
}

// CountByIssueIDs batches comment counts for a set of issues in one
// aggregation. Issues without comments are absent from the map.
func (r *commentRepository) CountByIssueIDs(ctx context.Context, issueIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(issueIDs))
	if len(issueIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"issue": bson.M{"$in": issueIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$issue", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row struct {
			IssueID primitive.ObjectID `bson:"_id"`
			Count   int64              `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.IssueID] = row.Count
	}
	return counts, cursor.Err()
}

// DeleteAllForIssue removes every comment attached to the issue and returns
// the number deleted. Deleting when none exist returns 0, not an error.
func (r *commentRepository) DeleteAllForIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"issue": issueID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
