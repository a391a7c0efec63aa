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

// IssueFilter captures listing parameters.
type IssueFilter struct {
	AuthorID *primitive.ObjectID
}

// IssuePatch carries the fields an update may touch. The author field is
// deliberately absent: it is immutable after creation.
type IssuePatch struct {
	Title       *string
	Description *string
	Status      *domain.IssueStatus
	Priority    *domain.IssuePriority
	Assignee    *string
}

// IsEmpty reports whether the patch carries no fields.
func (p IssuePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.Assignee == nil
}

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, patch IssuePatch) (*domain.Issue, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	StatusCountsByAuthor(ctx context.Context, authorID primitive.ObjectID) (map[domain.IssueStatus]int64, error)
}

type issueRepository struct {
	collection *mongo.Collection
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(db *mongo.Database) IssueRepository {
	return &issueRepository{collection: db.Collection("issues")}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	now := time.Now().UTC()
	issue.CreatedAt = now
	issue.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, issue)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		issue.ID = id
	}
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Issue, error) {
	var issue domain.Issue
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// List returns issues newest first, optionally scoped to an author.
func (r *issueRepository) List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	query := bson.M{}
	if filter.AuthorID != nil {
		query["author"] = *filter.AuthorID
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []domain.Issue
	for cursor.Next(ctx) {
		var issue domain.Issue
		if err := cursor.Decode(&issue); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, cursor.Err()
}

// UpdateFields applies only the fields present in the patch and returns the
// updated document. Missing documents surface mongo.ErrNoDocuments.
func (r *issueRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, patch IssuePatch) (*domain.Issue, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.Assignee != nil {
		set["assignee"] = *patch.Assignee
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var issue domain.Issue
	err := r.collection.
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&issue)
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// StatusCountsByAuthor groups the author's issues by status in a single
// aggregation round trip.
func (r *issueRepository) StatusCountsByAuthor(ctx context.Context, authorID primitive.ObjectID) (map[domain.IssueStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"author": authorID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[domain.IssueStatus]int64)
	for cursor.Next(ctx) {
		var row struct {
			Status domain.IssueStatus `bson:"_id"`
			Count  int64              `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Status] = row.Count
	}
	return counts, cursor.Err()
}
