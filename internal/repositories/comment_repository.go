package repositories

import (
	"context"
	"time"

	"github.com/bookcircle/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByBookID(ctx context.Context, bookID primitive.ObjectID) ([]models.Comment, error)
	CountCommentsByBookID(ctx context.Context, bookID primitive.ObjectID) (int64, error)
	DeleteCommentsByBookID(ctx context.Context, bookID primitive.ObjectID) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// CreateComment inserts a new comment
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentsByBookID retrieves a book's comments in creation order
func (r *MongoCommentRepository) GetCommentsByBookID(ctx context.Context, bookID primitive.ObjectID) ([]models.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"book_id": bookID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CountCommentsByBookID returns the number of comments on a book
func (r *MongoCommentRepository) CountCommentsByBookID(ctx context.Context, bookID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"book_id": bookID})
}

// DeleteCommentsByBookID removes all comments of a book. Called when
// the book itself is deleted so comments cannot outlive it.
func (r *MongoCommentRepository) DeleteCommentsByBookID(ctx context.Context, bookID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"book_id": bookID})
	return err
}
