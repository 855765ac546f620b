package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/bookcircle/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookRepository defines the interface for book data operations
type BookRepository interface {
	CreateBook(ctx context.Context, book *models.Book) error
	GetBookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	GetAllBooks(ctx context.Context, skip, limit int64) ([]models.Book, error)
	CountBooks(ctx context.Context) (int64, error)
	GetBooksByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error)
	CountBooksByUser(ctx context.Context) ([]models.UserBookCount, error)
	AddLike(ctx context.Context, bookID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, bookID, userID primitive.ObjectID) error
	DeleteBook(ctx context.Context, id primitive.ObjectID) error
}

// MongoBookRepository implements BookRepository for MongoDB
type MongoBookRepository struct {
	collection *mongo.Collection
}

// NewMongoBookRepository creates a new MongoBookRepository
func NewMongoBookRepository(db *mongo.Database) *MongoBookRepository {
	return &MongoBookRepository{collection: db.Collection("books")}
}

// CreateBook inserts a new book
func (r *MongoBookRepository) CreateBook(ctx context.Context, book *models.Book) error {
	book.ID = primitive.NewObjectID()
	book.CreatedAt = time.Now()
	if book.Likes == nil {
		book.Likes = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, book)
	return err
}

// GetBookByID retrieves a book by ID
func (r *MongoBookRepository) GetBookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("book %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, err
	}
	return &book, nil
}

// GetAllBooks retrieves books newest first with offset pagination
func (r *MongoBookRepository) GetAllBooks(ctx context.Context, skip, limit int64) ([]models.Book, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var books []models.Book
	if err = cursor.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// CountBooks returns the total number of books
func (r *MongoBookRepository) CountBooks(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}

// GetBooksByUserID retrieves one user's books, newest first
func (r *MongoBookRepository) GetBooksByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var books []models.Book
	if err = cursor.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// CountBooksByUser groups books by owner and counts them
func (r *MongoBookRepository) CountBooksByUser(ctx context.Context) ([]models.UserBookCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$user_id", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var counts []models.UserBookCount
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// AddLike adds userID to the book's like set ($addToSet keeps the set
// free of duplicates under retries)
func (r *MongoBookRepository) AddLike(ctx context.Context, bookID, userID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": bookID},
		bson.M{"$addToSet": bson.M{"likes": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("book %s: %w", bookID.Hex(), ErrNotFound)
	}
	return nil
}

// RemoveLike removes userID from the book's like set
func (r *MongoBookRepository) RemoveLike(ctx context.Context, bookID, userID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": bookID},
		bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("book %s: %w", bookID.Hex(), ErrNotFound)
	}
	return nil
}

// DeleteBook deletes a book by ID
func (r *MongoBookRepository) DeleteBook(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("book %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}
