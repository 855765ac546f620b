package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book represents a shared book recommendation stored in MongoDB.
// The likes field is a set of user IDs; each ID appears at most once.
type Book struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID   `json:"userId" bson:"user_id"`
	Title     string               `json:"title" bson:"title"`
	Caption   string               `json:"caption" bson:"caption"`
	Rating    int                  `json:"rating" bson:"rating"`
	Image     string               `json:"image" bson:"image"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	CreatedAt time.Time            `json:"createdAt" bson:"created_at"`
}

// HasLike reports whether userID is in the book's like set.
func (b *Book) HasLike(userID primitive.ObjectID) bool {
	for _, id := range b.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Relation of a feed viewer to a book's author.
const (
	RelationOwn      = "own"
	RelationFriend   = "friend"
	RelationStranger = "stranger"
)

// CreateBookRequest defines the request body for sharing a book.
// Image is an inline base64 data URI; it is uploaded to object storage
// before the record is persisted.
type CreateBookRequest struct {
	Title   string `json:"title" validate:"required"`
	Caption string `json:"caption" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Image   string `json:"image" validate:"required,startswith=data:image/"`
}

// FeedEntry is a book decorated with author info and viewer-specific state
type FeedEntry struct {
	Book
	Author        UserCompact `json:"author"`
	LikesCount    int         `json:"likesCount"`
	LikedByViewer bool        `json:"likedByViewer"`
	CommentsCount int64       `json:"commentsCount"`
	Relation      string      `json:"relation"` // own, friend or stranger
}

// UserBookCount is one row of the books-per-user aggregation
type UserBookCount struct {
	UserID primitive.ObjectID `json:"userId" bson:"_id"`
	Count  int64              `json:"count" bson:"count"`
}
