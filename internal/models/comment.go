package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a book, stored in MongoDB
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookID    primitive.ObjectID `json:"bookId" bson:"book_id"`
	UserID    primitive.ObjectID `json:"userId" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// CommentView is a comment annotated with the commenting user's username
type CommentView struct {
	Comment
	Username string `json:"username"`
}

// CreateCommentRequest defines the request body for commenting on a book
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
