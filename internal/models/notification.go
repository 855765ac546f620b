package models

import "time"

// Notification represents an engagement notification (PostgreSQL).
// Actor and recipient IDs are Mongo ObjectIDs stored as hex strings.
type Notification struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Type          string    `json:"type" gorm:"size:20;index"` // like, comment
	ActorID       string    `json:"actorId" gorm:"size:24;index"`
	ActorUsername string    `json:"username"`
	RecipientID   string    `json:"recipientId" gorm:"size:24;index"`
	BookID        string    `json:"bookId" gorm:"size:24"`
	Text          string    `json:"text"` // comment excerpt, empty for likes
	IsRead        bool      `json:"isRead" gorm:"default:false;index"`
	CreatedAt     time.Time `json:"createdAt" gorm:"index"`
}
