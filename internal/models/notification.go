package models

import "time"

// Notification event types.
const (
	NotificationTypeResponse = "RESPONSE"
)

// Notification is a persisted notification record addressed to a user.
// Response notifications are inserted in the same transaction as the
// response itself, so a response either exists with its notification or
// not at all.
type Notification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RecipientID uint       `gorm:"not null;index" json:"recipient_id"`
	Type        string     `gorm:"not null" json:"type"`
	PostID      uint       `gorm:"not null" json:"post_id"`
	ResponseID  uint       `json:"response_id"`
	ResponderID uint       `json:"responder_id"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
