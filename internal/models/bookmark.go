package models

import "time"

// Bookmark marks a post as saved by a user. The (user_id, post_id) pair is
// unique at the schema level; duplicate inserts surface as a constraint
// violation rather than being screened by a racy pre-check.
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_bookmarks_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_bookmarks_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
