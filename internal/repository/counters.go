package repository

import (
	"fmt"

	"resonate/internal/models"

	"gorm.io/gorm"
)

// Engagement counter columns maintained on posts.
const (
	counterResponses = "response_count"
	counterBookmarks = "bookmark_count"
)

// incrementCounter bumps an engagement counter with a single atomic
// arithmetic update. No read-modify-write cycle, so concurrent writers
// never lose increments.
func incrementCounter(db *gorm.DB, postID uint, column string) error {
	return db.Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(fmt.Sprintf("%s + 1", column))).Error
}

// decrementCounter lowers an engagement counter atomically. The column
// guard clamps the value at zero even under concurrent over-decrement:
// once the counter reaches zero the update matches no row.
func decrementCounter(db *gorm.DB, postID uint, column string) error {
	return db.Model(&models.Post{}).
		Where(fmt.Sprintf("id = ? AND %s > 0", column), postID).
		UpdateColumn(column, gorm.Expr(fmt.Sprintf("%s - 1", column))).Error
}
