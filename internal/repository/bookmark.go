package repository

import (
	"context"
	"errors"
	"strconv"

	"resonate/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// BookmarkRepository defines the interface for bookmark operations.
type BookmarkRepository interface {
	// Add inserts a bookmark and increments the post's bookmark counter
	// in one transaction. A duplicate (user, post) pair surfaces as a
	// Conflict via the unique constraint, not a pre-check.
	Add(ctx context.Context, userID, postID uint) error
	// Remove deletes the bookmark and decrements the counter, or reports
	// NotFound when no such bookmark exists.
	Remove(ctx context.Context, userID, postID uint) error
	// BookmarkedPostIDs returns the subset of postIDs the viewer has
	// bookmarked, in one batched query.
	BookmarkedPostIDs(ctx context.Context, viewerID uint, postIDs []uint) ([]uint, error)
	// ListSaved pages through the viewer's saved posts, newest bookmark
	// first. The cursor is the last bookmark id; malformed cursors fall
	// back to the first page.
	ListSaved(ctx context.Context, viewerID uint, cursor string, limit int) ([]*models.Post, string, bool, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository creates a new bookmark repository.
func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *bookmarkRepository) Add(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookmark := models.Bookmark{UserID: userID, PostID: postID}
		if err := tx.Create(&bookmark).Error; err != nil {
			if isUniqueViolation(err) {
				return models.NewConflictError("Post is already bookmarked")
			}
			return err
		}
		return incrementCounter(tx, postID, counterBookmarks)
	})
}

func (r *bookmarkRepository) Remove(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			Delete(&models.Bookmark{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Bookmark", postID)
		}
		return decrementCounter(tx, postID, counterBookmarks)
	})
}

func (r *bookmarkRepository) BookmarkedPostIDs(ctx context.Context, viewerID uint, postIDs []uint) ([]uint, error) {
	if viewerID == 0 || len(postIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Bookmark{}).
		Where("user_id = ? AND post_id IN ?", viewerID, postIDs).
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *bookmarkRepository) ListSaved(ctx context.Context, viewerID uint, cursor string, limit int) ([]*models.Post, string, bool, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Bookmark{}).
		Where("user_id = ?", viewerID)
	if cursor != "" {
		if lastID, err := strconv.ParseUint(cursor, 10, 64); err == nil {
			q = q.Where("id < ?", lastID)
		}
	}
	var bookmarks []models.Bookmark
	if err := q.Order("id DESC").Limit(limit + 1).Find(&bookmarks).Error; err != nil {
		return nil, "", false, err
	}

	hasMore := len(bookmarks) > limit
	if hasMore {
		bookmarks = bookmarks[:limit]
	}
	if len(bookmarks) == 0 {
		return nil, "", false, nil
	}

	postIDs := make([]uint, len(bookmarks))
	for i, b := range bookmarks {
		postIDs[i] = b.PostID
	}
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND active = ?", postIDs, true).
		Find(&posts).Error; err != nil {
		return nil, "", false, err
	}

	// Preserve bookmark recency order; a post may be missing when it was
	// deactivated after being saved.
	byID := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*models.Post, 0, len(bookmarks))
	for _, b := range bookmarks {
		if p, ok := byID[b.PostID]; ok {
			ordered = append(ordered, p)
		}
	}

	nextCursor := ""
	if hasMore {
		nextCursor = strconv.FormatUint(uint64(bookmarks[len(bookmarks)-1].ID), 10)
	}
	return ordered, nextCursor, hasMore, nil
}
