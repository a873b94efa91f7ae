// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"resonate/internal/models"
	"resonate/internal/pagination"

	"gorm.io/gorm"
)

// ListPostsQuery bundles the parameters of a keyset-paginated listing.
// Limit must already be clamped by the caller; the repository fetches
// limit+1 rows so the service can derive HasMore and the next cursor.
type ListPostsQuery struct {
	Filters pagination.Filters
	Sort    pagination.SortOrder
	Cursor  string
	Limit   int
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, q ListPostsQuery) ([]*models.Post, error)
	// CreateResponse runs the response transaction: load the active
	// parent, insert the response with the parent's city, bump the
	// parent's response counter, and record a notification when the
	// parent's owner differs from the responder. The returned
	// notification is nil for self-responses.
	CreateResponse(ctx context.Context, response *models.Post) (*models.Notification, error)
	// SoftDelete deactivates the post and, for responses, decrements the
	// parent's response counter in the same transaction. A post that is
	// already inactive reports NotFound without touching any counter.
	SoftDelete(ctx context.Context, post *models.Post) error
	UpdateWaveformURL(ctx context.Context, id uint, url string) error
	UpdateStatus(ctx context.Context, id uint, status string) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// GetByID returns the active post with the given id. Inactive posts are
// invisible to every lookup regardless of their lifecycle status.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, q ListPostsQuery) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.active = ?", true).
		Scopes(q.Filters.Apply, pagination.Scope(q.Sort, q.Cursor)).
		Limit(q.Limit + 1).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) CreateResponse(ctx context.Context, response *models.Post) (*models.Notification, error) {
	var notification *models.Notification

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent models.Post
		if err := tx.Where("id = ? AND active = ?", response.ParentID, true).
			First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", *response.ParentID)
			}
			return err
		}

		response.Type = models.PostTypeResponse
		response.City = parent.City
		if err := tx.Create(response).Error; err != nil {
			return err
		}

		if err := incrementCounter(tx, parent.ID, counterResponses); err != nil {
			return err
		}

		if parent.UserID != response.UserID {
			notification = &models.Notification{
				RecipientID: parent.UserID,
				Type:        models.NotificationTypeResponse,
				PostID:      parent.ID,
				ResponseID:  response.ID,
				ResponderID: response.UserID,
			}
			if err := tx.Create(notification).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		notification = nil
		return nil, err
	}
	return notification, nil
}

func (r *postRepository) SoftDelete(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ? AND active = ?", post.ID, true).
			UpdateColumn("active", false)
		if res.Error != nil {
			return res.Error
		}
		// The active guard makes a second delete a no-op, so a
		// concurrent or repeated delete never re-decrements the parent.
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", post.ID)
		}
		if post.IsResponse() && post.ParentID != nil {
			return decrementCounter(tx, *post.ParentID, counterResponses)
		}
		return nil
	})
}

// UpdateWaveformURL is the audio-processing worker callback. A single
// atomic column update, deliberately outside any multi-step transaction.
func (r *postRepository) UpdateWaveformURL(ctx context.Context, id uint, url string) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("waveform_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// UpdateStatus transitions the content lifecycle status. It never touches
// the Active flag; hard removal is a separate operation.
func (r *postRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}
