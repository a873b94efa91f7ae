package service

import (
	"context"

	"resonate/internal/models"
	"resonate/internal/repository"
)

// BookmarkService implements saving and unsaving posts.
type BookmarkService struct {
	bookmarkRepo repository.BookmarkRepository
	postRepo     repository.PostRepository
}

// NewBookmarkService creates a new bookmark service.
func NewBookmarkService(bookmarkRepo repository.BookmarkRepository, postRepo repository.PostRepository) *BookmarkService {
	return &BookmarkService{bookmarkRepo: bookmarkRepo, postRepo: postRepo}
}

// Bookmark saves a post for the user. Saving the same post twice yields a
// Conflict from the uniqueness constraint; the counter is only bumped on
// the insert that actually lands.
func (s *BookmarkService) Bookmark(ctx context.Context, userID, postID uint) error {
	// Confirm the post is visible before touching the bookmark table so
	// an inactive post reports NotFound rather than a dangling save.
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}
	return s.bookmarkRepo.Add(ctx, userID, postID)
}

// RemoveBookmark unsaves a post, reporting NotFound when no bookmark
// exists for the pair.
func (s *BookmarkService) RemoveBookmark(ctx context.Context, userID, postID uint) error {
	return s.bookmarkRepo.Remove(ctx, userID, postID)
}

// NotificationService reads a user's notification records.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new notification service.
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// ListNotifications returns the recipient's latest notification records.
func (s *NotificationService) ListNotifications(ctx context.Context, recipientID uint, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notificationRepo.ListByRecipient(ctx, recipientID, limit)
}
