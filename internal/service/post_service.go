// Package service contains the application's business logic, composed from
// the repository layer.
package service

import (
	"context"
	"log/slog"
	"strings"

	"resonate/internal/middleware"
	"resonate/internal/models"
	"resonate/internal/observability"
	"resonate/internal/pagination"
	"resonate/internal/repository"
)

// ResponseNotifier publishes response events to the notification sink.
type ResponseNotifier interface {
	PublishResponse(ctx context.Context, record *models.Notification) error
}

// PostService implements post reads and writes on top of the repositories.
type PostService struct {
	postRepo     repository.PostRepository
	bookmarkRepo repository.BookmarkRepository
	profileRepo  repository.ProfileRepository
	notifier     ResponseNotifier
}

// NewPostService creates a new post service. notifier may be nil when no
// notification sink is configured.
func NewPostService(
	postRepo repository.PostRepository,
	bookmarkRepo repository.BookmarkRepository,
	profileRepo repository.ProfileRepository,
	notifier ResponseNotifier,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		bookmarkRepo: bookmarkRepo,
		profileRepo:  profileRepo,
		notifier:     notifier,
	}
}

// CreatePostInput carries the fields of a new top-level post.
type CreatePostInput struct {
	UserID   uint
	AudioURL string
	AudioKey string
	Duration int
	Tags     []string
}

// CreateResponseInput carries the fields of a new threaded response.
type CreateResponseInput struct {
	UserID   uint
	ParentID uint
	AudioURL string
	AudioKey string
	Duration int
	Tags     []string
}

// ListPostsInput describes one page request. ViewerID is the resolved
// authenticated viewer (0 = anonymous) and is always passed explicitly.
type ListPostsInput struct {
	Filters  pagination.Filters
	Sort     pagination.SortOrder
	Cursor   string
	Limit    int
	ViewerID uint
}

// ListPostsResult is one page of post projections plus continuation state.
type ListPostsResult struct {
	Items      []models.PostProjection `json:"items"`
	HasMore    bool                    `json:"has_more"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

// DeletePostInput identifies the post to delete and the requesting owner.
type DeletePostInput struct {
	UserID uint
	PostID uint
}

const (
	maxTags     = 10
	maxTagLen   = 40
	maxDuration = 600 // ten minutes
)

func validateAudioInput(audioURL, audioKey string, duration int) error {
	if strings.TrimSpace(audioURL) == "" || strings.TrimSpace(audioKey) == "" {
		return models.NewValidationError("audio_url and audio_key are required")
	}
	if duration <= 0 {
		return models.NewValidationError("duration must be a positive number of seconds")
	}
	if duration > maxDuration {
		return models.NewValidationError("duration exceeds the maximum post length")
	}
	return nil
}

// normalizeTags trims, drops empties, and deduplicates while preserving
// first-seen order.
func normalizeTags(tags []string) (models.TagList, error) {
	out := models.TagList{}
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if len(t) > maxTagLen {
			return nil, models.NewValidationError("tag too long (max 40 characters)")
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) > maxTags {
		return nil, models.NewValidationError("too many tags (max 10)")
	}
	return out, nil
}

// CreatePost stores a new top-level post. The author's city is
// denormalized onto the row at creation time.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostProjection, error) {
	if err := validateAudioInput(in.AudioURL, in.AudioKey, in.Duration); err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:   in.UserID,
		Type:     models.PostTypePost,
		AudioURL: in.AudioURL,
		AudioKey: in.AudioKey,
		Duration: in.Duration,
		Tags:     tags,
		City:     profile.City,
		Active:   true,
		Status:   models.StatusAwaitingProcessing,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	projection := models.ProjectPostFull(post, models.AuthorFromProfile(profile))
	return &projection, nil
}

// CreateResponse stores a threaded response atomically with the parent's
// counter bump and the notification record, then publishes the event to
// the sink. The response inherits the parent's city, not the responder's.
func (s *PostService) CreateResponse(ctx context.Context, in CreateResponseInput) (*models.PostProjection, error) {
	if err := validateAudioInput(in.AudioURL, in.AudioKey, in.Duration); err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	parentID := in.ParentID
	response := &models.Post{
		UserID:   in.UserID,
		Type:     models.PostTypeResponse,
		ParentID: &parentID,
		AudioURL: in.AudioURL,
		AudioKey: in.AudioKey,
		Duration: in.Duration,
		Tags:     tags,
		Active:   true,
		Status:   models.StatusAwaitingProcessing,
	}

	record, err := s.postRepo.CreateResponse(ctx, response)
	if err != nil {
		return nil, err
	}

	// The notification row committed with the response; the pub/sub
	// publish is best-effort delivery on top of it.
	if record != nil && s.notifier != nil {
		if pubErr := s.notifier.PublishResponse(ctx, record); pubErr != nil {
			observability.NotificationPublishes.WithLabelValues("error").Inc()
			middleware.Logger.WarnContext(ctx, "failed to publish response event",
				slog.Uint64("post_id", uint64(record.PostID)),
				slog.String("error", pubErr.Error()),
			)
		} else {
			observability.NotificationPublishes.WithLabelValues("ok").Inc()
		}
	}

	projection := models.ProjectPostFull(response, models.AuthorFromProfile(profile))
	return &projection, nil
}

// GetPost returns the full projection of an active post, with the
// viewer's bookmark state resolved.
func (s *PostService) GetPost(ctx context.Context, id, viewerID uint) (*models.PostProjection, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.overlayBookmarks(ctx, viewerID, []*models.Post{post}); err != nil {
		return nil, err
	}
	authors, err := s.resolveAuthors(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	projection := models.ProjectPostFull(post, authors[post.UserID])
	return &projection, nil
}

// ListPosts serves one keyset page in the requested order.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*ListPostsResult, error) {
	limit := pagination.ClampLimit(in.Limit)
	rows, err := s.postRepo.List(ctx, repository.ListPostsQuery{
		Filters: in.Filters,
		Sort:    in.Sort,
		Cursor:  in.Cursor,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	page := pagination.NewPage(in.Sort, rows, limit)
	items, err := s.projectPage(ctx, in.ViewerID, page.Posts)
	if err != nil {
		return nil, err
	}
	return &ListPostsResult{
		Items:      items,
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
	}, nil
}

// ListSaved pages through the viewer's bookmarked posts, newest save first.
func (s *PostService) ListSaved(ctx context.Context, viewerID uint, cursor string, limit int) (*ListPostsResult, error) {
	limit = pagination.ClampLimit(limit)
	posts, nextCursor, hasMore, err := s.bookmarkRepo.ListSaved(ctx, viewerID, cursor, limit)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.IsBookmarked = true
	}
	authors, err := s.resolveAuthors(ctx, posts)
	if err != nil {
		return nil, err
	}
	items := make([]models.PostProjection, 0, len(posts))
	for _, p := range posts {
		items = append(items, models.ProjectPost(p, authors[p.UserID]))
	}
	return &ListPostsResult{Items: items, HasMore: hasMore, NextCursor: nextCursor}, nil
}

// DeletePost soft-deletes a post owned by the requester. Deleting an
// already-inactive post reports NotFound without re-decrementing anything.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.UserID != in.UserID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	return s.postRepo.SoftDelete(ctx, post)
}

// UpdateWaveformURL is called by the audio-processing worker once the
// waveform render is ready.
func (s *PostService) UpdateWaveformURL(ctx context.Context, postID uint, url string) error {
	if strings.TrimSpace(url) == "" {
		return models.NewValidationError("waveform_url is required")
	}
	return s.postRepo.UpdateWaveformURL(ctx, postID, url)
}

// UpdateStatus transitions the content lifecycle status. It leaves the
// Active flag alone; a DELETED status only redacts media in projections.
func (s *PostService) UpdateStatus(ctx context.Context, postID uint, status string) error {
	if !models.ValidStatus(status) {
		return models.NewValidationError("unknown status")
	}
	return s.postRepo.UpdateStatus(ctx, postID, status)
}

// projectPage resolves the viewer overlay and authors for a page and maps
// it to feed projections.
func (s *PostService) projectPage(ctx context.Context, viewerID uint, posts []*models.Post) ([]models.PostProjection, error) {
	if err := s.overlayBookmarks(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	authors, err := s.resolveAuthors(ctx, posts)
	if err != nil {
		return nil, err
	}
	items := make([]models.PostProjection, 0, len(posts))
	for _, p := range posts {
		items = append(items, models.ProjectPost(p, authors[p.UserID]))
	}
	return items, nil
}

// overlayBookmarks marks the posts the viewer has bookmarked using one
// batched lookup for the whole page.
func (s *PostService) overlayBookmarks(ctx context.Context, viewerID uint, posts []*models.Post) error {
	if viewerID == 0 || len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	bookmarked, err := s.bookmarkRepo.BookmarkedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return err
	}
	set := make(map[uint]bool, len(bookmarked))
	for _, id := range bookmarked {
		set[id] = true
	}
	for _, p := range posts {
		p.IsBookmarked = set[p.ID]
	}
	return nil
}

// resolveAuthors batch-loads the author projections for a page of posts.
// A missing profile degrades to a bare author carrying only the user id.
func (s *PostService) resolveAuthors(ctx context.Context, posts []*models.Post) (map[uint]models.Author, error) {
	ids := make([]uint, 0, len(posts))
	seen := map[uint]struct{}{}
	for _, p := range posts {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		ids = append(ids, p.UserID)
	}
	profiles, err := s.profileRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	authors := make(map[uint]models.Author, len(ids))
	for _, id := range ids {
		if profile, ok := profiles[id]; ok {
			authors[id] = models.AuthorFromProfile(profile)
		} else {
			authors[id] = models.Author{ID: id}
		}
	}
	return authors, nil
}
