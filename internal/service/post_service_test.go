package service

import (
	"context"
	"testing"
	"time"

	"resonate/internal/models"
	"resonate/internal/pagination"
	"resonate/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn            func(context.Context, *models.Post) error
	getByIDFn           func(context.Context, uint) (*models.Post, error)
	listFn              func(context.Context, repository.ListPostsQuery) ([]*models.Post, error)
	createResponseFn    func(context.Context, *models.Post) (*models.Notification, error)
	softDeleteFn        func(context.Context, *models.Post) error
	updateWaveformURLFn func(context.Context, uint, string) error
	updateStatusFn      func(context.Context, uint, string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, q repository.ListPostsQuery) ([]*models.Post, error) {
	return s.listFn(ctx, q)
}
func (s *postRepoStub) CreateResponse(ctx context.Context, response *models.Post) (*models.Notification, error) {
	return s.createResponseFn(ctx, response)
}
func (s *postRepoStub) SoftDelete(ctx context.Context, post *models.Post) error {
	return s.softDeleteFn(ctx, post)
}
func (s *postRepoStub) UpdateWaveformURL(ctx context.Context, id uint, url string) error {
	return s.updateWaveformURLFn(ctx, id, url)
}
func (s *postRepoStub) UpdateStatus(ctx context.Context, id uint, status string) error {
	return s.updateStatusFn(ctx, id, status)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, post *models.Post) error {
			post.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1, Active: true}, nil
		},
		listFn: func(_ context.Context, _ repository.ListPostsQuery) ([]*models.Post, error) {
			return nil, nil
		},
		createResponseFn: func(_ context.Context, response *models.Post) (*models.Notification, error) {
			response.ID = 2
			return nil, nil
		},
		softDeleteFn:        func(_ context.Context, _ *models.Post) error { return nil },
		updateWaveformURLFn: func(_ context.Context, _ uint, _ string) error { return nil },
		updateStatusFn:      func(_ context.Context, _ uint, _ string) error { return nil },
	}
}

// bookmarkRepoStub is a stub for repository.BookmarkRepository.
type bookmarkRepoStub struct {
	addFn               func(context.Context, uint, uint) error
	removeFn            func(context.Context, uint, uint) error
	bookmarkedPostIDsFn func(context.Context, uint, []uint) ([]uint, error)
	listSavedFn         func(context.Context, uint, string, int) ([]*models.Post, string, bool, error)
}

func (s *bookmarkRepoStub) Add(ctx context.Context, userID, postID uint) error {
	return s.addFn(ctx, userID, postID)
}
func (s *bookmarkRepoStub) Remove(ctx context.Context, userID, postID uint) error {
	return s.removeFn(ctx, userID, postID)
}
func (s *bookmarkRepoStub) BookmarkedPostIDs(ctx context.Context, viewerID uint, postIDs []uint) ([]uint, error) {
	return s.bookmarkedPostIDsFn(ctx, viewerID, postIDs)
}
func (s *bookmarkRepoStub) ListSaved(ctx context.Context, viewerID uint, cursor string, limit int) ([]*models.Post, string, bool, error) {
	return s.listSavedFn(ctx, viewerID, cursor, limit)
}

func noopBookmarkRepo() *bookmarkRepoStub {
	return &bookmarkRepoStub{
		addFn:    func(_ context.Context, _, _ uint) error { return nil },
		removeFn: func(_ context.Context, _, _ uint) error { return nil },
		bookmarkedPostIDsFn: func(_ context.Context, _ uint, _ []uint) ([]uint, error) {
			return nil, nil
		},
		listSavedFn: func(_ context.Context, _ uint, _ string, _ int) ([]*models.Post, string, bool, error) {
			return nil, "", false, nil
		},
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByIDFn  func(context.Context, uint) (*models.Profile, error)
	getByIDsFn func(context.Context, []uint) (map[uint]*models.Profile, error)
}

func (s *profileRepoStub) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	return s.getByIDFn(ctx, id)
}
func (s *profileRepoStub) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Profile, error) {
	return s.getByIDsFn(ctx, ids)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Profile, error) {
			return &models.Profile{ID: id, Username: "user", City: "Lisbon"}, nil
		},
		getByIDsFn: func(_ context.Context, ids []uint) (map[uint]*models.Profile, error) {
			out := make(map[uint]*models.Profile, len(ids))
			for _, id := range ids {
				out[id] = &models.Profile{ID: id, Username: "user", City: "Lisbon"}
			}
			return out, nil
		},
	}
}

// notifierStub records published notification records.
type notifierStub struct {
	published []*models.Notification
	err       error
}

func (s *notifierStub) PublishResponse(_ context.Context, record *models.Notification) error {
	s.published = append(s.published, record)
	return s.err
}

func newTestPostService(postRepo *postRepoStub, bookmarkRepo *bookmarkRepoStub, notifier *notifierStub) *PostService {
	return NewPostService(postRepo, bookmarkRepo, noopProfileRepo(), notifier)
}

func TestCreatePostValidation(t *testing.T) {
	svc := newTestPostService(noopPostRepo(), noopBookmarkRepo(), &notifierStub{})
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{"missing audio url", CreatePostInput{UserID: 1, AudioKey: "k", Duration: 10}},
		{"missing audio key", CreatePostInput{UserID: 1, AudioURL: "u", Duration: 10}},
		{"zero duration", CreatePostInput{UserID: 1, AudioURL: "u", AudioKey: "k"}},
		{"negative duration", CreatePostInput{UserID: 1, AudioURL: "u", AudioKey: "k", Duration: -4}},
		{"excessive duration", CreatePostInput{UserID: 1, AudioURL: "u", AudioKey: "k", Duration: maxDuration + 1}},
		{"too many tags", CreatePostInput{
			UserID: 1, AudioURL: "u", AudioKey: "k", Duration: 10,
			Tags: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.input)
			assert.True(t, models.HasCode(err, models.CodeValidation))
		})
	}
}

func TestCreatePostDenormalizesCity(t *testing.T) {
	postRepo := noopPostRepo()
	var created *models.Post
	postRepo.createFn = func(_ context.Context, post *models.Post) error {
		post.ID = 7
		created = post
		return nil
	}
	svc := newTestPostService(postRepo, noopBookmarkRepo(), &notifierStub{})

	out, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:   4,
		AudioURL: "https://cdn.example.com/audio/a.ogg",
		AudioKey: "a",
		Duration: 30,
		Tags:     []string{" music ", "music", "", "latenight"},
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "Lisbon", created.City)
	assert.Equal(t, models.PostTypePost, created.Type)
	assert.True(t, created.Active)
	assert.Equal(t, models.StatusAwaitingProcessing, created.Status)
	// Tags are trimmed and deduplicated, first-seen order preserved.
	assert.Equal(t, models.TagList{"music", "latenight"}, created.Tags)

	assert.Equal(t, uint(7), out.ID)
	require.NotNil(t, out.AudioURL)
}

func TestCreateResponsePublishesNotification(t *testing.T) {
	ctx := context.Background()
	input := CreateResponseInput{
		UserID:   2,
		ParentID: 5,
		AudioURL: "https://cdn.example.com/audio/r.ogg",
		AudioKey: "r",
		Duration: 12,
	}

	t.Run("publishes when the repository records one", func(t *testing.T) {
		postRepo := noopPostRepo()
		record := &models.Notification{RecipientID: 9, PostID: 5, ResponderID: 2}
		postRepo.createResponseFn = func(_ context.Context, response *models.Post) (*models.Notification, error) {
			response.ID = 20
			return record, nil
		}
		notifier := &notifierStub{}
		svc := newTestPostService(postRepo, noopBookmarkRepo(), notifier)

		out, err := svc.CreateResponse(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, uint(20), out.ID)
		require.Len(t, notifier.published, 1)
		assert.Equal(t, record, notifier.published[0])
	})

	t.Run("self-response publishes nothing", func(t *testing.T) {
		notifier := &notifierStub{}
		svc := newTestPostService(noopPostRepo(), noopBookmarkRepo(), notifier)

		_, err := svc.CreateResponse(ctx, input)
		require.NoError(t, err)
		assert.Empty(t, notifier.published)
	})

	t.Run("publish failure does not fail the write", func(t *testing.T) {
		postRepo := noopPostRepo()
		postRepo.createResponseFn = func(_ context.Context, response *models.Post) (*models.Notification, error) {
			response.ID = 21
			return &models.Notification{RecipientID: 9}, nil
		}
		notifier := &notifierStub{err: assert.AnError}
		svc := newTestPostService(postRepo, noopBookmarkRepo(), notifier)

		out, err := svc.CreateResponse(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, uint(21), out.ID)
	})

	t.Run("missing parent propagates not found", func(t *testing.T) {
		postRepo := noopPostRepo()
		postRepo.createResponseFn = func(_ context.Context, _ *models.Post) (*models.Notification, error) {
			return nil, models.NewNotFoundError("Post", 5)
		}
		svc := newTestPostService(postRepo, noopBookmarkRepo(), &notifierStub{})

		_, err := svc.CreateResponse(ctx, input)
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})
}

func TestListPostsOverlaysBookmarks(t *testing.T) {
	now := time.Now()
	postRepo := noopPostRepo()
	postRepo.listFn = func(_ context.Context, q repository.ListPostsQuery) ([]*models.Post, error) {
		assert.Equal(t, 2, q.Limit)
		// limit+1 rows signal a further page.
		return []*models.Post{
			{ID: 3, UserID: 1, CreatedAt: now},
			{ID: 2, UserID: 1, CreatedAt: now.Add(-time.Hour)},
			{ID: 1, UserID: 1, CreatedAt: now.Add(-2 * time.Hour)},
		}, nil
	}

	bookmarkRepo := noopBookmarkRepo()
	var lookedUp []uint
	bookmarkRepo.bookmarkedPostIDsFn = func(_ context.Context, viewerID uint, postIDs []uint) ([]uint, error) {
		assert.Equal(t, uint(7), viewerID)
		lookedUp = postIDs
		return []uint{2}, nil
	}

	svc := newTestPostService(postRepo, bookmarkRepo, &notifierStub{})
	result, err := svc.ListPosts(context.Background(), ListPostsInput{
		Sort:     pagination.SortNewest,
		Limit:    2,
		ViewerID: 7,
	})
	require.NoError(t, err)

	// One batched lookup for the page, not one per post.
	assert.Equal(t, []uint{3, 2}, lookedUp)

	require.Len(t, result.Items, 2)
	assert.False(t, result.Items[0].IsBookmarked)
	assert.True(t, result.Items[1].IsBookmarked)
	assert.True(t, result.HasMore)
	assert.NotEmpty(t, result.NextCursor)
}

func TestListPostsAnonymousSkipsOverlay(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.listFn = func(_ context.Context, _ repository.ListPostsQuery) ([]*models.Post, error) {
		return []*models.Post{{ID: 1, UserID: 1}}, nil
	}
	bookmarkRepo := noopBookmarkRepo()
	bookmarkRepo.bookmarkedPostIDsFn = func(_ context.Context, _ uint, _ []uint) ([]uint, error) {
		t.Fatal("overlay lookup must not run for anonymous viewers")
		return nil, nil
	}

	svc := newTestPostService(postRepo, bookmarkRepo, &notifierStub{})
	result, err := svc.ListPosts(context.Background(), ListPostsInput{Sort: pagination.SortNewest})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.False(t, result.Items[0].IsBookmarked)
	assert.False(t, result.HasMore)
}

func TestListSavedMarksBookmarked(t *testing.T) {
	bookmarkRepo := noopBookmarkRepo()
	bookmarkRepo.listSavedFn = func(_ context.Context, viewerID uint, _ string, _ int) ([]*models.Post, string, bool, error) {
		assert.Equal(t, uint(7), viewerID)
		return []*models.Post{{ID: 4, UserID: 2}}, "11", true, nil
	}

	svc := newTestPostService(noopPostRepo(), bookmarkRepo, &notifierStub{})
	result, err := svc.ListSaved(context.Background(), 7, "", 20)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.True(t, result.Items[0].IsBookmarked)
	assert.True(t, result.HasMore)
	assert.Equal(t, "11", result.NextCursor)
}

func TestDeletePostOwnership(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 3, Active: true}, nil
		}
		deleted := false
		postRepo.softDeleteFn = func(_ context.Context, _ *models.Post) error {
			deleted = true
			return nil
		}
		svc := newTestPostService(postRepo, noopBookmarkRepo(), &notifierStub{})

		err := svc.DeletePost(ctx, DeletePostInput{UserID: 3, PostID: 1})
		assert.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 3, Active: true}, nil
		}
		postRepo.softDeleteFn = func(_ context.Context, _ *models.Post) error {
			t.Fatal("soft delete must not run for a non-owner")
			return nil
		}
		svc := newTestPostService(postRepo, noopBookmarkRepo(), &notifierStub{})

		err := svc.DeletePost(ctx, DeletePostInput{UserID: 4, PostID: 1})
		assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	})
}

func TestUpdateStatusValidation(t *testing.T) {
	svc := newTestPostService(noopPostRepo(), noopBookmarkRepo(), &notifierStub{})
	ctx := context.Background()

	assert.NoError(t, svc.UpdateStatus(ctx, 1, models.StatusProcessed))
	assert.True(t, models.HasCode(svc.UpdateStatus(ctx, 1, "NONSENSE"), models.CodeValidation))
	assert.True(t, models.HasCode(svc.UpdateWaveformURL(ctx, 1, "  "), models.CodeValidation))
}

func TestResolveAuthorsFallsBackToBareAuthor(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.listFn = func(_ context.Context, _ repository.ListPostsQuery) ([]*models.Post, error) {
		return []*models.Post{{ID: 1, UserID: 42}}, nil
	}
	profileRepo := noopProfileRepo()
	profileRepo.getByIDsFn = func(_ context.Context, _ []uint) (map[uint]*models.Profile, error) {
		return map[uint]*models.Profile{}, nil
	}
	svc := NewPostService(postRepo, noopBookmarkRepo(), profileRepo, &notifierStub{})

	result, err := svc.ListPosts(context.Background(), ListPostsInput{Sort: pagination.SortNewest})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, models.Author{ID: 42}, result.Items[0].Author)
}
