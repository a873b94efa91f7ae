// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"resonate/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var tagPool = []string{
	"music", "storytelling", "latenight", "commute", "city-sounds",
	"poetry", "rant", "interview", "field-recording", "voicememo",
	"comedy", "news", "sports", "ambient", "questions",
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	profiles, err := createProfiles(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create profiles: %w", err)
	}
	log.Printf("%d profiles created", len(profiles))

	posts, err := createPosts(db, profiles, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	if err := createResponses(db, profiles, posts); err != nil {
		return fmt.Errorf("failed to create responses: %w", err)
	}
	if err := createBookmarks(db, profiles, posts); err != nil {
		return fmt.Errorf("failed to create bookmarks: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE notifications, bookmarks, posts, profiles RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createProfiles(db *gorm.DB, count int) ([]models.Profile, error) {
	profiles := make([]models.Profile, 0, count)
	for i := 0; i < count; i++ {
		profile := models.Profile{
			Username: gofakeit.Username(),
			City:     gofakeit.City(),
		}
		if err := db.Create(&profile).Error; err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func randomTags(r *rand.Rand) models.TagList {
	n := r.Intn(4)
	tags := models.TagList{}
	for i := 0; i < n; i++ {
		tags = append(tags, tagPool[r.Intn(len(tagPool))])
	}
	return tags
}

func createPosts(db *gorm.DB, profiles []models.Profile, count int) ([]models.Post, error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := profiles[r.Intn(len(profiles))]
		key := gofakeit.UUID()
		post := models.Post{
			UserID:   author.ID,
			Type:     models.PostTypePost,
			AudioURL: fmt.Sprintf("https://cdn.example.com/audio/%s.ogg", key),
			AudioKey: key,
			Duration: 5 + r.Intn(300),
			Tags:     randomTags(r),
			City:     author.City,
			Active:   true,
			Status:   models.StatusProcessed,
		}
		if r.Intn(10) == 0 {
			post.Status = models.StatusAwaitingProcessing
		} else {
			waveform := fmt.Sprintf("https://cdn.example.com/waveforms/%s.json", key)
			post.WaveformURL = &waveform
		}
		if err := db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func createResponses(db *gorm.DB, profiles []models.Profile, posts []models.Post) error {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := range posts {
		parent := &posts[i]
		n := r.Intn(4)
		for j := 0; j < n; j++ {
			responder := profiles[r.Intn(len(profiles))]
			key := gofakeit.UUID()
			response := models.Post{
				UserID:   responder.ID,
				Type:     models.PostTypeResponse,
				ParentID: &parent.ID,
				AudioURL: fmt.Sprintf("https://cdn.example.com/audio/%s.ogg", key),
				AudioKey: key,
				Duration: 5 + r.Intn(120),
				City:     parent.City,
				Active:   true,
				Status:   models.StatusProcessed,
			}
			if err := db.Create(&response).Error; err != nil {
				return err
			}
			if err := db.Model(parent).
				UpdateColumn("response_count", gorm.Expr("response_count + 1")).Error; err != nil {
				return err
			}
			if parent.UserID != responder.ID {
				notification := models.Notification{
					RecipientID: parent.UserID,
					Type:        models.NotificationTypeResponse,
					PostID:      parent.ID,
					ResponseID:  response.ID,
					ResponderID: responder.ID,
				}
				if err := db.Create(&notification).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func createBookmarks(db *gorm.DB, profiles []models.Profile, posts []models.Post) error {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, profile := range profiles {
		n := r.Intn(6)
		seen := map[uint]struct{}{}
		for j := 0; j < n; j++ {
			post := posts[r.Intn(len(posts))]
			if _, ok := seen[post.ID]; ok {
				continue
			}
			seen[post.ID] = struct{}{}
			bookmark := models.Bookmark{UserID: profile.ID, PostID: post.ID}
			if err := db.Create(&bookmark).Error; err != nil {
				return err
			}
			if err := db.Model(&models.Post{}).Where("id = ?", post.ID).
				UpdateColumn("bookmark_count", gorm.Expr("bookmark_count + 1")).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
