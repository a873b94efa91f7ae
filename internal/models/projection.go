package models

import "time"

// PostProjection is the externally visible shape of a post. Media locators
// are redacted when the post's content has been deleted; the status itself
// stays observable so callers can tell a deleted post from a missing one.
type PostProjection struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	Author        Author    `json:"author"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	ParentID      *uint     `json:"parent_id,omitempty"`
	Duration      int       `json:"duration"`
	Tags          TagList   `json:"tags"`
	WaveformURL   *string   `json:"waveform_url"`
	ResponseCount int       `json:"response_count"`
	BookmarkCount int       `json:"bookmark_count"`
	IsBookmarked  bool      `json:"is_bookmarked"`
	CreatedAt     time.Time `json:"created_at"`
	// Full-view only fields; omitted from feed listings.
	AudioURL *string `json:"audio_url,omitempty"`
	City     string  `json:"city,omitempty"`
}

// ProjectPost maps a stored post to its feed projection, applying the
// visibility policy: a DELETED status withholds audio and waveform
// locators while leaving every other field, including the status, intact.
// The underlying storage keys remain persisted for audit and restore.
func ProjectPost(p *Post, author Author) PostProjection {
	out := PostProjection{
		ID:            p.ID,
		UserID:        p.UserID,
		Author:        author,
		Type:          p.Type,
		Status:        p.Status,
		ParentID:      p.ParentID,
		Duration:      p.Duration,
		Tags:          p.Tags,
		ResponseCount: p.ResponseCount,
		BookmarkCount: p.BookmarkCount,
		IsBookmarked:  p.IsBookmarked,
		CreatedAt:     p.CreatedAt,
	}
	if out.Tags == nil {
		out.Tags = TagList{}
	}
	if p.Status != StatusDeleted {
		out.WaveformURL = p.WaveformURL
	}
	return out
}

// ProjectPostFull is the detail-view projection: the feed projection plus
// the audio locator (nil when redacted) and the denormalized city.
func ProjectPostFull(p *Post, author Author) PostProjection {
	out := ProjectPost(p, author)
	out.City = p.City
	if p.Status != StatusDeleted {
		audioURL := p.AudioURL
		out.AudioURL = &audioURL
	}
	return out
}
