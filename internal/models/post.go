// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Post types. A response is a post with a parent.
const (
	PostTypePost     = "POST"
	PostTypeResponse = "RESPONSE"
)

// Post lifecycle statuses. Status tracks audio processing and content
// removal; it is independent of the Active flag.
const (
	StatusAwaitingProcessing = "AWAITING_PROCESSING"
	StatusProcessed          = "PROCESSED"
	StatusDeleted            = "DELETED"
)

// TagList is a set of short tag strings stored as a JSONB array.
type TagList []string

// Value serializes the tag list for storage.
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		t = TagList{}
	}
	return json.Marshal(t)
}

// Scan deserializes the tag list from its stored JSONB form.
func (t *TagList) Scan(src any) error {
	if src == nil {
		*t = TagList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}
}

// GormDataType tells GORM which column type backs TagList.
func (TagList) GormDataType() string {
	return "jsonb"
}

// Post represents a top-level audio post or a threaded response,
// discriminated by Type. Responses reference their parent post through
// ParentID; the thread relationship is just an indexed column, never an
// in-memory pointer graph.
//
// ResponseCount and BookmarkCount are maintained incrementally by atomic
// updates on write paths and are never recomputed by scanning related rows.
type Post struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	UserID   uint    `gorm:"not null;index" json:"user_id"`
	Type     string  `gorm:"not null;default:'POST';index" json:"type"`
	ParentID *uint   `gorm:"index" json:"parent_id,omitempty"`
	AudioURL string  `gorm:"not null" json:"audio_url"`
	AudioKey string  `gorm:"not null" json:"audio_key"`
	Duration int     `gorm:"not null" json:"duration"`
	Tags     TagList `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	// WaveformURL is populated asynchronously by the audio-processing worker.
	WaveformURL   *string `json:"waveform_url,omitempty"`
	ResponseCount int     `gorm:"not null;default:0" json:"response_count"`
	BookmarkCount int     `gorm:"not null;default:0" json:"bookmark_count"`
	// City is denormalized from the author profile at creation time.
	// A response inherits its parent's city, not the responder's.
	City   string `gorm:"index" json:"city"`
	Active bool   `gorm:"not null;default:true;index" json:"active"`
	Status string `gorm:"not null;default:'AWAITING_PROCESSING'" json:"status"`
	// IsBookmarked indicates whether the current viewer bookmarked this
	// post; resolved per page, not persisted.
	IsBookmarked bool      `gorm:"-" json:"is_bookmarked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsResponse reports whether the post is a threaded response.
func (p *Post) IsResponse() bool {
	return p.Type == PostTypeResponse
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	switch s {
	case StatusAwaitingProcessing, StatusProcessed, StatusDeleted:
		return true
	}
	return false
}
