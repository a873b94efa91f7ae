package models

import "time"

// Profile is the denormalized author read model. It is owned by the
// identity service and synced into this store; this core only reads it.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"not null;uniqueIndex" json:"username"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Author is the subset of a profile exposed on post projections.
type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	City     string `json:"city"`
}

// AuthorFromProfile projects a profile onto the author shape.
func AuthorFromProfile(p *Profile) Author {
	if p == nil {
		return Author{}
	}
	return Author{ID: p.ID, Username: p.Username, City: p.City}
}
