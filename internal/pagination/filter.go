package pagination

import "gorm.io/gorm"

// Filters is the typed filter specification for post listings. Zero-valued
// fields are inactive; active ones are ANDed with the keyset predicate.
type Filters struct {
	Type     string
	City     string
	Tags     []string
	UserID   uint
	ParentID *uint
}

// Apply appends the active filters as conjunctive predicates. Tag matching
// is any-of over the JSONB tag array.
func (f Filters) Apply(db *gorm.DB) *gorm.DB {
	if f.Type != "" {
		db = db.Where("posts.type = ?", f.Type)
	}
	if f.City != "" {
		db = db.Where("posts.city = ?", f.City)
	}
	if len(f.Tags) > 0 {
		db = db.Where(
			"EXISTS (SELECT 1 FROM jsonb_array_elements_text(posts.tags) AS tag WHERE tag.value IN ?)",
			f.Tags,
		)
	}
	if f.UserID != 0 {
		db = db.Where("posts.user_id = ?", f.UserID)
	}
	if f.ParentID != nil {
		db = db.Where("posts.parent_id = ?", *f.ParentID)
	}
	return db
}
