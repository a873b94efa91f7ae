// Package pagination implements keyset pagination over the post store.
//
// Each sort order pairs a comparison column with the post id as a
// tie-break, which yields a total order and makes cursor continuation
// exact even when the primary key repeats. Cursors carry the last row's
// sort-key value and id as "<key>:<id>" and are treated as opaque by
// callers.
package pagination

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"resonate/internal/models"

	"gorm.io/gorm"
)

// SortOrder selects one of the supported feed orderings.
type SortOrder string

// Supported sort orders.
const (
	SortNewest         SortOrder = "NEWEST"
	SortOldest         SortOrder = "OLDEST"
	SortMostSaved      SortOrder = "MOST_SAVED"
	SortLeastSaved     SortOrder = "LEAST_SAVED"
	SortMostResponses  SortOrder = "MOST_RESPONSES"
	SortLeastResponses SortOrder = "LEAST_RESPONSES"
)

// Limits applied to page sizes.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// strategy holds the fixed comparison key, direction, and cursor codec of
// one sort order. Keeping these in a lookup table avoids a conditional
// chain per call site and makes adding an order a one-entry change.
type strategy struct {
	column    string
	ascending bool
	encodeKey func(p *models.Post) string
	decodeKey func(s string) (any, error)
}

func timeKey(get func(p *models.Post) time.Time) (func(*models.Post) string, func(string) (any, error)) {
	encode := func(p *models.Post) string {
		return get(p).UTC().Format(time.RFC3339Nano)
	}
	decode := func(s string) (any, error) {
		return time.Parse(time.RFC3339Nano, s)
	}
	return encode, decode
}

func countKey(get func(p *models.Post) int) (func(*models.Post) string, func(string) (any, error)) {
	encode := func(p *models.Post) string {
		return strconv.Itoa(get(p))
	}
	decode := func(s string) (any, error) {
		return strconv.Atoi(s)
	}
	return encode, decode
}

var strategies = map[SortOrder]strategy{}

func init() {
	createdEnc, createdDec := timeKey(func(p *models.Post) time.Time { return p.CreatedAt })
	savedEnc, savedDec := countKey(func(p *models.Post) int { return p.BookmarkCount })
	respEnc, respDec := countKey(func(p *models.Post) int { return p.ResponseCount })

	strategies[SortNewest] = strategy{column: "created_at", ascending: false, encodeKey: createdEnc, decodeKey: createdDec}
	strategies[SortOldest] = strategy{column: "created_at", ascending: true, encodeKey: createdEnc, decodeKey: createdDec}
	strategies[SortMostSaved] = strategy{column: "bookmark_count", ascending: false, encodeKey: savedEnc, decodeKey: savedDec}
	strategies[SortLeastSaved] = strategy{column: "bookmark_count", ascending: true, encodeKey: savedEnc, decodeKey: savedDec}
	strategies[SortMostResponses] = strategy{column: "response_count", ascending: false, encodeKey: respEnc, decodeKey: respDec}
	strategies[SortLeastResponses] = strategy{column: "response_count", ascending: true, encodeKey: respEnc, decodeKey: respDec}
}

// ParseSortOrder maps a raw sort parameter to a SortOrder, defaulting to
// NEWEST for anything unrecognized.
func ParseSortOrder(s string) SortOrder {
	order := SortOrder(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := strategies[order]; ok {
		return order
	}
	return SortNewest
}

// cursor is a decoded continuation point: the sort-key value and id of the
// last row of the previous page.
type cursor struct {
	key any
	id  uint
}

// decodeCursor parses a raw cursor for the given order. Malformed cursors
// decode to nil, which callers treat as "first page"; a garbled cursor is
// never an error.
func decodeCursor(order SortOrder, raw string) *cursor {
	if raw == "" {
		return nil
	}
	strat, ok := strategies[order]
	if !ok {
		return nil
	}
	// The id is the trailing decimal segment; the key may itself contain
	// colons (RFC3339 timestamps do), so split on the last colon.
	idx := strings.LastIndex(raw, ":")
	if idx <= 0 || idx == len(raw)-1 {
		return nil
	}
	key, err := strat.decodeKey(raw[:idx])
	if err != nil {
		return nil
	}
	id, err := strconv.ParseUint(raw[idx+1:], 10, 64)
	if err != nil {
		return nil
	}
	return &cursor{key: key, id: uint(id)}
}

// EncodeCursor builds the continuation cursor pointing just past p for the
// given order.
func EncodeCursor(order SortOrder, p *models.Post) string {
	strat, ok := strategies[order]
	if !ok {
		strat = strategies[SortNewest]
	}
	return fmt.Sprintf("%s:%d", strat.encodeKey(p), p.ID)
}

// Scope returns a GORM scope applying the order's ORDER BY clause and,
// when a usable cursor is present, the compound keyset predicate
// restricting to rows strictly after the cursor in sort order.
func Scope(order SortOrder, rawCursor string) func(*gorm.DB) *gorm.DB {
	strat, ok := strategies[order]
	if !ok {
		order = SortNewest
		strat = strategies[order]
	}
	cur := decodeCursor(order, rawCursor)

	return func(db *gorm.DB) *gorm.DB {
		dir := "DESC"
		cmp := "<"
		if strat.ascending {
			dir = "ASC"
			cmp = ">"
		}
		db = db.Order(fmt.Sprintf("posts.%s %s, posts.id %s", strat.column, dir, dir))
		if cur != nil {
			db = db.Where(
				fmt.Sprintf("(posts.%s, posts.id) %s (?, ?)", strat.column, cmp),
				cur.key, cur.id,
			)
		}
		return db
	}
}

// ClampLimit normalizes a requested page size into [1, MaxLimit].
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Page is one page of results plus its continuation state.
type Page struct {
	Posts      []*models.Post
	HasMore    bool
	NextCursor string
}

// NewPage trims an over-fetched row set (limit+1 fetch) down to limit rows
// and derives HasMore and the next cursor from the last returned row. The
// cursor is only emitted when a further page exists.
func NewPage(order SortOrder, rows []*models.Post, limit int) Page {
	page := Page{Posts: rows}
	if len(rows) > limit {
		page.Posts = rows[:limit]
		page.HasMore = true
		page.NextCursor = EncodeCursor(order, page.Posts[len(page.Posts)-1])
	}
	return page
}
