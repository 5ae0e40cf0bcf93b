// ABOUTME: Post is the canonical in-memory shape of a greeting message on a board.
// ABOUTME: All wire records pass through the normalizer before becoming a Post.
package board

import (
	"sort"
	"time"
)

// Default colors applied when the backend omits them.
const (
	DefaultBackgroundColor = "#ffffff"
	DefaultTextColor       = "#000000"
)

// Post represents a single greeting message attached to exactly one board.
// IDs are strings regardless of what the backend sent; identity comparisons
// are always string comparisons.
type Post struct {
	ID      string `json:"id"`
	BoardID string `json:"board_id"`

	// Author is the display name shown on the card.
	Author string `json:"author"`

	// AuthorID is nil for anonymous posts. Absence is meaningful ("anonymous
	// or unknown") and must never be replaced with a sentinel value.
	AuthorID *string `json:"author_id,omitempty"`

	Message         string  `json:"message"`
	ImageURL        *string `json:"image_url,omitempty"`
	BackgroundColor string  `json:"background_color"`
	TextColor       string  `json:"text_color"`

	// PositionOrder is nil for posts created before manual ordering existed.
	// When present across a whole board it is a dense 1..N sequence.
	PositionOrder *int `json:"position_order,omitempty"`

	Likes int `json:"likes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PositionAssignment is one entry of a reorder payload: a post id and its new
// 1-based position.
type PositionAssignment struct {
	ID            string `json:"id"`
	PositionOrder int    `json:"positionOrder"`
}

// SortPosts orders posts for display: by PositionOrder ascending when every
// post carries one, otherwise by creation time descending. Boards predating
// position tracking fall into the second case.
func SortPosts(posts []Post) {
	if allPositioned(posts) {
		sort.SliceStable(posts, func(i, j int) bool {
			return *posts[i].PositionOrder < *posts[j].PositionOrder
		})
		return
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

func allPositioned(posts []Post) bool {
	if len(posts) == 0 {
		return false
	}
	for i := range posts {
		if posts[i].PositionOrder == nil {
			return false
		}
	}
	return true
}
