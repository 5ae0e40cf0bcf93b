// ABOUTME: Board is the canonical shape of a greeting canvas and its metadata.
// ABOUTME: Slug is a stable read-only lookup key; ID is the only mutation key.
package board

import "time"

// Board identifies one greeting canvas.
type Board struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	Private        bool `json:"private"`
	AllowAnonymous bool `json:"allow_anonymous"`

	// CreatorID is the owning user, kept in string form so ownership checks
	// never depend on how the backend typed the creator reference.
	CreatorID string `json:"creator_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOwner reports whether userID owns this board. Comparison is always done
// on the string forms; callers must not pre-coerce either side.
func (b Board) IsOwner(userID string) bool {
	return userID != "" && b.CreatorID == userID
}

// CanModify reports whether the given user may edit or delete the post:
// the post's author, or the board owner. Anonymous posts (no author id)
// are only modifiable by the owner.
func (b Board) CanModify(userID string, p Post) bool {
	if userID == "" {
		return false
	}
	if b.IsOwner(userID) {
		return true
	}
	if p.AuthorID == nil {
		return false
	}
	return *p.AuthorID == userID
}
