// ABOUTME: Normalization boundary converting heterogeneous wire records into canonical values.
// ABOUTME: Tolerates the three historical backend field-naming conventions with fallback chains.
package board

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// The backend has shipped at least three shapes for the same post record over
// its history: snake_case fields, camelCase fields, and image data nested in a
// media collection. Everything entering this package from the wire goes
// through NormalizePost or NormalizeBoard; callers never read raw fields.

// NormalizePost converts a loosely-typed wire record into a canonical Post.
// It is pure and total: any input, including nil, yields a fully-defaulted
// Post and never panics.
//
// Timestamps missing from the record default to the client clock. That is a
// best-effort fallback, not a true creation time; callers that care should
// log it (see the api package).
func NormalizePost(raw map[string]any) Post {
	p := Post{
		ID:              "0",
		BoardID:         "0",
		Author:          "Unknown",
		BackgroundColor: DefaultBackgroundColor,
		TextColor:       DefaultTextColor,
	}

	if id, ok := stringValue(raw, "id"); ok {
		p.ID = id
	}
	if boardID, ok := stringValue(raw, "board_id", "boardId", "boardID", "bid"); ok {
		p.BoardID = boardID
	}
	if author, ok := stringValue(raw, "author_name", "authorName"); ok && author != "" {
		p.Author = author
	}
	// Three spellings of the author identity have existed. Null or missing
	// means anonymous; that absence is preserved, never defaulted.
	if authorID, ok := stringValue(raw, "author_id", "authorId", "authorID"); ok {
		p.AuthorID = &authorID
	}
	if msg, ok := stringValue(raw, "content"); ok {
		p.Message = msg
	}
	if bg, ok := stringValue(raw, "background_color", "backgroundColor"); ok && bg != "" {
		p.BackgroundColor = bg
	}
	if fg, ok := stringValue(raw, "text_color", "textColor"); ok && fg != "" {
		p.TextColor = fg
	}
	if url, ok := mediaURL(raw); ok {
		p.ImageURL = &url
	}
	if pos, ok := intValue(raw, "position_order", "positionOrder"); ok {
		p.PositionOrder = &pos
	}
	if likes, ok := intValue(raw, "likes_count", "likesCount", "likes"); ok {
		p.Likes = likes
	}

	now := time.Now().UTC()
	p.CreatedAt = timeValue(raw, now, "created_at", "createdAt")
	p.UpdatedAt = timeValue(raw, now, "updated_at", "updatedAt")

	return p
}

// NormalizeBoard converts a loosely-typed wire record into a canonical Board.
// Same totality guarantees as NormalizePost.
func NormalizeBoard(raw map[string]any) Board {
	b := Board{ID: "0"}

	if id, ok := stringValue(raw, "id"); ok {
		b.ID = id
	}
	if slug, ok := stringValue(raw, "slug"); ok {
		b.Slug = slug
	}
	if title, ok := stringValue(raw, "title"); ok {
		b.Title = title
	}
	if desc, ok := stringValue(raw, "description"); ok {
		b.Description = desc
	}
	if creator, ok := stringValue(raw, "creator_id", "creatorId", "creatorID"); ok {
		b.CreatorID = creator
	}
	if private, ok := boolValue(raw, "is_private", "isPrivate", "private"); ok {
		b.Private = private
	}
	if anon, ok := boolValue(raw, "allow_anonymous", "allowAnonymous"); ok {
		b.AllowAnonymous = anon
	}

	now := time.Now().UTC()
	b.CreatedAt = timeValue(raw, now, "created_at", "createdAt")
	b.UpdatedAt = timeValue(raw, now, "updated_at", "updatedAt")

	return b
}

// TimestampsDefaulted reports whether the record carries no usable creation
// timestamp under either convention, meaning the normalizer substituted the
// client clock.
func TimestampsDefaulted(raw map[string]any) bool {
	for _, key := range []string{"created_at", "createdAt"} {
		if v, ok := present(raw, key); ok {
			if _, ok := parseTime(v); ok {
				return false
			}
		}
	}
	return true
}

// present returns the first non-nil value for key. JSON null (decoded to nil)
// counts as absent, so a null numeric field is never read as zero.
func present(raw map[string]any, key string) (any, bool) {
	if raw == nil {
		return nil, false
	}
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func stringValue(raw map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := present(raw, key)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			return t, true
		case float64:
			// JSON numbers decode to float64; ids are typically integral.
			if t == float64(int64(t)) {
				return strconv.FormatInt(int64(t), 10), true
			}
			return strconv.FormatFloat(t, 'f', -1, 64), true
		case json.Number:
			return t.String(), true
		case int:
			return strconv.Itoa(t), true
		case int64:
			return strconv.FormatInt(t, 10), true
		case bool:
			return strconv.FormatBool(t), true
		default:
			return fmt.Sprintf("%v", t), true
		}
	}
	return "", false
}

func intValue(raw map[string]any, keys ...string) (int, bool) {
	for _, key := range keys {
		v, ok := present(raw, key)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			return int(t), true
		case json.Number:
			if n, err := t.Int64(); err == nil {
				return int(n), true
			}
		case int:
			return t, true
		case int64:
			return int(t), true
		case string:
			if n, err := strconv.Atoi(t); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func boolValue(raw map[string]any, keys ...string) (bool, bool) {
	for _, key := range keys {
		v, ok := present(raw, key)
		if !ok {
			continue
		}
		if b, ok := v.(bool); ok {
			return b, true
		}
	}
	return false, false
}

func timeValue(raw map[string]any, fallback time.Time, keys ...string) time.Time {
	for _, key := range keys {
		v, ok := present(raw, key)
		if !ok {
			continue
		}
		if t, ok := parseTime(v); ok {
			return t
		}
	}
	return fallback
}

func parseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// mediaURL pulls the image URL out of a nested media collection, checking
// both casing conventions for the URL field. Only the first media entry is
// consulted; the board UI renders a single image per post.
func mediaURL(raw map[string]any) (string, bool) {
	v, ok := present(raw, "media")
	if !ok {
		return "", false
	}
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return "", false
	}
	entry, ok := list[0].(map[string]any)
	if !ok {
		return "", false
	}
	if url, ok := stringValue(entry, "source_url", "sourceURL"); ok && url != "" {
		return url, true
	}
	return "", false
}
