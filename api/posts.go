// ABOUTME: PostService: create, update, delete, reorder, and like operations on posts.
// ABOUTME: Implements the board package's Creator and Reorderer collaborator interfaces.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kudohq/kudo/board"
)

// PostService exposes the backend's post operations.
type PostService struct {
	c *Client
}

// NewPostService wraps the client with post operations.
func NewPostService(c *Client) *PostService {
	return &PostService{c: c}
}

// createPostBody is the wire shape both create paths send.
type createPostBody struct {
	Content         string `json:"content"`
	AuthorName      string `json:"authorName"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	ImageURL        string `json:"imageUrl,omitempty"`
	IsAnonymous     bool   `json:"isAnonymous"`
}

func draftBody(draft board.Draft, anonymous bool) createPostBody {
	return createPostBody{
		Content:         draft.Message,
		AuthorName:      draft.Author,
		BackgroundColor: draft.BackgroundColor,
		TextColor:       draft.TextColor,
		ImageURL:        draft.ImageURL,
		IsAnonymous:     anonymous,
	}
}

func (s *PostService) decodePost(data json.RawMessage) (board.Post, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return board.Post{}, fmt.Errorf("decoding post: %w", err)
	}
	return board.NormalizePost(raw), nil
}

// Create submits a post as the authenticated user.
func (s *PostService) Create(ctx context.Context, boardID string, draft board.Draft) (board.Post, error) {
	path := "/boards/" + url.PathEscape(boardID) + "/posts"
	data, _, err := s.c.do(ctx, http.MethodPost, path, draftBody(draft, false), true)
	if err != nil {
		return board.Post{}, err
	}
	return s.decodePost(data)
}

// CreateAnonymous submits a post without an identity token. The backend
// accepts it when the board allows anonymous posting.
func (s *PostService) CreateAnonymous(ctx context.Context, boardID string, draft board.Draft) (board.Post, error) {
	path := "/anonymous/boards/" + url.PathEscape(boardID) + "/posts"
	data, _, err := s.c.do(ctx, http.MethodPost, path, draftBody(draft, true), false)
	if err != nil {
		return board.Post{}, err
	}
	return s.decodePost(data)
}

// UpdatePostRequest is a partial post update; only provided fields change.
// Image uses three-state semantics so "remove the image" and "leave it alone"
// are distinct.
type UpdatePostRequest struct {
	Message         *string
	Author          *string
	BackgroundColor *string
	TextColor       *string
	Image           board.OptionalField[string]
}

// MarshalJSON emits only the provided fields, including an explicit null for
// a cleared image.
func (r UpdatePostRequest) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if r.Message != nil {
		out["content"] = *r.Message
	}
	if r.Author != nil {
		out["authorName"] = *r.Author
	}
	if r.BackgroundColor != nil {
		out["backgroundColor"] = *r.BackgroundColor
	}
	if r.TextColor != nil {
		out["textColor"] = *r.TextColor
	}
	if r.Image.Set {
		if r.Image.Valid {
			out["imageUrl"] = r.Image.Value
		} else {
			out["imageUrl"] = nil
		}
	}
	return json.Marshal(out)
}

// Update applies a partial update to one post. Authorization (author or board
// owner) is enforced server-side; the UI gates the action first.
func (s *PostService) Update(ctx context.Context, postID string, req UpdatePostRequest) (board.Post, error) {
	data, _, err := s.c.do(ctx, http.MethodPut, "/posts/"+url.PathEscape(postID), req, true)
	if err != nil {
		return board.Post{}, err
	}
	return s.decodePost(data)
}

// Delete removes one post. Irreversible; the UI requires confirmation before
// calling this.
func (s *PostService) Delete(ctx context.Context, postID string) error {
	_, _, err := s.c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postID), nil, true)
	return err
}

// Reorder persists a full position assignment for the board. The server
// rejects the payload with a ValidationError when the id set does not match
// the board's posts or the positions are not a dense 1..N sequence; the
// ordering engine always sends dense 1-based positions for the whole board.
func (s *PostService) Reorder(ctx context.Context, boardID string, orders []board.PositionAssignment) error {
	body := map[string]any{"postOrders": orders}
	path := "/boards/" + url.PathEscape(boardID) + "/posts/reorder"
	_, _, err := s.c.do(ctx, http.MethodPut, path, body, true)
	return err
}

// likeCount tolerates both counter spellings the backend has used.
type likeCount struct {
	Snake *int `json:"likes_count"`
	Camel *int `json:"likesCount"`
}

func (l likeCount) value() int {
	if l.Snake != nil {
		return *l.Snake
	}
	if l.Camel != nil {
		return *l.Camel
	}
	return 0
}

// Like records a like and returns the new count.
func (s *PostService) Like(ctx context.Context, postID string) (int, error) {
	data, _, err := s.c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/like", nil, true)
	if err != nil {
		return 0, err
	}
	var lc likeCount
	if len(data) > 0 {
		if err := json.Unmarshal(data, &lc); err != nil {
			return 0, fmt.Errorf("decoding like count: %w", err)
		}
	}
	return lc.value(), nil
}

// Unlike removes a like and returns the new count.
func (s *PostService) Unlike(ctx context.Context, postID string) (int, error) {
	data, _, err := s.c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postID)+"/like", nil, true)
	if err != nil {
		return 0, err
	}
	var lc likeCount
	if len(data) > 0 {
		if err := json.Unmarshal(data, &lc); err != nil {
			return 0, fmt.Errorf("decoding like count: %w", err)
		}
	}
	return lc.value(), nil
}
