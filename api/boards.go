// ABOUTME: BoardService: fetching and persisting board metadata against the backend.
// ABOUTME: Every wire record is normalized at this boundary; raw fields never escape.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/kudohq/kudo/board"
)

// BoardService exposes the backend's board operations.
type BoardService struct {
	c *Client
}

// NewBoardService wraps the client with board operations.
func NewBoardService(c *Client) *BoardService {
	return &BoardService{c: c}
}

// GetBySlug fetches a board and its posts by the URL slug. The slug is a
// read-only lookup key; every mutation below takes the board ID. Fails with
// NotFoundError for unknown slugs.
func (s *BoardService) GetBySlug(ctx context.Context, slug string) (board.Board, []board.Post, error) {
	data, _, err := s.c.do(ctx, http.MethodGet, "/boards/slug/"+url.PathEscape(slug), nil, true)
	if err != nil {
		return board.Board{}, nil, err
	}

	var payload struct {
		Board map[string]any   `json:"board"`
		Posts []map[string]any `json:"posts"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return board.Board{}, nil, fmt.Errorf("decoding board payload: %w", err)
	}
	if payload.Board == nil {
		return board.Board{}, nil, errorFromStatus(http.StatusNotFound, "NOT_FOUND", "board not found", data)
	}

	b := board.NormalizeBoard(payload.Board)
	posts := make([]board.Post, 0, len(payload.Posts))
	defaulted := 0
	for _, raw := range payload.Posts {
		if board.TimestampsDefaulted(raw) {
			defaulted++
		}
		posts = append(posts, board.NormalizePost(raw))
	}
	if defaulted > 0 {
		// Client clock stands in for missing server timestamps. Best-effort
		// only; affected posts sort by an inaccurate creation time.
		log.Printf("component=api.boards action=timestamps_defaulted board=%s posts=%d", b.ID, defaulted)
	}

	return b, posts, nil
}

// boardSummaries decodes and normalizes a paged board list.
func boardSummaries(data json.RawMessage) ([]board.Board, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding board list: %w", err)
	}
	boards := make([]board.Board, 0, len(raw))
	for _, r := range raw {
		boards = append(boards, board.NormalizeBoard(r))
	}
	return boards, nil
}

// List returns the current user's boards, paged.
func (s *BoardService) List(ctx context.Context, page, perPage int) ([]board.Board, *Pagination, error) {
	path := fmt.Sprintf("/boards?page=%d&per_page=%d", page, perPage)
	data, pg, err := s.c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, nil, err
	}
	boards, err := boardSummaries(data)
	return boards, pg, err
}

// ListPublic returns publicly visible boards, paged. No identity required.
func (s *BoardService) ListPublic(ctx context.Context, page, perPage int) ([]board.Board, *Pagination, error) {
	path := fmt.Sprintf("/boards/public?page=%d&per_page=%d", page, perPage)
	data, pg, err := s.c.do(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return nil, nil, err
	}
	boards, err := boardSummaries(data)
	return boards, pg, err
}

// CreateBoardRequest holds the fields for a new board.
type CreateBoardRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Private        bool   `json:"isPrivate"`
	AllowAnonymous bool   `json:"allowAnonymous"`
}

// Create creates a new board owned by the current user.
func (s *BoardService) Create(ctx context.Context, req CreateBoardRequest) (board.Board, error) {
	data, _, err := s.c.do(ctx, http.MethodPost, "/boards", req, true)
	if err != nil {
		return board.Board{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return board.Board{}, fmt.Errorf("decoding created board: %w", err)
	}
	return board.NormalizeBoard(raw), nil
}

// UpdateBoardRequest is a partial board update; only provided fields change.
type UpdateBoardRequest struct {
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	Private        *bool   `json:"isPrivate,omitempty"`
	AllowAnonymous *bool   `json:"allowAnonymous,omitempty"`
}

// Update applies a partial update to the board with the given ID.
func (s *BoardService) Update(ctx context.Context, boardID string, req UpdateBoardRequest) (board.Board, error) {
	data, _, err := s.c.do(ctx, http.MethodPut, "/boards/"+url.PathEscape(boardID), req, true)
	if err != nil {
		return board.Board{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return board.Board{}, fmt.Errorf("decoding updated board: %w", err)
	}
	return board.NormalizeBoard(raw), nil
}

// Delete removes a board and, on the backend, all its posts. Irreversible.
func (s *BoardService) Delete(ctx context.Context, boardID string) error {
	_, _, err := s.c.do(ctx, http.MethodDelete, "/boards/"+url.PathEscape(boardID), nil, true)
	return err
}
