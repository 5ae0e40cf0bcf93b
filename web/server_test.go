// ABOUTME: Tests for the board web server: pages, compose, likes, and reorder gating.
// ABOUTME: Runs against a fake backend httptest server speaking the envelope protocol.
package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/kudohq/kudo/api"
	"github.com/kudohq/kudo/store"
)

// fakeBackend is a minimal board backend: one board, scriptable reorder outcome.
type fakeBackend struct {
	mu           sync.Mutex
	reorderCalls int
	reorderBody  string
	failReorder  bool
	failCreate   bool
	editCalls    int
	editBody     string
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	writeData := func(w http.ResponseWriter, data any) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}

	mux.HandleFunc("GET /boards/slug/farewell-sam", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]any{
			"board": map[string]any{
				"id": 10, "slug": "farewell-sam", "title": "Farewell Sam",
				"creator_id": 7,
				"created_at": "2026-03-01T10:00:00Z", "updated_at": "2026-03-01T10:00:00Z",
			},
			"posts": []map[string]any{
				{"id": 1, "board_id": 10, "author_name": "Ana", "content": "We'll miss you",
					"position_order": 1, "likes_count": 2, "created_at": "2026-03-01T11:00:00Z"},
				{"id": 2, "board_id": 10, "author_name": "Bo", "content": "Good luck!",
					"position_order": 2, "likes_count": 0, "created_at": "2026-03-01T12:00:00Z"},
			},
		})
	})

	mux.HandleFunc("PUT /boards/10/posts/reorder", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.reorderCalls++
		f.reorderBody = string(body)
		fail := f.failReorder
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   map[string]any{"code": "BOARD_LOCKED", "message": "board is locked"},
			})
			return
		}
		writeData(w, map[string]any{})
	})

	mux.HandleFunc("POST /anonymous/boards/10/posts", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		fail := f.failCreate
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   map[string]any{"code": "INTERNAL", "message": "database is down"},
			})
			return
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		writeData(w, map[string]any{
			"id": 3, "board_id": 10,
			"author_name": in["authorName"], "content": in["content"],
			"created_at": "2026-03-01T13:00:00Z",
		})
	})

	mux.HandleFunc("PUT /posts/1", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.editCalls++
		f.editBody = string(body)
		f.mu.Unlock()
		var in map[string]any
		_ = json.Unmarshal(body, &in)
		author := in["authorName"]
		if author == nil {
			author = "Ana"
		}
		writeData(w, map[string]any{
			"id": 1, "board_id": 10,
			"author_name": author, "content": in["content"],
			"position_order": 1, "likes_count": 2,
			"created_at": "2026-03-01T11:00:00Z",
		})
	})

	mux.HandleFunc("POST /posts/1/like", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]any{"likes_count": 3})
	})

	mux.HandleFunc("DELETE /posts/2", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]any{})
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]any{"code": "NOT_FOUND", "message": "no such route"},
		})
	})

	return mux
}

// newTestServer stands up the web server against the fake backend.
// userID "" means anonymous browsing; "7" is the board owner.
func newTestServer(t *testing.T, backend *fakeBackend, userID string) *httptest.Server {
	t.Helper()
	be := httptest.NewServer(backend.handler())
	t.Cleanup(be.Close)

	client := api.New(be.URL)
	cfg := Config{
		Boards: api.NewBoardService(client),
		Posts:  api.NewPostService(client),
	}
	if userID != "" {
		cfg.User = api.User{ID: userID, Name: "Owner"}
		cfg.Authed = true
	}

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func postForm(t *testing.T, ts *httptest.Server, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := http.PostForm(ts.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestBoardPage(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "")

	status, body := get(t, ts, "/b/farewell-sam")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !strings.Contains(body, "Farewell Sam") {
		t.Error("missing board title")
	}
	// Position order: Ana (1) before Bo (2).
	ana := strings.Index(body, "Ana")
	bo := strings.Index(body, "Bo")
	if ana < 0 || bo < 0 || ana > bo {
		t.Errorf("posts out of order: ana=%d bo=%d", ana, bo)
	}
	// Anonymous visitors cannot drag.
	if !strings.Contains(body, `data-owner="0"`) {
		t.Error("anonymous page should not be owner-enabled")
	}
}

func TestBoardPageOwner(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "7")
	_, body := get(t, ts, "/b/farewell-sam")
	if !strings.Contains(body, `data-owner="1"`) {
		t.Error("owner page should enable dragging")
	}
	if !strings.Contains(body, `draggable="true"`) {
		t.Error("owner cards should be draggable")
	}
}

func TestBoardNotFound(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "")
	status, body := get(t, ts, "/b/nope")
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	// Full navigation gets a real page with a way back home.
	if !strings.Contains(body, `href="/"`) {
		t.Error("not-found page has no link back")
	}
	if !strings.Contains(body, "<!doctype html>") {
		t.Error("not-found response is not a standalone page")
	}
}

func TestPostsPartialNotFoundStaysBare(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "")
	status, body := get(t, ts, "/b/nope/posts")
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	// Swap consumers get the bare paragraph, no page chrome.
	if strings.Contains(body, "<html") {
		t.Errorf("partial error carries page chrome: %s", body)
	}
	if !strings.Contains(body, "error-msg") {
		t.Errorf("partial error missing message: %s", body)
	}
}

func TestReorderRequiresOwner(t *testing.T) {
	backend := &fakeBackend{}
	ts := newTestServer(t, backend, "")

	get(t, ts, "/b/farewell-sam") // seed the engine

	status, _ := postForm(t, ts, "/b/farewell-sam/reorder", url.Values{"src": {"1"}, "dst": {"0"}})
	if status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", status)
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.reorderCalls != 0 {
		t.Errorf("reorder calls = %d, want 0", backend.reorderCalls)
	}
}

func TestReorderAsOwner(t *testing.T) {
	backend := &fakeBackend{}
	ts := newTestServer(t, backend, "7")

	get(t, ts, "/b/farewell-sam")

	status, body := postForm(t, ts, "/b/farewell-sam/reorder", url.Values{"src": {"1"}, "dst": {"0"}})
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", status, body)
	}

	// Partial shows the new order: Bo before Ana.
	bo := strings.Index(body, "Bo")
	ana := strings.Index(body, "Ana")
	if bo < 0 || ana < 0 || bo > ana {
		t.Errorf("reordered partial wrong: bo=%d ana=%d", bo, ana)
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.reorderCalls != 1 {
		t.Fatalf("reorder calls = %d, want 1", backend.reorderCalls)
	}
	if !strings.Contains(backend.reorderBody, `"postOrders"`) {
		t.Errorf("reorder body missing postOrders: %s", backend.reorderBody)
	}
}

func TestReorderFailureRollsBack(t *testing.T) {
	backend := &fakeBackend{failReorder: true}
	ts := newTestServer(t, backend, "7")

	get(t, ts, "/b/farewell-sam")

	status, body := postForm(t, ts, "/b/farewell-sam/reorder", url.Values{"src": {"1"}, "dst": {"0"}})
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200 with rolled-back partial", status)
	}

	// Rolled back: Ana stays first.
	ana := strings.Index(body, "Ana")
	bo := strings.Index(body, "Bo")
	if ana < 0 || bo < 0 || ana > bo {
		t.Errorf("rollback partial wrong: ana=%d bo=%d", ana, bo)
	}
	if !strings.Contains(body, "notice-error") {
		t.Error("expected a failure notice in the partial")
	}
}

func TestReorderBadIndices(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "7")
	get(t, ts, "/b/farewell-sam")

	status, _ := postForm(t, ts, "/b/farewell-sam/reorder", url.Values{"src": {"9"}, "dst": {"0"}})
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for out-of-range index", status)
	}

	status, _ = postForm(t, ts, "/b/farewell-sam/reorder", url.Values{"src": {"x"}, "dst": {"0"}})
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for non-integer index", status)
	}
}

func TestCreatePost(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "")
	get(t, ts, "/b/farewell-sam")

	status, body := postForm(t, ts, "/b/farewell-sam/posts", url.Values{
		"author":  {"Cam"},
		"message": {"Cheers!"},
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, body)
	}
	if !strings.Contains(body, "Cam") || !strings.Contains(body, "Cheers!") {
		t.Error("new post missing from refreshed partial")
	}
}

func TestCreatePostFailureSavesDraft(t *testing.T) {
	backend := &fakeBackend{failCreate: true}
	be := httptest.NewServer(backend.handler())
	t.Cleanup(be.Close)

	st, err := store.Open(filepath.Join(t.TempDir(), "kudo.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	client := api.New(be.URL)
	srv, err := NewServer(Config{
		Boards: api.NewBoardService(client),
		Posts:  api.NewPostService(client),
		Store:  st,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	get(t, ts, "/b/farewell-sam")

	status, _ := postForm(t, ts, "/b/farewell-sam/posts", url.Values{
		"author":  {"Cam"},
		"message": {"Cheers!"},
	})
	if status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", status)
	}

	draft, ok, err := st.Draft("10")
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if !ok {
		t.Fatal("failed submission did not save a draft")
	}
	if draft.Message != "Cheers!" || draft.Author != "Cam" {
		t.Errorf("draft = %+v", draft)
	}
}

func TestCreatePostEmptyMessage(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "")
	get(t, ts, "/b/farewell-sam")

	status, _ := postForm(t, ts, "/b/farewell-sam/posts", url.Values{
		"author":  {"Cam"},
		"message": {"   "},
	})
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for empty message", status)
	}
}

func TestEditPost(t *testing.T) {
	backend := &fakeBackend{}
	ts := newTestServer(t, backend, "7")
	get(t, ts, "/b/farewell-sam")

	status, body := postForm(t, ts, "/b/farewell-sam/posts/1/edit", url.Values{
		"author":  {"Ana"},
		"message": {"We will really miss you"},
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, body)
	}
	if !strings.Contains(body, "We will really miss you") {
		t.Error("edited message missing from refreshed partial")
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.editCalls != 1 {
		t.Fatalf("edit calls = %d, want 1", backend.editCalls)
	}
	if !strings.Contains(backend.editBody, `"content":"We will really miss you"`) {
		t.Errorf("edit body = %s", backend.editBody)
	}
	// Unchanged author is not part of the partial update.
	if strings.Contains(backend.editBody, "authorName") {
		t.Errorf("edit body carries unchanged author: %s", backend.editBody)
	}
}

func TestEditRequiresPermission(t *testing.T) {
	backend := &fakeBackend{}
	ts := newTestServer(t, backend, "")
	get(t, ts, "/b/farewell-sam")

	status, _ := postForm(t, ts, "/b/farewell-sam/posts/1/edit", url.Values{
		"message": {"hijacked"},
	})
	if status != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for anonymous edit", status)
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.editCalls != 0 {
		t.Errorf("edit calls = %d, want 0", backend.editCalls)
	}
}

func TestEditEmptyMessage(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "7")
	get(t, ts, "/b/farewell-sam")

	status, _ := postForm(t, ts, "/b/farewell-sam/posts/1/edit", url.Values{
		"message": {"   "},
	})
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for empty message", status)
	}
}

func TestLike(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "")
	get(t, ts, "/b/farewell-sam")

	status, body := postForm(t, ts, "/b/farewell-sam/posts/1/like", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "3") {
		t.Error("like count not refreshed in partial")
	}
}

func TestDeleteRequiresPermission(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "")
	get(t, ts, "/b/farewell-sam")

	status, _ := postForm(t, ts, "/b/farewell-sam/posts/2/delete", nil)
	if status != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for anonymous delete", status)
	}
}

func TestDeleteAsOwner(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "7")
	get(t, ts, "/b/farewell-sam")

	status, body := postForm(t, ts, "/b/farewell-sam/posts/2/delete", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if strings.Contains(body, "Good luck!") {
		t.Error("deleted post still present in partial")
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "")
	status, body := get(t, ts, "/health")
	if status != http.StatusOK || !strings.Contains(body, "ok") {
		t.Errorf("health = %d %q", status, body)
	}
}

func TestHomePage(t *testing.T) {
	ts := newTestServer(t, &fakeBackend{}, "")
	status, body := get(t, ts, "/")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "Recent boards") {
		t.Errorf("unexpected home page: %s", body)
	}
}

func TestTemplatesParse(t *testing.T) {
	if _, err := NewTemplateRenderer(ContentFS); err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}
}
