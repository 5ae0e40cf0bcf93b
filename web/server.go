// ABOUTME: HTTP server for browsing a board, composing posts, and drag-reordering.
// ABOUTME: Serves full pages plus HTMX-style partials that swap the posts grid in place.
package web

import (
	"context"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kudohq/kudo/api"
	"github.com/kudohq/kudo/board"
	"github.com/kudohq/kudo/store"
)

// maxNotices bounds the per-server notice log shown on board pages.
const maxNotices = 5

// Config holds the configuration for the board web server.
type Config struct {
	Addr   string // listen address (default: "127.0.0.1:8467")
	Boards *api.BoardService
	Posts  *api.PostService

	// User is the signed-in identity, zero-valued when browsing anonymously.
	User   api.User
	Authed bool

	// Store is the optional local state database for recents and drafts.
	// A nil Store disables both without affecting board behavior.
	Store *store.Store
}

// Server serves one user's view of boards: pages, compose, likes, reorder.
type Server struct {
	cfg      Config
	renderer *TemplateRenderer
	router   chi.Router
	prefs    *visitorPrefs

	// mu guards engines and notices. Engines themselves serialize their own
	// reorders; this lock only covers the maps around them.
	mu      sync.Mutex
	engines map[string]*board.Engine
	notices []board.Notice
}

// NewServer creates a Server with templates parsed from the embedded FS.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8467"
	}
	if cfg.Boards == nil || cfg.Posts == nil {
		return nil, fmt.Errorf("board and post services must not be nil")
	}

	renderer, err := NewTemplateRenderer(ContentFS)
	if err != nil {
		return nil, fmt.Errorf("initializing templates: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		renderer: renderer,
		prefs:    newVisitorPrefs(),
		engines:  make(map[string]*board.Engine),
	}
	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the configured address with
// timeouts to prevent resource exhaustion from slow clients.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
	return srv.ListenAndServe()
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(webRequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Get("/health", s.handleHealth)

	staticFS, err := fs.Sub(ContentFS, "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Route("/b/{slug}", func(r chi.Router) {
		r.Get("/", s.handleBoard)
		r.Get("/posts", s.handlePostsPartial)
		r.Post("/posts", s.handleCreatePost)
		r.Post("/reorder", s.handleReorder)
		r.Post("/posts/{postID}/like", s.handleLike)
		r.Post("/posts/{postID}/unlike", s.handleUnlike)
		r.Post("/posts/{postID}/edit", s.handleEditPost)
		r.Post("/posts/{postID}/delete", s.handleDeletePost)
	})

	return r
}

// PostView is the view-model for a single post card in a template.
type PostView struct {
	ID              string
	Author          string
	Message         string // raw, for the edit form
	MessageHTML     template.HTML
	ImageURL        string
	BackgroundColor string
	TextColor       string
	Likes           int
	CreatedAt       time.Time
	CanModify       bool
	Index           int
}

// NoticeView is the view-model for one entry in the notices strip.
type NoticeView struct {
	Severity string
	Message  string
}

// BoardView is the view-model for the board page and posts partial.
type BoardView struct {
	Board         board.Board
	Posts         []PostView
	Owner         bool
	Authed        bool
	Pending       bool
	AuthorPrefill string
	Draft         board.Draft
	Notices       []NoticeView
}

// HomeView is the view-model for the landing page.
type HomeView struct {
	Authed   bool
	UserName string
	Recents  []store.Recent
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	view := HomeView{Authed: s.cfg.Authed, UserName: s.cfg.User.Name}
	if s.cfg.Store != nil {
		recents, err := s.cfg.Store.Recents(10)
		if err != nil {
			log.Printf("component=web action=recents_failed error=%v", err)
		} else {
			view.Recents = recents
		}
	}
	s.renderer.Render(w, "home.html", view)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	eng, err := s.engine(r.Context(), slug, true)
	if err != nil {
		s.writeFetchError(w, slug, err, true)
		return
	}

	if s.cfg.Store != nil {
		if err := s.cfg.Store.TouchRecent(slug, eng.Board().Title); err != nil {
			log.Printf("component=web action=touch_recent_failed slug=%s error=%v", slug, err)
		}
	}

	visitor := visitorID(w, r)
	s.renderer.Render(w, "board.html", s.boardView(eng, visitor))
}

func (s *Server) handlePostsPartial(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	eng, err := s.engine(r.Context(), slug, false)
	if err != nil {
		s.writeFetchError(w, slug, err, false)
		return
	}
	s.renderer.RenderPartial(w, "posts.html", s.boardView(eng, visitorID(w, r)))
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	eng, err := s.engine(r.Context(), slug, false)
	if err != nil {
		s.writeFetchError(w, slug, err, false)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeHTMLError(w, http.StatusBadRequest, "Invalid form data.")
		return
	}

	draft := board.Draft{
		Author:          r.FormValue("author"),
		Message:         r.FormValue("message"),
		BackgroundColor: r.FormValue("background_color"),
		TextColor:       r.FormValue("text_color"),
		ImageURL:        r.FormValue("image_url"),
	}

	b := eng.Board()
	composer := board.NewComposer(b.ID, s.cfg.Posts, func() bool { return s.cfg.Authed })
	post, err := composer.Submit(r.Context(), draft)
	if err != nil {
		if errors.Is(err, board.ErrEmptyMessage) {
			writeHTMLError(w, http.StatusBadRequest, "Write a message before posting.")
			return
		}
		// Keep the typed message as a draft so a backend failure loses nothing.
		if s.cfg.Store != nil {
			if derr := s.cfg.Store.SaveDraft(b.ID, draft); derr != nil {
				log.Printf("component=web action=save_draft_failed board=%s error=%v", b.ID, derr)
			}
		}
		s.pushNotice(board.FailureNotice("create", b.ID, "", err))
		writeHTMLError(w, http.StatusBadGateway, "Posting failed; your message was kept as a draft.")
		return
	}

	if err := eng.UpsertPost(post); err != nil {
		log.Printf("component=web action=upsert_failed board=%s post=%s error=%v", b.ID, post.ID, err)
	}
	visitor := visitorID(w, r)
	s.prefs.SetAuthorName(visitor, post.Author)
	if s.cfg.Store != nil {
		_ = s.cfg.Store.DeleteDraft(b.ID)
	}
	s.pushNotice(board.SuccessNotice("create", b.ID, post.ID, "Post added."))

	s.renderer.RenderPartial(w, "posts.html", s.boardView(eng, visitor))
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	eng, err := s.engine(r.Context(), slug, false)
	if err != nil {
		s.writeFetchError(w, slug, err, false)
		return
	}

	b := eng.Board()
	if !b.IsOwner(s.cfg.User.ID) {
		writeHTMLError(w, http.StatusForbidden, "Only the board owner can rearrange posts.")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeHTMLError(w, http.StatusBadRequest, "Invalid form data.")
		return
	}
	src, err1 := strconv.Atoi(r.FormValue("src"))
	dst, err2 := strconv.Atoi(r.FormValue("dst"))
	if err1 != nil || err2 != nil {
		writeHTMLError(w, http.StatusBadRequest, "Reorder positions must be integers.")
		return
	}

	visitor := visitorID(w, r)
	switch err := eng.ApplyReorder(r.Context(), src, dst); {
	case err == nil:
		s.pushNotice(board.SuccessNotice("reorder", b.ID, "", "Order saved."))
	case errors.Is(err, board.ErrReorderPending):
		writeHTMLError(w, http.StatusConflict, "Another reorder is still saving; try again in a moment.")
		return
	default:
		var idxErr *board.IndexError
		if errors.As(err, &idxErr) {
			writeHTMLError(w, http.StatusBadRequest, idxErr.Error())
			return
		}
		// Server rejected the move; the engine already rolled back, so the
		// partial below shows the pre-drag order.
		s.pushNotice(board.FailureNotice("reorder", b.ID, "", err))
	}

	s.renderer.RenderPartial(w, "posts.html", s.boardView(eng, visitor))
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	s.applyLike(w, r, s.cfg.Posts.Like)
}

func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	s.applyLike(w, r, s.cfg.Posts.Unlike)
}

func (s *Server) applyLike(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (int, error)) {
	slug := chi.URLParam(r, "slug")
	postID := chi.URLParam(r, "postID")
	eng, err := s.engine(r.Context(), slug, false)
	if err != nil {
		s.writeFetchError(w, slug, err, false)
		return
	}
	if _, ok := eng.Get(postID); !ok {
		writeHTMLError(w, http.StatusNotFound, "Post not found.")
		return
	}

	likes, err := op(r.Context(), postID)
	if err != nil {
		s.pushNotice(board.FailureNotice("like", eng.Board().ID, postID, err))
	} else {
		eng.SetLikes(postID, likes)
	}
	s.renderer.RenderPartial(w, "posts.html", s.boardView(eng, visitorID(w, r)))
}

func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	postID := chi.URLParam(r, "postID")
	eng, err := s.engine(r.Context(), slug, false)
	if err != nil {
		s.writeFetchError(w, slug, err, false)
		return
	}

	post, ok := eng.Get(postID)
	if !ok {
		writeHTMLError(w, http.StatusNotFound, "Post not found.")
		return
	}
	b := eng.Board()
	if !b.CanModify(s.cfg.User.ID, post) {
		writeHTMLError(w, http.StatusForbidden, "You can only edit your own posts.")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeHTMLError(w, http.StatusBadRequest, "Invalid form data.")
		return
	}
	message := r.FormValue("message")
	if strings.TrimSpace(message) == "" {
		writeHTMLError(w, http.StatusBadRequest, "A post needs a message.")
		return
	}

	req := api.UpdatePostRequest{Message: &message}
	if author := r.FormValue("author"); author != "" && author != post.Author {
		req.Author = &author
	}
	// Empty image field clears an existing image; when there was none it is
	// simply left out of the update.
	switch imageURL := r.FormValue("image_url"); {
	case imageURL != "":
		req.Image = board.Present(imageURL)
	case post.ImageURL != nil:
		req.Image = board.Null[string]()
	}

	updated, err := s.cfg.Posts.Update(r.Context(), postID, req)
	if err != nil {
		s.pushNotice(board.FailureNotice("edit", b.ID, postID, err))
	} else {
		if err := eng.UpsertPost(updated); err != nil {
			log.Printf("component=web action=upsert_failed board=%s post=%s error=%v", b.ID, updated.ID, err)
		}
		s.pushNotice(board.SuccessNotice("edit", b.ID, postID, "Post updated."))
	}
	s.renderer.RenderPartial(w, "posts.html", s.boardView(eng, visitorID(w, r)))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	postID := chi.URLParam(r, "postID")
	eng, err := s.engine(r.Context(), slug, false)
	if err != nil {
		s.writeFetchError(w, slug, err, false)
		return
	}

	post, ok := eng.Get(postID)
	if !ok {
		writeHTMLError(w, http.StatusNotFound, "Post not found.")
		return
	}
	b := eng.Board()
	if !b.CanModify(s.cfg.User.ID, post) {
		writeHTMLError(w, http.StatusForbidden, "You can only delete your own posts.")
		return
	}

	if err := s.cfg.Posts.Delete(r.Context(), postID); err != nil {
		s.pushNotice(board.FailureNotice("delete", b.ID, postID, err))
	} else {
		eng.RemovePost(postID)
		s.pushNotice(board.SuccessNotice("delete", b.ID, postID, "Post removed."))
	}
	s.renderer.RenderPartial(w, "posts.html", s.boardView(eng, visitorID(w, r)))
}

// engine returns the ordering engine for a slug, fetching the board from the
// backend when missing or when refresh is set. A page load always refreshes;
// partial-updating actions reuse the live engine so in-flight reorders keep
// their serialization.
func (s *Server) engine(ctx context.Context, slug string, refresh bool) (*board.Engine, error) {
	s.mu.Lock()
	eng, ok := s.engines[slug]
	s.mu.Unlock()
	if ok && !refresh {
		return eng, nil
	}
	if ok && eng.Pending() {
		// Never replace an engine mid-save; the running reorder owns it.
		return eng, nil
	}

	b, posts, err := s.cfg.Boards.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	eng = board.NewEngine(b, posts, s.cfg.Posts)

	s.mu.Lock()
	s.engines[slug] = eng
	s.mu.Unlock()
	return eng, nil
}

func (s *Server) boardView(eng *board.Engine, visitor string) BoardView {
	b := eng.Board()
	posts := eng.Posts()

	views := make([]PostView, 0, len(posts))
	for i, p := range posts {
		pv := PostView{
			ID:              p.ID,
			Author:          p.Author,
			Message:         p.Message,
			MessageHTML:     markdownToHTML(p.Message),
			BackgroundColor: p.BackgroundColor,
			TextColor:       p.TextColor,
			Likes:           p.Likes,
			CreatedAt:       p.CreatedAt,
			CanModify:       b.CanModify(s.cfg.User.ID, p),
			Index:           i,
		}
		if p.ImageURL != nil {
			pv.ImageURL = *p.ImageURL
		}
		views = append(views, pv)
	}

	view := BoardView{
		Board:         b,
		Posts:         views,
		Owner:         b.IsOwner(s.cfg.User.ID),
		Authed:        s.cfg.Authed,
		Pending:       eng.Pending(),
		AuthorPrefill: s.prefs.AuthorName(visitor),
		Notices:       s.noticeViews(),
	}
	if s.cfg.Store != nil {
		if d, ok, err := s.cfg.Store.Draft(b.ID); err == nil && ok {
			view.Draft = d
		}
	}
	return view
}

func (s *Server) pushNotice(n board.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
}

func (s *Server) noticeViews() []NoticeView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NoticeView, 0, len(s.notices))
	// Newest first.
	for i := len(s.notices) - 1; i >= 0; i-- {
		n := s.notices[i]
		out = append(out, NoticeView{Severity: n.Severity.String(), Message: n.Message})
	}
	return out
}

// writeFetchError maps backend fetch failures onto HTML errors. page selects
// a full error page with a way back home over the bare partial paragraph.
func (s *Server) writeFetchError(w http.ResponseWriter, slug string, err error, page bool) {
	write := writeHTMLError
	if page {
		write = writeHTMLErrorPage
	}
	var notFound *api.NotFoundError
	if errors.As(err, &notFound) {
		write(w, http.StatusNotFound, fmt.Sprintf("No board named %q.", slug))
		return
	}
	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		write(w, http.StatusBadGateway, "The board service is unreachable.")
		return
	}
	log.Printf("component=web action=fetch_failed slug=%s error=%v", slug, err)
	write(w, http.StatusInternalServerError, "Could not load the board.")
}

// writeHTMLError writes an error message as an HTML paragraph for partial-swap consumption.
func writeHTMLError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `<p class="error-msg">%s</p>`, html.EscapeString(msg))
}

// writeHTMLErrorPage writes an error as a minimal standalone page with a link
// back to the board list, for full navigations rather than fetch swaps.
func writeHTMLErrorPage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>kudo</title><link rel="stylesheet" href="/static/board.css"></head>
<body>
<main class="error-page">
<p class="error-msg">%s</p>
<p><a href="/">Back to your boards</a></p>
</main>
</body>
</html>
`, html.EscapeString(msg))
}
