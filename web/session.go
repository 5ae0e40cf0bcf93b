// ABOUTME: Visitor identification via a long-lived cookie and per-visitor compose prefs.
// ABOUTME: Visitors are browsers, not accounts; the cookie only keys local conveniences.
package web

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
)

const visitorCookie = "kudo_visitor"

// visitorID returns the stable id for this browser, setting the cookie on
// first contact.
func visitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// visitorPrefs remembers the last author name each visitor submitted so the
// compose form can prefill it. In-memory only; losing it just clears prefill.
type visitorPrefs struct {
	mu    sync.Mutex
	names map[string]string
}

func newVisitorPrefs() *visitorPrefs {
	return &visitorPrefs{names: make(map[string]string)}
}

func (p *visitorPrefs) AuthorName(visitor string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.names[visitor]
}

func (p *visitorPrefs) SetAuthorName(visitor, name string) {
	if visitor == "" || name == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names[visitor] = name
}
