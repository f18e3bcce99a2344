// Package session provides cookie-identified, in-process browser sessions for
// the login/launch round trip. The cookie must survive a cross-site POST from
// the platform, so SameSite is disabled and Secure is set.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/vivalearn/lti-tool/internal/lti"
)

const CookieName = "tool_session"

// sessionTTL is how long an idle session is kept before lazy cleanup.
const sessionTTL = 12 * time.Hour

// Session is one browser session. It carries at most one live launch attempt
// and, after a fully successful validation, the identity claims.
type Session struct {
	mu       sync.Mutex
	attempt  *lti.LaunchAttempt
	identity *lti.IdentityClaims
	lastSeen time.Time
}

// BeginAttempt stores a new launch attempt, overwriting any prior unconsumed
// one. The previous identity, if any, stays until the new launch validates.
func (s *Session) BeginAttempt(a *lti.LaunchAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempt = a
}

// ConsumeAttempt atomically takes the current attempt, leaving none behind.
// A concurrent duplicate submission observes nil and fails closed.
func (s *Session) ConsumeAttempt() *lti.LaunchAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.attempt
	s.attempt = nil
	return a
}

// SetIdentity installs the verified claims. Called only after every
// validation gate has passed.
func (s *Session) SetIdentity(c *lti.IdentityClaims) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = c
}

// Identity returns the verified claims for this session, if established.
func (s *Session) Identity() (*lti.IdentityClaims, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil, false
	}
	return s.identity, true
}

// Store maps opaque cookie values to sessions. Per-session state means
// concurrent launches from different users never interfere.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Ensure returns the request's session, minting a new one (and setting the
// cookie) when absent or unknown.
func (st *Store) Ensure(w http.ResponseWriter, r *http.Request) *Session {
	if s, ok := st.Get(r); ok {
		return s
	}
	id := newSessionID()
	s := &Session{lastSeen: st.now()}

	st.mu.Lock()
	st.sessions[id] = s
	st.sweepLocked()
	st.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
	return s
}

// Get looks up the request's session without creating one.
func (st *Store) Get(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[c.Value]
	if ok {
		s.mu.Lock()
		s.lastSeen = st.now()
		s.mu.Unlock()
	}
	return s, ok
}

// sweepLocked drops idle sessions. Called opportunistically under st.mu; this
// core has no background scheduling.
func (st *Store) sweepLocked() {
	cutoff := st.now().Add(-sessionTTL)
	for id, s := range st.sessions {
		s.mu.Lock()
		stale := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if stale {
			delete(st.sessions, id)
		}
	}
}

func newSessionID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
