package web

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"

	"etsetup/internal/download"
	"etsetup/internal/storage"
)

const sessionCookie = "etsetup_session"

// Session holds everything the wizard knows about one browser, passed
// explicitly instead of living in globals.
type Session struct {
	mu sync.Mutex

	ID   string
	Lang string

	// Drive is the storage choice made on the drive page.
	Drive storage.Destination
	// RadioID is the radio selected for this run, mirroring the
	// active-radio pointer on disk.
	RadioID string

	// Selections for the two pick-and-download steps.
	Regions  []download.Item
	Archives []download.Item

	// Batch is the download currently owned by this session, nil between
	// download steps.
	Batch     *download.Batch
	BatchKind string
}

// Update runs fn with the session locked.
func (s *Session) Update(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// BeginBatch installs a fresh batch for kind, refusing while the current one
// is still in flight. The check and the swap share one critical section so
// two racing start requests cannot both install a batch.
func (s *Session) BeginBatch(kind string, items []download.Item) (*download.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Batch != nil {
		// A batch with unresolved items counts as in flight even before its
		// runner goroutine has been scheduled.
		if st := s.Batch.Snapshot(); st.Running || st.Completed < st.Total {
			return nil, download.ErrAlreadyRunning
		}
	}
	b := download.New(items)
	s.Batch = b
	s.BatchKind = kind
	return b, nil
}

// CurrentBatch returns the session's batch and its kind.
func (s *Session) CurrentBatch() (*download.Batch, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Batch, s.BatchKind
}

// Destination returns the session's storage choice.
func (s *Session) Destination() storage.Destination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Drive
}

// Language returns the session's UI language.
func (s *Session) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Lang
}

// generateID creates a random hex ID of the specified byte length.
func generateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: map[string]*Session{}}
}

func (st *sessionStore) get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[id]
}

func (st *sessionStore) create(lang string) (*Session, error) {
	id, err := generateID(16)
	if err != nil {
		return nil, err
	}
	s := &Session{ID: id, Lang: lang}
	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()
	return s, nil
}

// session returns the request's session, creating one and setting the cookie
// when the browser has none yet.
func (srv *Server) session(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if s := srv.sessions.get(c.Value); s != nil {
			return s, nil
		}
	}
	s, err := srv.sessions.create(srv.defaultLang)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}
