package op

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieSessionID carries the id of the active session of a browser.
	CookieSessionID = "session_id"

	// CookieCurrentSessions carries the ids of all sessions a browser
	// has established, across account switches.
	CookieCurrentSessions = "current_sessions"

	// CookieBrowserID is a stable random id per user agent, sessions
	// created from the same browser share it.
	CookieBrowserID = "browser_id"
)

// BrowserState is the session tracking state read from the cookies
// of the user agent.
type BrowserState struct {
	BrowserID       string
	SessionID       string
	CurrentSessions []string
}

// BrowserStateFromRequest reads the browser state. Missing or
// unreadable cookies yield an empty state, never an error: a fresh
// browser is the normal case.
func BrowserStateFromRequest(a Authorizer, r *http.Request) *BrowserState {
	state := new(BrowserState)
	state.BrowserID, _ = a.CookieHandler().CheckCookie(r, CookieBrowserID)
	state.SessionID, _ = a.CookieHandler().CheckCookie(r, CookieSessionID)
	state.CurrentSessions, _ = a.CookieHandler().CheckCookieList(r, CookieCurrentSessions)
	return state
}

// WriteBrowserState persists the state back to the user agent.
func WriteBrowserState(a Authorizer, w http.ResponseWriter, state *BrowserState) error {
	if err := a.CookieHandler().SetCookie(w, CookieBrowserID, state.BrowserID); err != nil {
		return err
	}
	if err := a.CookieHandler().SetCookie(w, CookieSessionID, state.SessionID); err != nil {
		return err
	}
	return a.CookieHandler().SetCookieList(w, CookieCurrentSessions, state.CurrentSessions)
}

// AddSession sets the session active and records it in the current
// sessions list, deduplicated.
func (b *BrowserState) AddSession(sessionID string) {
	b.SessionID = sessionID
	for _, id := range b.CurrentSessions {
		if id == sessionID {
			return
		}
	}
	b.CurrentSessions = append(b.CurrentSessions, sessionID)
}

// RemoveSession drops a terminated session from the state.
func (b *BrowserState) RemoveSession(sessionID string) {
	if b.SessionID == sessionID {
		b.SessionID = ""
	}
	remaining := b.CurrentSessions[:0]
	for _, id := range b.CurrentSessions {
		if id != sessionID {
			remaining = append(remaining, id)
		}
	}
	b.CurrentSessions = remaining
}

// NewSession creates and stores an authenticated session for the
// subject. The browser state is updated but not yet written.
func NewSession(ctx context.Context, a Authorizer, state *BrowserState, subject, username, acr string, amr []string, attributes map[string]string) (*Session, error) {
	if state.BrowserID == "" {
		state.BrowserID = uuid.NewString()
	}
	now := time.Now()
	session := &Session{
		ID:         uuid.NewString(),
		Subject:    subject,
		Username:   username,
		BrowserID:  state.BrowserID,
		ACR:        acr,
		AMR:        amr,
		AuthTime:   now,
		Attributes: attributes,
		CreatedAt:  now,
		LastUsed:   now,
		ExpiresAt:  now.Add(a.Config().SessionLifetime),
	}
	if err := a.Storage().CreateSession(ctx, session); err != nil {
		return nil, err
	}
	state.AddSession(session.ID)
	return session, nil
}

// ActiveSession loads and validates the session the browser points to.
// Expired or unknown sessions return nil without error.
func ActiveSession(ctx context.Context, a Authorizer, state *BrowserState) (*Session, error) {
	if state.SessionID == "" {
		return nil, nil
	}
	session, err := a.Storage().SessionByID(ctx, state.SessionID)
	if err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	now := time.Now()
	if now.After(session.ExpiresAt) || now.After(session.LastUsed.Add(a.Config().SessionIdleTimeout)) {
		_ = a.Storage().TerminateSession(ctx, session.ID)
		return nil, nil
	}
	if err := a.Storage().TouchSession(ctx, session.ID); err != nil {
		return nil, err
	}
	return session, nil
}
