// Package session holds the in-memory state tying a local session id to the
// OAuth tokens and org context obtained during the authorization flow.
//
// Nothing here survives a restart; callers recover by re-authenticating.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TokenSet is the normalized token response held for a session.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope,omitempty"`
}

// OrgContext identifies the TrainerCentral tenant a session operates on.
// It lives on the session entry, never in process-global state, so two
// sessions for different organizations cannot clobber each other.
type OrgContext struct {
	OrgID  string `json:"org_id"`
	Domain string `json:"domain"`
}

type entry struct {
	tokens TokenSet
	org    OrgContext
}

type codeEntry struct {
	tokens    TokenSet
	expiresAt time.Time
}

// Store maps session ids to token sets and org context, and mints one-time
// authorization codes for downstream clients. All methods are safe for
// concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]entry
	codes    map[string]codeEntry
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]entry),
		codes:    make(map[string]codeEntry),
		now:      time.Now,
	}
}

// Put stores tokens and org context under sid, replacing any previous entry
// wholesale.
func (s *Store) Put(sid string, tokens TokenSet, org OrgContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = entry{tokens: tokens, org: org}
}

// Get returns the tokens and org context for sid, if present.
func (s *Store) Get(sid string) (TokenSet, OrgContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sid]
	if !ok {
		return TokenSet{}, OrgContext{}, false
	}
	return e.tokens, e.org, true
}

// Clear removes the session entry for sid, if any.
func (s *Store) Clear(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
}

// NewSessionID returns a fresh opaque session identifier.
func (s *Store) NewSessionID() string {
	return uuid.NewString()
}

// MintAuthCode creates a one-time code redeemable for tokens until ttl
// elapses. A ttl <= 0 produces a code that is already expired.
func (s *Store) MintAuthCode(tokens TokenSet, ttl time.Duration) string {
	code := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code] = codeEntry{tokens: tokens, expiresAt: s.now().Add(ttl)}
	return code
}

// ConsumeAuthCode redeems a code exactly once. The check-and-delete happens
// under the store lock so two concurrent callers can never both succeed.
// Expired entries are reclaimed here; there is no background sweep.
func (s *Store) ConsumeAuthCode(code string) (TokenSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.codes[code]
	if !ok {
		return TokenSet{}, false
	}
	delete(s.codes, code)
	if !s.now().Before(e.expiresAt) {
		return TokenSet{}, false
	}
	return e.tokens, true
}
