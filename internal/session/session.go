package session

import (
	"sync"

	"stratus/internal/config"
)

// Identity is the cached account identity the server hands back on login and
// register.
type Identity struct {
	Token    string
	Username string
	UID      string
	Avatar   string
	Email    string
}

// Session is the auth gate: it owns the logged-in/out state and the credential
// token lifecycle, persisted through the config manager so state survives
// restarts. Operations that need the remote API are unreachable while logged
// out.
type Session struct {
	mu  sync.RWMutex
	cfg *config.Manager
}

func New(cfg *config.Manager) *Session {
	return &Session{cfg: cfg}
}

// LoggedIn reports whether a persisted session marker is present.
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.GetBool(config.KeySessionActive)
}

// Token returns the session credential, empty when unauthenticated.
// Satisfies api.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, _ := s.cfg.Get(config.KeySessionToken)
	return token
}

// Identity returns the cached identity fields.
func (s *Session) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	get := func(key string) string {
		v, _ := s.cfg.Get(key)
		return v
	}
	return Identity{
		Token:    get(config.KeySessionToken),
		Username: get(config.KeySessionUsername),
		UID:      get(config.KeySessionUID),
		Avatar:   get(config.KeySessionAvatar),
		Email:    get(config.KeySessionEmail),
	}
}

// Login marks the session active and persists the identity.
func (s *Session) Login(id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cfg.SetAll(map[string]any{
		config.KeySessionActive:   true,
		config.KeySessionToken:    id.Token,
		config.KeySessionUsername: id.Username,
		config.KeySessionUID:      id.UID,
		config.KeySessionAvatar:   id.Avatar,
		config.KeySessionEmail:    id.Email,
	})
}

// Logout clears the marker and every cached identity field.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cfg.SetAll(map[string]any{
		config.KeySessionActive:   false,
		config.KeySessionToken:    "",
		config.KeySessionUsername: "",
		config.KeySessionUID:      "",
		config.KeySessionAvatar:   "",
		config.KeySessionEmail:    "",
	})
}
