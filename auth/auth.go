// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	defaultTokenInfoURL = "https://www.googleapis.com/oauth2/v1/tokeninfo"
	defaultUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var (
	ErrNotConnected = errors.New("no active session")
	ErrTokenExpired = errors.New("token rejected by validation probe")
)

// Session holds the identity collaborator's bearer token and the user's
// email. The token is cached in a file so it survives server restarts,
// mirroring the front-end's persistent storage, and is reused until the
// validation probe rejects it.
type Session struct {
	mu    sync.Mutex
	path  string
	token string
	email string

	tokenInfoURL string
	userInfoURL  string
	client       *http.Client
}

// Option customizes a Session.
type Option func(*Session)

// WithProbeURLs overrides the tokeninfo and userinfo endpoints. Used in tests.
func WithProbeURLs(tokenInfoURL, userInfoURL string) Option {
	return func(s *Session) {
		s.tokenInfoURL = tokenInfoURL
		s.userInfoURL = userInfoURL
	}
}

// WithClient overrides the HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *Session) { s.client = c }
}

// NewSession creates a session backed by the given token cache file.
func NewSession(path string, opts ...Option) *Session {
	s := &Session{
		path:         path,
		tokenInfoURL: defaultTokenInfoURL,
		userInfoURL:  defaultUserInfoURL,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads a previously cached token and validates it. A rejected
// token clears the cache file; the caller stays disconnected.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read token cache: %w", err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return false, nil
	}

	email, err := s.probe(ctx, token)
	if errors.Is(err, ErrTokenExpired) {
		slog.Warn("cached token rejected, clearing", "path", s.path)
		os.Remove(s.path)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.token = token
	s.email = email
	s.mu.Unlock()
	return true, nil
}

// Connect validates a fresh token, caches it, and returns the user email.
func (s *Session) Connect(ctx context.Context, token string) (string, error) {
	email, err := s.probe(ctx, token)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return "", fmt.Errorf("failed to cache token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.email = email
	s.mu.Unlock()
	return email, nil
}

// Disconnect clears the in-memory token and the cache file.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.token = ""
	s.email = ""
	s.mu.Unlock()
	os.Remove(s.path)
}

// Invalidate is Disconnect for the AuthExpired path: the remote store
// rejected the token mid-session. In-memory tally state is untouched.
func (s *Session) Invalidate() {
	slog.Warn("session invalidated, reconnect required")
	s.Disconnect()
}

// Token implements store.TokenSource.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", ErrNotConnected
	}
	return s.token, nil
}

// Email returns the connected user's email, or "".
func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// Connected reports whether a validated token is held.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// probe checks the token against the tokeninfo endpoint and fetches the
// user's email. Any non-200 from tokeninfo means the token is no good.
func (s *Session) probe(ctx context.Context, token string) (string, error) {
	infoURL := s.tokenInfoURL + "?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token probe failed: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", ErrTokenExpired
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("userinfo fetch failed: %w", err)
	}
	defer resp.Body.Close()

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
		// The probe passed; a missing email only degrades audit rows.
		slog.Warn("userinfo fetch returned no email")
		return "unknown", nil
	}
	return info.Email, nil
}
