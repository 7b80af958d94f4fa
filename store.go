package authclient

import (
	"context"
	"net/http"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// Store owns the session. All reads return copies and all writes go
// through login, logout, refresh, fetch user and restore.
type Store struct {
	mu      sync.RWMutex
	session Session

	cfg       Config
	backend   Backend
	persister Persister
	logger    Logger
	metrics   *Metrics
	now       func() time.Time

	refreshes singleflight.Group

	listenersMu sync.Mutex
	listeners   map[int]SessionListener
	nextID      int
}

// NewStore creates an empty, logged out store
func NewStore(cfg Config, backend Backend) *Store {
	return &Store{
		cfg:       cfg,
		backend:   backend,
		persister: NewMemoryPersister(),
		logger:    defLogger{},
		now:       time.Now,
		listeners: map[int]SessionListener{},
	}
}

func (s *Store) WithLogger(logger Logger) *Store {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Store) WithPersister(persister Persister) *Store {
	if persister != nil {
		s.persister = persister
	}
	return s
}

func (s *Store) WithMetrics(metrics *Metrics) *Store {
	s.metrics = metrics
	return s
}

func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Store) Config() Config {
	return s.cfg
}

func (s *Store) Redirects() Redirects {
	return s.cfg.GetRedirects()
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.clone()
}

func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.LoggedIn
}

func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User.Clone()
}

func (s *Store) HasRole(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.HasRole(role)
}

func (s *Store) IsAdmin() bool {
	return s.HasRole(RoleAdmin)
}

// Subscribe registers fn to receive every new session. The returned func
// removes the listener.
func (s *Store) Subscribe(fn SessionListener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// Login authenticates against the backend and stores the returned tokens
func (s *Store) Login(ctx context.Context, credentials Credentials) (Session, error) {
	if err := credentials.Validate(); err != nil {
		s.metrics.login(resultError)
		return Session{}, goerrors.Wrap(ErrInvalidCredentials, goerrors.CategoryValidation, err.Error()).
			WithCode(http.StatusBadRequest).
			WithTextCode("INVALID_CREDENTIALS")
	}

	resp, err := s.backend.Login(ctx, credentials)
	if err != nil {
		s.metrics.login(resultOf(err))
		s.logger.Error("Login failed", "identifier", credentials.Username, "error", err)
		return Session{}, err
	}

	user := resp.User
	if user == nil && s.cfg.GetUserAutoFetch() {
		if user, err = s.backend.FetchUser(ctx, resp.AccessToken); err != nil {
			s.metrics.login(resultOf(err))
			s.logger.Error("Fetch user after login failed", "identifier", credentials.Username, "error", err)
			return Session{}, err
		}
	}

	now := s.now()
	session := Session{
		LoggedIn:        true,
		User:            user,
		AccessToken:     resp.AccessToken,
		RefreshToken:    resp.RefreshToken,
		AccessExpiresAt: TokenExpiry(resp.AccessToken, now, s.cfg.GetTokenMaxAge()),
		Strategy:        s.cfg.GetStrategyName(),
	}
	if resp.RefreshToken != "" {
		session.RefreshExpiresAt = TokenExpiry(resp.RefreshToken, now, s.cfg.GetRefreshTokenMaxAge())
	}

	s.metrics.login(resultSuccess)
	s.logger.Info("Logged in", "identifier", credentials.Username, "has_user", user != nil)
	if user != nil {
		s.logger.Debug("User details", "user", print.MaybePrettyJSON(user))
	}

	return s.replace(ctx, session), nil
}

// Logout clears the local session even when the backend call fails. The
// backend error is returned for information only.
func (s *Store) Logout(ctx context.Context) error {
	current := s.Snapshot()

	var err error
	if current.AccessToken != "" {
		if err = s.backend.Logout(ctx, current.AccessToken); err != nil {
			s.logger.Warn("Backend logout failed, clearing local session", "error", err)
		}
	}

	s.clear(ctx)
	s.logger.Info("Logged out")
	return err
}

// RefreshTokens exchanges the refresh token for a new access token.
// Concurrent callers share a single backend call. A rejected refresh token
// logs the session out.
func (s *Store) RefreshTokens(ctx context.Context) (Session, error) {
	return s.refreshTokens(ctx, "")
}

// refreshTokens skips the backend call when rejected is set and is no
// longer the current access token.
func (s *Store) refreshTokens(ctx context.Context, rejected string) (Session, error) {
	ch := s.refreshes.DoChan(refreshKey, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx), rejected)
	})

	select {
	case <-ctx.Done():
		return Session{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Session{}, res.Err
		}
		return res.Val.(Session), nil
	}
}

func (s *Store) refresh(ctx context.Context, rejected string) (Session, error) {
	current := s.Snapshot()

	if !current.LoggedIn {
		return Session{}, ErrNotLoggedIn
	}

	if rejected != "" && current.AccessToken != rejected {
		s.logger.Debug("Access token already replaced, skipping refresh")
		return current, nil
	}

	if current.RefreshToken == "" {
		return Session{}, ErrNoRefreshToken
	}

	if current.RefreshExpired(s.now()) {
		s.metrics.refresh(resultRejected)
		s.logger.Info("Refresh token expired, logging out")
		s.clear(ctx)
		return Session{}, goerrors.Wrap(ErrRefreshTokenExpired, goerrors.CategoryAuth, "refresh token expired").
			WithCode(http.StatusUnauthorized).
			WithTextCode("REFRESH_TOKEN_EXPIRED")
	}

	resp, err := s.backend.Refresh(ctx, current.RefreshToken)
	s.metrics.refresh(resultOf(err))
	if err != nil {
		if IsAuthError(err) {
			s.logger.Info("Refresh token rejected, logging out", "error", err)
			s.clear(ctx)
		} else {
			s.logger.Error("Refresh failed", "error", err)
		}
		return Session{}, err
	}

	now := s.now()
	next, ok := s.update(ctx, func(session *Session) bool {
		// a login or logout happened while the call was in flight
		if session.RefreshToken != current.RefreshToken {
			return false
		}

		session.AccessToken = resp.AccessToken
		session.AccessExpiresAt = TokenExpiry(resp.AccessToken, now, s.cfg.GetTokenMaxAge())
		if resp.RefreshToken != "" && resp.RefreshToken != session.RefreshToken {
			session.RefreshToken = resp.RefreshToken
			session.RefreshExpiresAt = TokenExpiry(resp.RefreshToken, now, s.cfg.GetRefreshTokenMaxAge())
		}
		if resp.User != nil {
			session.User = resp.User
		}
		return true
	})

	if !ok {
		if !next.LoggedIn {
			return Session{}, ErrNotLoggedIn
		}
		return next, nil
	}

	s.logger.Debug("Tokens refreshed", "access_expires_at", next.AccessExpiresAt)
	return next, nil
}

// FetchUser loads the user for the current access token and stores it
func (s *Store) FetchUser(ctx context.Context) (*User, error) {
	current := s.Snapshot()
	if current.AccessToken == "" {
		return nil, ErrNotLoggedIn
	}

	user, err := s.backend.FetchUser(ctx, current.AccessToken)
	if err != nil {
		s.logger.Error("Fetch user failed", "error", err)
		return nil, err
	}

	s.update(ctx, func(session *Session) bool {
		if session.AccessToken != current.AccessToken {
			return false
		}
		session.User = user
		return true
	})

	return user.Clone(), nil
}

// Restore loads a persisted session. Sessions that can no longer be used
// are discarded.
func (s *Store) Restore(ctx context.Context) (Session, error) {
	if s.persister == nil {
		return s.Snapshot(), nil
	}

	loaded, err := s.persister.Load(ctx)
	if err != nil {
		return Session{}, goerrors.Wrap(err, goerrors.CategoryInternal, "load persisted session").
			WithTextCode("SESSION_LOAD_FAILED")
	}

	if loaded == nil {
		return s.Snapshot(), nil
	}

	now := s.now()
	usable := loaded.LoggedIn
	if loaded.RefreshToken != "" {
		usable = usable && !loaded.RefreshExpired(now)
	} else {
		usable = usable && !loaded.AccessExpired(now)
	}

	if !usable {
		s.logger.Info("Discarding expired persisted session")
		s.clear(ctx)
		return Session{}, nil
	}

	s.logger.Debug("Session restored", "session", loaded.String())
	return s.replace(ctx, *loaded), nil
}

func (s *Store) replace(ctx context.Context, session Session) Session {
	s.mu.Lock()
	s.session = session.clone()
	out := s.session.clone()
	s.mu.Unlock()

	s.persist(ctx, out)
	s.notify(out)
	return out
}

func (s *Store) update(ctx context.Context, fn func(*Session) bool) (Session, bool) {
	s.mu.Lock()
	next := s.session.clone()
	if !fn(&next) {
		s.mu.Unlock()
		return next, false
	}
	s.session = next
	out := next.clone()
	s.mu.Unlock()

	s.persist(ctx, out)
	s.notify(out)
	return out, true
}

func (s *Store) clear(ctx context.Context) {
	s.replace(ctx, Session{})
}

func (s *Store) persist(ctx context.Context, session Session) {
	if s.persister == nil {
		return
	}

	var err error
	if session.LoggedIn {
		err = s.persister.Save(ctx, session)
	} else {
		err = s.persister.Clear(ctx)
	}

	if err != nil {
		s.logger.Warn("Persist session failed", "error", err)
	}
}

func (s *Store) notify(session Session) {
	s.listenersMu.Lock()
	listeners := make([]SessionListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(session.clone())
	}
}
