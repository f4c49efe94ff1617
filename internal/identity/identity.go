// Package identity keeps registered accounts and login sessions.
//
// Accounts live under the "users" key. Each successful login or registration
// opens a session persisted under "currentUser:<session id>", so a session
// survives a process restart and is passed around explicitly instead of
// being held in process-wide state. A session stops restoring once its ttl
// has passed and is deleted on that read; backends with native expiry drop
// it on their own.
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/thehopecrystal/verify-properties/internal/models"
	"github.com/thehopecrystal/verify-properties/internal/notify"
	"github.com/thehopecrystal/verify-properties/internal/storage"
)

var (
	ErrAlreadyExists      = errors.New(`account already exists`)
	ErrInvalidCredentials = errors.New(`invalid credentials`)
	ErrInvalidInput       = errors.New(`invalid input`)
)

// Registering with AdminEmail yields an admin account.
const AdminEmail = `admin@admin.com`

// The bootstrap admin is never stored in "users"; it is synthesized when
// this exact pair is presented to Login.
const (
	bootstrapLogin    = `admin`
	bootstrapPassword = `admin12.3`
)

func BootstrapAdmin() models.Account {
	return models.Account{
		Id:       `admin-id`,
		FullName: `Admin User`,
		Email:    AdminEmail,
		Role:     models.RoleAdmin,
	}
}

// DefaultSessionTTL matches the default token lifetime.
const DefaultSessionTTL = 48 * time.Hour

type Session struct {
	Id        string         `json:"id"`
	Account   models.Account `json:"account"`
	CreatedAt time.Time      `json:"createdAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Option func(*Store)

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) Option {
	return func(s *Store) { s.hashCost = cost }
}

func WithIdGenerator(gen func() string) Option {
	return func(s *Store) { s.newId = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSessionTTL sets how long a session stays restorable after login. Zero
// or less never expires.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Store) { s.sessionTTL = ttl }
}

type Store struct {
	storage  storage.Storage
	notifier notify.Notifier

	mu         sync.Mutex
	hashCost   int
	newId      func() string
	now        func() time.Time
	sessionTTL time.Duration
}

func New(s storage.Storage, n notify.Notifier, opts ...Option) *Store {
	store := &Store{
		storage:  s,
		notifier: n,
		hashCost:   bcrypt.DefaultCost,
		newId:      uuid.NewString,
		now:        time.Now,
		sessionTTL: DefaultSessionTTL,
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.notifier == nil {
		store.notifier = notify.Multi{}
	}
	return store
}

func (s *Store) Register(ctx context.Context, fullName, email, password string) (Session, error) {
	if strings.TrimSpace(fullName) == `` || strings.TrimSpace(email) == `` || password == `` {
		s.notifier.Notify(ctx, models.Failure(`Full name, email and password are required`))
		return Session{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := storage.LoadCollection[models.Account](ctx, s.storage, storage.KeyUsers)
	if err != nil {
		return s.registerFailed(ctx, err)
	}

	for _, u := range users {
		if u.Email == email {
			s.notifier.Notify(ctx, models.Failure(`User with this email already exists`))
			return Session{}, ErrAlreadyExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword(passwordDigest(password), s.hashCost)
	if err != nil {
		return s.registerFailed(ctx, err)
	}

	role := models.RoleUser
	if email == AdminEmail {
		role = models.RoleAdmin
	}

	account := models.Account{
		Id:       s.newId(),
		FullName: fullName,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}

	users = append(users, account)
	if err := storage.SaveCollection(ctx, s.storage, storage.KeyUsers, users); err != nil {
		return s.registerFailed(ctx, err)
	}

	session, err := s.openSession(ctx, account)
	if err != nil {
		return s.registerFailed(ctx, err)
	}

	slog.Info("Account registered", "user_id", account.Id, "role", account.Role)
	s.notifier.Notify(ctx, models.Success(`Registration successful`))

	return session, nil
}

func (s *Store) registerFailed(ctx context.Context, err error) (Session, error) {
	slog.Error("Registration failed", slog.Any("err", err))
	s.notifier.Notify(ctx, models.Failure(`Registration failed`))
	return Session{}, fmt.Errorf(`register: %w`, err)
}

func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	if email == bootstrapLogin && password == bootstrapPassword {
		session, err := s.openSession(ctx, BootstrapAdmin())
		if err != nil {
			return s.loginFailed(ctx, err)
		}
		s.notifier.Notify(ctx, models.Success(`Admin login successful`))
		return session, nil
	}

	s.mu.Lock()
	users, err := storage.LoadCollection[models.Account](ctx, s.storage, storage.KeyUsers)
	s.mu.Unlock()
	if err != nil {
		return s.loginFailed(ctx, err)
	}

	for _, u := range users {
		if u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Password), passwordDigest(password)) != nil {
			break
		}

		session, err := s.openSession(ctx, u)
		if err != nil {
			return s.loginFailed(ctx, err)
		}
		s.notifier.Notify(ctx, models.Success(`Login successful`))
		return session, nil
	}

	s.notifier.Notify(ctx, models.Failure(`Invalid credentials`))
	return Session{}, ErrInvalidCredentials
}

func (s *Store) loginFailed(ctx context.Context, err error) (Session, error) {
	slog.Error("Login failed", slog.Any("err", err))
	s.notifier.Notify(ctx, models.Failure(`Login failed`))
	return Session{}, fmt.Errorf(`login: %w`, err)
}

// passwordDigest feeds bcrypt a fixed-size input; bcrypt rejects passwords
// longer than 72 bytes.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}

func (s *Store) openSession(ctx context.Context, account models.Account) (Session, error) {
	now := s.now().UTC()
	session := Session{
		Id:        s.newId(),
		Account:   account.Public(),
		CreatedAt: now,
	}
	if s.sessionTTL > 0 {
		session.ExpiresAt = now.Add(s.sessionTTL)
	}

	err := storage.SaveObjectTTL(ctx, s.storage, storage.SessionKey(session.Id), session, s.sessionTTL)
	if err != nil {
		return Session{}, err
	}

	return session, nil
}

// Logout always succeeds from the caller's point of view; a storage failure
// is only logged.
func (s *Store) Logout(ctx context.Context, sessionId string) {
	if sessionId != `` {
		if err := s.storage.Delete(ctx, storage.SessionKey(sessionId)); err != nil {
			slog.Error("Failed to delete session", "session_id", sessionId, slog.Any("err", err))
		}
	}
	s.notifier.Notify(ctx, models.Success(`Logged out successfully`))
}

func (s *Store) CurrentSession(ctx context.Context, sessionId string) (models.Account, bool) {
	if sessionId == `` {
		return models.Account{}, false
	}

	session, err := storage.LoadObject[Session](ctx, s.storage, storage.SessionKey(sessionId))
	if errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, false
	}
	if err != nil {
		slog.Error("Failed to restore session", "session_id", sessionId, slog.Any("err", err))
		return models.Account{}, false
	}

	if session.Expired(s.now()) {
		if err := s.storage.Delete(ctx, storage.SessionKey(sessionId)); err != nil {
			slog.Error("Failed to delete expired session", "session_id", sessionId, slog.Any("err", err))
		}
		return models.Account{}, false
	}
	if !session.Account.Role.Valid() {
		return models.Account{}, false
	}

	return session.Account, true
}
