package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/resilience"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/id"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTTL is the lifetime of a session token
const DefaultTTL = 24 * time.Hour

// GuestDomain is the mail domain of generated guest accounts
const GuestDomain = "guest.local"

// Messages returned in AuthResult.Error
const (
	msgInvalidCredentials = "invalid credentials"
	msgEmailTaken         = "email already registered"
	msgInvalidToken       = "invalid token"
	msgExpired            = "session expired"
	msgUnavailable        = "auth service unavailable"
)

// ErrUserNotFound is returned when no account matches
var ErrUserNotFound = errors.New("user not found")

// Listener receives session changes. session is nil on sign-out.
type Listener func(event types.AuthEvent, session *types.AuthSession)

// userRecord is a users row
type userRecord struct {
	types.User
	passwordHash string
}

// Provider implements accounts and session tokens over SQLite. Active
// sessions are cached in memory; the database is the source of truth.
type Provider struct {
	db     *sql.DB
	ttl    time.Duration
	guard  *resilience.Guard
	logger *zap.Logger
	now    func() time.Time

	sessions sync.Map // token -> *types.AuthSession

	obsMu     sync.RWMutex
	observers map[int]Listener
	nextObs   int
}

// NewProvider creates an auth provider over an opened database
func NewProvider(db *sql.DB, ttl time.Duration, logger *zap.Logger) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		db:        db,
		ttl:       ttl,
		guard:     resilience.NewGuard("auth", logger),
		logger:    logger,
		now:       time.Now,
		observers: make(map[int]Listener),
	}
}

// WithGuard replaces the collaborator guard
func (a *Provider) WithGuard(guard *resilience.Guard) *Provider {
	a.guard = guard
	return a
}

// WithClock replaces the time source
func (a *Provider) WithClock(now func() time.Time) *Provider {
	a.now = now
	return a
}

// Subscribe registers fn for session changes and returns a function that removes it
func (a *Provider) Subscribe(fn Listener) func() {
	a.obsMu.Lock()
	key := a.nextObs
	a.nextObs++
	a.observers[key] = fn
	a.obsMu.Unlock()

	return func() {
		a.obsMu.Lock()
		delete(a.observers, key)
		a.obsMu.Unlock()
	}
}

// SignUp creates an account and signs it in
func (a *Provider) SignUp(ctx context.Context, email, password string) types.AuthResult {
	email = normalizeEmail(email)
	if err := utils.ValidateEmail(email, true); err != nil {
		return failure(err.Error())
	}
	if err := utils.ValidatePassword(password); err != nil {
		return failure(err.Error())
	}
	return a.register(ctx, email, password, false)
}

// SignIn checks credentials and issues a session
func (a *Provider) SignIn(ctx context.Context, email, password string) types.AuthResult {
	email = normalizeEmail(email)
	if utils.ValidateEmail(email, true) != nil || utils.ValidatePassword(password) != nil {
		return failure(msgInvalidCredentials)
	}

	user, err := resilience.Do(ctx, a.guard, "sign_in", func(ctx context.Context) (*userRecord, error) {
		return a.userByEmail(ctx, email)
	})
	if err != nil {
		a.logger.Warn("Sign-in lookup failed", zap.Error(err))
		return failure(msgUnavailable)
	}
	if user == nil {
		return failure(msgInvalidCredentials)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.passwordHash), []byte(password)) != nil {
		return failure(msgInvalidCredentials)
	}
	return a.startSession(ctx, &user.User, false)
}

// SignInAsGuest creates a throwaway account and signs it in
func (a *Provider) SignInAsGuest(ctx context.Context) types.AuthResult {
	email := fmt.Sprintf("guest_%d_%s@%s", a.now().UnixMilli(), randomHex(5), GuestDomain)
	result := a.register(ctx, email, generateToken(), true)
	result.IsGuest = true
	return result
}

// SignOut revokes token
func (a *Provider) SignOut(ctx context.Context, token string) types.AuthResult {
	if utils.ValidateString(token, "token", 1, 128, true) != nil {
		return failure(msgInvalidToken)
	}

	_, cached := a.sessions.LoadAndDelete(token)

	var revoked int64
	err := a.guard.Run(ctx, "sign_out", func(ctx context.Context) error {
		res, err := a.db.ExecContext(ctx, "DELETE FROM auth_sessions WHERE token = ?", token)
		if err != nil {
			return err
		}
		revoked, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		a.logger.Warn("Failed to revoke session", zap.Error(err))
		return failure(msgUnavailable)
	}

	if cached || revoked > 0 {
		a.notify(types.EventSignedOut, nil)
	}
	return types.AuthResult{}
}

// GetSession resolves token to its user and session
func (a *Provider) GetSession(ctx context.Context, token string) types.AuthResult {
	if utils.ValidateString(token, "token", 1, 128, true) != nil {
		return failure(msgInvalidToken)
	}

	session, err := a.lookupSession(ctx, token)
	if err != nil {
		a.logger.Warn("Session lookup failed", zap.Error(err))
		return failure(msgUnavailable)
	}
	if session == nil {
		return failure(msgInvalidToken)
	}

	if a.now().After(session.ExpiresAt) {
		a.sessions.Delete(token)
		_ = a.guard.Run(ctx, "expire", func(ctx context.Context) error {
			_, err := a.db.ExecContext(ctx, "DELETE FROM auth_sessions WHERE token = ?", token)
			return err
		})
		a.notify(types.EventExpired, nil)
		return failure(msgExpired)
	}

	user, err := resilience.Do(ctx, a.guard, "get_user", func(ctx context.Context) (*userRecord, error) {
		return a.userByID(ctx, session.UserID)
	})
	if err != nil || user == nil {
		return failure(msgInvalidToken)
	}

	return types.AuthResult{User: &user.User, Session: session, IsGuest: user.IsGuest}
}

// User returns the account for userID
func (a *Provider) User(ctx context.Context, userID string) (*types.User, error) {
	user, err := resilience.Do(ctx, a.guard, "get_user", func(ctx context.Context) (*userRecord, error) {
		return a.userByID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return &user.User, nil
}

// PurgeExpired deletes expired sessions and returns how many were removed
func (a *Provider) PurgeExpired(ctx context.Context) (int, error) {
	now := a.now()
	a.sessions.Range(func(key, value interface{}) bool {
		if now.After(value.(*types.AuthSession).ExpiresAt) {
			a.sessions.Delete(key)
		}
		return true
	})

	var removed int64
	err := a.guard.Run(ctx, "purge", func(ctx context.Context) error {
		res, err := a.db.ExecContext(ctx, "DELETE FROM auth_sessions WHERE expires_at < ?", now.UnixNano())
		if err != nil {
			return err
		}
		removed, _ = res.RowsAffected()
		return nil
	})
	return int(removed), err
}

func (a *Provider) register(ctx context.Context, email, password string, guest bool) types.AuthResult {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return failure(fmt.Sprintf("password hashing failed: %v", err))
	}

	user := &types.User{
		ID:        id.NewUserID().String(),
		Email:     email,
		IsGuest:   guest,
		CreatedAt: a.now(),
	}

	var taken bool
	err = a.guard.Run(ctx, "sign_up", func(ctx context.Context) error {
		_, err := a.db.ExecContext(ctx,
			"INSERT INTO users (id, email, password_hash, is_guest, created_at) VALUES (?, ?, ?, ?, ?)",
			user.ID, user.Email, string(hash), guest, user.CreatedAt.UnixNano())
		if err != nil && isUniqueViolation(err) {
			taken = true
			return nil
		}
		return err
	})
	if taken {
		return failure(msgEmailTaken)
	}
	if err != nil {
		a.logger.Warn("Failed to create user", zap.Bool("guest", guest), zap.Error(err))
		return failure(msgUnavailable)
	}

	return a.startSession(ctx, user, guest)
}

func (a *Provider) startSession(ctx context.Context, user *types.User, guest bool) types.AuthResult {
	now := a.now()
	session := &types.AuthSession{
		Token:     generateToken(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(a.ttl),
	}

	err := a.guard.Run(ctx, "create_session", func(ctx context.Context) error {
		_, err := a.db.ExecContext(ctx,
			"INSERT INTO auth_sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)",
			session.Token, session.UserID, session.CreatedAt.UnixNano(), session.ExpiresAt.UnixNano())
		return err
	})
	if err != nil {
		a.logger.Warn("Failed to create session", zap.Error(err))
		return failure(msgUnavailable)
	}

	a.sessions.Store(session.Token, session)
	a.logger.Info("User signed in", zap.String("user_id", user.ID), zap.Bool("guest", guest))
	a.notify(types.EventSignedIn, session)
	return types.AuthResult{User: user, Session: session, IsGuest: guest}
}

func (a *Provider) lookupSession(ctx context.Context, token string) (*types.AuthSession, error) {
	if v, ok := a.sessions.Load(token); ok {
		return v.(*types.AuthSession), nil
	}

	session, err := resilience.Do(ctx, a.guard, "get_session", func(ctx context.Context) (*types.AuthSession, error) {
		var userID string
		var created, expires int64
		err := a.db.QueryRowContext(ctx,
			"SELECT user_id, created_at, expires_at FROM auth_sessions WHERE token = ?", token,
		).Scan(&userID, &created, &expires)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &types.AuthSession{
			Token:     token,
			UserID:    userID,
			CreatedAt: time.Unix(0, created),
			ExpiresAt: time.Unix(0, expires),
		}, nil
	})
	if err != nil || session == nil {
		return nil, err
	}
	a.sessions.Store(token, session)
	return session, nil
}

func (a *Provider) userByEmail(ctx context.Context, email string) (*userRecord, error) {
	return a.scanUser(a.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, is_guest, created_at FROM users WHERE email = ?", email))
}

func (a *Provider) userByID(ctx context.Context, userID string) (*userRecord, error) {
	return a.scanUser(a.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, is_guest, created_at FROM users WHERE id = ?", userID))
}

// scanUser reads one users row, returning nil when there is none
func (a *Provider) scanUser(row *sql.Row) (*userRecord, error) {
	var rec userRecord
	var created int64
	err := row.Scan(&rec.ID, &rec.Email, &rec.passwordHash, &rec.IsGuest, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(0, created)
	return &rec, nil
}

func (a *Provider) notify(event types.AuthEvent, session *types.AuthSession) {
	a.obsMu.RLock()
	keys := make([]int, 0, len(a.observers))
	for k := range a.observers {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	fns := make([]Listener, 0, len(keys))
	for _, k := range keys {
		fns = append(fns, a.observers[k])
	}
	a.obsMu.RUnlock()

	for _, fn := range fns {
		fn(event, session)
	}
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// Never fall back to weak randomness
		panic(fmt.Sprintf("crypto/rand failed: %v - cannot generate secure token", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func failure(message string) types.AuthResult {
	return types.AuthResult{Error: message}
}
