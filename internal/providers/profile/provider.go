package profile

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/resilience"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// Provider stores per-user profiles with free-form JSON preferences
type Provider struct {
	db     *sql.DB
	guard  *resilience.Guard
	logger *zap.Logger
	now    func() time.Time
}

// NewProvider creates a profile provider over an opened database
func NewProvider(db *sql.DB, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		db:     db,
		guard:  resilience.NewGuard("profile", logger),
		logger: logger,
		now:    time.Now,
	}
}

// WithGuard replaces the collaborator guard
func (p *Provider) WithGuard(guard *resilience.Guard) *Provider {
	p.guard = guard
	return p
}

// EnsureProfile returns the profile for userID, creating it on first call.
// It returns nil when the store fails.
func (p *Provider) EnsureProfile(ctx context.Context, userID, email string) *types.Profile {
	profile, err := resilience.Do(ctx, p.guard, "ensure", func(ctx context.Context) (*types.Profile, error) {
		now := p.now().UnixNano()
		_, err := p.db.ExecContext(ctx,
			"INSERT INTO profiles (id, email, preferences, created_at, updated_at) VALUES (?, ?, '{}', ?, ?) ON CONFLICT(id) DO NOTHING",
			userID, email, now, now)
		if err != nil {
			return nil, err
		}
		return p.get(ctx, userID)
	})
	if err != nil {
		p.logger.Warn("Failed to ensure profile", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return profile
}

// Get returns the profile for userID, or nil when it does not exist
func (p *Provider) Get(ctx context.Context, userID string) *types.Profile {
	profile, err := resilience.Do(ctx, p.guard, "get", p.getter(userID))
	if err != nil {
		p.logger.Warn("Failed to read profile", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return profile
}

// UpdateField merges patch into the user's preferences. A nil value removes
// the key. It returns the updated profile, or nil when the profile is
// missing or the store fails.
func (p *Provider) UpdateField(ctx context.Context, userID string, patch map[string]interface{}) *types.Profile {
	profile, err := resilience.Do(ctx, p.guard, "update", func(ctx context.Context) (*types.Profile, error) {
		tx, err := p.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var raw string
		err = tx.QueryRowContext(ctx, "SELECT preferences FROM profiles WHERE id = ?", userID).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		prefs := decodePrefs(raw)
		for k, v := range patch {
			if v == nil {
				delete(prefs, k)
				continue
			}
			prefs[k] = v
		}
		data, err := sonic.MarshalString(prefs)
		if err != nil {
			return nil, err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE profiles SET preferences = ?, updated_at = ? WHERE id = ?",
			data, p.now().UnixNano(), userID); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return p.get(ctx, userID)
	})
	if err != nil {
		p.logger.Warn("Failed to update profile", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return profile
}

func (p *Provider) getter(userID string) func(ctx context.Context) (*types.Profile, error) {
	return func(ctx context.Context) (*types.Profile, error) {
		return p.get(ctx, userID)
	}
}

// get reads one profile, returning nil when there is none
func (p *Provider) get(ctx context.Context, userID string) (*types.Profile, error) {
	var profile types.Profile
	var raw string
	var created, updated int64
	err := p.db.QueryRowContext(ctx,
		"SELECT id, email, preferences, created_at, updated_at FROM profiles WHERE id = ?", userID,
	).Scan(&profile.ID, &profile.Email, &raw, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	profile.Preferences = decodePrefs(raw)
	profile.CreatedAt = time.Unix(0, created)
	profile.UpdatedAt = time.Unix(0, updated)
	return &profile, nil
}

func decodePrefs(raw string) map[string]interface{} {
	prefs := map[string]interface{}{}
	if raw == "" {
		return prefs
	}
	if err := sonic.UnmarshalString(raw, &prefs); err != nil {
		return map[string]interface{}{}
	}
	return prefs
}
