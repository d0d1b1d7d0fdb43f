package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/persist"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	db, err := persist.OpenDB(persist.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProvider(db, time.Hour, nil)
}

func TestSignUpSignIn(t *testing.T) {
	a := newTestProvider(t)
	ctx := context.Background()

	result := a.SignUp(ctx, " Ada@Stellar.dev ", "secret123")
	require.Empty(t, result.Error)
	require.NotNil(t, result.User)
	require.NotNil(t, result.Session)
	assert.Equal(t, "ada@stellar.dev", result.User.Email)
	assert.False(t, result.User.IsGuest)

	result = a.SignIn(ctx, "ada@stellar.dev", "secret123")
	require.Empty(t, result.Error)
	token := result.Session.Token

	session := a.GetSession(ctx, token)
	require.Empty(t, session.Error)
	assert.Equal(t, result.User.ID, session.User.ID)
	assert.Equal(t, token, session.Session.Token)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	a := newTestProvider(t)
	ctx := context.Background()
	a.SignUp(ctx, "bob@stellar.dev", "password")

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "bob@stellar.dev", "wrongpass"},
		{"unknown user", "eve@stellar.dev", "password"},
		{"malformed email", "not-an-email", "password"},
		{"short password", "bob@stellar.dev", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.SignIn(ctx, tt.email, tt.password)
			assert.Equal(t, msgInvalidCredentials, result.Error)
			assert.Nil(t, result.User)
		})
	}
}

func TestSignUpValidationAndDuplicates(t *testing.T) {
	a := newTestProvider(t)
	ctx := context.Background()

	assert.NotEmpty(t, a.SignUp(ctx, "nope", "secret123").Error)
	assert.NotEmpty(t, a.SignUp(ctx, "ada@stellar.dev", "123").Error)

	require.Empty(t, a.SignUp(ctx, "ada@stellar.dev", "secret123").Error)
	assert.Equal(t, msgEmailTaken, a.SignUp(ctx, "ADA@stellar.dev", "secret456").Error)
}

func TestGuestSignIn(t *testing.T) {
	a := newTestProvider(t)
	ctx := context.Background()

	result := a.SignInAsGuest(ctx)
	require.Empty(t, result.Error)
	assert.True(t, result.IsGuest)
	assert.True(t, result.User.IsGuest)
	assert.True(t, strings.HasPrefix(result.User.Email, "guest_"))
	assert.True(t, strings.HasSuffix(result.User.Email, "@"+GuestDomain))

	other := a.SignInAsGuest(ctx)
	require.Empty(t, other.Error)
	assert.NotEqual(t, result.User.Email, other.User.Email)

	session := a.GetSession(ctx, result.Session.Token)
	assert.True(t, session.IsGuest)
}

func TestSignOutAndEvents(t *testing.T) {
	a := newTestProvider(t)
	ctx := context.Background()

	var events []types.AuthEvent
	unsubscribe := a.Subscribe(func(event types.AuthEvent, _ *types.AuthSession) {
		events = append(events, event)
	})

	result := a.SignUp(ctx, "ada@stellar.dev", "secret123")
	require.Empty(t, a.SignOut(ctx, result.Session.Token).Error)
	assert.Equal(t, msgInvalidToken, a.GetSession(ctx, result.Session.Token).Error)
	assert.Equal(t, []types.AuthEvent{types.EventSignedIn, types.EventSignedOut}, events)

	unsubscribe()
	a.SignIn(ctx, "ada@stellar.dev", "secret123")
	assert.Len(t, events, 2)
}

func TestSessionExpiry(t *testing.T) {
	a := newTestProvider(t)
	ctx := context.Background()
	now := time.Now()
	a.WithClock(func() time.Time { return now })

	var expired bool
	a.Subscribe(func(event types.AuthEvent, _ *types.AuthSession) {
		if event == types.EventExpired {
			expired = true
		}
	})

	result := a.SignUp(ctx, "ada@stellar.dev", "secret123")
	now = now.Add(2 * time.Hour)

	assert.Equal(t, msgExpired, a.GetSession(ctx, result.Session.Token).Error)
	assert.True(t, expired)
	assert.Equal(t, msgInvalidToken, a.GetSession(ctx, result.Session.Token).Error)
}

func TestSessionSurvivesRestart(t *testing.T) {
	db, err := persist.OpenDB(persist.MemoryDSN)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	first := NewProvider(db, time.Hour, nil)
	result := first.SignUp(ctx, "ada@stellar.dev", "secret123")
	require.Empty(t, result.Error)

	second := NewProvider(db, time.Hour, nil)
	session := second.GetSession(ctx, result.Session.Token)
	require.Empty(t, session.Error)
	assert.Equal(t, "ada@stellar.dev", session.User.Email)

	user, err := second.User(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)

	_, err = second.User(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPurgeExpired(t *testing.T) {
	a := newTestProvider(t)
	ctx := context.Background()
	now := time.Now()
	a.WithClock(func() time.Time { return now })

	a.SignUp(ctx, "ada@stellar.dev", "secret123")
	a.SignInAsGuest(ctx)
	now = now.Add(2 * time.Hour)

	removed, err := a.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}
