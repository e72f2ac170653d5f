package keygate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keygate "github.com/keygate/keygate"
)

func newTestAuther(t *testing.T) (*keygate.Auther, *memoryUsers) {
	t.Helper()
	users := newMemoryUsers()
	auther := keygate.NewAuthenticator(users, newTestTokenService()).WithLogger(nopLogger{})
	return auther, users
}

func TestAuther_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and opens session", func(t *testing.T) {
		auther, users := newTestAuther(t)

		pair, user, err := auther.Signup(ctx, "A", "a@x.com", "longenough1")
		require.NoError(t, err)
		require.NotNil(t, pair)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)

		assert.Equal(t, keygate.RoleUser, user.Role)
		assert.NotEqual(t, "longenough1", user.PasswordHash)

		stored := users.storedRefreshToken(user.ID)
		assert.Equal(t, pair.RefreshToken, stored)
	})

	t.Run("duplicate email conflicts and creates no second record", func(t *testing.T) {
		auther, users := newTestAuther(t)

		_, first, err := auther.Signup(ctx, "A", "a@x.com", "longenough1")
		require.NoError(t, err)

		_, _, err = auther.Signup(ctx, "B", "a@x.com", "different-pass1")
		assert.ErrorIs(t, err, keygate.ErrEmailTaken)

		record, err := users.GetByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, record.ID)
		assert.Equal(t, "A", record.Name)
	})
}

func TestAuther_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts valid credentials", func(t *testing.T) {
		auther, users := newTestAuther(t)
		_, user, err := auther.Signup(ctx, "A", "a@x.com", "longenough1")
		require.NoError(t, err)

		pair, err := auther.Login(ctx, "a@x.com", "longenough1")
		require.NoError(t, err)
		assert.Equal(t, pair.RefreshToken, users.storedRefreshToken(user.ID))
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		auther, _ := newTestAuther(t)
		_, _, err := auther.Signup(ctx, "A", "a@x.com", "longenough1")
		require.NoError(t, err)

		_, errUnknown := auther.Login(ctx, "nobody@x.com", "longenough1")
		_, errWrongPwd := auther.Login(ctx, "a@x.com", "wrong-password")

		assert.ErrorIs(t, errUnknown, keygate.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPwd, keygate.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrongPwd.Error())
	})

	t.Run("second login supersedes the first session", func(t *testing.T) {
		auther, users := newTestAuther(t)
		_, user, err := auther.Signup(ctx, "A", "a@x.com", "longenough1")
		require.NoError(t, err)

		first, err := auther.Login(ctx, "a@x.com", "longenough1")
		require.NoError(t, err)
		second, err := auther.Login(ctx, "a@x.com", "longenough1")
		require.NoError(t, err)

		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
		assert.Equal(t, second.RefreshToken, users.storedRefreshToken(user.ID))
	})
}

func TestAuther_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("exchanges a live refresh token for a new access token", func(t *testing.T) {
		auther, users := newTestAuther(t)
		pair, user, err := auther.Signup(ctx, "A", "a@x.com", "longenough1")
		require.NoError(t, err)

		access, err := auther.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, access)

		// no rotation: the stored token is untouched
		assert.Equal(t, pair.RefreshToken, users.storedRefreshToken(user.ID))

		again, err := auther.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, again)
	})

	t.Run("rejects the empty token", func(t *testing.T) {
		auther, _ := newTestAuther(t)
		_, err := auther.Refresh(ctx, "")
		assert.ErrorIs(t, err, keygate.ErrMissingToken)
	})

	t.Run("rejects a forged token", func(t *testing.T) {
		auther, _ := newTestAuther(t)
		_, err := auther.Refresh(ctx, "forged.token.value")
		assert.ErrorIs(t, err, keygate.ErrInvalidToken)
	})

	t.Run("rejects a superseded token even though its signature verifies", func(t *testing.T) {
		auther, _ := newTestAuther(t)
		firstPair, _, err := auther.Signup(ctx, "A", "a@x.com", "longenough1")
		require.NoError(t, err)

		_, err = auther.Login(ctx, "a@x.com", "longenough1")
		require.NoError(t, err)

		_, err = auther.Refresh(ctx, firstPair.RefreshToken)
		assert.ErrorIs(t, err, keygate.ErrRefreshSuperseded)
	})

	t.Run("rejects a cleared token after logout", func(t *testing.T) {
		auther, _ := newTestAuther(t)
		pair, _, err := auther.Signup(ctx, "A", "a@x.com", "longenough1")
		require.NoError(t, err)

		require.NoError(t, auther.Logout(ctx, pair.RefreshToken))

		_, err = auther.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, keygate.ErrRefreshSuperseded)
	})
}

func TestAuther_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("clears the stored refresh token", func(t *testing.T) {
		auther, users := newTestAuther(t)
		pair, user, err := auther.Signup(ctx, "A", "a@x.com", "longenough1")
		require.NoError(t, err)

		require.NoError(t, auther.Logout(ctx, pair.RefreshToken))
		assert.Empty(t, users.storedRefreshToken(user.ID))
	})

	t.Run("is idempotent", func(t *testing.T) {
		auther, _ := newTestAuther(t)
		pair, _, err := auther.Signup(ctx, "A", "a@x.com", "longenough1")
		require.NoError(t, err)

		assert.NoError(t, auther.Logout(ctx, pair.RefreshToken))
		assert.NoError(t, auther.Logout(ctx, pair.RefreshToken))
		assert.NoError(t, auther.Logout(ctx, ""))
	})

	t.Run("succeeds without mutation for an invalid token", func(t *testing.T) {
		auther, users := newTestAuther(t)
		pair, user, err := auther.Signup(ctx, "A", "a@x.com", "longenough1")
		require.NoError(t, err)

		assert.NoError(t, auther.Logout(ctx, "junk.token.here"))
		assert.Equal(t, pair.RefreshToken, users.storedRefreshToken(user.ID))
	})
}

func TestUserLoggedInTracksSession(t *testing.T) {
	ctx := context.Background()
	auther, users := newTestAuther(t)

	pair, user, err := auther.Signup(ctx, "A", "a@x.com", "longenough1")
	require.NoError(t, err)

	record, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, record.LoggedIn())

	require.NoError(t, auther.Logout(ctx, pair.RefreshToken))

	record, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, record.LoggedIn())
}
