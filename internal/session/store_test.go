package session

import (
	"context"
	"testing"

	apperrors "wedding-guest-list/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract checks behaviour shared by every Store implementation.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		store := newStore(t)

		created, err := store.Create(ctx, "sarah")
		require.NoError(t, err)
		assert.NotEmpty(t, created.Token)
		assert.True(t, created.Authenticated())

		found, err := store.Get(ctx, created.Token)
		require.NoError(t, err)
		assert.Equal(t, "sarah", found.Username)
		assert.Equal(t, created.Token, found.Token)
	})

	t.Run("AnonymousSession", func(t *testing.T) {
		store := newStore(t)

		created, err := store.Create(ctx, "")
		require.NoError(t, err)

		found, err := store.Get(ctx, created.Token)
		require.NoError(t, err)
		assert.False(t, found.Authenticated())
	})

	t.Run("UniqueTokens", func(t *testing.T) {
		store := newStore(t)

		a, err := store.Create(ctx, "john")
		require.NoError(t, err)
		b, err := store.Create(ctx, "john")
		require.NoError(t, err)
		assert.NotEqual(t, a.Token, b.Token)
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Get(ctx, "no-such-token")
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

		_, err = store.Get(ctx, "")
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, "emma")
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, created.Token))

		_, err = store.Get(ctx, created.Token)
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
		require.NoError(t, store.Delete(ctx, created.Token))
	})

	t.Run("Flashes_PoppedOnce", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, "")
		require.NoError(t, err)

		require.NoError(t, store.AddFlash(ctx, created.Token, Flash{Category: FlashWarning, Message: "Please log in to access this page."}))
		require.NoError(t, store.AddFlash(ctx, created.Token, Flash{Category: FlashDanger, Message: "Invalid username or password."}))

		flashes, err := store.PopFlashes(ctx, created.Token)
		require.NoError(t, err)
		assert.Equal(t, []Flash{
			{Category: FlashWarning, Message: "Please log in to access this page."},
			{Category: FlashDanger, Message: "Invalid username or password."},
		}, flashes)

		flashes, err = store.PopFlashes(ctx, created.Token)
		require.NoError(t, err)
		assert.Empty(t, flashes)
	})

	t.Run("AddFlash_UnknownSession", func(t *testing.T) {
		store := newStore(t)

		err := store.AddFlash(ctx, "no-such-token", Flash{Category: FlashInfo, Message: "Goodbye, User!"})
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

		flashes, err := store.PopFlashes(ctx, "no-such-token")
		require.NoError(t, err)
		assert.Empty(t, flashes)
	})

	t.Run("AddFlash_DeletedSession", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, "michael")
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, created.Token))

		err = store.AddFlash(ctx, created.Token, Flash{Category: FlashSuccess, Message: "late"})
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})
}
