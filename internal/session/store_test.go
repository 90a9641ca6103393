package session

import (
	"context"
	"testing"
	"time"

	"dormgate/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		tenant := models.Tenant{ID: 7, FullName: "A. Tenant", Email: "a@dorm.example"}
		sess, err := store.Create(ctx, "backend-token", tenant)
		require.NoError(t, err)
		require.NotEmpty(t, sess.ID)

		got, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "backend-token", got.Token)
		assert.Equal(t, int64(7), got.Tenant.ID)
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := store.Get(ctx, "no-such-session")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Delete", func(t *testing.T) {
		sess, err := store.Create(ctx, "tok", models.Tenant{ID: 1})
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, sess.ID))

		got, _ := store.Get(ctx, sess.ID)
		assert.Nil(t, got)

		// deleting again is fine
		require.NoError(t, store.Delete(ctx, sess.ID))
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		sess, err := store.Create(ctx, "tok", models.Tenant{ID: 2})
		require.NoError(t, err)

		s.FastForward(2 * time.Hour)

		got, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(50 * time.Millisecond)
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		sess, err := store.Create(ctx, "tok", models.Tenant{ID: 3})
		require.NoError(t, err)

		got, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "tok", got.Token)
	})

	t.Run("Expiry", func(t *testing.T) {
		sess, err := store.Create(ctx, "tok", models.Tenant{ID: 4})
		require.NoError(t, err)

		time.Sleep(60 * time.Millisecond)

		got, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Delete", func(t *testing.T) {
		sess, err := store.Create(ctx, "tok", models.Tenant{ID: 5})
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, sess.ID))
		got, _ := store.Get(ctx, sess.ID)
		assert.Nil(t, got)
	})
}
