package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, payload, ttl)
	return args.Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

func TestFailoverCache(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary := new(mockCache)
		fallback := new(mockCache)
		c := NewFailoverCache(primary, fallback, &logger)

		primary.On("Get", ctx, "k").Return([]byte("v"), nil).Once()

		got, err := c.Get(ctx, "k")
		assert.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackServes", func(t *testing.T) {
		primary := new(mockCache)
		fallback := new(mockCache)
		c := NewFailoverCache(primary, fallback, &logger)

		primary.On("Get", ctx, "k").Return(nil, errors.New("redis down")).Once()
		fallback.On("Get", ctx, "k").Return([]byte("fb"), nil).Once()

		got, err := c.Get(ctx, "k")
		assert.NoError(t, err)
		assert.Equal(t, []byte("fb"), got)
		assert.True(t, c.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackBeforeRetryWindow", func(t *testing.T) {
		primary := new(mockCache)
		fallback := new(mockCache)
		c := NewFailoverCache(primary, fallback, &logger)
		c.isDown.Store(true)
		c.lastCheck.Store(time.Now().UnixNano())

		fallback.On("Get", ctx, "k").Return([]byte("fb"), nil).Once()

		got, err := c.Get(ctx, "k")
		assert.NoError(t, err)
		assert.Equal(t, []byte("fb"), got)
		primary.AssertNotCalled(t, "Get", ctx, "k")
	})

	t.Run("RecoveryAfterWindow", func(t *testing.T) {
		primary := new(mockCache)
		fallback := new(mockCache)
		c := NewFailoverCache(primary, fallback, &logger)
		c.isDown.Store(true)
		c.lastCheck.Store(time.Now().Add(-2 * time.Minute).UnixNano())

		primary.On("Get", ctx, "k").Return([]byte("back"), nil).Once()

		got, err := c.Get(ctx, "k")
		assert.NoError(t, err)
		assert.Equal(t, []byte("back"), got)
		assert.False(t, c.isDown.Load())
	})

	t.Run("SetFallsBack", func(t *testing.T) {
		primary := new(mockCache)
		fallback := new(mockCache)
		c := NewFailoverCache(primary, fallback, &logger)

		primary.On("Set", ctx, "k", []byte("v"), time.Minute).Return(errors.New("down")).Once()
		fallback.On("Set", ctx, "k", []byte("v"), time.Minute).Return(nil).Once()

		assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("InvalidateReachesBothTiers", func(t *testing.T) {
		primary := new(mockCache)
		fallback := new(mockCache)
		c := NewFailoverCache(primary, fallback, &logger)

		primary.On("Invalidate", ctx, "payments:").Return(nil).Once()
		fallback.On("Invalidate", ctx, "payments:").Return(nil).Once()

		assert.NoError(t, c.Invalidate(ctx, "payments:"))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}
