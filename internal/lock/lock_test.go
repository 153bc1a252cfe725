package lock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payments-gateway/internal/lock"
)

func TestMemoryLocker(t *testing.T) {
	locker := lock.NewMemoryLocker()
	ctx := context.Background()

	release, acquired, err := locker.Acquire(ctx, "42")
	require.NoError(t, err)
	require.True(t, acquired)

	t.Run("contended order is refused without error", func(t *testing.T) {
		_, acquired, err := locker.Acquire(ctx, "42")
		require.NoError(t, err)
		assert.False(t, acquired)
	})

	t.Run("other orders are independent", func(t *testing.T) {
		releaseOther, acquired, err := locker.Acquire(ctx, "43")
		require.NoError(t, err)
		assert.True(t, acquired)
		releaseOther()
	})

	t.Run("release frees the lock", func(t *testing.T) {
		release()

		releaseAgain, acquired, err := locker.Acquire(ctx, "42")
		require.NoError(t, err)
		assert.True(t, acquired)
		releaseAgain()
	})
}
