package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnection(t *testing.T) {
	t.Run("connect yields an available store", func(t *testing.T) {
		conn := Connect(0, nil)

		store, ok := conn.Available()
		require.True(t, ok)
		assert.NotNil(t, store)
		assert.NoError(t, conn.Reason())
	})

	t.Run("unavailable carries the reason", func(t *testing.T) {
		reason := errors.New("cache tier down")
		conn := Unavailable(reason)

		store, ok := conn.Available()
		assert.False(t, ok)
		assert.Nil(t, store)
		assert.Equal(t, reason, conn.Reason())
	})
}
