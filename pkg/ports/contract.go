package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/pious/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTreeInfoStoreContract runs a suite of tests to verify that a TreeInfoStore
// implementation adheres to the defined interface contract.
func RunTreeInfoStoreContract(t *testing.T, store TreeInfoStore) {
	ctx := context.Background()
	key := "/trees/contract.cfr|1024|" + time.Now().Format("20060102150405")

	info := domain.TreeInfo{
		Board:          []string{"Qs", "Jh", "2h"},
		Pot:            60,
		EffectiveStack: 970,
		RangeOOP:       []string{"AA", "KK"},
		Fields:         map[string]any{"Rake.Enabled": false},
		Lines:          []string{"r:0", "r:0:c"},
	}

	t.Run("Put and Get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, info))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, info.Board, got.Board)
		assert.Equal(t, 60, got.Pot)
		assert.Equal(t, 970, got.EffectiveStack)
		assert.Equal(t, info.RangeOOP, got.RangeOOP)
		assert.Equal(t, info.Lines, got.Lines)
		assert.Equal(t, false, got.Fields["Rake.Enabled"])
	})

	t.Run("Get Isolated From Caller", func(t *testing.T) {
		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		got.Board[0] = "As"

		again, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "Qs", again.Board[0])
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))
		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.NoError(t, store.Delete(ctx, key), "deleting a missing key is not an error")
	})
}
