package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

func TestSeedDemo(t *testing.T) {
	b, clock := setupBackend(t)

	seeded, err := b.SeedDemo()
	require.NoError(t, err)
	assert.True(t, seeded)

	sellers, err := b.Sellers().Count()
	require.NoError(t, err)
	assert.Equal(t, len(demoSellers), sellers)
	buyers, err := b.Buyers().Count()
	require.NoError(t, err)
	assert.Equal(t, len(demoBuyers), buyers)
	deals, err := b.Deals().Count()
	require.NoError(t, err)
	assert.Equal(t, len(demoBuyers), deals)

	withIncarico, err := b.Properties().GetWithIncarico()
	require.NoError(t, err)
	require.Len(t, withIncarico, 1)
	require.NotNil(t, withIncarico[0].IncaricoExpiry)
	assert.Equal(t, 20, withIncarico[0].IncaricoExpiry.DaysUntil(clock.Now()))

	t.Run("second run does nothing", func(t *testing.T) {
		seeded, err := b.SeedDemo()
		require.NoError(t, err)
		assert.False(t, seeded)

		n, err := b.Sellers().Count()
		require.NoError(t, err)
		assert.Equal(t, len(demoSellers), n)
	})
}

func TestSeedDemoSkipsWhenAnyDataExists(t *testing.T) {
	b, _ := setupBackend(t)
	_, err := b.Properties().Create(types.CreatePropertyRequest{Name: "Hotel Esistente"})
	require.NoError(t, err)

	seeded, err := b.SeedDemo()
	require.NoError(t, err)
	assert.False(t, seeded)

	n, err := b.Sellers().Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}
