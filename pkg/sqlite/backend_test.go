package sqlite_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hotelcrm/pkg/sqlite"
	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

func TestNewBackend(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b := sqlite.NewBackend(sqlite.WithClock(func() time.Time { return now }))
	_, err := b.Open(types.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	defer b.Close()

	seller, err := b.Sellers().Create(types.CreateSellerRequest{Name: "Giulia Bianchi"})
	require.NoError(t, err)
	assert.Equal(t, now, seller.CreatedAt)

	got, err := b.Sellers().GetByID(seller.ID)
	require.NoError(t, err)
	assert.Equal(t, "Giulia Bianchi", got.Name)

	dir := filepath.Join(t.TempDir(), "export")
	counts, err := b.ExportJSONL(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["sellers"])
	_, err = os.Stat(filepath.Join(dir, "sellers.jsonl"))
	assert.NoError(t, err)

	require.NoError(t, b.Close())
	_, err = b.Sellers().GetAll(types.SellerFilter{})
	assert.ErrorIs(t, err, types.ErrNotInitialized)
}
