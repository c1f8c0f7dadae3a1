package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

func tagNamesOf(tags []types.Tag) []string {
	names := []string{}
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func TestTagCreateIsIdempotent(t *testing.T) {
	b, _ := setupBackend(t)

	first, err := b.Tags().Create(types.CreateTagRequest{Name: "lusso", Color: "#d4af37"})
	require.NoError(t, err)
	second, err := b.Tags().Create(types.CreateTagRequest{Name: "  lusso ", Color: "#000000"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "#d4af37", second.Color, "existing tag is returned unchanged")

	n, err := b.Tags().Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	other, err := b.Tags().Create(types.CreateTagRequest{Name: "Lusso"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID, "names are case sensitive")
}

func TestTagLookups(t *testing.T) {
	b, _ := setupBackend(t)

	created, err := b.Tags().Create(types.CreateTagRequest{Name: "centro"})
	require.NoError(t, err)

	byName, err := b.Tags().GetByName("centro")
	require.NoError(t, err)
	assert.Equal(t, created, byName)

	byID, err := b.Tags().GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, byID)

	missing, err := b.Tags().GetByName("periferia")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTagUsageLists(t *testing.T) {
	b, _ := setupBackend(t)

	createBuyer(t, b, types.CreateBuyerRequest{Name: "Uno", Tags: []string{"vip", "estero"}})
	createBuyer(t, b, types.CreateBuyerRequest{Name: "Due", Tags: []string{"vip"}})
	_, err := b.Properties().Create(types.CreatePropertyRequest{Name: "Hotel Tag", Tags: []string{"vip", "piscina"}})
	require.NoError(t, err)
	_, err = b.Tags().Create(types.CreateTagRequest{Name: "inutilizzato"})
	require.NoError(t, err)

	all, err := b.Tags().GetAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"estero", "inutilizzato", "piscina", "vip"}, tagNamesOf(all))

	buyerTags, err := b.Tags().GetBuyerTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"estero", "vip"}, tagNamesOf(buyerTags))

	propertyTags, err := b.Tags().GetPropertyTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"piscina", "vip"}, tagNamesOf(propertyTags))
}

func TestTagUpdateAndDelete(t *testing.T) {
	b, _ := setupBackend(t)

	buyer := createBuyer(t, b, types.CreateBuyerRequest{Name: "Con Tag", Tags: []string{"caldo"}})
	tag, err := b.Tags().GetByName("caldo")
	require.NoError(t, err)
	require.NotNil(t, tag)

	t.Run("rename shows through the owners", func(t *testing.T) {
		updated, err := b.Tags().Update(types.UpdateTagRequest{ID: tag.ID, Name: types.Some("rovente"), Color: types.Some("#ff0000")})
		require.NoError(t, err)
		assert.Equal(t, "rovente", updated.Name)
		assert.Equal(t, "#ff0000", updated.Color)

		got, err := b.Buyers().GetByID(buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"rovente"}, got.Tags)
	})

	t.Run("rename onto an existing name violates a constraint", func(t *testing.T) {
		_, err := b.Tags().Create(types.CreateTagRequest{Name: "freddo"})
		require.NoError(t, err)
		_, err = b.Tags().Update(types.UpdateTagRequest{ID: tag.ID, Name: types.Some("freddo")})
		assert.ErrorIs(t, err, types.ErrConstraint)
	})

	t.Run("missing tag is not found", func(t *testing.T) {
		_, err := b.Tags().Update(types.UpdateTagRequest{ID: "missing", Color: types.Some("#fff")})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("delete unlinks owners", func(t *testing.T) {
		require.NoError(t, b.Tags().Delete(tag.ID))
		got, err := b.Buyers().GetByID(buyer.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Tags)
	})
}
