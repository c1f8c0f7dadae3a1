package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

func createBuyer(t *testing.T, b *Backend, req types.CreateBuyerRequest) *types.Buyer {
	t.Helper()
	if req.Email == "" {
		req.Email = "buyer@example.it"
	}
	buyer, err := b.Buyers().Create(req)
	require.NoError(t, err)
	return buyer
}

func TestBuyerCreateAndGet(t *testing.T) {
	b, clock := setupBackend(t)

	buyer := createBuyer(t, b, types.CreateBuyerRequest{
		Name:           "Fondo Adriatico",
		BudgetMin:      1000000,
		BudgetMax:      5000000,
		Zones:          []string{"Rimini", "Riccione", "Rimini"},
		PreferredTypes: []types.PropertyType{types.PropertyHotel, types.PropertyResidence},
		Level:          types.LevelFund,
		Tags:           []string{"mare"},
	})

	assert.Equal(t, types.DefaultCurrency, buyer.Currency)
	assert.Equal(t, []string{"Riccione", "Rimini"}, buyer.Zones)
	assert.Equal(t, []types.PropertyType{types.PropertyHotel, types.PropertyResidence}, buyer.PreferredTypes)
	assert.Equal(t, []string{"mare"}, buyer.Tags)
	assert.Equal(t, types.LevelFund, buyer.Level)
	assert.Nil(t, buyer.LastContact)
	assert.True(t, buyer.CreatedAt.Equal(clock.Now()))

	got, err := b.Buyers().GetByID(buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, buyer, got)

	missing, err := b.Buyers().GetByID("missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBuyerCreateWithoutLevel(t *testing.T) {
	b, _ := setupBackend(t)

	buyer := createBuyer(t, b, types.CreateBuyerRequest{Name: "Privato"})
	assert.Empty(t, buyer.Level)
	assert.Equal(t, []string{}, buyer.Zones)
	assert.Equal(t, []types.PropertyType{}, buyer.PreferredTypes)
	assert.Equal(t, []string{}, buyer.Tags)
}

func TestBuyerCreateRejectsUnknownPreferredType(t *testing.T) {
	b, _ := setupBackend(t)

	_, err := b.Buyers().Create(types.CreateBuyerRequest{
		Name:           "Sbagliato",
		Email:          "x@y.it",
		PreferredTypes: []types.PropertyType{"castello"},
	})
	assert.ErrorIs(t, err, types.ErrConstraint)

	n, err := b.Buyers().Count()
	require.NoError(t, err)
	assert.Zero(t, n, "buyer row rolled back with its associations")
}

func TestBuyerGetAllFilters(t *testing.T) {
	b, clock := setupBackend(t)

	createBuyer(t, b, types.CreateBuyerRequest{
		Name: "Mario Conti", Email: "mario@conti.it", BudgetMin: 100000, BudgetMax: 400000,
		Zones: []string{"Roma"}, Level: types.LevelPrivate,
	})
	clock.Advance(time.Minute)
	createBuyer(t, b, types.CreateBuyerRequest{
		Name: "Gruppo Laguna", Company: "Laguna Spa", Email: "info@laguna.it", BudgetMin: 5000000, BudgetMax: 20000000,
		Zones: []string{"Venezia", "Roma"}, Level: types.LevelHotelGroup, Tags: []string{"premium"},
	})
	clock.Advance(time.Minute)
	createBuyer(t, b, types.CreateBuyerRequest{
		Name: "Sara Fabbri", Email: "sara@fabbri.it", BudgetMin: 800000, BudgetMax: 1500000,
		Zones: []string{"Firenze"}, Level: types.LevelInvestor,
	})

	tests := []struct {
		name   string
		filter types.BuyerFilter
		want   []string
	}{
		{"all newest first", types.BuyerFilter{}, []string{"Sara Fabbri", "Gruppo Laguna", "Mario Conti"}},
		{"search company", types.BuyerFilter{Search: "laguna spa"}, []string{"Gruppo Laguna"}},
		{"search email", types.BuyerFilter{Search: "fabbri.it"}, []string{"Sara Fabbri"}},
		{"level", types.BuyerFilter{Level: types.LevelPrivate}, []string{"Mario Conti"}},
		{"zone", types.BuyerFilter{Zone: "Roma"}, []string{"Gruppo Laguna", "Mario Conti"}},
		{"min budget", types.BuyerFilter{MinBudget: ptr(int64(1000000))}, []string{"Sara Fabbri", "Gruppo Laguna"}},
		{"max budget", types.BuyerFilter{MaxBudget: ptr(int64(900000))}, []string{"Sara Fabbri", "Mario Conti"}},
		{"budget window", types.BuyerFilter{MinBudget: ptr(int64(450000)), MaxBudget: ptr(int64(700000))}, []string{}},
		{"tag", types.BuyerFilter{Tag: "premium"}, []string{"Gruppo Laguna"}},
		{"zone and level", types.BuyerFilter{Zone: "Roma", Level: types.LevelHotelGroup}, []string{"Gruppo Laguna"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buyers, err := b.Buyers().GetAll(tt.filter)
			require.NoError(t, err)
			names := []string{}
			for _, buyer := range buyers {
				names = append(names, buyer.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestBuyerUpdate(t *testing.T) {
	b, clock := setupBackend(t)
	buyer := createBuyer(t, b, types.CreateBuyerRequest{
		Name:           "Elena Gatti",
		Zones:          []string{"Roma", "Milano"},
		PreferredTypes: []types.PropertyType{types.PropertyBnB},
		Tags:           []string{"urgente"},
		Level:          types.LevelPrivate,
	})

	t.Run("replacing zones leaves only the new set", func(t *testing.T) {
		clock.Advance(time.Hour)
		updated, err := b.Buyers().Update(types.UpdateBuyerRequest{ID: buyer.ID, Zones: types.Some([]string{"Roma"})})
		require.NoError(t, err)
		assert.Equal(t, []string{"Roma"}, updated.Zones)
		assert.Equal(t, []types.PropertyType{types.PropertyBnB}, updated.PreferredTypes)
		assert.Equal(t, []string{"urgente"}, updated.Tags)
		assert.True(t, updated.UpdatedAt.Equal(clock.Now()))
		assert.Equal(t, 1, countRows(t, b, "SELECT COUNT(*) FROM buyer_zones WHERE buyer_id = ?", buyer.ID))
	})

	t.Run("scalar fields and cleared level", func(t *testing.T) {
		updated, err := b.Buyers().Update(types.UpdateBuyerRequest{
			ID:        buyer.ID,
			BudgetMax: types.Some(int64(750000)),
			Currency:  types.Some("CHF"),
			Level:     types.Some(types.BuyerLevel("")),
			Tags:      types.Some([]string{}),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(750000), updated.BudgetMax)
		assert.Equal(t, "CHF", updated.Currency)
		assert.Empty(t, updated.Level)
		assert.Empty(t, updated.Tags)
		assert.Equal(t, "Elena Gatti", updated.Name)
	})

	t.Run("empty request is a no-op", func(t *testing.T) {
		before, err := b.Buyers().GetByID(buyer.ID)
		require.NoError(t, err)
		clock.Advance(time.Hour)
		after, err := b.Buyers().Update(types.UpdateBuyerRequest{ID: buyer.ID})
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("unknown level violates a constraint", func(t *testing.T) {
		_, err := b.Buyers().Update(types.UpdateBuyerRequest{ID: buyer.ID, Level: types.Some(types.BuyerLevel("banca"))})
		assert.ErrorIs(t, err, types.ErrConstraint)
	})

	t.Run("missing buyer is not found", func(t *testing.T) {
		_, err := b.Buyers().Update(types.UpdateBuyerRequest{ID: "missing", Notes: types.Some("x")})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestBuyerUpdateLastContact(t *testing.T) {
	b, clock := setupBackend(t)
	buyer := createBuyer(t, b, types.CreateBuyerRequest{Name: "Paolo Riva"})

	clock.Advance(24 * time.Hour)
	require.NoError(t, b.Buyers().UpdateLastContact(buyer.ID))

	got, err := b.Buyers().GetByID(buyer.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastContact)
	assert.True(t, got.LastContact.Equal(clock.Now()))
	assert.True(t, got.UpdatedAt.Equal(buyer.UpdatedAt), "updated_at is left alone")

	assert.ErrorIs(t, b.Buyers().UpdateLastContact("missing"), types.ErrNotFound)
}

func TestBuyerDeleteCascades(t *testing.T) {
	b, _ := setupBackend(t)
	buyer := createBuyer(t, b, types.CreateBuyerRequest{
		Name:  "Da Eliminare",
		Zones: []string{"Roma"},
		Tags:  []string{"vecchio"},
	})
	p, err := b.Properties().Create(types.CreatePropertyRequest{Name: "Hotel Resta"})
	require.NoError(t, err)
	_, err = b.Deals().Create(types.CreateDealRequest{BuyerID: buyer.ID, PropertyID: p.ID, Subject: types.SubjectSale})
	require.NoError(t, err)

	require.NoError(t, b.Buyers().Delete(buyer.ID))

	for _, table := range []string{"buyer_zones", "buyer_tags", "buyer_preferred_types", "deals"} {
		assert.Zero(t, countRows(t, b, "SELECT COUNT(*) FROM "+table+" WHERE buyer_id = ?", buyer.ID), table)
	}
	still, err := b.Properties().GetByID(p.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}
