package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

// dealFixture creates a buyer and a property to open deals against.
func dealFixture(t *testing.T, b *Backend) (buyerID, propertyID string) {
	t.Helper()
	buyer := createBuyer(t, b, types.CreateBuyerRequest{Name: "Acquirente"})
	p, err := b.Properties().Create(types.CreatePropertyRequest{Name: "Hotel Trattativa"})
	require.NoError(t, err)
	return buyer.ID, p.ID
}

func createDeal(t *testing.T, b *Backend, req types.CreateDealRequest) *types.Deal {
	t.Helper()
	if req.Subject == "" {
		req.Subject = types.SubjectSale
	}
	d, err := b.Deals().Create(req)
	require.NoError(t, err)
	return d
}

func TestDealCreate(t *testing.T) {
	b, clock := setupBackend(t)
	buyerID, propertyID := dealFixture(t, b)

	t.Run("defaults status to nuovo_contatto", func(t *testing.T) {
		d := createDeal(t, b, types.CreateDealRequest{BuyerID: buyerID, PropertyID: propertyID})
		assert.Equal(t, types.StatusNewContact, d.Status)
		assert.Equal(t, types.SubjectSale, d.Subject)
		assert.Equal(t, []types.Activity{}, d.Activities)
		assert.True(t, d.CreatedAt.Equal(clock.Now()))
		assert.Nil(t, d.PriceOffered)
	})

	t.Run("stores commissions and payments", func(t *testing.T) {
		commission := 2.0
		d := createDeal(t, b, types.CreateDealRequest{
			BuyerID:           buyerID,
			PropertyID:        propertyID,
			Status:            types.StatusInProgress,
			Subject:           types.SubjectManagement,
			PriceRequested:    ptr(int64(900000)),
			BuyerCommission:   &commission,
			BuyerCollaborator: "Studio Neri",
			BuyerPayment:      types.PaymentInstalments,
			SellerDepositPaid: true,
		})
		got, err := b.Deals().GetByID(d.ID)
		require.NoError(t, err)
		assert.Equal(t, d, got)
		require.NotNil(t, got.PriceRequested)
		assert.Equal(t, int64(900000), *got.PriceRequested)
		require.NotNil(t, got.BuyerCommission)
		assert.Equal(t, 2.0, *got.BuyerCommission)
		assert.Nil(t, got.SellerCommission)
		assert.Equal(t, types.PaymentInstalments, got.BuyerPayment)
		assert.Equal(t, types.PaymentUnset, got.SellerPayment)
		assert.False(t, got.BuyerDepositPaid)
		assert.True(t, got.SellerDepositPaid)
	})

	t.Run("unknown buyer violates a constraint", func(t *testing.T) {
		_, err := b.Deals().Create(types.CreateDealRequest{BuyerID: "nobody", PropertyID: propertyID, Subject: types.SubjectSale})
		assert.ErrorIs(t, err, types.ErrConstraint)
	})

	t.Run("unknown property violates a constraint", func(t *testing.T) {
		_, err := b.Deals().Create(types.CreateDealRequest{BuyerID: buyerID, PropertyID: "nowhere", Subject: types.SubjectSale})
		assert.ErrorIs(t, err, types.ErrConstraint)
	})

	t.Run("unknown status violates a constraint", func(t *testing.T) {
		_, err := b.Deals().Create(types.CreateDealRequest{
			BuyerID: buyerID, PropertyID: propertyID, Subject: types.SubjectSale, Status: "sospeso",
		})
		assert.ErrorIs(t, err, types.ErrConstraint)
	})
}

func TestDealQueries(t *testing.T) {
	b, clock := setupBackend(t)
	buyerID, propertyID := dealFixture(t, b)
	other := createBuyer(t, b, types.CreateBuyerRequest{Name: "Altro"})

	first := createDeal(t, b, types.CreateDealRequest{BuyerID: buyerID, PropertyID: propertyID})
	clock.Advance(time.Minute)
	second := createDeal(t, b, types.CreateDealRequest{BuyerID: other.ID, PropertyID: propertyID, Subject: types.SubjectLease})
	clock.Advance(time.Minute)
	third := createDeal(t, b, types.CreateDealRequest{BuyerID: buyerID, PropertyID: propertyID, Status: types.StatusClosedWon})

	ids := func(deals []types.Deal) []string {
		out := []string{}
		for _, d := range deals {
			out = append(out, d.ID)
		}
		return out
	}

	all, err := b.Deals().GetAll(types.DealFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(all))

	byBuyer, err := b.Deals().GetByBuyer(buyerID)
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, first.ID}, ids(byBuyer))

	byProperty, err := b.Deals().GetByProperty(propertyID)
	require.NoError(t, err)
	assert.Len(t, byProperty, 3)

	byStatus, err := b.Deals().GetByStatus(types.StatusClosedWon)
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID}, ids(byStatus))

	bySubject, err := b.Deals().GetAll(types.DealFilter{Subject: types.SubjectLease})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, ids(bySubject))

	active, err := b.Deals().CountActive()
	require.NoError(t, err)
	closed, err := b.Deals().CountClosed()
	require.NoError(t, err)
	total, err := b.Deals().Count()
	require.NoError(t, err)
	assert.Equal(t, 2, active)
	assert.Equal(t, 1, closed)
	assert.Equal(t, total, active+closed)
}

func TestDealGetStaleDeals(t *testing.T) {
	b, clock := setupBackend(t)
	buyerID, propertyID := dealFixture(t, b)

	old := createDeal(t, b, types.CreateDealRequest{BuyerID: buyerID, PropertyID: propertyID})
	closedOld := createDeal(t, b, types.CreateDealRequest{BuyerID: buyerID, PropertyID: propertyID, Status: types.StatusClosedLost})
	clock.Advance(10 * 24 * time.Hour)
	recent := createDeal(t, b, types.CreateDealRequest{BuyerID: buyerID, PropertyID: propertyID})

	// old is now exactly 30 days behind.
	clock.Advance(20 * 24 * time.Hour)
	stale, err := b.Deals().GetStaleDeals(30)
	require.NoError(t, err)
	assert.Empty(t, stale, "a deal updated exactly at the cutoff is not stale")

	clock.Advance(time.Millisecond)
	stale, err = b.Deals().GetStaleDeals(30)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, old.ID, stale[0].ID)

	stale, err = b.Deals().GetStaleDeals(7)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	assert.Equal(t, old.ID, stale[0].ID, "oldest first")
	assert.Equal(t, recent.ID, stale[1].ID)
	for _, d := range stale {
		assert.NotEqual(t, closedOld.ID, d.ID, "closed deals are never stale")
	}

	_, err = b.Activities().Create(types.CreateActivityRequest{DealID: old.ID, Type: types.ActivityCall, Description: "richiamato"})
	require.NoError(t, err)
	stale, err = b.Deals().GetStaleDeals(7)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, recent.ID, stale[0].ID, "logging an activity refreshes the deal")
}

func TestDealUpdate(t *testing.T) {
	b, clock := setupBackend(t)
	buyerID, propertyID := dealFixture(t, b)
	d := createDeal(t, b, types.CreateDealRequest{BuyerID: buyerID, PropertyID: propertyID, PriceOffered: ptr(int64(500000))})

	t.Run("changes provided fields", func(t *testing.T) {
		clock.Advance(time.Hour)
		updated, err := b.Deals().Update(types.UpdateDealRequest{
			ID:              d.ID,
			Status:          types.Some(types.StatusOfferSent),
			PriceNegotiated: types.Some(ptr(int64(480000))),
			SellerPayment:   types.Some(types.PaymentPaid),
			Notes:           types.Some("controproposta"),
		})
		require.NoError(t, err)
		assert.Equal(t, types.StatusOfferSent, updated.Status)
		require.NotNil(t, updated.PriceNegotiated)
		assert.Equal(t, int64(480000), *updated.PriceNegotiated)
		require.NotNil(t, updated.PriceOffered)
		assert.Equal(t, int64(500000), *updated.PriceOffered)
		assert.Equal(t, types.PaymentPaid, updated.SellerPayment)
		assert.Equal(t, "controproposta", updated.Notes)
		assert.True(t, updated.UpdatedAt.Equal(clock.Now()))
	})

	t.Run("null clears a price", func(t *testing.T) {
		updated, err := b.Deals().Update(types.UpdateDealRequest{ID: d.ID, PriceOffered: types.Some[*int64](nil)})
		require.NoError(t, err)
		assert.Nil(t, updated.PriceOffered)
	})

	t.Run("empty request is a no-op", func(t *testing.T) {
		before, err := b.Deals().GetByID(d.ID)
		require.NoError(t, err)
		clock.Advance(time.Hour)
		after, err := b.Deals().Update(types.UpdateDealRequest{ID: d.ID})
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("invalid payment violates a constraint", func(t *testing.T) {
		_, err := b.Deals().Update(types.UpdateDealRequest{ID: d.ID, BuyerPayment: types.Some(types.PaymentStatus("forse"))})
		assert.ErrorIs(t, err, types.ErrConstraint)
	})

	t.Run("missing deal is not found", func(t *testing.T) {
		_, err := b.Deals().Update(types.UpdateDealRequest{ID: "missing", Notes: types.Some("x")})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestDealUpdateStatus(t *testing.T) {
	b, clock := setupBackend(t)
	buyerID, propertyID := dealFixture(t, b)
	d := createDeal(t, b, types.CreateDealRequest{BuyerID: buyerID, PropertyID: propertyID, Notes: "tenere"})

	clock.Advance(time.Hour)
	updated, err := b.Deals().UpdateStatus(d.ID, types.StatusDueDiligence)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDueDiligence, updated.Status)
	assert.Equal(t, "tenere", updated.Notes)
	assert.True(t, updated.UpdatedAt.Equal(clock.Now()))

	_, err = b.Deals().UpdateStatus("missing", types.StatusInProgress)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = b.Deals().UpdateStatus(d.ID, "sospeso")
	assert.ErrorIs(t, err, types.ErrConstraint)
}

func TestDealDeleteRemovesActivities(t *testing.T) {
	b, _ := setupBackend(t)
	buyerID, propertyID := dealFixture(t, b)
	d := createDeal(t, b, types.CreateDealRequest{BuyerID: buyerID, PropertyID: propertyID})
	_, err := b.Activities().Create(types.CreateActivityRequest{DealID: d.ID, Type: types.ActivityNote, Description: "prima"})
	require.NoError(t, err)

	require.NoError(t, b.Deals().Delete(d.ID))
	assert.Zero(t, countRows(t, b, "SELECT COUNT(*) FROM activities WHERE deal_id = ?", d.ID))
	assert.ErrorIs(t, b.Deals().Delete(d.ID), types.ErrNotFound)
}
