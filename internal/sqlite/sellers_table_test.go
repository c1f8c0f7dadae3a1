package sqlite

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

func createSeller(t *testing.T, b *Backend, name string) *types.Seller {
	t.Helper()
	s, err := b.Sellers().Create(types.CreateSellerRequest{Name: name, Email: "info@" + name + ".it", Phone: "055 1"})
	require.NoError(t, err)
	return s
}

func TestSellerCreateAndGet(t *testing.T) {
	b, clock := setupBackend(t)

	created, err := b.Sellers().Create(types.CreateSellerRequest{
		Name:           "Giulia Rossi",
		Company:        "Rossi Srl",
		Email:          "giulia@rossi.it",
		Phone:          "+39 055 1",
		Role:           "Titolare",
		PreferredHours: "9-12",
		Notes:          "Preferisce il mattino",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, types.ContactPhone, created.ContactPreference, "defaults to telefono")
	assert.True(t, created.CreatedAt.Equal(clock.Now()))
	assert.True(t, created.UpdatedAt.Equal(clock.Now()))
	assert.Nil(t, created.LastContact)
	assert.Equal(t, []string{}, created.PropertyIDs)

	got, err := b.Sellers().GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	again, err := b.Sellers().GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestSellerGetByIDMissing(t *testing.T) {
	b, _ := setupBackend(t)

	got, err := b.Sellers().GetByID("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSellerGetAll(t *testing.T) {
	b, clock := setupBackend(t)

	createSeller(t, b, "alpha")
	clock.Advance(time.Minute)
	_, err := b.Sellers().Create(types.CreateSellerRequest{Name: "Beta", Company: "Gamma Hotels", Email: "b@b.it"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	createSeller(t, b, "delta")

	tests := []struct {
		name   string
		filter types.SellerFilter
		want   []string
	}{
		{"no filter newest first", types.SellerFilter{}, []string{"delta", "Beta", "alpha"}},
		{"search by name", types.SellerFilter{Search: "alp"}, []string{"alpha"}},
		{"search by company", types.SellerFilter{Search: "Gamma"}, []string{"Beta"}},
		{"search by email", types.SellerFilter{Search: "info@delta"}, []string{"delta"}},
		{"no match", types.SellerFilter{Search: "zzz"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sellers, err := b.Sellers().GetAll(tt.filter)
			require.NoError(t, err)
			names := []string{}
			for _, s := range sellers {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSellerUpdate(t *testing.T) {
	b, clock := setupBackend(t)
	s := createSeller(t, b, "rossi")

	t.Run("changes only provided fields and bumps updated_at", func(t *testing.T) {
		clock.Advance(time.Hour)
		updated, err := b.Sellers().Update(types.UpdateSellerRequest{
			ID:                s.ID,
			Notes:             types.Some(""),
			ContactPreference: types.Some(types.ContactEmail),
		})
		require.NoError(t, err)
		assert.Equal(t, s.Name, updated.Name)
		assert.Equal(t, s.Email, updated.Email)
		assert.Equal(t, "", updated.Notes)
		assert.Equal(t, types.ContactEmail, updated.ContactPreference)
		assert.True(t, updated.UpdatedAt.Equal(clock.Now()))
		assert.True(t, updated.CreatedAt.Equal(s.CreatedAt))
	})

	t.Run("empty request leaves the row untouched", func(t *testing.T) {
		before, err := b.Sellers().GetByID(s.ID)
		require.NoError(t, err)

		clock.Advance(time.Hour)
		after, err := b.Sellers().Update(types.UpdateSellerRequest{ID: s.ID})
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("clearing an optional column stores NULL", func(t *testing.T) {
		_, err := b.Sellers().Update(types.UpdateSellerRequest{ID: s.ID, Company: types.Some("Temp")})
		require.NoError(t, err)
		updated, err := b.Sellers().Update(types.UpdateSellerRequest{ID: s.ID, Company: types.Some("")})
		require.NoError(t, err)
		assert.Empty(t, updated.Company)

		db, err := b.DB()
		require.NoError(t, err)
		var isNull bool
		require.NoError(t, db.QueryRow("SELECT company IS NULL FROM sellers WHERE id = ?", s.ID).Scan(&isNull))
		assert.True(t, isNull)
	})

	t.Run("missing seller is not found", func(t *testing.T) {
		_, err := b.Sellers().Update(types.UpdateSellerRequest{ID: "missing", Name: types.Some("X")})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("invalid contact preference violates a constraint", func(t *testing.T) {
		_, err := b.Sellers().Update(types.UpdateSellerRequest{ID: s.ID, ContactPreference: types.Some(types.ContactPreference("fax"))})
		assert.ErrorIs(t, err, types.ErrConstraint)
	})
}

func TestSellerUpdateLastContact(t *testing.T) {
	b, clock := setupBackend(t)
	s := createSeller(t, b, "verdi")

	clock.Advance(2 * time.Hour)
	require.NoError(t, b.Sellers().UpdateLastContact(s.ID))

	got, err := b.Sellers().GetByID(s.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastContact)
	assert.True(t, got.LastContact.Equal(clock.Now()))
	assert.Equal(t, s.Name, got.Name)
	assert.True(t, got.UpdatedAt.Equal(s.UpdatedAt), "updated_at is left alone")

	assert.ErrorIs(t, b.Sellers().UpdateLastContact("missing"), types.ErrNotFound)
}

func TestSellerDeleteKeepsProperties(t *testing.T) {
	b, _ := setupBackend(t)
	s := createSeller(t, b, "bianchi")

	p1, err := b.Properties().Create(types.CreatePropertyRequest{Name: "Hotel Uno", SellerID: s.ID})
	require.NoError(t, err)
	p2, err := b.Properties().Create(types.CreatePropertyRequest{Name: "Hotel Due", SellerID: s.ID})
	require.NoError(t, err)

	withProps, err := b.Sellers().GetByID(s.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{p1.ID, p2.ID}, withProps.PropertyIDs)

	require.NoError(t, b.Sellers().Delete(s.ID))

	exists, err := b.Sellers().Exists(s.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	for _, id := range []string{p1.ID, p2.ID} {
		p, err := b.Properties().GetByID(id)
		require.NoError(t, err)
		require.NotNil(t, p, "property survives seller deletion")
		assert.Empty(t, p.SellerID)
	}

	assert.ErrorIs(t, b.Sellers().Delete(s.ID), types.ErrNotFound)
}

// mockBackend returns a backend wired to a sqlmock connection.
func mockBackend(t *testing.T) (*Backend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	b := NewBackend(WithClock(newTestClock().Now))
	b.db = db
	return b, mock
}

func TestSellerStorageFailures(t *testing.T) {
	t.Run("count error is wrapped", func(t *testing.T) {
		b, mock := mockBackend(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sellers")).
			WillReturnError(errors.New("database is locked"))

		_, err := b.Sellers().Count()
		assert.ErrorContains(t, err, "counting sellers")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("constraint failure on insert", func(t *testing.T) {
		b, mock := mockBackend(t)
		mock.ExpectExec("INSERT INTO sellers").
			WillReturnError(errors.New("constraint failed: CHECK constraint failed: contact_preference (275)"))

		_, err := b.Sellers().Create(types.CreateSellerRequest{Name: "X", ContactPreference: "fax"})
		assert.ErrorIs(t, err, types.ErrConstraint)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update rolls back when the write fails", func(t *testing.T) {
		b, mock := mockBackend(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM sellers WHERE id = ?")).
			WithArgs("s1").
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectExec("UPDATE sellers SET name = \\?, updated_at = \\? WHERE id = \\?").
			WithArgs("New", sqlmock.AnyArg(), "s1").
			WillReturnError(errors.New("disk I/O error"))
		mock.ExpectRollback()

		_, err := b.Sellers().Update(types.UpdateSellerRequest{ID: "s1", Name: types.Some("New")})
		assert.ErrorContains(t, err, "updating seller")
		assert.NotErrorIs(t, err, types.ErrConstraint)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete of a missing row is not found", func(t *testing.T) {
		b, mock := mockBackend(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sellers WHERE id = ?")).
			WithArgs("s1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, b.Sellers().Delete("s1"), types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
