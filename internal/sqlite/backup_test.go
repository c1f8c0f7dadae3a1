package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

func resultFor(t *testing.T, results []ImportResult, table string) ImportResult {
	t.Helper()
	for _, r := range results {
		if r.Table == table {
			return r
		}
	}
	t.Fatalf("no import result for %s", table)
	return ImportResult{}
}

func writeFile(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	data := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644))
}

func TestExportImportRoundTrip(t *testing.T) {
	src, _ := setupBackend(t)

	seeded, err := src.SeedDemo()
	require.NoError(t, err)
	require.True(t, seeded)
	props, err := src.Properties().GetAll(types.PropertyFilter{})
	require.NoError(t, err)
	_, err = src.Attachments().Create(attachmentRequest(props[0].ID, "brochure.pdf"))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "backup")
	counts, err := src.ExportJSONL(dir)
	require.NoError(t, err)
	assert.Equal(t, len(demoSellers), counts["sellers"])
	assert.Equal(t, 3, counts["properties"])
	assert.Equal(t, 1, counts["property_attachments"])
	for _, m := range jsonlTableMapping {
		_, err := os.Stat(filepath.Join(dir, m.file))
		assert.NoError(t, err, m.file)
	}

	dst, _ := setupBackend(t)
	results, err := dst.ImportJSONL(dir)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, r.Read, r.Inserted, r.Table)
		assert.Zero(t, r.Orphans, r.Table)
	}

	srcDeals, err := src.Deals().GetAll(types.DealFilter{})
	require.NoError(t, err)
	dstDeals, err := dst.Deals().GetAll(types.DealFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, srcDeals, dstDeals)

	srcProps, err := src.Properties().GetAll(types.PropertyFilter{})
	require.NoError(t, err)
	dstProps, err := dst.Properties().GetAll(types.PropertyFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, srcProps, dstProps)

	srcBuyers, err := src.Buyers().GetAll(types.BuyerFilter{})
	require.NoError(t, err)
	dstBuyers, err := dst.Buyers().GetAll(types.BuyerFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, srcBuyers, dstBuyers)

	t.Run("importing again keeps existing rows", func(t *testing.T) {
		results, err := dst.ImportJSONL(dir)
		require.NoError(t, err)
		for _, r := range results {
			assert.Zero(t, r.Inserted, r.Table)
			assert.Equal(t, r.Read, r.Skipped, r.Table)
		}
	})

	t.Run("foreign keys are back on", func(t *testing.T) {
		db, err := dst.DB()
		require.NoError(t, err)
		var fk int
		require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
		assert.Equal(t, 1, fk)
	})
}

func TestImportSkipsBadLines(t *testing.T) {
	b, _ := setupBackend(t)
	dir := t.TempDir()

	writeFile(t, dir, "sellers.jsonl",
		`{"id":"s1","name":"Valido","email":"","phone":"","contact_preference":"email","notes":"","created_at":"2026-01-01T10:00:00.000Z","updated_at":"2026-01-01T10:00:00.000Z","extra":"ignored"}`,
		`{not json`,
		``,
		`{"id":"s2","email":"senza nome","created_at":"2026-01-01T10:00:00.000Z","updated_at":"2026-01-01T10:00:00.000Z"}`,
	)

	results, err := b.ImportJSONL(dir)
	require.NoError(t, err)

	sellers := resultFor(t, results, "sellers")
	assert.Equal(t, 2, sellers.Read, "malformed and blank lines are not records")
	assert.Equal(t, 1, sellers.Inserted)
	assert.Equal(t, 1, sellers.Skipped)

	got, err := b.Sellers().GetByID("s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.ContactEmail, got.ContactPreference)
	assert.Equal(t, 2026, got.CreatedAt.Year())

	assert.Zero(t, resultFor(t, results, "deals").Read, "missing files are empty")
}

func TestImportRemovesOrphans(t *testing.T) {
	b, _ := setupBackend(t)
	dir := t.TempDir()
	ts := `"created_at":"2026-01-01T10:00:00.000Z","updated_at":"2026-01-01T10:00:00.000Z"`

	writeFile(t, dir, "buyers.jsonl",
		`{"id":"b1","name":"Presente","email":"","phone":"","budget_min":0,"budget_max":0,"currency":"EUR","notes":"",`+ts+`}`,
	)
	writeFile(t, dir, "properties.jsonl",
		`{"id":"p1","name":"Hotel","codice":"","address_street":"","address_city":"","address_cap":"","address_province":"","address_country":"Italia","regione":"","type":"altro","category":"n/a","rooms":0,"beds":0,"condition":"buono","price_min":0,"price_max":0,"notes":"","has_incarico":false,`+ts+`}`,
	)
	writeFile(t, dir, "deals.jsonl",
		`{"id":"d1","buyer_id":"b1","property_id":"p1","status":"in_corso","oggetto":"vendita","collaboratore_compratore":"","collaboratore_venditore":"","pagamento_compratore":"","acconto_compratore":0,"pagamento_venditore":"","acconto_venditore":0,"notes":"",`+ts+`}`,
		`{"id":"d2","buyer_id":"ghost","property_id":"p1","status":"in_corso","oggetto":"vendita","collaboratore_compratore":"","collaboratore_venditore":"","pagamento_compratore":"","acconto_compratore":0,"pagamento_venditore":"","acconto_venditore":0,"notes":"",`+ts+`}`,
	)
	writeFile(t, dir, "activities.jsonl",
		`{"id":"a1","deal_id":"d1","date":"2026-01-02T10:00:00.000Z","type":"nota","description":"ok","created_at":"2026-01-02T10:00:00.000Z"}`,
		`{"id":"a2","deal_id":"d2","date":"2026-01-02T10:00:00.000Z","type":"nota","description":"orfana","created_at":"2026-01-02T10:00:00.000Z"}`,
	)
	writeFile(t, dir, "buyer_zones.jsonl",
		`{"buyer_id":"b1","zone":"Roma"}`,
		`{"buyer_id":"ghost","zone":"Napoli"}`,
	)

	results, err := b.ImportJSONL(dir)
	require.NoError(t, err)

	assert.Equal(t, 1, resultFor(t, results, "deals").Orphans)
	assert.Equal(t, 1, resultFor(t, results, "activities").Orphans)
	assert.Equal(t, 1, resultFor(t, results, "buyer_zones").Orphans)

	deals, err := b.Deals().GetAll(types.DealFilter{})
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "d1", deals[0].ID)
	require.Len(t, deals[0].Activities, 1)
	assert.Equal(t, "a1", deals[0].Activities[0].ID)

	buyer, err := b.Buyers().GetByID("b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Roma"}, buyer.Zones)
}

func TestImportDetachesPropertyWithMissingSeller(t *testing.T) {
	b, _ := setupBackend(t)
	dir := t.TempDir()
	ts := `"created_at":"2026-01-01T10:00:00.000Z","updated_at":"2026-01-01T10:00:00.000Z"`

	writeFile(t, dir, "properties.jsonl",
		`{"id":"p1","seller_id":"ghost","name":"Hotel Senza Venditore","codice":"","address_street":"","address_city":"Rimini","address_cap":"","address_province":"","address_country":"Italia","regione":"","type":"altro","category":"n/a","rooms":0,"beds":0,"condition":"buono","price_min":0,"price_max":0,"notes":"","has_incarico":false,`+ts+`}`,
	)
	writeFile(t, dir, "property_operation_types.jsonl",
		`{"property_id":"p1","operation_type":"vendita_mura"}`,
	)

	results, err := b.ImportJSONL(dir)
	require.NoError(t, err)

	props := resultFor(t, results, "properties")
	assert.Equal(t, 1, props.Inserted)
	assert.Zero(t, props.Orphans)
	assert.Equal(t, 1, props.Detached)
	assert.Zero(t, resultFor(t, results, "property_operation_types").Orphans)

	got, err := b.Properties().GetByID("p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Hotel Senza Venditore", got.Name)
	assert.Empty(t, got.SellerID)
	assert.Equal(t, []types.OperationType{types.OperationBuildingSale}, got.OperationTypes)
}

func TestReadJSONLMissingFile(t *testing.T) {
	records, err := readJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWriteJSONLReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	require.NoError(t, writeJSONL(path, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
