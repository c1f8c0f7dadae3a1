// Package report renders the dashboard figures and the main registers as
// an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/hotelcrm/internal/stats"
	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

// Sheet names, in workbook order.
const (
	SheetDashboard   = "Dashboard"
	SheetStale       = "Trattative ferme"
	SheetExpirations = "Scadenze incarichi"
	SheetProperties  = "Immobili"
	SheetBuyers      = "Compratori"
)

// Snapshot is everything one workbook shows.
type Snapshot struct {
	GeneratedAt time.Time
	StaleDays   int
	Dashboard   types.DashboardStats
	StaleDeals  []stats.StaleDeal
	Expirations []types.IncaricoExpiration
	Properties  []types.Property
	Buyers      []types.Buyer
}

// Collect reads a Snapshot through the stats service and the store.
func Collect(svc *stats.Service, store types.Store, staleDays int, now time.Time) (Snapshot, error) {
	snap := Snapshot{GeneratedAt: now, StaleDays: staleDays}
	var err error

	if snap.Dashboard, err = svc.Dashboard(staleDays); err != nil {
		return snap, err
	}
	if snap.StaleDeals, err = svc.StaleDealDetails(staleDays); err != nil {
		return snap, err
	}
	if snap.Expirations, err = svc.IncaricoExpirations(); err != nil {
		return snap, err
	}
	if snap.Properties, err = store.Properties().GetAll(types.PropertyFilter{}); err != nil {
		return snap, fmt.Errorf("fetching properties: %w", err)
	}
	if snap.Buyers, err = store.Buyers().GetAll(types.BuyerFilter{}); err != nil {
		return snap, fmt.Errorf("fetching buyers: %w", err)
	}
	return snap, nil
}

type sheet struct {
	name   string
	header []string
	widths []float64
	rows   [][]any
}

// Write renders snap as an XLSX workbook to w.
func Write(w io.Writer, snap Snapshot) error {
	f, err := Build(snap)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Build renders snap into an in-memory workbook. The caller closes it.
func Build(snap Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for i, s := range sheets(snap) {
		if i == 0 {
			err = f.SetSheetName("Sheet1", s.name)
		} else {
			_, err = f.NewSheet(s.name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("creating sheet %s: %w", s.name, err)
		}
		if err := fill(f, s, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func fill(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]any, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", s.name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", s.name, err)
	}

	for i, width := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, col, col, width); err != nil {
			return fmt.Errorf("sizing %s column %s: %w", s.name, col, err)
		}
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", s.name, i+2, err)
		}
	}
	return nil
}

func sheets(snap Snapshot) []sheet {
	d := snap.Dashboard
	dashboard := sheet{
		name:   SheetDashboard,
		header: []string{"Indicatore", "Valore"},
		widths: []float64{32, 24},
		rows: [][]any{
			{"Generato il", snap.GeneratedAt.Format("2006-01-02 15:04")},
			{"Compratori", d.TotalBuyers},
			{"Venditori", d.TotalSellers},
			{"Immobili", d.TotalProperties},
			{"Trattative attive", d.ActiveDeals},
			{"Trattative chiuse", d.ClosedDeals},
			{fmt.Sprintf("Trattative ferme (> %d giorni)", snap.StaleDays), d.StaleDeals},
		},
	}

	stale := sheet{
		name:   SheetStale,
		header: []string{"Compratore", "Immobile", "Stato", "Oggetto", "Ultimo aggiornamento", "Giorni"},
		widths: []float64{28, 28, 18, 12, 22, 10},
	}
	for _, s := range snap.StaleDeals {
		stale.rows = append(stale.rows, []any{
			s.BuyerName,
			s.PropertyName,
			string(s.Deal.Status),
			string(s.Deal.Subject),
			s.Deal.UpdatedAt.Format("2006-01-02"),
			s.DaysIdle,
		})
	}

	expirations := sheet{
		name:   SheetExpirations,
		header: []string{"Immobile", "Città", "Provvigione %", "Scadenza", "Giorni", "Livello"},
		widths: []float64{28, 18, 14, 14, 10, 12},
	}
	for _, e := range snap.Expirations {
		expirations.rows = append(expirations.rows, []any{
			e.PropertyName,
			e.City,
			optFloat(e.IncaricoPercent),
			e.Expiry.String(),
			e.DaysLeft,
			string(e.Level),
		})
	}

	properties := sheet{
		name: SheetProperties,
		header: []string{"Nome", "Codice", "Città", "Regione", "Tipo", "Categoria",
			"Camere", "Letti", "Stato", "Prezzo min", "Prezzo max", "Operazioni", "Incarico"},
		widths: []float64{28, 10, 16, 18, 14, 10, 8, 8, 16, 14, 14, 32, 10},
	}
	for _, p := range snap.Properties {
		ops := make([]string, len(p.OperationTypes))
		for i, op := range p.OperationTypes {
			ops[i] = string(op)
		}
		properties.rows = append(properties.rows, []any{
			p.Name,
			p.Code,
			p.Address.City,
			p.Region,
			string(p.Type),
			string(p.Category),
			p.Rooms,
			p.Beds,
			string(p.Condition),
			p.PriceMin,
			p.PriceMax,
			strings.Join(ops, ", "),
			yesNo(p.HasIncarico),
		})
	}

	buyers := sheet{
		name: SheetBuyers,
		header: []string{"Nome", "Azienda", "Email", "Telefono", "Budget min", "Budget max",
			"Valuta", "Zone", "Livello", "Tag"},
		widths: []float64{24, 24, 28, 16, 14, 14, 8, 28, 18, 24},
	}
	for _, b := range snap.Buyers {
		buyers.rows = append(buyers.rows, []any{
			b.Name,
			b.Company,
			b.Email,
			b.Phone,
			b.BudgetMin,
			b.BudgetMax,
			b.Currency,
			strings.Join(b.Zones, ", "),
			string(b.Level),
			strings.Join(b.Tags, ", "),
		})
	}

	return []sheet{dashboard, stale, expirations, properties, buyers}
}

func optFloat(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func yesNo(b bool) string {
	if b {
		return "sì"
	}
	return "no"
}
