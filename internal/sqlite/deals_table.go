package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

var _ types.DealRepository = (*dealsTable)(nil)

const dealColumns = "id, buyer_id, property_id, status, oggetto, prezzo_richiesto, price_offered, price_negotiated, " +
	"provvigione_compratore, collaboratore_compratore, provvigione_venditore, collaboratore_venditore, " +
	"pagamento_compratore, acconto_compratore, pagamento_venditore, acconto_venditore, notes, created_at, updated_at"

// terminalStatuses is the SQL list of closed deal statuses.
var terminalStatuses = "('" + string(types.StatusClosedWon) + "', '" + string(types.StatusClosedLost) + "')"

type dealsTable struct {
	repoBase
}

// GetAll returns deals most recently updated first.
func (dt *dealsTable) GetAll(filter types.DealFilter) ([]types.Deal, error) {
	db, err := dt.db()
	if err != nil {
		return nil, err
	}

	var conditions []string
	var args []any

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Subject != "" {
		conditions = append(conditions, "oggetto = ?")
		args = append(args, string(filter.Subject))
	}
	if filter.BuyerID != "" {
		conditions = append(conditions, "buyer_id = ?")
		args = append(args, filter.BuyerID)
	}
	if filter.PropertyID != "" {
		conditions = append(conditions, "property_id = ?")
		args = append(args, filter.PropertyID)
	}

	query := "SELECT " + dealColumns + " FROM deals" + whereClause(conditions) + " ORDER BY updated_at DESC"
	deals, err := dt.query(db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching deals: %w", err)
	}
	return deals, nil
}

// GetByID returns the deal with its activities, or nil when absent.
func (dt *dealsTable) GetByID(id string) (*types.Deal, error) {
	db, err := dt.db()
	if err != nil {
		return nil, err
	}
	return dt.get(db, id)
}

func (dt *dealsTable) GetByBuyer(buyerID string) ([]types.Deal, error) {
	return dt.GetAll(types.DealFilter{BuyerID: buyerID})
}

func (dt *dealsTable) GetByProperty(propertyID string) ([]types.Deal, error) {
	return dt.GetAll(types.DealFilter{PropertyID: propertyID})
}

func (dt *dealsTable) GetByStatus(status types.DealStatus) ([]types.Deal, error) {
	return dt.GetAll(types.DealFilter{Status: status})
}

// GetStaleDeals returns open deals whose last update is strictly older than
// days ago, oldest first.
func (dt *dealsTable) GetStaleDeals(days int) ([]types.Deal, error) {
	db, err := dt.db()
	if err != nil {
		return nil, err
	}
	cutoff := dt.now().AddDate(0, 0, -days)
	query := "SELECT " + dealColumns + " FROM deals" +
		" WHERE status NOT IN " + terminalStatuses + " AND updated_at < ?" +
		" ORDER BY updated_at ASC"
	deals, err := dt.query(db, query, formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("fetching stale deals: %w", err)
	}
	return deals, nil
}

// CountActive counts deals not in a closed status.
func (dt *dealsTable) CountActive() (int, error) {
	return dt.countWhere("status NOT IN " + terminalStatuses)
}

// CountClosed counts deals in a closed status.
func (dt *dealsTable) CountClosed() (int, error) {
	return dt.countWhere("status IN " + terminalStatuses)
}

func (dt *dealsTable) countWhere(condition string) (int, error) {
	db, err := dt.db()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM deals WHERE " + condition).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting deals: %w", err)
	}
	return n, nil
}

// Create inserts a deal. An empty status defaults to nuovo_contatto. The
// buyer and property must exist.
func (dt *dealsTable) Create(req types.CreateDealRequest) (*types.Deal, error) {
	db, err := dt.db()
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = types.StatusNewContact
	}
	id := generateUUID()
	now := formatTime(dt.now())

	_, err = db.Exec(
		"INSERT INTO deals ("+dealColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id, req.BuyerID, req.PropertyID, string(status), string(req.Subject),
		nullNum(req.PriceRequested), nullNum(req.PriceOffered), nullNum(req.PriceNegotiated),
		nullReal(req.BuyerCommission), req.BuyerCollaborator, nullReal(req.SellerCommission), req.SellerCollaborator,
		string(req.BuyerPayment), boolInt(req.BuyerDepositPaid), string(req.SellerPayment), boolInt(req.SellerDepositPaid),
		req.Notes, now, now,
	)
	if err != nil {
		return nil, wrapErr("creating deal", err)
	}
	return dt.get(db, id)
}

// Update applies the provided fields.
func (dt *dealsTable) Update(req types.UpdateDealRequest) (*types.Deal, error) {
	err := dt.withTx(func(tx *sql.Tx) error {
		ok, err := dt.exists(tx, req.ID)
		if err != nil {
			return err
		}
		if !ok {
			return dt.notFound(req.ID)
		}

		var cs changeset
		setField(&cs, "status", req.Status, str)
		setField(&cs, "oggetto", req.Subject, str)
		setField(&cs, "prezzo_richiesto", req.PriceRequested, nullNum)
		setField(&cs, "price_offered", req.PriceOffered, nullNum)
		setField(&cs, "price_negotiated", req.PriceNegotiated, nullNum)
		setField(&cs, "provvigione_compratore", req.BuyerCommission, nullReal)
		setField(&cs, "collaboratore_compratore", req.BuyerCollaborator, str)
		setField(&cs, "provvigione_venditore", req.SellerCommission, nullReal)
		setField(&cs, "collaboratore_venditore", req.SellerCollaborator, str)
		setField(&cs, "pagamento_compratore", req.BuyerPayment, str)
		setField(&cs, "acconto_compratore", req.BuyerDepositPaid, flag)
		setField(&cs, "pagamento_venditore", req.SellerPayment, str)
		setField(&cs, "acconto_venditore", req.SellerDepositPaid, flag)
		setField(&cs, "notes", req.Notes, str)
		if cs.empty() {
			return nil
		}
		cs.add("updated_at", timestamp(dt.now()))
		if err := cs.exec(tx, "deals", req.ID); err != nil {
			return wrapErr("updating deal", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dt.GetByID(req.ID)
}

// UpdateStatus changes only the status and updated_at of a deal.
func (dt *dealsTable) UpdateStatus(id string, status types.DealStatus) (*types.Deal, error) {
	db, err := dt.db()
	if err != nil {
		return nil, err
	}
	res, err := db.Exec("UPDATE deals SET status = ?, updated_at = ? WHERE id = ?",
		string(status), formatTime(dt.now()), id)
	if err != nil {
		return nil, wrapErr("updating deal status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating deal status: %w", err)
	}
	if n == 0 {
		return nil, dt.notFound(id)
	}
	return dt.get(db, id)
}

func (dt *dealsTable) get(q querier, id string) (*types.Deal, error) {
	row := q.QueryRow("SELECT "+dealColumns+" FROM deals WHERE id = ?", id)
	d, err := scanDeal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting deal %s: %w", id, err)
	}
	if d.Activities, err = activitiesByDeal(q, d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

func (dt *dealsTable) query(q querier, query string, args ...any) ([]types.Deal, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	deals := []types.Deal{}
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("hydrating deal: %w", err)
		}
		deals = append(deals, *d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deals: %w", err)
	}

	for i := range deals {
		if deals[i].Activities, err = activitiesByDeal(q, deals[i].ID); err != nil {
			return nil, err
		}
	}
	return deals, nil
}

func scanDeal(row rowScanner) (*types.Deal, error) {
	var d types.Deal
	var status, subject, buyerCollab, sellerCollab, buyerPay, sellerPay, notes sql.NullString
	var priceRequested, priceOffered, priceNegotiated, buyerDeposit, sellerDeposit sql.NullInt64
	var buyerCommission, sellerCommission sql.NullFloat64
	var createdAt, updatedAt string

	if err := row.Scan(&d.ID, &d.BuyerID, &d.PropertyID, &status, &subject,
		&priceRequested, &priceOffered, &priceNegotiated,
		&buyerCommission, &buyerCollab, &sellerCommission, &sellerCollab,
		&buyerPay, &buyerDeposit, &sellerPay, &sellerDeposit, &notes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	d.Status = types.DealStatus(status.String)
	d.Subject = types.DealSubject(subject.String)
	d.PriceRequested = nullInt64Ptr(priceRequested)
	d.PriceOffered = nullInt64Ptr(priceOffered)
	d.PriceNegotiated = nullInt64Ptr(priceNegotiated)
	d.BuyerCommission = nullFloat64Ptr(buyerCommission)
	d.BuyerCollaborator = buyerCollab.String
	d.SellerCommission = nullFloat64Ptr(sellerCommission)
	d.SellerCollaborator = sellerCollab.String
	d.BuyerPayment = types.PaymentStatus(buyerPay.String)
	d.BuyerDepositPaid = buyerDeposit.Int64 != 0
	d.SellerPayment = types.PaymentStatus(sellerPay.String)
	d.SellerDepositPaid = sellerDeposit.Int64 != 0
	d.Notes = notes.String

	var err error
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
