package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

var _ types.BuyerRepository = (*buyersTable)(nil)

const buyerColumns = "id, name, company, email, phone, budget_min, budget_max, currency, level, notes, last_contact, created_at, updated_at"

type buyersTable struct {
	repoBase
}

// GetAll returns buyers newest first. Budget bounds keep buyers whose
// [budget_min, budget_max] range overlaps the requested one.
func (bt *buyersTable) GetAll(filter types.BuyerFilter) ([]types.Buyer, error) {
	db, err := bt.db()
	if err != nil {
		return nil, err
	}

	var conditions []string
	var args []any

	if filter.Search != "" {
		conditions = append(conditions, "(name LIKE ? OR company LIKE ? OR email LIKE ?)")
		p := likePattern(filter.Search)
		args = append(args, p, p, p)
	}
	if filter.Level != "" {
		conditions = append(conditions, "level = ?")
		args = append(args, string(filter.Level))
	}
	if filter.Zone != "" {
		conditions = append(conditions, "id IN (SELECT buyer_id FROM buyer_zones WHERE zone = ?)")
		args = append(args, filter.Zone)
	}
	if filter.MinBudget != nil {
		conditions = append(conditions, "budget_max >= ?")
		args = append(args, *filter.MinBudget)
	}
	if filter.MaxBudget != nil {
		conditions = append(conditions, "budget_min <= ?")
		args = append(args, *filter.MaxBudget)
	}
	if filter.Tag != "" {
		conditions = append(conditions, "id IN (SELECT bt.buyer_id FROM buyer_tags bt JOIN tags t ON t.id = bt.tag_id WHERE t.name = ?)")
		args = append(args, filter.Tag)
	}

	query := "SELECT " + buyerColumns + " FROM buyers" + whereClause(conditions) + " ORDER BY created_at DESC"
	buyers, err := bt.query(db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching buyers: %w", err)
	}
	return buyers, nil
}

// GetByID returns the buyer with zones, preferred types, and tags, or nil
// when absent.
func (bt *buyersTable) GetByID(id string) (*types.Buyer, error) {
	db, err := bt.db()
	if err != nil {
		return nil, err
	}
	return bt.get(db, id)
}

// Create inserts the buyer and its associations in one transaction.
func (bt *buyersTable) Create(req types.CreateBuyerRequest) (*types.Buyer, error) {
	id := generateUUID()
	now := bt.now()

	currency := req.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}

	err := bt.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO buyers ("+buyerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)",
			id, req.Name, nullStr(req.Company), req.Email, req.Phone,
			req.BudgetMin, req.BudgetMax, currency, nullStr(req.Level), req.Notes,
			formatTime(now), formatTime(now),
		)
		if err != nil {
			return wrapErr("creating buyer", err)
		}
		return bt.writeAssociations(tx, id, req.Zones, req.PreferredTypes, req.Tags, now)
	})
	if err != nil {
		return nil, err
	}
	return bt.GetByID(id)
}

// Update applies the provided fields. Zones, preferred types, and tags,
// when provided, replace the existing sets.
func (bt *buyersTable) Update(req types.UpdateBuyerRequest) (*types.Buyer, error) {
	err := bt.withTx(func(tx *sql.Tx) error {
		ok, err := bt.exists(tx, req.ID)
		if err != nil {
			return err
		}
		if !ok {
			return bt.notFound(req.ID)
		}

		var cs changeset
		setField(&cs, "name", req.Name, str)
		setField(&cs, "company", req.Company, nullStr)
		setField(&cs, "email", req.Email, str)
		setField(&cs, "phone", req.Phone, str)
		setField(&cs, "budget_min", req.BudgetMin, num)
		setField(&cs, "budget_max", req.BudgetMax, num)
		setField(&cs, "currency", req.Currency, str)
		setField(&cs, "level", req.Level, nullStr)
		setField(&cs, "notes", req.Notes, str)

		if cs.empty() && !req.Zones.Set && !req.PreferredTypes.Set && !req.Tags.Set {
			return nil
		}
		now := bt.now()
		cs.add("updated_at", timestamp(now))
		if err := cs.exec(tx, "buyers", req.ID); err != nil {
			return wrapErr("updating buyer", err)
		}

		if zones, ok := req.Zones.Get(); ok {
			if err := replaceValues(tx, "buyer_zones", "buyer_id", "zone", req.ID, zones); err != nil {
				return err
			}
		}
		if prefs, ok := req.PreferredTypes.Get(); ok {
			if err := replaceValues(tx, "buyer_preferred_types", "buyer_id", "property_type", req.ID, prefs); err != nil {
				return err
			}
		}
		if tags, ok := req.Tags.Get(); ok {
			if err := replaceTags(tx, "buyer_tags", "buyer_id", req.ID, tags, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bt.GetByID(req.ID)
}

// UpdateLastContact stamps the current time as the last contact.
func (bt *buyersTable) UpdateLastContact(id string) error {
	return bt.touch(id)
}

func (bt *buyersTable) writeAssociations(tx *sql.Tx, id string, zones []string, prefs []types.PropertyType, tags []string, now time.Time) error {
	if err := replaceValues(tx, "buyer_zones", "buyer_id", "zone", id, zones); err != nil {
		return err
	}
	if err := replaceValues(tx, "buyer_preferred_types", "buyer_id", "property_type", id, prefs); err != nil {
		return err
	}
	return replaceTags(tx, "buyer_tags", "buyer_id", id, tags, now)
}

func (bt *buyersTable) get(q querier, id string) (*types.Buyer, error) {
	row := q.QueryRow("SELECT "+buyerColumns+" FROM buyers WHERE id = ?", id)
	b, err := scanBuyer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting buyer %s: %w", id, err)
	}
	if err := bt.assemble(q, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (bt *buyersTable) query(q querier, query string, args ...any) ([]types.Buyer, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	buyers := []types.Buyer{}
	for rows.Next() {
		b, err := scanBuyer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("hydrating buyer: %w", err)
		}
		buyers = append(buyers, *b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating buyers: %w", err)
	}

	for i := range buyers {
		if err := bt.assemble(q, &buyers[i]); err != nil {
			return nil, err
		}
	}
	return buyers, nil
}

func (bt *buyersTable) assemble(q querier, b *types.Buyer) error {
	zones, err := queryStrings(q, "SELECT zone FROM buyer_zones WHERE buyer_id = ? ORDER BY zone", b.ID)
	if err != nil {
		return fmt.Errorf("loading zones of buyer %s: %w", b.ID, err)
	}
	prefs, err := queryStrings(q, "SELECT property_type FROM buyer_preferred_types WHERE buyer_id = ? ORDER BY property_type", b.ID)
	if err != nil {
		return fmt.Errorf("loading preferred types of buyer %s: %w", b.ID, err)
	}
	tags, err := tagNames(q, "buyer_tags", "buyer_id", b.ID)
	if err != nil {
		return fmt.Errorf("loading tags of buyer %s: %w", b.ID, err)
	}
	b.Zones = zones
	b.PreferredTypes = enumValues[types.PropertyType](prefs)
	b.Tags = tags
	return nil
}

func scanBuyer(row rowScanner) (*types.Buyer, error) {
	var b types.Buyer
	var company, email, phone, currency, level, notes, lastContact sql.NullString
	var budgetMin, budgetMax sql.NullInt64
	var createdAt, updatedAt string
	if err := row.Scan(&b.ID, &b.Name, &company, &email, &phone, &budgetMin, &budgetMax, &currency, &level,
		&notes, &lastContact, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	b.Company = company.String
	b.Email = email.String
	b.Phone = phone.String
	b.BudgetMin = budgetMin.Int64
	b.BudgetMax = budgetMax.Int64
	b.Currency = currency.String
	b.Level = types.BuyerLevel(level.String)
	b.Notes = notes.String

	var err error
	if b.LastContact, err = parseNullTime(lastContact); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}
