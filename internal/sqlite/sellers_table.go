package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

var _ types.SellerRepository = (*sellersTable)(nil)

const sellerColumns = "id, name, company, email, phone, role, contact_preference, preferred_hours, notes, last_contact, created_at, updated_at"

type sellersTable struct {
	repoBase
}

// GetAll returns sellers newest first. Search matches name, company, or
// email as a substring.
func (st *sellersTable) GetAll(filter types.SellerFilter) ([]types.Seller, error) {
	db, err := st.db()
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

	query := "SELECT " + sellerColumns + " FROM sellers" + whereClause(conditions) + " ORDER BY created_at DESC"
	sellers, err := st.query(db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching sellers: %w", err)
	}
	return sellers, nil
}

// GetByID returns the seller with its property ids, or nil when absent.
func (st *sellersTable) GetByID(id string) (*types.Seller, error) {
	db, err := st.db()
	if err != nil {
		return nil, err
	}
	return st.get(db, id)
}

// Create inserts a new seller. An empty contact preference defaults to
// telefono.
func (st *sellersTable) Create(req types.CreateSellerRequest) (*types.Seller, error) {
	db, err := st.db()
	if err != nil {
		return nil, err
	}

	pref := req.ContactPreference
	if pref == "" {
		pref = types.ContactPhone
	}
	id := generateUUID()
	now := formatTime(st.now())

	_, err = db.Exec(
		"INSERT INTO sellers ("+sellerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)",
		id, req.Name, nullStr(req.Company), req.Email, req.Phone, nullStr(req.Role),
		string(pref), nullStr(req.PreferredHours), req.Notes, now, now,
	)
	if err != nil {
		return nil, wrapErr("creating seller", err)
	}
	return st.get(db, id)
}

// Update applies the provided fields. A request without fields returns the
// seller unchanged.
func (st *sellersTable) Update(req types.UpdateSellerRequest) (*types.Seller, error) {
	err := st.withTx(func(tx *sql.Tx) error {
		ok, err := st.exists(tx, req.ID)
		if err != nil {
			return err
		}
		if !ok {
			return st.notFound(req.ID)
		}

		var cs changeset
		setField(&cs, "name", req.Name, str)
		setField(&cs, "company", req.Company, nullStr)
		setField(&cs, "email", req.Email, str)
		setField(&cs, "phone", req.Phone, str)
		setField(&cs, "role", req.Role, nullStr)
		setField(&cs, "contact_preference", req.ContactPreference, str)
		setField(&cs, "preferred_hours", req.PreferredHours, nullStr)
		setField(&cs, "notes", req.Notes, str)
		if cs.empty() {
			return nil
		}
		cs.add("updated_at", timestamp(st.now()))
		if err := cs.exec(tx, "sellers", req.ID); err != nil {
			return wrapErr("updating seller", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st.GetByID(req.ID)
}

// UpdateLastContact stamps the current time as the last contact.
func (st *sellersTable) UpdateLastContact(id string) error {
	return st.touch(id)
}

func (st *sellersTable) get(q querier, id string) (*types.Seller, error) {
	row := q.QueryRow("SELECT "+sellerColumns+" FROM sellers WHERE id = ?", id)
	s, err := scanSeller(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting seller %s: %w", id, err)
	}
	if err := st.assemble(q, s); err != nil {
		return nil, err
	}
	return s, nil
}

// query reads every matching row first and only then loads property ids;
// the single connection cannot serve a second query while rows are open.
func (st *sellersTable) query(q querier, query string, args ...any) ([]types.Seller, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	sellers := []types.Seller{}
	for rows.Next() {
		s, err := scanSeller(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("hydrating seller: %w", err)
		}
		sellers = append(sellers, *s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sellers: %w", err)
	}

	for i := range sellers {
		if err := st.assemble(q, &sellers[i]); err != nil {
			return nil, err
		}
	}
	return sellers, nil
}

func (st *sellersTable) assemble(q querier, s *types.Seller) error {
	ids, err := queryStrings(q, "SELECT id FROM properties WHERE seller_id = ? ORDER BY created_at DESC", s.ID)
	if err != nil {
		return fmt.Errorf("loading properties of seller %s: %w", s.ID, err)
	}
	s.PropertyIDs = ids
	return nil
}

func scanSeller(row rowScanner) (*types.Seller, error) {
	var s types.Seller
	var company, email, phone, role, pref, hours, notes, lastContact sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&s.ID, &s.Name, &company, &email, &phone, &role, &pref, &hours, &notes,
		&lastContact, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.Company = company.String
	s.Email = email.String
	s.Phone = phone.String
	s.Role = role.String
	s.ContactPreference = types.ContactPreference(pref.String)
	s.PreferredHours = hours.String
	s.Notes = notes.String

	var err error
	if s.LastContact, err = parseNullTime(lastContact); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
