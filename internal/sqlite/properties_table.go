package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

var _ types.PropertyRepository = (*propertiesTable)(nil)

const propertyColumns = "id, name, codice, address_street, address_number, address_city, address_cap, address_province, address_country, " +
	"regione, type, category, rooms, beds, condition, price_min, price_max, notes, seller_id, " +
	"has_incarico, incarico_percentuale, incarico_scadenza, created_at, updated_at"

type propertiesTable struct {
	repoBase
}

// GetAll returns properties newest first. The price bounds keep properties
// whose [price_min, price_max] range overlaps the requested one.
func (pt *propertiesTable) GetAll(filter types.PropertyFilter) ([]types.Property, error) {
	db, err := pt.db()
	if err != nil {
		return nil, err
	}

	var conditions []string
	var args []any

	if filter.Search != "" {
		conditions = append(conditions, "(name LIKE ? OR address_city LIKE ? OR codice LIKE ?)")
		p := likePattern(filter.Search)
		args = append(args, p, p, p)
	}
	if filter.City != "" {
		conditions = append(conditions, "address_city = ?")
		args = append(args, filter.City)
	}
	if filter.Region != "" {
		conditions = append(conditions, "regione = ?")
		args = append(args, filter.Region)
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.Condition != "" {
		conditions = append(conditions, "condition = ?")
		args = append(args, string(filter.Condition))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "price_max >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "price_min <= ?")
		args = append(args, *filter.MaxPrice)
	}
	if filter.SellerID != "" {
		conditions = append(conditions, "seller_id = ?")
		args = append(args, filter.SellerID)
	}
	if filter.OperationType != "" {
		conditions = append(conditions, "id IN (SELECT property_id FROM property_operation_types WHERE operation_type = ?)")
		args = append(args, string(filter.OperationType))
	}
	if filter.Tag != "" {
		conditions = append(conditions, "id IN (SELECT pt.property_id FROM property_tags pt JOIN tags t ON t.id = pt.tag_id WHERE t.name = ?)")
		args = append(args, filter.Tag)
	}
	if filter.HasIncarico != nil {
		conditions = append(conditions, "has_incarico = ?")
		args = append(args, boolInt(*filter.HasIncarico))
	}

	query := "SELECT " + propertyColumns + " FROM properties" + whereClause(conditions) + " ORDER BY created_at DESC"
	props, err := pt.query(db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching properties: %w", err)
	}
	return props, nil
}

// GetByID returns the property with its tags and operation types, or nil
// when absent.
func (pt *propertiesTable) GetByID(id string) (*types.Property, error) {
	db, err := pt.db()
	if err != nil {
		return nil, err
	}
	return pt.get(db, id)
}

// GetBySeller returns the properties of one seller, newest first.
func (pt *propertiesTable) GetBySeller(sellerID string) ([]types.Property, error) {
	return pt.GetAll(types.PropertyFilter{SellerID: sellerID})
}

// GetCities returns the distinct non-empty cities in alphabetical order.
func (pt *propertiesTable) GetCities() ([]string, error) {
	db, err := pt.db()
	if err != nil {
		return nil, err
	}
	cities, err := queryStrings(db,
		"SELECT DISTINCT address_city FROM properties WHERE address_city IS NOT NULL AND address_city != '' ORDER BY address_city",
	)
	if err != nil {
		return nil, fmt.Errorf("fetching cities: %w", err)
	}
	return cities, nil
}

// GetWithIncarico returns properties holding an incarico with an expiry
// date, soonest expiry first.
func (pt *propertiesTable) GetWithIncarico() ([]types.Property, error) {
	db, err := pt.db()
	if err != nil {
		return nil, err
	}
	query := "SELECT " + propertyColumns + " FROM properties" +
		" WHERE has_incarico = 1 AND incarico_scadenza IS NOT NULL AND incarico_scadenza != ''" +
		" ORDER BY incarico_scadenza ASC"
	props, err := pt.query(db, query)
	if err != nil {
		return nil, fmt.Errorf("fetching properties with incarico: %w", err)
	}
	return props, nil
}

// Create inserts the property with its tags and operation types in one
// transaction.
func (pt *propertiesTable) Create(req types.CreatePropertyRequest) (*types.Property, error) {
	id := generateUUID()
	now := pt.now()

	addr := req.Address
	if addr.Country == "" {
		addr.Country = types.DefaultCountry
	}
	propType := req.Type
	if propType == "" {
		propType = types.PropertyOther
	}
	category := req.Category
	if category == "" {
		category = types.CategoryNone
	}
	condition := req.Condition
	if condition == "" {
		condition = types.ConditionGood
	}

	err := pt.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO properties ("+propertyColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			id, req.Name, req.Code,
			addr.Street, nullStr(addr.Number), addr.City, addr.CAP, addr.Province, addr.Country,
			req.Region, string(propType), string(category), int64(req.Rooms), int64(req.Beds), string(condition),
			req.PriceMin, req.PriceMax, req.Notes, nullStr(req.SellerID),
			boolInt(req.HasIncarico), nullReal(req.IncaricoPercent), nullDate(req.IncaricoExpiry),
			formatTime(now), formatTime(now),
		)
		if err != nil {
			return wrapErr("creating property", err)
		}
		if err := replaceTags(tx, "property_tags", "property_id", id, req.Tags, now); err != nil {
			return err
		}
		return replaceValues(tx, "property_operation_types", "property_id", "operation_type", id, req.OperationTypes)
	})
	if err != nil {
		return nil, err
	}
	return pt.GetByID(id)
}

// Update applies the provided fields. Tags and operation types, when
// provided, replace the existing sets.
func (pt *propertiesTable) Update(req types.UpdatePropertyRequest) (*types.Property, error) {
	err := pt.withTx(func(tx *sql.Tx) error {
		ok, err := pt.exists(tx, req.ID)
		if err != nil {
			return err
		}
		if !ok {
			return pt.notFound(req.ID)
		}

		var cs changeset
		setField(&cs, "name", req.Name, str)
		setField(&cs, "codice", req.Code, str)
		if addr, ok := req.Address.Get(); ok {
			if addr.Country == "" {
				addr.Country = types.DefaultCountry
			}
			cs.add("address_street", addr.Street)
			cs.add("address_number", nullStr(addr.Number))
			cs.add("address_city", addr.City)
			cs.add("address_cap", addr.CAP)
			cs.add("address_province", addr.Province)
			cs.add("address_country", addr.Country)
		}
		setField(&cs, "regione", req.Region, str)
		setField(&cs, "type", req.Type, str)
		setField(&cs, "category", req.Category, str)
		setField(&cs, "rooms", req.Rooms, num)
		setField(&cs, "beds", req.Beds, num)
		setField(&cs, "condition", req.Condition, str)
		setField(&cs, "price_min", req.PriceMin, num)
		setField(&cs, "price_max", req.PriceMax, num)
		setField(&cs, "notes", req.Notes, str)
		setField(&cs, "seller_id", req.SellerID, nullStr)
		setField(&cs, "has_incarico", req.HasIncarico, flag)
		setField(&cs, "incarico_percentuale", req.IncaricoPercent, nullReal)
		setField(&cs, "incarico_scadenza", req.IncaricoExpiry, nullDate)

		if cs.empty() && !req.Tags.Set && !req.OperationTypes.Set {
			return nil
		}
		now := pt.now()
		cs.add("updated_at", timestamp(now))
		if err := cs.exec(tx, "properties", req.ID); err != nil {
			return wrapErr("updating property", err)
		}

		if tags, ok := req.Tags.Get(); ok {
			if err := replaceTags(tx, "property_tags", "property_id", req.ID, tags, now); err != nil {
				return err
			}
		}
		if ops, ok := req.OperationTypes.Get(); ok {
			if err := replaceValues(tx, "property_operation_types", "property_id", "operation_type", req.ID, ops); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pt.GetByID(req.ID)
}

func (pt *propertiesTable) get(q querier, id string) (*types.Property, error) {
	row := q.QueryRow("SELECT "+propertyColumns+" FROM properties WHERE id = ?", id)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting property %s: %w", id, err)
	}
	if err := pt.assemble(q, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (pt *propertiesTable) query(q querier, query string, args ...any) ([]types.Property, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	props := []types.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("hydrating property: %w", err)
		}
		props = append(props, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}

	for i := range props {
		if err := pt.assemble(q, &props[i]); err != nil {
			return nil, err
		}
	}
	return props, nil
}

func (pt *propertiesTable) assemble(q querier, p *types.Property) error {
	tags, err := tagNames(q, "property_tags", "property_id", p.ID)
	if err != nil {
		return fmt.Errorf("loading tags of property %s: %w", p.ID, err)
	}
	ops, err := queryStrings(q,
		"SELECT operation_type FROM property_operation_types WHERE property_id = ? ORDER BY operation_type", p.ID)
	if err != nil {
		return fmt.Errorf("loading operation types of property %s: %w", p.ID, err)
	}
	p.Tags = tags
	p.OperationTypes = enumValues[types.OperationType](ops)
	return nil
}

func scanProperty(row rowScanner) (*types.Property, error) {
	var p types.Property
	var code, street, number, city, postcode, province, country, region sql.NullString
	var propType, category, condition, notes, sellerID, expiry sql.NullString
	var rooms, beds, priceMin, priceMax, hasIncarico sql.NullInt64
	var percent sql.NullFloat64
	var createdAt, updatedAt string

	if err := row.Scan(&p.ID, &p.Name, &code, &street, &number, &city, &postcode, &province, &country,
		&region, &propType, &category, &rooms, &beds, &condition, &priceMin, &priceMax, &notes, &sellerID,
		&hasIncarico, &percent, &expiry, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	p.Code = code.String
	p.Address = types.Address{
		Street:   street.String,
		Number:   number.String,
		City:     city.String,
		CAP:      postcode.String,
		Province: province.String,
		Country:  country.String,
	}
	p.Region = region.String
	p.Type = types.PropertyType(propType.String)
	p.Category = types.PropertyCategory(category.String)
	p.Rooms = int(rooms.Int64)
	p.Beds = int(beds.Int64)
	p.Condition = types.PropertyCondition(condition.String)
	p.PriceMin = priceMin.Int64
	p.PriceMax = priceMax.Int64
	p.Notes = notes.String
	p.SellerID = sellerID.String
	p.HasIncarico = hasIncarico.Int64 != 0
	p.IncaricoPercent = nullFloat64Ptr(percent)

	var err error
	if p.IncaricoExpiry, err = parseNullDate(expiry); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
