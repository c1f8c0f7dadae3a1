package types

import "time"

// DefaultCountry fills Address.Country when none is given.
const DefaultCountry = "Italia"

// Address is the postal address of a property.
type Address struct {
	Street   string `json:"street"`
	Number   string `json:"number"`
	City     string `json:"city"`
	CAP      string `json:"cap"`
	Province string `json:"province"`
	Country  string `json:"country"`
}

// Property is a hospitality property on the market. A property may hold an
// incarico, the exclusive sale mandate granted to the agency.
type Property struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Code            string            `json:"codice"`
	Address         Address           `json:"address"`
	Region          string            `json:"regione"`
	Type            PropertyType      `json:"type"`
	Category        PropertyCategory  `json:"category"`
	Rooms           int               `json:"rooms"`
	Beds            int               `json:"beds"`
	Condition       PropertyCondition `json:"condition"`
	PriceMin        int64             `json:"priceMin"`
	PriceMax        int64             `json:"priceMax"`
	Tags            []string          `json:"tags"`
	OperationTypes  []OperationType   `json:"operationTypes"`
	Notes           string            `json:"notes"`
	SellerID        string            `json:"sellerId"`
	HasIncarico     bool              `json:"hasIncarico"`
	IncaricoPercent *float64          `json:"incaricoPercentuale,omitempty"`
	IncaricoExpiry  *Date             `json:"incaricoScadenza,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// CreatePropertyRequest carries the fields of a new property. Only Name is
// required; enumerations default to altro, n/a, and buono.
type CreatePropertyRequest struct {
	Name            string            `json:"name" validate:"required,min=2"`
	Code            string            `json:"codice,omitempty"`
	Address         Address           `json:"address"`
	Region          string            `json:"regione,omitempty"`
	Type            PropertyType      `json:"type,omitempty" validate:"omitempty,enum"`
	Category        PropertyCategory  `json:"category,omitempty" validate:"omitempty,enum"`
	Rooms           int               `json:"rooms,omitempty" validate:"gte=0"`
	Beds            int               `json:"beds,omitempty" validate:"gte=0"`
	Condition       PropertyCondition `json:"condition,omitempty" validate:"omitempty,enum"`
	PriceMin        int64             `json:"priceMin,omitempty" validate:"gte=0"`
	PriceMax        int64             `json:"priceMax,omitempty" validate:"gte=0"`
	Tags            []string          `json:"tags,omitempty" validate:"dive,required"`
	OperationTypes  []OperationType   `json:"operationTypes,omitempty" validate:"dive,enum"`
	Notes           string            `json:"notes,omitempty"`
	SellerID        string            `json:"sellerId,omitempty"`
	HasIncarico     bool              `json:"hasIncarico,omitempty"`
	IncaricoPercent *float64          `json:"incaricoPercentuale,omitempty" validate:"omitempty,gte=0,lte=100"`
	IncaricoExpiry  *Date             `json:"incaricoScadenza,omitempty"`
}

// UpdatePropertyRequest changes only the fields that are set. Tags and
// OperationTypes replace the whole set when present.
type UpdatePropertyRequest struct {
	ID              string                      `json:"id"`
	Name            Optional[string]            `json:"name,omitzero"`
	Code            Optional[string]            `json:"codice,omitzero"`
	Address         Optional[Address]           `json:"address,omitzero"`
	Region          Optional[string]            `json:"regione,omitzero"`
	Type            Optional[PropertyType]      `json:"type,omitzero"`
	Category        Optional[PropertyCategory]  `json:"category,omitzero"`
	Rooms           Optional[int]               `json:"rooms,omitzero"`
	Beds            Optional[int]               `json:"beds,omitzero"`
	Condition       Optional[PropertyCondition] `json:"condition,omitzero"`
	PriceMin        Optional[int64]             `json:"priceMin,omitzero"`
	PriceMax        Optional[int64]             `json:"priceMax,omitzero"`
	Tags            Optional[[]string]          `json:"tags,omitzero"`
	OperationTypes  Optional[[]OperationType]   `json:"operationTypes,omitzero"`
	Notes           Optional[string]            `json:"notes,omitzero"`
	SellerID        Optional[string]            `json:"sellerId,omitzero"`
	HasIncarico     Optional[bool]              `json:"hasIncarico,omitzero"`
	IncaricoPercent Optional[*float64]          `json:"incaricoPercentuale,omitzero"`
	IncaricoExpiry  Optional[*Date]             `json:"incaricoScadenza,omitzero"`
}

// PropertyFilter narrows GetAll. Price bounds select properties whose
// [PriceMin, PriceMax] range overlaps the requested one.
type PropertyFilter struct {
	Search        string            `json:"search,omitempty"`
	City          string            `json:"city,omitempty"`
	Region        string            `json:"regione,omitempty"`
	Type          PropertyType      `json:"type,omitempty"`
	Category      PropertyCategory  `json:"category,omitempty"`
	Condition     PropertyCondition `json:"condition,omitempty"`
	MinPrice      *int64            `json:"minPrice,omitempty"`
	MaxPrice      *int64            `json:"maxPrice,omitempty"`
	SellerID      string            `json:"sellerId,omitempty"`
	OperationType OperationType     `json:"operationType,omitempty"`
	Tag           string            `json:"tag,omitempty"`
	HasIncarico   *bool             `json:"hasIncarico,omitempty"`
}
