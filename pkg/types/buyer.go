package types

import "time"

// DefaultCurrency fills Buyer.Currency when none is given.
const DefaultCurrency = "EUR"

// Buyer is a prospective purchaser with a budget and search preferences.
type Buyer struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Company        string         `json:"company,omitempty"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	BudgetMin      int64          `json:"budgetMin"`
	BudgetMax      int64          `json:"budgetMax"`
	Currency       string         `json:"currency"`
	Zones          []string       `json:"zones"`
	PreferredTypes []PropertyType `json:"preferredTypes"`
	Level          BuyerLevel     `json:"level,omitempty"`
	Tags           []string       `json:"tags"`
	Notes          string         `json:"notes"`
	LastContact    *time.Time     `json:"lastContact,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// CreateBuyerRequest carries the fields of a new buyer.
type CreateBuyerRequest struct {
	Name           string         `json:"name" validate:"required,min=2"`
	Company        string         `json:"company,omitempty"`
	Email          string         `json:"email" validate:"required,contains=@"`
	Phone          string         `json:"phone"`
	BudgetMin      int64          `json:"budgetMin" validate:"gte=0"`
	BudgetMax      int64          `json:"budgetMax" validate:"gte=0"`
	Currency       string         `json:"currency,omitempty"`
	Zones          []string       `json:"zones,omitempty" validate:"dive,required"`
	PreferredTypes []PropertyType `json:"preferredTypes,omitempty" validate:"dive,enum"`
	Level          BuyerLevel     `json:"level,omitempty" validate:"omitempty,enum"`
	Tags           []string       `json:"tags,omitempty" validate:"dive,required"`
	Notes          string         `json:"notes,omitempty"`
}

// UpdateBuyerRequest changes only the fields that are set. Zones,
// PreferredTypes, and Tags replace the whole set when present.
type UpdateBuyerRequest struct {
	ID             string                   `json:"id"`
	Name           Optional[string]         `json:"name,omitzero"`
	Company        Optional[string]         `json:"company,omitzero"`
	Email          Optional[string]         `json:"email,omitzero"`
	Phone          Optional[string]         `json:"phone,omitzero"`
	BudgetMin      Optional[int64]          `json:"budgetMin,omitzero"`
	BudgetMax      Optional[int64]          `json:"budgetMax,omitzero"`
	Currency       Optional[string]         `json:"currency,omitzero"`
	Zones          Optional[[]string]       `json:"zones,omitzero"`
	PreferredTypes Optional[[]PropertyType] `json:"preferredTypes,omitzero"`
	Level          Optional[BuyerLevel]     `json:"level,omitzero"`
	Tags           Optional[[]string]       `json:"tags,omitzero"`
	Notes          Optional[string]         `json:"notes,omitzero"`
}

// BuyerFilter narrows GetAll. Budget bounds select buyers whose
// [BudgetMin, BudgetMax] range overlaps the requested one.
type BuyerFilter struct {
	Search    string     `json:"search,omitempty"`
	Zone      string     `json:"zone,omitempty"`
	Level     BuyerLevel `json:"level,omitempty"`
	MinBudget *int64     `json:"minBudget,omitempty"`
	MaxBudget *int64     `json:"maxBudget,omitempty"`
	Tag       string     `json:"tag,omitempty"`
}
