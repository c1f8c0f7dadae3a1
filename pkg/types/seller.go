package types

import "time"

// Seller is a property owner or their representative.
type Seller struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Company           string            `json:"company,omitempty"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	Role              string            `json:"role,omitempty"`
	ContactPreference ContactPreference `json:"contactPreference"`
	PreferredHours    string            `json:"preferredHours,omitempty"`
	Notes             string            `json:"notes"`
	PropertyIDs       []string          `json:"propertyIds"`
	LastContact       *time.Time        `json:"lastContact,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// CreateSellerRequest carries the fields of a new seller. An empty
// ContactPreference defaults to telefono.
type CreateSellerRequest struct {
	Name              string            `json:"name" validate:"required,min=2"`
	Company           string            `json:"company,omitempty"`
	Email             string            `json:"email" validate:"required,contains=@"`
	Phone             string            `json:"phone"`
	Role              string            `json:"role,omitempty"`
	ContactPreference ContactPreference `json:"contactPreference,omitempty" validate:"omitempty,enum"`
	PreferredHours    string            `json:"preferredHours,omitempty"`
	Notes             string            `json:"notes,omitempty"`
}

// UpdateSellerRequest changes only the fields that are set.
type UpdateSellerRequest struct {
	ID                string                      `json:"id"`
	Name              Optional[string]            `json:"name,omitzero"`
	Company           Optional[string]            `json:"company,omitzero"`
	Email             Optional[string]            `json:"email,omitzero"`
	Phone             Optional[string]            `json:"phone,omitzero"`
	Role              Optional[string]            `json:"role,omitzero"`
	ContactPreference Optional[ContactPreference] `json:"contactPreference,omitzero"`
	PreferredHours    Optional[string]            `json:"preferredHours,omitzero"`
	Notes             Optional[string]            `json:"notes,omitzero"`
}

// SellerFilter narrows GetAll. Search matches name, company, or email.
type SellerFilter struct {
	Search string `json:"search,omitempty"`
}
