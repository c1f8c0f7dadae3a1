package types

import "time"

// Deal is a negotiation (trattativa) between a buyer and a property.
// Commission percentages and payment states are tracked separately for
// the buyer side and the seller side.
type Deal struct {
	ID                 string        `json:"id"`
	BuyerID            string        `json:"buyerId"`
	PropertyID         string        `json:"propertyId"`
	Status             DealStatus    `json:"status"`
	Subject            DealSubject   `json:"oggetto"`
	PriceRequested     *int64        `json:"prezzoRichiesto,omitempty"`
	PriceOffered       *int64        `json:"priceOffered,omitempty"`
	PriceNegotiated    *int64        `json:"priceNegotiated,omitempty"`
	BuyerCommission    *float64      `json:"provvigioneCompratore,omitempty"`
	BuyerCollaborator  string        `json:"collaboratoreCompratore"`
	SellerCommission   *float64      `json:"provvigioneVenditore,omitempty"`
	SellerCollaborator string        `json:"collaboratoreVenditore"`
	BuyerPayment       PaymentStatus `json:"pagamentoCompratore"`
	BuyerDepositPaid   bool          `json:"accontoCompratore"`
	SellerPayment      PaymentStatus `json:"pagamentoVenditore"`
	SellerDepositPaid  bool          `json:"accontoVenditore"`
	Notes              string        `json:"notes"`
	Activities         []Activity    `json:"activities"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// CreateDealRequest carries the fields of a new deal. An empty Status
// defaults to nuovo_contatto.
type CreateDealRequest struct {
	BuyerID            string        `json:"buyerId" validate:"required"`
	PropertyID         string        `json:"propertyId" validate:"required"`
	Status             DealStatus    `json:"status,omitempty" validate:"omitempty,enum"`
	Subject            DealSubject   `json:"oggetto" validate:"required,enum"`
	PriceRequested     *int64        `json:"prezzoRichiesto,omitempty" validate:"omitempty,gte=0"`
	PriceOffered       *int64        `json:"priceOffered,omitempty" validate:"omitempty,gte=0"`
	PriceNegotiated    *int64        `json:"priceNegotiated,omitempty" validate:"omitempty,gte=0"`
	BuyerCommission    *float64      `json:"provvigioneCompratore,omitempty" validate:"omitempty,gte=0,lte=100"`
	BuyerCollaborator  string        `json:"collaboratoreCompratore,omitempty"`
	SellerCommission   *float64      `json:"provvigioneVenditore,omitempty" validate:"omitempty,gte=0,lte=100"`
	SellerCollaborator string        `json:"collaboratoreVenditore,omitempty"`
	BuyerPayment       PaymentStatus `json:"pagamentoCompratore,omitempty" validate:"enum"`
	BuyerDepositPaid   bool          `json:"accontoCompratore,omitempty"`
	SellerPayment      PaymentStatus `json:"pagamentoVenditore,omitempty" validate:"enum"`
	SellerDepositPaid  bool          `json:"accontoVenditore,omitempty"`
	Notes              string        `json:"notes,omitempty"`
}

// UpdateDealRequest changes only the fields that are set. The buyer and
// property of a deal are fixed at creation.
type UpdateDealRequest struct {
	ID                 string                  `json:"id"`
	Status             Optional[DealStatus]    `json:"status,omitzero"`
	Subject            Optional[DealSubject]   `json:"oggetto,omitzero"`
	PriceRequested     Optional[*int64]        `json:"prezzoRichiesto,omitzero"`
	PriceOffered       Optional[*int64]        `json:"priceOffered,omitzero"`
	PriceNegotiated    Optional[*int64]        `json:"priceNegotiated,omitzero"`
	BuyerCommission    Optional[*float64]      `json:"provvigioneCompratore,omitzero"`
	BuyerCollaborator  Optional[string]        `json:"collaboratoreCompratore,omitzero"`
	SellerCommission   Optional[*float64]      `json:"provvigioneVenditore,omitzero"`
	SellerCollaborator Optional[string]        `json:"collaboratoreVenditore,omitzero"`
	BuyerPayment       Optional[PaymentStatus] `json:"pagamentoCompratore,omitzero"`
	BuyerDepositPaid   Optional[bool]          `json:"accontoCompratore,omitzero"`
	SellerPayment      Optional[PaymentStatus] `json:"pagamentoVenditore,omitzero"`
	SellerDepositPaid  Optional[bool]          `json:"accontoVenditore,omitzero"`
	Notes              Optional[string]        `json:"notes,omitzero"`
}

// DealFilter narrows GetAll.
type DealFilter struct {
	Status     DealStatus  `json:"status,omitempty"`
	Subject    DealSubject `json:"oggetto,omitempty"`
	BuyerID    string      `json:"buyerId,omitempty"`
	PropertyID string      `json:"propertyId,omitempty"`
}
