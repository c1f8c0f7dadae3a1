package types

// ContactPreference is how a seller prefers to be reached.
type ContactPreference string

const (
	ContactPhone ContactPreference = "telefono"
	ContactEmail ContactPreference = "email"
)

var validContactPreferences = map[ContactPreference]bool{
	ContactPhone: true,
	ContactEmail: true,
}

// Valid reports whether p is a known contact preference.
func (p ContactPreference) Valid() bool { return validContactPreferences[p] }

// PropertyType classifies a hospitality property.
type PropertyType string

const (
	PropertyHotel         PropertyType = "hotel"
	PropertyBnB           PropertyType = "b&b"
	PropertyAffittacamere PropertyType = "affittacamere"
	PropertyResidence     PropertyType = "residence"
	PropertyOther         PropertyType = "altro"
)

var validPropertyTypes = map[PropertyType]bool{
	PropertyHotel:         true,
	PropertyBnB:           true,
	PropertyAffittacamere: true,
	PropertyResidence:     true,
	PropertyOther:         true,
}

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool { return validPropertyTypes[t] }

// PropertyCategory is the star rating of a property.
type PropertyCategory string

const (
	Category1Star PropertyCategory = "1*"
	Category2Star PropertyCategory = "2*"
	Category3Star PropertyCategory = "3*"
	Category4Star PropertyCategory = "4*"
	Category5Star PropertyCategory = "5*"
	CategoryNone  PropertyCategory = "n/a"
)

var validPropertyCategories = map[PropertyCategory]bool{
	Category1Star: true,
	Category2Star: true,
	Category3Star: true,
	Category4Star: true,
	Category5Star: true,
	CategoryNone:  true,
}

// Valid reports whether c is a known category.
func (c PropertyCategory) Valid() bool { return validPropertyCategories[c] }

// PropertyCondition describes the state of the building.
type PropertyCondition string

const (
	ConditionExcellent      PropertyCondition = "ottimo"
	ConditionGood           PropertyCondition = "buono"
	ConditionToRenovate     PropertyCondition = "da_ristrutturare"
	ConditionInConstruction PropertyCondition = "in_costruzione"
)

var validPropertyConditions = map[PropertyCondition]bool{
	ConditionExcellent:      true,
	ConditionGood:           true,
	ConditionToRenovate:     true,
	ConditionInConstruction: true,
}

// Valid reports whether c is a known condition.
func (c PropertyCondition) Valid() bool { return validPropertyConditions[c] }

// OperationType is a kind of transaction a property is offered for.
type OperationType string

const (
	OperationBusinessLease OperationType = "affitto_attivita"
	OperationBusinessSale  OperationType = "vendita_attivita"
	OperationBuildingLease OperationType = "affitto_mura"
	OperationBuildingSale  OperationType = "vendita_mura"
	OperationAssetSale     OperationType = "vendita_cespite"
	OperationCompanySale   OperationType = "vendita_societa"
)

var validOperationTypes = map[OperationType]bool{
	OperationBusinessLease: true,
	OperationBusinessSale:  true,
	OperationBuildingLease: true,
	OperationBuildingSale:  true,
	OperationAssetSale:     true,
	OperationCompanySale:   true,
}

// Valid reports whether o is a known operation type.
func (o OperationType) Valid() bool { return validOperationTypes[o] }

// BuyerLevel is the investor profile of a buyer.
type BuyerLevel string

const (
	LevelPrivate    BuyerLevel = "privato"
	LevelFund       BuyerLevel = "fondo"
	LevelHotelGroup BuyerLevel = "gruppo_alberghiero"
	LevelInvestor   BuyerLevel = "investitore"
)

var validBuyerLevels = map[BuyerLevel]bool{
	LevelPrivate:    true,
	LevelFund:       true,
	LevelHotelGroup: true,
	LevelInvestor:   true,
}

// Valid reports whether l is a known level.
func (l BuyerLevel) Valid() bool { return validBuyerLevels[l] }

// DealStatus is the pipeline stage of a deal.
type DealStatus string

const (
	StatusNewContact   DealStatus = "nuovo_contatto"
	StatusInProgress   DealStatus = "in_corso"
	StatusOfferSent    DealStatus = "offerta_inviata"
	StatusDueDiligence DealStatus = "diligenza"
	StatusClosedWon    DealStatus = "chiuso_positivo"
	StatusClosedLost   DealStatus = "chiuso_negativo"
)

var validDealStatuses = map[DealStatus]bool{
	StatusNewContact:   true,
	StatusInProgress:   true,
	StatusOfferSent:    true,
	StatusDueDiligence: true,
	StatusClosedWon:    true,
	StatusClosedLost:   true,
}

// Valid reports whether s is a known status.
func (s DealStatus) Valid() bool { return validDealStatuses[s] }

// IsTerminal reports whether s closes the deal.
func (s DealStatus) IsTerminal() bool {
	return s == StatusClosedWon || s == StatusClosedLost
}

// DealSubject is the object of a deal (oggetto). The empty value is kept for
// rows created before the column existed.
type DealSubject string

const (
	SubjectUnset      DealSubject = ""
	SubjectSale       DealSubject = "vendita"
	SubjectLease      DealSubject = "affitto"
	SubjectManagement DealSubject = "gestione"
)

var validDealSubjects = map[DealSubject]bool{
	SubjectSale:       true,
	SubjectLease:      true,
	SubjectManagement: true,
}

// Valid reports whether s is a known, non-empty subject.
func (s DealSubject) Valid() bool { return validDealSubjects[s] }

// PaymentStatus records whether a commission was paid. Empty means unset.
type PaymentStatus string

const (
	PaymentUnset       PaymentStatus = ""
	PaymentPaid        PaymentStatus = "si"
	PaymentUnpaid      PaymentStatus = "no"
	PaymentInstalments PaymentStatus = "rateale"
)

var validPaymentStatuses = map[PaymentStatus]bool{
	PaymentUnset:       true,
	PaymentPaid:        true,
	PaymentUnpaid:      true,
	PaymentInstalments: true,
}

// Valid reports whether p is unset or a known payment status.
func (p PaymentStatus) Valid() bool { return validPaymentStatuses[p] }

// ActivityType classifies a logged interaction.
type ActivityType string

const (
	ActivityNote        ActivityType = "nota"
	ActivityCall        ActivityType = "chiamata"
	ActivityEmail       ActivityType = "email"
	ActivityAppointment ActivityType = "appuntamento"
	ActivityFollowUp    ActivityType = "follow_up"
)

var validActivityTypes = map[ActivityType]bool{
	ActivityNote:        true,
	ActivityCall:        true,
	ActivityEmail:       true,
	ActivityAppointment: true,
	ActivityFollowUp:    true,
}

// Valid reports whether a is a known activity type.
func (a ActivityType) Valid() bool { return validActivityTypes[a] }
