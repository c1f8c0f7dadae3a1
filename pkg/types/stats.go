package types

// DashboardStats are the headline counts shown on the dashboard.
type DashboardStats struct {
	TotalBuyers     int `json:"totalBuyers"`
	TotalSellers    int `json:"totalSellers"`
	TotalProperties int `json:"totalProperties"`
	ActiveDeals     int `json:"activeDeals"`
	ClosedDeals     int `json:"closedDeals"`
	StaleDeals      int `json:"staleDeals"`
}

// ExpirationLevel ranks how close an incarico is to its expiry.
type ExpirationLevel string

const (
	ExpirationExpired ExpirationLevel = "expired"
	ExpirationUrgent  ExpirationLevel = "urgent"
	ExpirationWarning ExpirationLevel = "warning"
	ExpirationOK      ExpirationLevel = "ok"
)

// Expiration thresholds in days.
const (
	UrgentExpiryDays  = 14
	WarningExpiryDays = 30
)

// LevelForDays maps the days left before expiry to a level.
func LevelForDays(days int) ExpirationLevel {
	switch {
	case days < 0:
		return ExpirationExpired
	case days <= UrgentExpiryDays:
		return ExpirationUrgent
	case days <= WarningExpiryDays:
		return ExpirationWarning
	default:
		return ExpirationOK
	}
}

// IncaricoExpiration is one row of the incarico expiry list.
type IncaricoExpiration struct {
	PropertyID      string          `json:"propertyId"`
	PropertyName    string          `json:"propertyName"`
	City            string          `json:"city"`
	SellerID        string          `json:"sellerId"`
	IncaricoPercent *float64        `json:"incaricoPercentuale,omitempty"`
	Expiry          Date            `json:"incaricoScadenza"`
	DaysLeft        int             `json:"daysLeft"`
	Level           ExpirationLevel `json:"level"`
}
