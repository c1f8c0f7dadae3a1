// Package stats derives dashboard figures from the repositories: headline
// counts, deals that have gone quiet, and incarico expirations.
package stats

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/hotelcrm/internal/logging"
	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

// Service computes statistics over an open store. It holds no state of its
// own; every call reads the database.
type Service struct {
	store  types.Store
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for expiry day counts. Pass the backend
// clock so that both agree.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(l) }
}

// New returns a Service reading from store.
func New(store types.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard returns the headline counts. staleDays is the inactivity
// threshold used for the stale count; values below 1 use the default.
func (s *Service) Dashboard(staleDays int) (types.DashboardStats, error) {
	var st types.DashboardStats
	var err error

	if st.TotalBuyers, err = s.store.Buyers().Count(); err != nil {
		return st, fmt.Errorf("counting buyers: %w", err)
	}
	if st.TotalSellers, err = s.store.Sellers().Count(); err != nil {
		return st, fmt.Errorf("counting sellers: %w", err)
	}
	if st.TotalProperties, err = s.store.Properties().Count(); err != nil {
		return st, fmt.Errorf("counting properties: %w", err)
	}
	if st.ActiveDeals, err = s.store.Deals().CountActive(); err != nil {
		return st, fmt.Errorf("counting active deals: %w", err)
	}
	if st.ClosedDeals, err = s.store.Deals().CountClosed(); err != nil {
		return st, fmt.Errorf("counting closed deals: %w", err)
	}
	stale, err := s.StaleDeals(staleDays)
	if err != nil {
		return st, err
	}
	st.StaleDeals = len(stale)
	return st, nil
}

// StaleDeals returns open deals without updates for more than days days,
// oldest first. Values below 1 use the default threshold.
func (s *Service) StaleDeals(days int) ([]types.Deal, error) {
	if days < 1 {
		days = types.DefaultStaleDays
	}
	deals, err := s.store.Deals().GetStaleDeals(days)
	if err != nil {
		return nil, fmt.Errorf("fetching stale deals: %w", err)
	}
	return deals, nil
}

// StaleDeal is a stale deal with the names needed to display it.
type StaleDeal struct {
	Deal         types.Deal `json:"deal"`
	BuyerName    string     `json:"buyerName"`
	PropertyName string     `json:"propertyName"`
	DaysIdle     int        `json:"daysIdle"`
}

// StaleDealDetails resolves buyer and property names for each stale deal.
// Lookups are cached per call.
func (s *Service) StaleDealDetails(days int) ([]StaleDeal, error) {
	deals, err := s.StaleDeals(days)
	if err != nil {
		return nil, err
	}

	buyers := map[string]string{}
	properties := map[string]string{}
	now := s.now().UTC()

	rows := make([]StaleDeal, 0, len(deals))
	for _, d := range deals {
		buyerName, ok := buyers[d.BuyerID]
		if !ok {
			b, err := s.store.Buyers().GetByID(d.BuyerID)
			if err != nil {
				return nil, fmt.Errorf("resolving buyer of deal %s: %w", d.ID, err)
			}
			if b != nil {
				buyerName = b.Name
			}
			buyers[d.BuyerID] = buyerName
		}
		propertyName, ok := properties[d.PropertyID]
		if !ok {
			p, err := s.store.Properties().GetByID(d.PropertyID)
			if err != nil {
				return nil, fmt.Errorf("resolving property of deal %s: %w", d.ID, err)
			}
			if p != nil {
				propertyName = p.Name
			}
			properties[d.PropertyID] = propertyName
		}
		rows = append(rows, StaleDeal{
			Deal:         d,
			BuyerName:    buyerName,
			PropertyName: propertyName,
			DaysIdle:     int(now.Sub(d.UpdatedAt).Hours() / 24),
		})
	}
	return rows, nil
}

// IncaricoExpirations lists every property holding an incarico with an
// expiry date, soonest first, with the days left and an urgency level.
func (s *Service) IncaricoExpirations() ([]types.IncaricoExpiration, error) {
	props, err := s.store.Properties().GetWithIncarico()
	if err != nil {
		return nil, fmt.Errorf("fetching incarichi: %w", err)
	}

	now := s.now()
	out := make([]types.IncaricoExpiration, 0, len(props))
	for _, p := range props {
		if p.IncaricoExpiry == nil {
			continue
		}
		days := p.IncaricoExpiry.DaysUntil(now)
		out = append(out, types.IncaricoExpiration{
			PropertyID:      p.ID,
			PropertyName:    p.Name,
			City:            p.Address.City,
			SellerID:        p.SellerID,
			IncaricoPercent: p.IncaricoPercent,
			Expiry:          *p.IncaricoExpiry,
			DaysLeft:        days,
			Level:           types.LevelForDays(days),
		})
	}

	if expired := countLevel(out, types.ExpirationExpired); expired > 0 {
		s.logger.Warn("incarichi expired", zap.Int("count", expired))
	}
	return out, nil
}

// RecentActivities returns activities dated within the last days days,
// newest first, capped at limit. Non-positive arguments use the defaults.
func (s *Service) RecentActivities(days, limit int) ([]types.Activity, error) {
	if days < 1 {
		days = types.DefaultRecentDays
	}
	if limit < 1 {
		limit = types.DefaultRecentLimit
	}
	acts, err := s.store.Activities().GetRecent(days, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching recent activities: %w", err)
	}
	return acts, nil
}

func countLevel(rows []types.IncaricoExpiration, level types.ExpirationLevel) int {
	n := 0
	for _, r := range rows {
		if r.Level == level {
			n++
		}
	}
	return n
}
