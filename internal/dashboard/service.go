package dashboard

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/firn-fr/dashboard-backend/internal/directory"
	"github.com/firn-fr/dashboard-backend/internal/staff"
	"github.com/firn-fr/dashboard-backend/internal/stats"
	"github.com/firn-fr/dashboard-backend/pkg/airtable"
	"github.com/firn-fr/dashboard-backend/pkg/config"
	"github.com/firn-fr/dashboard-backend/pkg/logger"
	"github.com/firn-fr/dashboard-backend/pkg/shopify"
)

// OrderSource pulls the raw order history used by every computation.
type OrderSource interface {
	FetchOrders(ctx context.Context, filters shopify.OrderFilters) ([]shopify.Order, error)
}

// ContactSource reads the client follow-up list and daily revenue
// targets. A disabled source returns empty data without error.
type ContactSource interface {
	Enabled() bool
	ListClientsToContact(ctx context.Context, table, view string, limit int) ([]airtable.ClientContact, error)
	DailyTarget(ctx context.Context, table, date string) (float64, bool, error)
}

// Cache stores the last assembled payload so a Shopify outage degrades
// to slightly stale numbers instead of an empty dashboard.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// Client is one follow-up entry enriched with what the order history
// knows about that customer.
type Client struct {
	airtable.ClientContact
	OrderCount int  `json:"order_count"`
	IsRepeat   bool `json:"is_repeat"`
}

// Dashboard is the full payload rendered by the storefront dashboard.
type Dashboard struct {
	Stats       stats.Snapshot  `json:"stats"`
	VendorStats *stats.Snapshot `json:"vendor_stats,omitempty"`

	Vendors []directory.Vendor `json:"vendors"`
	Clients []Client           `json:"clients"`

	DailyTarget         float64 `json:"daily_target"`
	HasTarget           bool    `json:"has_target"`
	TargetAttainmentPct int     `json:"target_attainment_pct"`

	FetchedAt time.Time `json:"fetched_at"`
	Stale     bool      `json:"stale,omitempty"`
}

// ServiceOptions wires the service dependencies.
type ServiceOptions struct {
	Orders   OrderSource
	Contacts ContactSource
	Cache    Cache
	Resolver *staff.Resolver
	Logger   *logger.Logger

	Airtable config.AirtableConfig
	Stats    config.StatsConfig

	// Location must match Stats.Timezone; it is resolved once at startup.
	Location *time.Location

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Service assembles the dashboard from the order history, the follow-up
// base, and the cache.
type Service struct {
	orders   OrderSource
	contacts ContactSource
	cache    Cache
	resolver *staff.Resolver
	logg     *logger.Logger

	airtableCfg config.AirtableConfig
	location    *time.Location
	repeatWin   time.Duration
	cacheTTL    time.Duration
	now         func() time.Time
}

func NewService(opts ServiceOptions) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = staff.NewResolver(nil)
	}
	return &Service{
		orders:      opts.Orders,
		contacts:    opts.Contacts,
		cache:       opts.Cache,
		resolver:    resolver,
		logg:        opts.Logger,
		airtableCfg: opts.Airtable,
		location:    loc,
		repeatWin:   opts.Stats.RepeatWindow(),
		cacheTTL:    opts.Stats.CacheTTL,
		now:         now,
	}
}

// Dashboards lost to a Shopify outage are served from this longer
// retention copy, flagged stale.
const staleRetention = 24 * time.Hour

// Load assembles the full dashboard. Order history is fetched once over
// the trailing repeat window and shared by every computation; the
// follow-up base is consulted concurrently and degrades to empty data
// when unavailable. A fresh cached payload short-circuits the fetch.
func (s *Service) Load(ctx context.Context, vendorID string, clientsLimit int) (*Dashboard, error) {
	if cached, ok := s.readCached(ctx, s.freshKey(vendorID, clientsLimit)); ok {
		return cached, nil
	}

	now := s.now()

	var (
		orders    []shopify.Order
		contacts  []airtable.ClientContact
		target    float64
		hasTarget bool
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		fetched, err := s.orders.FetchOrders(groupCtx, shopify.OrderFilters{
			StatusAny:    true,
			CreatedAtMin: now.Add(-s.repeatWin),
		})
		if err != nil {
			return err
		}
		orders = fetched
		return nil
	})
	group.Go(func() error {
		listed, err := s.contacts.ListClientsToContact(groupCtx, s.airtableCfg.ClientsTable, s.airtableCfg.ClientsView, clientsLimit)
		if err != nil {
			s.warn(groupCtx, "follow-up list unavailable", err)
			return nil
		}
		contacts = listed
		return nil
	})
	group.Go(func() error {
		date := now.In(s.location).Format("2006-01-02")
		amount, ok, err := s.contacts.DailyTarget(groupCtx, s.airtableCfg.TargetsTable, date)
		if err != nil {
			s.warn(groupCtx, "daily target unavailable", err)
			return nil
		}
		target, hasTarget = amount, ok
		return nil
	})

	if err := group.Wait(); err != nil {
		if cached, ok := s.readCached(ctx, s.staleKey(vendorID, clientsLimit)); ok {
			s.warn(ctx, "serving stale dashboard after order fetch failure", err)
			cached.Stale = true
			return cached, nil
		}
		return nil, err
	}

	payload := s.assemble(orders, contacts, vendorID, now)
	payload.DailyTarget = target
	payload.HasTarget = hasTarget
	if hasTarget && target > 0 {
		payload.TargetAttainmentPct = int(math.Round(100 * payload.Stats.DailyRevenue / target))
	}

	s.writeCached(ctx, vendorID, clientsLimit, payload)
	return payload, nil
}

// Stats computes the KPI snapshot alone, without the follow-up base.
func (s *Service) Stats(ctx context.Context, vendorID string) (*stats.Snapshot, error) {
	now := s.now()
	orders, err := s.orders.FetchOrders(ctx, shopify.OrderFilters{
		StatusAny:    true,
		CreatedAtMin: now.Add(-s.repeatWin),
	})
	if err != nil {
		return nil, err
	}

	snapshot := stats.Compute(orders, stats.Options{
		POSOnly:  true,
		VendorID: vendorID,
		Now:      now,
		Location: s.location,
	})
	snapshot.ApplyRepeat(stats.ComputeRepeat(orders, stats.RepeatOptions{
		VendorID: vendorID,
		Now:      now,
		Window:   s.repeatWin,
	}))
	return &snapshot, nil
}

// Vendors lists the distinct vendors seen in the current month.
func (s *Service) Vendors(ctx context.Context) ([]directory.Vendor, error) {
	now := s.now()
	orders, err := s.orders.FetchOrders(ctx, shopify.OrderFilters{
		StatusAny:    true,
		CreatedAtMin: monthStart(now, s.location),
	})
	if err != nil {
		return nil, err
	}
	return directory.ListVendors(orders, s.resolver), nil
}

// Clients returns the enriched follow-up list alone.
func (s *Service) Clients(ctx context.Context, limit int) ([]Client, error) {
	contacts, err := s.contacts.ListClientsToContact(ctx, s.airtableCfg.ClientsTable, s.airtableCfg.ClientsView, limit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	orders, err := s.orders.FetchOrders(ctx, shopify.OrderFilters{
		StatusAny:    true,
		CreatedAtMin: now.Add(-s.repeatWin),
	})
	if err != nil {
		s.warn(ctx, "order history unavailable, returning unenriched clients", err)
		orders = nil
	}
	return enrichClients(contacts, stats.CustomerOrderCounts(orders)), nil
}

func (s *Service) assemble(orders []shopify.Order, contacts []airtable.ClientContact, vendorID string, now time.Time) *Dashboard {
	global := stats.Compute(orders, stats.Options{
		POSOnly:  true,
		Now:      now,
		Location: s.location,
	})
	global.ApplyRepeat(stats.ComputeRepeat(orders, stats.RepeatOptions{
		Now:    now,
		Window: s.repeatWin,
	}))

	payload := &Dashboard{
		Stats:     global,
		Vendors:   directory.ListVendors(monthlySubset(orders, now, s.location), s.resolver),
		Clients:   enrichClients(contacts, stats.CustomerOrderCounts(orders)),
		FetchedAt: now.UTC(),
	}

	if vendorID != "" {
		scoped := stats.Compute(orders, stats.Options{
			POSOnly:  true,
			VendorID: vendorID,
			Now:      now,
			Location: s.location,
		})
		scoped.ApplyRepeat(stats.ComputeRepeat(orders, stats.RepeatOptions{
			VendorID: vendorID,
			Now:      now,
			Window:   s.repeatWin,
		}))
		payload.VendorStats = &scoped
	}

	return payload
}

func enrichClients(contacts []airtable.ClientContact, counts map[string]int) []Client {
	clients := make([]Client, 0, len(contacts))
	for _, contact := range contacts {
		count := counts[contact.Email]
		clients = append(clients, Client{
			ClientContact: contact,
			OrderCount:    count,
			IsRepeat:      count > 1,
		})
	}
	return clients
}

func monthlySubset(orders []shopify.Order, now time.Time, loc *time.Location) []shopify.Order {
	cutoff := monthStart(now, loc)
	subset := make([]shopify.Order, 0, len(orders))
	for _, order := range orders {
		if !order.CreatedAt.Before(cutoff) {
			subset = append(subset, order)
		}
	}
	return subset
}

func monthStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

func (s *Service) freshKey(vendorID string, limit int) string {
	if s.cache == nil {
		return ""
	}
	return s.cache.CacheKey("dashboard", vendorID, strconv.Itoa(limit))
}

func (s *Service) staleKey(vendorID string, limit int) string {
	if s.cache == nil {
		return ""
	}
	return s.cache.CacheKey("dashboard", "stale", vendorID, strconv.Itoa(limit))
}

func (s *Service) readCached(ctx context.Context, key string) (*Dashboard, bool) {
	if s.cache == nil || key == "" {
		return nil, false
	}
	raw, found, err := s.cache.Get(ctx, key)
	if err != nil || !found {
		return nil, false
	}
	var payload Dashboard
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, false
	}
	return &payload, true
}

func (s *Service) writeCached(ctx context.Context, vendorID string, limit int, payload *Dashboard) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.freshKey(vendorID, limit), string(raw), s.cacheTTL); err != nil {
		s.warn(ctx, "dashboard cache write failed", err)
	}
	if err := s.cache.Set(ctx, s.staleKey(vendorID, limit), string(raw), staleRetention); err != nil {
		s.warn(ctx, "dashboard stale copy write failed", err)
	}
}

func (s *Service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
