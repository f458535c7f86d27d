package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/firn-fr/dashboard-backend/internal/staff"
	"github.com/firn-fr/dashboard-backend/pkg/airtable"
	"github.com/firn-fr/dashboard-backend/pkg/config"
	"github.com/firn-fr/dashboard-backend/pkg/shopify"
)

var testNow = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

type stubOrders struct {
	orders []shopify.Order
	err    error
	calls  int
}

func (s *stubOrders) FetchOrders(_ context.Context, _ shopify.OrderFilters) ([]shopify.Order, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.orders, nil
}

type stubContacts struct {
	contacts  []airtable.ClientContact
	listErr   error
	target    float64
	hasTarget bool
	targetErr error
}

func (s *stubContacts) Enabled() bool { return true }

func (s *stubContacts) ListClientsToContact(_ context.Context, _, _ string, _ int) ([]airtable.ClientContact, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.contacts, nil
}

func (s *stubContacts) DailyTarget(_ context.Context, _, _ string) (float64, bool, error) {
	if s.targetErr != nil {
		return 0, false, s.targetErr
	}
	return s.target, s.hasTarget, nil
}

type stubCache struct {
	values map[string]string
}

func newStubCache() *stubCache {
	return &stubCache{values: map[string]string{}}
}

func (s *stubCache) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubCache) CacheKey(parts ...string) string {
	key := "test:cache"
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

func testService(orders OrderSource, contacts ContactSource, cache Cache) *Service {
	return NewService(ServiceOptions{
		Orders:   orders,
		Contacts: contacts,
		Cache:    cache,
		Resolver: staff.NewResolver(map[string]string{"129862140283": "Jérémy"}),
		Airtable: config.AirtableConfig{ClientsTable: "Clients", TargetsTable: "Objectifs"},
		Stats:    config.StatsConfig{RepeatWindowDays: 180, CacheTTL: time.Minute},
		Now:      func() time.Time { return testNow },
	})
}

func posOrder(email, total string, createdAt time.Time, operator int64) shopify.Order {
	order := shopify.Order{
		CreatedAt:  createdAt,
		TotalPrice: total,
		SourceName: shopify.SourceNamePOS,
		LineItems:  []shopify.LineItem{{Quantity: 1}},
	}
	if email != "" {
		order.Customer = &shopify.Customer{Email: email}
	}
	if operator != 0 {
		order.UserID = &operator
	}
	return order
}

func TestLoadAssemblesDashboard(t *testing.T) {
	orders := &stubOrders{orders: []shopify.Order{
		posOrder("a@example.com", "100.00", testNow.Add(-time.Hour), 129862140283),
		posOrder("a@example.com", "50.00", testNow.Add(-40*24*time.Hour), 129862140283),
		posOrder("b@example.com", "30.00", testNow.Add(-2*time.Hour), 129870954875),
	}}
	contacts := &stubContacts{
		contacts:  []airtable.ClientContact{{Email: "a@example.com", Name: "Alice Durand"}},
		target:    200,
		hasTarget: true,
	}
	cache := newStubCache()

	svc := testService(orders, contacts, cache)
	got, err := svc.Load(context.Background(), "129862140283", 10)
	require.NoError(t, err)

	require.Equal(t, 130.0, got.Stats.DailyRevenue)
	require.Equal(t, 2, got.Stats.DailyOrders)
	require.NotNil(t, got.VendorStats)
	require.Equal(t, 100.0, got.VendorStats.DailyRevenue)
	require.Equal(t, 1, got.VendorStats.RepeatCount, "vendor's customer ordered twice in window")

	require.Len(t, got.Vendors, 2, "both operators appear in the current month")
	require.Equal(t, "Jérémy", got.Vendors[0].Name)

	require.Len(t, got.Clients, 1)
	require.Equal(t, 2, got.Clients[0].OrderCount)
	require.True(t, got.Clients[0].IsRepeat)

	require.True(t, got.HasTarget)
	require.Equal(t, 65, got.TargetAttainmentPct)
	require.False(t, got.Stale)
}

func TestLoadServesFreshCacheWithoutFetching(t *testing.T) {
	cache := newStubCache()
	cached := Dashboard{FetchedAt: testNow.Add(-30 * time.Second)}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)
	cache.values[cache.CacheKey("dashboard", "", "10")] = string(raw)

	orders := &stubOrders{}
	svc := testService(orders, &stubContacts{}, cache)

	got, err := svc.Load(context.Background(), "", 10)
	require.NoError(t, err)
	require.Equal(t, cached.FetchedAt, got.FetchedAt)
	require.Zero(t, orders.calls, "fresh cache hit must not hit the API")
}

func TestLoadFallsBackToStaleCopy(t *testing.T) {
	cache := newStubCache()
	stale := Dashboard{FetchedAt: testNow.Add(-2 * time.Hour)}
	raw, err := json.Marshal(stale)
	require.NoError(t, err)
	cache.values[cache.CacheKey("dashboard", "stale", "", "10")] = string(raw)

	orders := &stubOrders{err: errors.New("upstream down")}
	svc := testService(orders, &stubContacts{}, cache)

	got, err := svc.Load(context.Background(), "", 10)
	require.NoError(t, err)
	require.True(t, got.Stale)
	require.Equal(t, stale.FetchedAt, got.FetchedAt)
}

func TestLoadFailsWithoutAnyCachedCopy(t *testing.T) {
	orders := &stubOrders{err: errors.New("upstream down")}
	svc := testService(orders, &stubContacts{}, newStubCache())

	_, err := svc.Load(context.Background(), "", 10)
	require.Error(t, err)
}

func TestLoadDegradesWhenFollowUpBaseFails(t *testing.T) {
	orders := &stubOrders{orders: []shopify.Order{
		posOrder("a@example.com", "10.00", testNow.Add(-time.Hour), 0),
	}}
	contacts := &stubContacts{
		listErr:   errors.New("airtable 503"),
		targetErr: errors.New("airtable 503"),
	}

	svc := testService(orders, contacts, newStubCache())
	got, err := svc.Load(context.Background(), "", 10)
	require.NoError(t, err, "follow-up base failures must not break the dashboard")
	require.Empty(t, got.Clients)
	require.False(t, got.HasTarget)
	require.Equal(t, 10.0, got.Stats.DailyRevenue)
}

func TestLoadWritesFreshAndStaleCopies(t *testing.T) {
	orders := &stubOrders{orders: []shopify.Order{
		posOrder("a@example.com", "10.00", testNow.Add(-time.Hour), 0),
	}}
	cache := newStubCache()

	svc := testService(orders, &stubContacts{}, cache)
	_, err := svc.Load(context.Background(), "", 10)
	require.NoError(t, err)

	require.Contains(t, cache.values, cache.CacheKey("dashboard", "", "10"))
	require.Contains(t, cache.values, cache.CacheKey("dashboard", "stale", "", "10"))
}

func TestStatsAppliesRepeatFigures(t *testing.T) {
	orders := &stubOrders{orders: []shopify.Order{
		posOrder("a@example.com", "10.00", testNow.Add(-time.Hour), 0),
		posOrder("a@example.com", "10.00", testNow.Add(-48*time.Hour), 0),
		posOrder("b@example.com", "10.00", testNow.Add(-time.Hour), 0),
	}}

	svc := testService(orders, &stubContacts{}, newStubCache())
	got, err := svc.Stats(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 2, got.TotalCustomers)
	require.Equal(t, 1, got.RepeatCount)
	require.Equal(t, 50, got.RepeatRate)
}

func TestClientsUnenrichedWhenOrdersUnavailable(t *testing.T) {
	orders := &stubOrders{err: errors.New("upstream down")}
	contacts := &stubContacts{contacts: []airtable.ClientContact{{Email: "a@example.com"}}}

	svc := testService(orders, contacts, newStubCache())
	got, err := svc.Clients(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Zero(t, got[0].OrderCount)
	require.False(t, got[0].IsRepeat)
}
