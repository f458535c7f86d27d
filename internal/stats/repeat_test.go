package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/firn-fr/dashboard-backend/pkg/shopify"
)

func posOrderFor(email string, createdAt time.Time) shopify.Order {
	return shopify.Order{
		CreatedAt:  createdAt,
		SourceName: shopify.SourceNamePOS,
		TotalPrice: "10.00",
		Customer:   &shopify.Customer{Email: email},
	}
}

func TestComputeRepeatRate(t *testing.T) {
	base := testNow.Add(-24 * time.Hour)
	orders := []shopify.Order{
		posOrderFor("a@example.com", base),
		posOrderFor("A@Example.com", base.Add(time.Hour)), // same customer, different casing
		posOrderFor("a@example.com", base.Add(2*time.Hour)),
		posOrderFor("b@example.com", base),
		posOrderFor("c@example.com", base),
		posOrderFor("d@example.com", base),
	}

	got := ComputeRepeat(orders, RepeatOptions{})
	require.Equal(t, 4, got.TotalCustomers)
	require.Equal(t, 1, got.RepeatCount)
	require.Equal(t, 25, got.RepeatRate)
}

func TestComputeRepeatEmptySet(t *testing.T) {
	got := ComputeRepeat(nil, RepeatOptions{})
	if got != (RepeatStats{}) {
		t.Fatalf("expected zero stats, got %+v", got)
	}
}

func TestComputeRepeatSkipsNonQualifyingOrders(t *testing.T) {
	base := testNow.Add(-24 * time.Hour)
	cancelledAt := base.Add(time.Minute)

	cancelled := posOrderFor("a@example.com", base)
	cancelled.CancelledAt = &cancelledAt

	online := posOrderFor("a@example.com", base)
	online.SourceName = "web"

	noEmail := posOrderFor("", base)

	got := ComputeRepeat([]shopify.Order{cancelled, online, noEmail}, RepeatOptions{})
	require.Zero(t, got.TotalCustomers)
	require.Zero(t, got.RepeatRate)
}

func TestComputeRepeatVendorFilter(t *testing.T) {
	vendor := int64(129870954875)
	base := testNow.Add(-24 * time.Hour)

	mine := posOrderFor("a@example.com", base)
	mine.UserID = &vendor
	mineAgain := posOrderFor("a@example.com", base.Add(time.Hour))
	mineAgain.UserID = &vendor
	other := posOrderFor("b@example.com", base)

	got := ComputeRepeat([]shopify.Order{mine, mineAgain, other}, RepeatOptions{VendorID: "129870954875"})
	require.Equal(t, 1, got.TotalCustomers)
	require.Equal(t, 1, got.RepeatCount)
	require.Equal(t, 100, got.RepeatRate)
}

func TestComputeRepeatTrailingWindow(t *testing.T) {
	window := 180 * 24 * time.Hour
	inside := posOrderFor("a@example.com", testNow.Add(-30*24*time.Hour))
	insideAgain := posOrderFor("a@example.com", testNow.Add(-10*24*time.Hour))
	stale := posOrderFor("a@example.com", testNow.Add(-200*24*time.Hour))
	staleOnly := posOrderFor("b@example.com", testNow.Add(-190*24*time.Hour))

	got := ComputeRepeat([]shopify.Order{inside, insideAgain, stale, staleOnly}, RepeatOptions{
		Now:    testNow,
		Window: window,
	})
	require.Equal(t, 1, got.TotalCustomers, "orders outside the window are ignored")
	require.Equal(t, 1, got.RepeatCount)
}

func TestCustomerOrderCounts(t *testing.T) {
	base := testNow.Add(-24 * time.Hour)
	cancelledAt := base.Add(time.Minute)
	cancelled := posOrderFor("a@example.com", base)
	cancelled.CancelledAt = &cancelledAt

	online := posOrderFor("b@example.com", base)
	online.SourceName = "web"

	orders := []shopify.Order{
		posOrderFor("a@example.com", base),
		posOrderFor("A@example.COM", base.Add(time.Hour)),
		cancelled,
		online, // counts are channel-agnostic
		posOrderFor("", base),
	}

	counts := CustomerOrderCounts(orders)
	require.Equal(t, map[string]int{
		"a@example.com": 2,
		"b@example.com": 1,
	}, counts)
}
