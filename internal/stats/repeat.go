package stats

import (
	"math"
	"time"

	"github.com/firn-fr/dashboard-backend/pkg/shopify"
)

// RepeatOptions anchors the repeat computation. When Now and Window are
// set, orders older than Now-Window are excluded; the window is
// independent of the daily/monthly revenue windows.
type RepeatOptions struct {
	VendorID string
	Now      time.Time
	Window   time.Duration
}

// ComputeRepeat groups non-cancelled point-of-sale orders by customer
// email and reports the share of customers with more than one order.
func ComputeRepeat(orders []shopify.Order, opts RepeatOptions) RepeatStats {
	var cutoff time.Time
	if opts.Window > 0 && !opts.Now.IsZero() {
		cutoff = opts.Now.Add(-opts.Window)
	}

	perCustomer := map[string]int{}
	for _, order := range orders {
		if order.Cancelled() || !order.POS() {
			continue
		}
		if opts.VendorID != "" && order.StaffID() != opts.VendorID {
			continue
		}
		if !cutoff.IsZero() && order.CreatedAt.Before(cutoff) {
			continue
		}
		email := order.CustomerEmail()
		if email == "" {
			continue
		}
		perCustomer[email]++
	}

	result := RepeatStats{TotalCustomers: len(perCustomer)}
	for _, count := range perCustomer {
		if count > 1 {
			result.RepeatCount++
		}
	}
	if result.TotalCustomers > 0 {
		result.RepeatRate = int(math.Round(100 * float64(result.RepeatCount) / float64(result.TotalCustomers)))
	}
	return result
}

// CustomerOrderCounts exposes the raw per-customer order counts,
// unfiltered by vendor, for enriching an externally sourced client
// list. Cancelled orders and orders without an email are skipped.
func CustomerOrderCounts(orders []shopify.Order) map[string]int {
	counts := map[string]int{}
	for _, order := range orders {
		if order.Cancelled() {
			continue
		}
		email := order.CustomerEmail()
		if email == "" {
			continue
		}
		counts[email]++
	}
	return counts
}
