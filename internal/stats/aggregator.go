package stats

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/firn-fr/dashboard-backend/internal/staff"
	"github.com/firn-fr/dashboard-backend/pkg/shopify"
)

// Options filters and anchors a stats computation. Now and Location
// are always injected so date-window boundaries never depend on the
// ambient clock; tests pin both.
type Options struct {
	POSOnly  bool
	VendorID string
	Now      time.Time
	Location *time.Location
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// Compute reduces the order set into daily/monthly revenue, order, and
// item rollups in a single pass. Repeat fields stay zero; ComputeRepeat
// fills them.
func Compute(orders []shopify.Order, opts Options) Snapshot {
	loc := opts.location()
	today := opts.Now.In(loc).Format("2006-01-02")
	month := today[:7]

	var (
		dailyRevenue   = decimal.Zero
		monthlyRevenue = decimal.Zero
		snapshot       Snapshot
	)

	for _, order := range orders {
		if order.Cancelled() {
			continue
		}
		if opts.POSOnly && !order.POS() {
			continue
		}
		if opts.VendorID != "" && !AttributedTo(order, opts.VendorID) {
			continue
		}

		orderDate := order.CreatedAt.In(loc).Format("2006-01-02")
		orderMonth := orderDate[:7]
		revenue := order.Revenue()
		items := order.ItemCount()

		if orderMonth == month {
			monthlyRevenue = monthlyRevenue.Add(revenue)
			snapshot.MonthlyOrders++
			snapshot.MonthlyItems += items
		}
		if orderDate == today {
			dailyRevenue = dailyRevenue.Add(revenue)
			snapshot.DailyOrders++
			snapshot.DailyItems += items
		}
	}

	snapshot.DailyRevenue = dailyRevenue.Round(2).InexactFloat64()
	snapshot.MonthlyRevenue = monthlyRevenue.Round(2).InexactFloat64()
	snapshot.DailyAvgBasket = avgBasket(dailyRevenue, snapshot.DailyOrders)
	snapshot.MonthlyAvgBasket = avgBasket(monthlyRevenue, snapshot.MonthlyOrders)
	snapshot.DailyItemsPerOrder = itemsPerOrder(snapshot.DailyItems, snapshot.DailyOrders)
	snapshot.MonthlyItemsPerOrder = itemsPerOrder(snapshot.MonthlyItems, snapshot.MonthlyOrders)

	return snapshot
}

// AttributedTo reports whether the order credits the given vendor,
// either as the register operator or through a line-item staff
// attribution.
func AttributedTo(order shopify.Order, vendorID string) bool {
	if order.StaffID() == vendorID {
		return true
	}
	for _, item := range order.LineItems {
		for _, attributed := range item.AttributedStaffs {
			if staff.ExtractID(attributed.ID) == vendorID {
				return true
			}
		}
	}
	return false
}

func avgBasket(revenue decimal.Decimal, orders int) int64 {
	if orders <= 0 {
		return 0
	}
	return revenue.Div(decimal.NewFromInt(int64(orders))).Round(0).IntPart()
}

func itemsPerOrder(items, orders int) float64 {
	if orders <= 0 {
		return 0
	}
	return math.Round(float64(items)/float64(orders)*10) / 10
}
