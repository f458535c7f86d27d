package stats

// Snapshot is the aggregate result for one filter. It is a pure
// function of (order set, filter, now) and is recomputed on every
// request; nothing here is persisted.
type Snapshot struct {
	DailyRevenue   float64 `json:"daily_revenue"`
	MonthlyRevenue float64 `json:"monthly_revenue"`

	DailyOrders   int `json:"daily_orders"`
	MonthlyOrders int `json:"monthly_orders"`

	DailyItems   int `json:"daily_items"`
	MonthlyItems int `json:"monthly_items"`

	// Average basket (revenue / orders), rounded to the nearest unit.
	DailyAvgBasket   int64 `json:"daily_avg_basket"`
	MonthlyAvgBasket int64 `json:"monthly_avg_basket"`

	// Items per transaction, rounded to one decimal.
	DailyItemsPerOrder   float64 `json:"daily_items_per_order"`
	MonthlyItemsPerOrder float64 `json:"monthly_items_per_order"`

	RepeatRate     int `json:"repeat_rate"`
	RepeatCount    int `json:"repeat_count"`
	TotalCustomers int `json:"total_customers"`
}

// RepeatStats carries the repeat-customer figures computed over the
// trailing measurement window.
type RepeatStats struct {
	RepeatRate     int `json:"repeat_rate"`
	RepeatCount    int `json:"repeat_count"`
	TotalCustomers int `json:"total_customers"`
}

// ApplyRepeat merges repeat figures into the snapshot.
func (s *Snapshot) ApplyRepeat(r RepeatStats) {
	s.RepeatRate = r.RepeatRate
	s.RepeatCount = r.RepeatCount
	s.TotalCustomers = r.TotalCustomers
}
