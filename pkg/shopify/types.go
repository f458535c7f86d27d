package shopify

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SourceNamePOS marks orders rung at a physical register.
const SourceNamePOS = "pos"

// Order mirrors the Admin REST order payload, narrowed to the fields
// the dashboard consumes.
type Order struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	CreatedAt         time.Time  `json:"created_at"`
	CancelledAt       *time.Time `json:"cancelled_at"`
	TotalPrice        string     `json:"total_price"`
	CurrentTotalPrice string     `json:"current_total_price"`
	SubtotalPrice     string     `json:"subtotal_price"`
	SourceName        string     `json:"source_name"`
	UserID            *int64     `json:"user_id"`
	FinancialStatus   string     `json:"financial_status"`
	LineItems         []LineItem `json:"line_items"`
	Customer          *Customer  `json:"customer"`
}

type LineItem struct {
	ID               int64             `json:"id"`
	Quantity         int               `json:"quantity"`
	Price            string            `json:"price"`
	Title            string            `json:"title"`
	AttributedStaffs []AttributedStaff `json:"attributed_staffs"`
}

// AttributedStaff credits part of a line item to a staff member. The ID
// arrives in the composite GraphQL form ("gid://shopify/StaffMember/<id>").
type AttributedStaff struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Cancelled reports whether the order was voided; cancelled orders are
// excluded from every metric.
func (o Order) Cancelled() bool {
	return o.CancelledAt != nil && !o.CancelledAt.IsZero()
}

// POS reports whether the order was rung at a register.
func (o Order) POS() bool {
	return o.SourceName == SourceNamePOS
}

// Revenue returns the post-adjustment total when present, falling back
// to the original total. Malformed upstream amounts count as zero so a
// single bad order cannot abort an aggregation pass.
func (o Order) Revenue() decimal.Decimal {
	if amount, ok := parseMoney(o.CurrentTotalPrice); ok {
		return amount
	}
	if amount, ok := parseMoney(o.TotalPrice); ok {
		return amount
	}
	return decimal.Zero
}

// ItemCount sums the line-item quantities.
func (o Order) ItemCount() int {
	total := 0
	for _, item := range o.LineItems {
		total += item.Quantity
	}
	return total
}

// StaffID returns the point-of-sale operator id, or "" when the order
// has none.
func (o Order) StaffID() string {
	if o.UserID == nil {
		return ""
	}
	return strconv.FormatInt(*o.UserID, 10)
}

// CustomerEmail returns the lower-cased customer identity key, or ""
// when the order carries no customer.
func (o Order) CustomerEmail() string {
	if o.Customer == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(o.Customer.Email))
}

func parseMoney(raw string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}
