package directory

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/firn-fr/dashboard-backend/internal/staff"
	"github.com/firn-fr/dashboard-backend/pkg/shopify"
)

// Vendor is one selectable entry in the dashboard's vendor filter.
type Vendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListVendors derives the distinct vendors observed in the order set:
// every point-of-sale operator plus every line-item staff attribution.
// The first-seen name per id wins and the result is sorted with a
// locale-aware collator so the filter control renders deterministically.
func ListVendors(orders []shopify.Order, resolver *staff.Resolver) []Vendor {
	seen := map[string]string{}

	record := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; !ok {
			seen[id] = resolver.Name(id)
		}
	}

	for _, order := range orders {
		if order.POS() {
			record(order.StaffID())
		}
		for _, item := range order.LineItems {
			for _, attributed := range item.AttributedStaffs {
				record(staff.ExtractID(attributed.ID))
			}
		}
	}

	vendors := make([]Vendor, 0, len(seen))
	for id, name := range seen {
		vendors = append(vendors, Vendor{ID: id, Name: name})
	}

	collator := collate.New(language.French)
	sort.Slice(vendors, func(i, j int) bool {
		if cmp := collator.CompareString(vendors[i].Name, vendors[j].Name); cmp != 0 {
			return cmp < 0
		}
		return vendors[i].ID < vendors[j].ID
	})

	return vendors
}
