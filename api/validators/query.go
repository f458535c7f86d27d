package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/firn-fr/dashboard-backend/pkg/errors"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseVendorID validates the optional vendor filter. Vendor ids are
// numeric staff identifiers; anything else is rejected before it
// reaches the aggregation layer.
func ParseVendorID(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("vendor_id"))
	if raw == "" {
		return "", nil
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "vendor_id must be numeric").WithDetails(map[string]any{"field": "vendor_id"})
		}
	}
	return raw, nil
}
