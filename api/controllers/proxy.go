package controllers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/firn-fr/dashboard-backend/api/responses"
	pkgerrors "github.com/firn-fr/dashboard-backend/pkg/errors"
	"github.com/firn-fr/dashboard-backend/pkg/logger"
	"github.com/firn-fr/dashboard-backend/pkg/shopify"
)

// shopifyLinkHeader carries the upstream pagination header to the
// browser. The native Link header gets mangled by intermediaries, so
// it is republished under a custom name the frontend reads directly.
const shopifyLinkHeader = "X-Shopify-Link"

// OrderRelay is the proxy surface of the Shopify client.
type OrderRelay interface {
	ProxyOrders(ctx context.Context, incoming url.Values) (*shopify.ProxyResult, error)
}

// ProxyOrders relays raw order pages to the frontend, keeping the
// access token server-side and whitelisting the query parameters.
func ProxyOrders(relay OrderRelay, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if relay == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopify relay unavailable"))
			return
		}

		result, err := relay.ProxyOrders(r.Context(), r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if result.Link != "" {
			w.Header().Set(shopifyLinkHeader, result.Link)
		}
		w.WriteHeader(result.StatusCode)
		_, _ = w.Write(result.Body)
	}
}
