package dashboard

import (
	"context"
	"net/http"

	"github.com/firn-fr/dashboard-backend/api/responses"
	"github.com/firn-fr/dashboard-backend/api/validators"
	internaldashboard "github.com/firn-fr/dashboard-backend/internal/dashboard"
	"github.com/firn-fr/dashboard-backend/internal/directory"
	"github.com/firn-fr/dashboard-backend/internal/stats"
	pkgerrors "github.com/firn-fr/dashboard-backend/pkg/errors"
	"github.com/firn-fr/dashboard-backend/pkg/logger"
)

const (
	defaultClientsLimit = 10
	maxClientsLimit     = 50
)

// Service is the dashboard assembly surface consumed by the handlers.
type Service interface {
	Load(ctx context.Context, vendorID string, clientsLimit int) (*internaldashboard.Dashboard, error)
	Stats(ctx context.Context, vendorID string) (*stats.Snapshot, error)
	Vendors(ctx context.Context) ([]directory.Vendor, error)
	Clients(ctx context.Context, limit int) ([]internaldashboard.Client, error)
}

// Load returns the full dashboard payload, optionally scoped to one vendor.
func Load(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		vendorID, limit, err := parseParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil && vendorID != "" {
			ctx = logg.WithVendorID(ctx, vendorID)
		}

		payload, err := svc.Load(ctx, vendorID, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

// Stats returns the KPI snapshot alone.
func Stats(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		vendorID, err := validators.ParseVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil && vendorID != "" {
			ctx = logg.WithVendorID(ctx, vendorID)
		}

		snapshot, err := svc.Stats(ctx, vendorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// Vendors lists the vendors seen in the current month.
func Vendors(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		vendors, err := svc.Vendors(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendors)
	}
}

// Clients returns the enriched follow-up list.
func Clients(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultClientsLimit, 1, maxClientsLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clients, err := svc.Clients(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, clients)
	}
}

func parseParams(r *http.Request) (string, int, error) {
	vendorID, err := validators.ParseVendorID(r)
	if err != nil {
		return "", 0, err
	}
	limit, err := validators.ParseQueryInt(r, "clients_limit", defaultClientsLimit, 1, maxClientsLimit)
	if err != nil {
		return "", 0, err
	}
	return vendorID, limit, nil
}
