package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/firn-fr/dashboard-backend/pkg/config"
	pkgerrors "github.com/firn-fr/dashboard-backend/pkg/errors"
)

const (
	defaultBaseURL           = "https://api.airtable.com/v0"
	errorBodyReadLimit int64 = 1024
)

// Client wraps the Airtable record-listing API used for client-contact
// lists and daily revenue targets. A client built without credentials
// is disabled: every read returns an empty result so the dashboard
// degrades instead of crashing on missing configuration.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	baseID     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the Airtable API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Airtable client; empty credentials produce a
// disabled client rather than an error.
func NewClient(cfg config.AirtableConfig, opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    defaultBaseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseID:     strings.TrimSpace(cfg.BaseID),
	}
	if client.httpClient.Timeout == 0 {
		client.httpClient.Timeout = 10 * time.Second
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client
}

// Enabled reports whether credentials were configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != "" && c.baseID != ""
}

// TablePinger adapts the client to the readiness-check surface by
// listing a single record from a known table. Disabled clients always
// report healthy so missing credentials never block readiness.
type TablePinger struct {
	Client *Client
	Table  string
}

func (p TablePinger) Ping(ctx context.Context) error {
	if !p.Client.Enabled() {
		return nil
	}
	_, err := p.Client.List(ctx, ListParams{Table: p.Table, MaxRecords: 1})
	return err
}

// SortField orders a record listing by one field.
type SortField struct {
	Field     string
	Direction string
}

// ListParams narrows a record listing by formula, view, and size.
type ListParams struct {
	Table           string
	FilterByFormula string
	MaxRecords      int
	Sort            []SortField
	View            string
}

// Record is one raw Airtable row; Fields stays opaque until a typed
// mapper applies defaults at the parse boundary.
type Record struct {
	ID          string          `json:"id"`
	Fields      json.RawMessage `json:"fields"`
	CreatedTime time.Time       `json:"createdTime"`
}

// List fetches records for the given table and filters. Disabled
// clients return an empty slice.
func (c *Client) List(ctx context.Context, params ListParams) ([]Record, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if strings.TrimSpace(params.Table) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table name is required")
	}

	query := url.Values{}
	if params.FilterByFormula != "" {
		query.Set("filterByFormula", params.FilterByFormula)
	}
	if params.MaxRecords > 0 {
		query.Set("maxRecords", strconv.Itoa(params.MaxRecords))
	}
	for i, sort := range params.Sort {
		query.Set(fmt.Sprintf("sort[%d][field]", i), sort.Field)
		query.Set(fmt.Sprintf("sort[%d][direction]", i), sort.Direction)
	}
	if params.View != "" {
		query.Set("view", params.View)
	}

	endpoint := fmt.Sprintf("%s/%s/%s?%s",
		strings.TrimRight(c.baseURL, "/"),
		url.PathEscape(c.baseID),
		url.PathEscape(params.Table),
		query.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build record request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute record request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "record request failed")
	}

	var payload struct {
		Records []Record `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode record response")
	}

	return payload.Records, nil
}
