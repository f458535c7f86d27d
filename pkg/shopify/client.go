package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/firn-fr/dashboard-backend/pkg/config"
	pkgerrors "github.com/firn-fr/dashboard-backend/pkg/errors"
	"github.com/firn-fr/dashboard-backend/pkg/logger"
	"github.com/firn-fr/dashboard-backend/pkg/metrics"
)

const (
	accessTokenHeader       = "X-Shopify-Access-Token"
	errorBodyReadLimit int64 = 2048

	defaultPageSize  = 250
	defaultMaxOrders = 1000
)

var (
	errStoreRequired       = errors.New("shopify store is required")
	errAccessTokenRequired = errors.New("shopify access token is required")
)

// Client talks to the Shopify Admin REST orders endpoint with
// centralized auth, pagination, logging, and error mapping.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	pageSize    int
	maxOrders   int
	logger      *logger.Logger
	metrics     *metrics.FetchMetrics
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

// WithBaseURL overrides the Admin REST base URL derived from the store name.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithFetchMetrics wires Prometheus counters into the fetch loop.
func WithFetchMetrics(m *metrics.FetchMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the Shopify wrapper and validates the credentials.
func NewClient(cfg config.ShopifyConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Store) == "" {
		return nil, errStoreRequired
	}
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, errAccessTokenRequired
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}
	maxOrders := cfg.MaxOrders
	if maxOrders <= 0 {
		maxOrders = defaultMaxOrders
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL(),
		accessToken: token,
		pageSize:    pageSize,
		maxOrders:   maxOrders,
		logger:      logg,
	}
	if client.httpClient.Timeout == 0 {
		client.httpClient.Timeout = 15 * time.Second
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// OrderFilters holds the first-request query filters. Continuation
// requests never resend them; the API rejects cursors combined with
// any other filter parameter.
type OrderFilters struct {
	StatusAny    bool
	CreatedAtMin time.Time
}

// FetchOrders walks the paginated orders endpoint until the Link header
// stops signalling a next page or the safety cap is reached.
func (c *Client) FetchOrders(ctx context.Context, filters OrderFilters) ([]Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shopify client not configured")
	}

	start := time.Now()
	var all []Order
	pageInfo := ""

	for {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(c.pageSize))
		if pageInfo == "" {
			if filters.StatusAny {
				query.Set("status", "any")
			}
			if !filters.CreatedAtMin.IsZero() {
				query.Set("created_at_min", filters.CreatedAtMin.UTC().Format(time.RFC3339))
			}
		} else {
			query.Set("page_info", pageInfo)
		}

		page, link, err := c.fetchPage(ctx, query)
		if err != nil {
			return nil, err
		}
		c.metrics.IncPage()
		c.metrics.AddOrders(len(page))
		all = append(all, page...)

		if len(all) > c.maxOrders {
			c.metrics.IncCapHit()
			if c.logger != nil {
				warnCtx := c.logger.WithFields(ctx, map[string]any{
					"orders":     len(all),
					"max_orders": c.maxOrders,
				})
				c.logger.Warn(warnCtx, "order safety cap reached, aborting pagination")
			}
			break
		}

		pageInfo = nextPageInfo(link)
		if pageInfo == "" {
			break
		}
	}

	c.metrics.ObserveDuration(time.Since(start))
	if c.logger != nil {
		doneCtx := c.logger.WithField(ctx, "orders", len(all))
		c.logger.Info(doneCtx, "shopify orders fetched")
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, query url.Values) ([]Order, string, error) {
	endpoint := fmt.Sprintf("%s/orders.json?%s", strings.TrimRight(c.baseURL, "/"), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build orders request")
	}
	req.Header.Set(accessTokenHeader, c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute orders request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "orders request failed").
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	var payload struct {
		Orders []Order `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode orders response")
	}

	return payload.Orders, resp.Header.Get(LinkHeader), nil
}

// Ping verifies credentials against the shop endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "shopify client not configured")
	}
	endpoint := fmt.Sprintf("%s/shop.json", strings.TrimRight(c.baseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build shop request")
	}
	req.Header.Set(accessTokenHeader, c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute shop request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d", resp.StatusCode), "shop request failed")
	}
	return nil
}

// ProxyResult carries a relayed orders response back to the proxy
// controller, with the pagination header republished out-of-band.
type ProxyResult struct {
	StatusCode int
	Body       []byte
	Link       string
}

var proxyAllowedParams = []string{"status", "created_at_min", "limit", "page_info"}

// ProxyOrders relays a browser query to the orders endpoint, injecting
// the server-held token and passing unknown parameters through a
// whitelist.
func (c *Client) ProxyOrders(ctx context.Context, incoming url.Values) (*ProxyResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shopify client not configured")
	}

	query := url.Values{}
	for _, key := range proxyAllowedParams {
		if value := strings.TrimSpace(incoming.Get(key)); value != "" {
			query.Set(key, value)
		}
	}

	endpoint := fmt.Sprintf("%s/orders.json?%s", strings.TrimRight(c.baseURL, "/"), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build proxy request")
	}
	req.Header.Set(accessTokenHeader, c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute proxy request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read proxy response")
	}

	return &ProxyResult{
		StatusCode: resp.StatusCode,
		Body:       body,
		Link:       resp.Header.Get(LinkHeader),
	}, nil
}
