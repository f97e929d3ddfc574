// Package backend talks to the merchant data API that owns sales,
// inventory, profile, and advice data. Responses that feed reply
// widgets are cached in Redis so repeated questions do not hammer the
// upstream.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"grablet/internal/cache"
	"grablet/internal/metrics"
	"grablet/internal/router"
)

const defaultSnapshotTTL = 2 * time.Minute

// ErrUnauthorized indicates the backend rejected the API key.
var ErrUnauthorized = errors.New("backend invalid api key")

// Config holds backend client configuration.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	SnapshotTTL time.Duration
}

// Client provides typed access to the merchant data API.
type Client struct {
	logger      *slog.Logger
	baseURL     string
	apiKey      string
	http        *http.Client
	metrics     *metrics.Metrics
	cache       *cache.Redis
	snapshotTTL time.Duration
}

// New creates a backend client. The redis cache is optional.
func New(cfg Config, logger *slog.Logger, metrics *metrics.Metrics, redis *cache.Redis) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ttl := cfg.SnapshotTTL
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &Client{
		logger:      logger.With("component", "backend"),
		baseURL:     base,
		apiKey:      cfg.APIKey,
		http:        &http.Client{Timeout: timeout},
		metrics:     metrics,
		cache:       redis,
		snapshotTTL: ttl,
	}
}

// SalesSummary returns the merchant's headline sales figures.
func (c *Client) SalesSummary(ctx context.Context, merchantID string) (*router.SalesSummary, error) {
	cacheKey := snapshotKey(merchantID, "sales")
	var summary router.SalesSummary
	if c.cacheGet(ctx, cacheKey, &summary) {
		return &summary, nil
	}

	endpoint := fmt.Sprintf("/v1/merchants/%s/sales/summary", url.PathEscape(merchantID))
	if err := c.getJSON(ctx, endpoint, &summary); err != nil {
		return nil, err
	}

	c.cacheSet(ctx, cacheKey, summary)
	return &summary, nil
}

// DailySales is one day's revenue, used by the insight chart feed.
type DailySales struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// SalesDaily returns per-day revenue for the last `days` days.
func (c *Client) SalesDaily(ctx context.Context, merchantID string, days int) ([]DailySales, error) {
	if days <= 0 {
		days = 7
	}
	cacheKey := snapshotKey(merchantID, "sales_daily_"+strconv.Itoa(days))
	var rows []DailySales
	if c.cacheGet(ctx, cacheKey, &rows) {
		return rows, nil
	}

	endpoint := fmt.Sprintf("/v1/merchants/%s/sales/daily?days=%d", url.PathEscape(merchantID), days)
	if err := c.getJSON(ctx, endpoint, &rows); err != nil {
		return nil, err
	}

	c.cacheSet(ctx, cacheKey, rows)
	return rows, nil
}

// LowStock returns items at or below their restock threshold.
func (c *Client) LowStock(ctx context.Context, merchantID string) ([]router.StockItem, error) {
	cacheKey := snapshotKey(merchantID, "low_stock")
	var items []router.StockItem
	if c.cacheGet(ctx, cacheKey, &items) {
		return items, nil
	}

	endpoint := fmt.Sprintf("/v1/merchants/%s/inventory/low-stock", url.PathEscape(merchantID))
	if err := c.getJSON(ctx, endpoint, &items); err != nil {
		return nil, err
	}

	c.cacheSet(ctx, cacheKey, items)
	return items, nil
}

// Profile returns the merchant's business profile card data.
func (c *Client) Profile(ctx context.Context, merchantID string) (*router.ProfileCard, error) {
	cacheKey := snapshotKey(merchantID, "profile")
	var card router.ProfileCard
	if c.cacheGet(ctx, cacheKey, &card) {
		return &card, nil
	}

	endpoint := fmt.Sprintf("/v1/merchants/%s/profile", url.PathEscape(merchantID))
	if err := c.getJSON(ctx, endpoint, &card); err != nil {
		return nil, err
	}

	c.cacheSet(ctx, cacheKey, card)
	return &card, nil
}

type adviceRequest struct {
	MerchantID string `json:"merchant_id"`
	Question   string `json:"question"`
	Language   string `json:"language"`
}

type adviceResponse struct {
	Advice string `json:"advice"`
}

// AskAdvice forwards a business question to the advice service. Advice
// answers are question-specific and never cached.
func (c *Client) AskAdvice(ctx context.Context, merchantID, question string, lang router.Language) (string, error) {
	body, err := json.Marshal(adviceRequest{
		MerchantID: merchantID,
		Question:   question,
		Language:   string(lang),
	})
	if err != nil {
		return "", fmt.Errorf("marshal advice request: %w", err)
	}

	var resp adviceResponse
	if err := c.do(ctx, http.MethodPost, "/v1/advice/ask", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Advice), nil
}

// InvalidateSnapshots drops cached widget data for a merchant so the
// next question refetches from the backend.
func (c *Client) InvalidateSnapshots(ctx context.Context, merchantID string) error {
	if c.cache == nil {
		return nil
	}
	keys := []string{
		snapshotKey(merchantID, "sales"),
		snapshotKey(merchantID, "low_stock"),
		snapshotKey(merchantID, "profile"),
		snapshotKey(merchantID, "sales_daily_7"),
	}
	return c.cache.Delete(ctx, keys...)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, dest)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	metricEndpoint := metricLabel(endpoint)
	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.observe(metricEndpoint, "error", start)
		return fmt.Errorf("backend request: %w", err)
	}
	defer res.Body.Close()

	c.observe(metricEndpoint, strconv.Itoa(res.StatusCode), start)

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: status %d", ErrUnauthorized, res.StatusCode)
	}
	if res.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("backend %s error: status=%d body=%s", endpoint, res.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) observe(endpoint, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.BackendRequests.WithLabelValues(endpoint, status).Inc()
	c.metrics.BackendLatency.WithLabelValues(endpoint, status).Observe(time.Since(start).Seconds())
}

func (c *Client) cacheGet(ctx context.Context, key string, dest any) bool {
	if c.cache == nil {
		return false
	}
	ok, err := c.cache.GetJSON(ctx, key, dest)
	if err != nil {
		c.logger.Warn("read snapshot cache failed", "key", key, "error", err)
		return false
	}
	return ok
}

func (c *Client) cacheSet(ctx context.Context, key string, value any) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetJSON(ctx, key, value, c.snapshotTTL); err != nil {
		c.logger.Warn("set snapshot cache failed", "key", key, "error", err)
	}
}

func snapshotKey(merchantID, kind string) string {
	return fmt.Sprintf("grablet:snapshot:%s:%s", merchantID, kind)
}

// metricLabel strips merchant IDs out of the endpoint so the metric
// cardinality stays bounded.
func metricLabel(endpoint string) string {
	if idx := strings.IndexByte(endpoint, '?'); idx >= 0 {
		endpoint = endpoint[:idx]
	}
	parts := strings.Split(endpoint, "/")
	for i, part := range parts {
		if i > 0 && parts[i-1] == "merchants" && part != "" {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
