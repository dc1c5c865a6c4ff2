package shopify

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

	"olp/backend/internal/config"
	"olp/backend/internal/recon"
	"olp/backend/pkg/errorutil"
)

// OrderSource is the engine's view of the order system: fetch one order
// by identifier, and enumerate paid orders for backfill. Nothing else.
type OrderSource interface {
	GetOrder(ctx context.Context, orderID string) (*recon.Order, error)
	ListPaidOrders(ctx context.Context, limit int) ([]recon.Order, error)
}

// Client reads orders from the Shopify admin API.
type Client struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

// NewClient builds the order source from config.
func NewClient(cfg config.ShopifyConfig) *Client {
	version := cfg.APIVersion
	if version == "" {
		version = "2024-01"
	}
	return &Client{
		baseURL:     fmt.Sprintf("https://%s/admin/api/%s", cfg.ShopDomain, version),
		accessToken: cfg.AccessToken,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*recon.Order, error) {
	body, err := c.get(ctx, fmt.Sprintf("/orders/%s.json", url.PathEscape(orderID)), nil)
	if err != nil {
		return nil, err
	}

	var envelope orderEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errorutil.NonRetriableWithDetails("decode order failed", err.Error())
	}
	if envelope.Order.ID == 0 {
		return nil, errorutil.NonRetriable("order not found: " + orderID)
	}

	order := envelope.Order.toDomain()
	return &order, nil
}

func (c *Client) ListPaidOrders(ctx context.Context, limit int) ([]recon.Order, error) {
	params := url.Values{}
	params.Set("financial_status", "paid")
	params.Set("status", "any")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/orders.json", params)
	if err != nil {
		return nil, err
	}

	var envelope ordersEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errorutil.NonRetriableWithDetails("decode orders failed", err.Error())
	}

	orders := make([]recon.Order, 0, len(envelope.Orders))
	for _, w := range envelope.Orders {
		orders = append(orders, w.toDomain())
	}
	return orders, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errorutil.RetriableWithDetails("order source unreachable", err.Error())
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, errorutil.RetriableWithDetails(
			fmt.Sprintf("order source error %d", resp.StatusCode),
			strings.TrimSpace(string(body)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorutil.NonRetriableWithDetails(
			fmt.Sprintf("order source error %d", resp.StatusCode),
			strings.TrimSpace(string(body)))
	}

	return body, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
