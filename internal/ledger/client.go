package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"olp/backend/internal/config"
	"olp/backend/pkg/logger"
)

// Gateway is the reconciliation engine's view of the remote ledger.
type Gateway interface {
	CreateContact(ctx context.Context, req ContactRequest) (*Contact, error)
	SearchContactByEmail(ctx context.Context, email string) (*Contact, error)
	CreateSale(ctx context.Context, req SaleRequest) (*Sale, error)
	SearchSaleByRef(ctx context.Context, reference string) (*Sale, error)
	AddPayment(ctx context.Context, saleID string, req PaymentRequest) (string, error)
	AttachDocument(ctx context.Context, saleID, filename string, data []byte) (string, error)
	ListContacts(ctx context.Context, cursor string) ([]Contact, string, error)
	ListSales(ctx context.Context, cursor string) ([]Sale, string, error)
	ListAccounts(ctx context.Context, cursor string) ([]Account, string, error)
}

// Client talks HTTP to the ledger service. It allows one in-flight
// request per process and paces calls to stay under the remote rate
// limit.
type Client struct {
	baseURL    string
	apiKey     string
	http       *http.Client
	limiter    <-chan time.Time
	maxRetries int
	mu         sync.Mutex
	logger     logger.Logger
}

// NewClient builds the gateway from config.
func NewClient(cfg config.LedgerConfig, log logger.Logger) *Client {
	interval := time.Minute / time.Duration(cfg.RateLimitPerMin)

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		http:       &http.Client{Timeout: cfg.Timeout},
		limiter:    time.Tick(interval),
		maxRetries: cfg.MaxRetries,
		logger:     log,
	}
}

func (c *Client) CreateContact(ctx context.Context, req ContactRequest) (*Contact, error) {
	var out Contact
	if err := c.doJSON(ctx, http.MethodPost, "/contacts", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchContactByEmail(ctx context.Context, email string) (*Contact, error) {
	params := url.Values{}
	params.Set("email", strings.ToLower(strings.TrimSpace(email)))

	var out struct {
		Data []Contact `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/contacts", params, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, nil
	}
	return &out.Data[0], nil
}

func (c *Client) CreateSale(ctx context.Context, req SaleRequest) (*Sale, error) {
	var out Sale
	if err := c.doJSON(ctx, http.MethodPost, "/sales", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchSaleByRef(ctx context.Context, reference string) (*Sale, error) {
	params := url.Values{}
	params.Set("reference", reference)

	var out struct {
		Data []Sale `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/sales", params, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, nil
	}
	return &out.Data[0], nil
}

func (c *Client) AddPayment(ctx context.Context, saleID string, req PaymentRequest) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/sales/%s/payments", url.PathEscape(saleID))
	if err := c.doJSON(ctx, http.MethodPost, path, nil, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// AttachDocument uploads the receipt as a multipart document. Attachments
// are the only mutation a posting receives after settlement.
func (c *Client) AttachDocument(ctx context.Context, saleID, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	path := fmt.Sprintf("/sales/%s/attachments", url.PathEscape(saleID))
	respBody, err := c.do(ctx, http.MethodPost, path, nil, body.Bytes(), writer.FormDataContentType())
	if err != nil {
		return "", err
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) ListContacts(ctx context.Context, cursor string) ([]Contact, string, error) {
	var out struct {
		Data       []Contact `json:"data"`
		NextCursor string    `json:"next_cursor"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/contacts", cursorParams(cursor), nil, &out); err != nil {
		return nil, "", err
	}
	return out.Data, out.NextCursor, nil
}

func (c *Client) ListSales(ctx context.Context, cursor string) ([]Sale, string, error) {
	var out struct {
		Data       []Sale `json:"data"`
		NextCursor string `json:"next_cursor"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/sales", cursorParams(cursor), nil, &out); err != nil {
		return nil, "", err
	}
	return out.Data, out.NextCursor, nil
}

func (c *Client) ListAccounts(ctx context.Context, cursor string) ([]Account, string, error) {
	var out struct {
		Data       []Account `json:"data"`
		NextCursor string    `json:"next_cursor"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/accounts", cursorParams(cursor), nil, &out); err != nil {
		return nil, "", err
	}
	return out.Data, out.NextCursor, nil
}

func cursorParams(cursor string) url.Values {
	params := url.Values{}
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	return params
}

func (c *Client) doJSON(ctx context.Context, method, path string, params url.Values, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return err
		}
	}

	body, err := c.do(ctx, method, path, params, payload, "application/json")
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// do serializes access (mutex), paces calls (limiter tick) and retries
// transient failures with bounded backoff. 4xx responses propagate
// immediately with the remote body intact.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload []byte, contentType string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}

	var lastErr error
	backoff := 500 * time.Millisecond

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.limiter:
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")
		if len(payload) > 0 {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warnf(ctx, "[LedgerClient] %s %s network error (attempt %d): %v", method, path, attempt+1, err)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		apiErr := &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if !apiErr.Retryable() {
			return nil, apiErr
		}
		lastErr = apiErr
		c.logger.Warnf(ctx, "[LedgerClient] %s %s server error (attempt %d): %v", method, path, attempt+1, apiErr)
	}

	return nil, fmt.Errorf("ledger call %s %s exhausted retries: %w", method, path, lastErr)
}
