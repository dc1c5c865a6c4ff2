package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olp/backend/internal/config"
	"olp/backend/pkg/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return NewClient(config.LedgerConfig{
		BaseURL:         srv.URL,
		APIKey:          "test-key",
		RateLimitPerMin: 60000, // effectively unthrottled for tests
		Timeout:         5 * time.Second,
		MaxRetries:      2,
	}, logger.NopLogger{})
}

func TestClientValidationErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"vatType HIGH not valid for account 1920"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.CreateSale(context.Background(), SaleRequest{Reference: "#1"})
	require.Error(t, err)

	// 4xx propagates immediately with the remote body intact.
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, apiErr.Body, "vatType HIGH not valid")
	assert.False(t, apiErr.Retryable())
	assert.Equal(t, 1, calls)
}

func TestClientRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"id":"s-1","reference":"#1"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	sale, err := c.CreateSale(context.Background(), SaleRequest{Reference: "#1"})
	require.NoError(t, err)
	assert.Equal(t, "s-1", sale.ID)
	assert.Equal(t, 3, calls)
}

func TestClientExhaustsRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.CreateSale(context.Background(), SaleRequest{Reference: "#1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted retries")
	assert.Equal(t, 3, calls) // initial attempt + 2 retries
}

func TestClientSearchSaleEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	sale, err := c.SearchSaleByRef(context.Background(), "#404")
	require.NoError(t, err)
	assert.Nil(t, sale)
}

func TestClientSearchContactByEmailNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "kari@example.com", r.URL.Query().Get("email"))
		w.Write([]byte(`{"data":[{"id":"c-1","name":"Kari","email":"kari@example.com"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	contact, err := c.SearchContactByEmail(context.Background(), "  Kari@Example.com ")
	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, "c-1", contact.ID)
}
