package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olp/backend/internal/entity"
	"olp/backend/internal/repo/rpqueue"
	"olp/backend/pkg/logger"
)

const testSecret = "whsec_test"

type fakeQueueRepo struct {
	entries   map[string]*entity.QueueEntry
	enqueues  int
	enqueueFn func(orderKey string) (bool, error)
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{entries: make(map[string]*entity.QueueEntry)}
}

func (f *fakeQueueRepo) Enqueue(ctx context.Context, orderKey, source string) (bool, error) {
	if f.enqueueFn != nil {
		return f.enqueueFn(orderKey)
	}
	if _, ok := f.entries[orderKey]; ok {
		return false, nil
	}
	f.entries[orderKey] = &entity.QueueEntry{OrderKey: orderKey, State: entity.QueueStatePending, Source: source}
	f.enqueues++
	return true, nil
}

func (f *fakeQueueRepo) Claim(ctx context.Context, orderKey string) (*entity.QueueEntry, error) {
	return nil, nil
}
func (f *fakeQueueRepo) Finish(ctx context.Context, orderKey, postingID, lastStep string) error {
	return nil
}
func (f *fakeQueueRepo) Fail(ctx context.Context, orderKey, lastErr, lastStep string) error {
	return nil
}
func (f *fakeQueueRepo) Release(ctx context.Context, orderKey, lastErr, lastStep string) error {
	return nil
}
func (f *fakeQueueRepo) Requeue(ctx context.Context, orderKey string) error { return nil }
func (f *fakeQueueRepo) Get(ctx context.Context, orderKey string) (*entity.QueueEntry, error) {
	return f.entries[orderKey], nil
}
func (f *fakeQueueRepo) Status(ctx context.Context) (*rpqueue.StatusSummary, error) {
	return &rpqueue.StatusSummary{Pending: int64(len(f.entries))}, nil
}

type fakePublisher struct {
	published [][]byte
}

func (f *fakePublisher) Publish(queue string, data []byte, ttl, delay uint32) error {
	f.published = append(f.published, data)
	return nil
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func setupWebhook(t *testing.T) (*fakeQueueRepo, *fakePublisher, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	queue := newFakeQueueRepo()
	pub := &fakePublisher{}
	h := NewHandler(testSecret, queue, pub, "ledgersync", logger.NopLogger{})

	r := gin.New()
	r.POST("/webhooks/orders-paid", h.OrdersPaid)
	return queue, pub, r
}

func post(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders-paid", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(hmacHeader, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookValidSignatureEnqueues(t *testing.T) {
	queue, pub, r := setupWebhook(t)

	body := []byte(`{"id": 5678901234, "name": "#3403"}`)
	w := post(r, body, sign(body, testSecret))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, queue.enqueues)
	require.Len(t, pub.published, 1)
	assert.Contains(t, string(pub.published[0]), `"order_reconcile"`)
	assert.Contains(t, string(pub.published[0]), `"5678901234"`)
}

func TestWebhookInvalidSignatureRejected(t *testing.T) {
	queue, pub, r := setupWebhook(t)

	body := []byte(`{"id": 5678901234}`)
	w := post(r, body, sign(body, "wrong-secret"))

	// 401 and queue depth unchanged.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, queue.enqueues)
	assert.Empty(t, pub.published)
}

func TestWebhookMissingSignatureRejected(t *testing.T) {
	queue, _, r := setupWebhook(t)

	w := post(r, []byte(`{"id": 1}`), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, queue.enqueues)
}

func TestWebhookUnextractablePayloadStillAccepted(t *testing.T) {
	queue, pub, r := setupWebhook(t)

	// Verified but carries no order id: 202 so the sender does not
	// retry forever, nothing enqueued.
	body := []byte(`{"note": "no id here"}`)
	w := post(r, body, sign(body, testSecret))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 0, queue.enqueues)
	assert.Empty(t, pub.published)
}

func TestWebhookDuplicateDeliveryIgnored(t *testing.T) {
	queue, pub, r := setupWebhook(t)

	body := []byte(`{"id": 5678901234}`)
	w1 := post(r, body, sign(body, testSecret))
	w2 := post(r, body, sign(body, testSecret))

	assert.Equal(t, http.StatusAccepted, w1.Code)
	assert.Equal(t, http.StatusAccepted, w2.Code)
	assert.Equal(t, 1, queue.enqueues)
	assert.Len(t, pub.published, 1)
}
