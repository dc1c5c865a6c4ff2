package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"olp/backend/internal/domains/common/job"
	"olp/backend/internal/entity"
	"olp/backend/internal/repo/rpqueue"
	"olp/backend/pkg/ginx"
	"olp/backend/pkg/logger"
)

const (
	hmacHeader = "X-Shopify-Hmac-Sha256"
	jobTTL     = 86400
)

// JobPublisher is the slice of the queue client the webhook needs.
type JobPublisher interface {
	Publish(queue string, data []byte, ttl, delay uint32) error
}

// Handler ingests order webhooks. It verifies authenticity, extracts the
// order identifier and enqueues it; it never touches the ledger.
type Handler struct {
	secret    string
	queue     rpqueue.QueueRepository
	jobs      JobPublisher
	queueName string
	logger    logger.Logger
}

func NewHandler(secret string, queue rpqueue.QueueRepository, jobs JobPublisher, queueName string, log logger.Logger) *Handler {
	return &Handler{
		secret:    secret,
		queue:     queue,
		jobs:      jobs,
		queueName: queueName,
		logger:    log,
	}
}

// OrdersPaid handles POST /webhooks/orders-paid.
//
// 401 on a bad signature. 202 on every verified delivery, including
// payloads no strategy can extract an order id from: the sender retries
// on non-2xx, and retrying an unextractable payload cannot help.
func (h *Handler) OrdersPaid(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ginx.BadRequest(c, "cannot read body")
		return
	}

	if !h.verifySignature(body, c.GetHeader(hmacHeader)) {
		h.logger.Warnf(ctx, "[Webhook] invalid signature from %s", c.ClientIP())
		ginx.Unauthorized(c, "invalid signature")
		return
	}

	orderID, ok := extractOrderID(body)
	if !ok {
		h.logger.Warnf(ctx, "[Webhook] verified payload without extractable order id (%d bytes)", len(body))
		ginx.Accepted(c, gin.H{"enqueued": false, "reason": "no order id in payload"})
		return
	}

	inserted, err := h.queue.Enqueue(ctx, orderID, entity.QueueSourceWebhook)
	if err != nil {
		h.logger.Errorf(ctx, "[Webhook] enqueue %s failed: %v", orderID, err)
		ginx.InternalError(c, "enqueue failed")
		return
	}

	if inserted {
		payload, err := job.Marshal(uuid.New().String(), job.ActionOrderReconcile, orderID, job.ReconcileData{OrderID: orderID})
		if err == nil {
			err = h.jobs.Publish(h.queueName, payload, jobTTL, 0)
		}
		if err != nil {
			// The durable entry exists; a backfill or requeue republishes.
			h.logger.Errorf(ctx, "[Webhook] publish job for %s failed: %v", orderID, err)
		}
		h.logger.Infof(ctx, "[Webhook] order %s enqueued", orderID)
	} else {
		h.logger.Infof(ctx, "[Webhook] order %s already queued, duplicate delivery ignored", orderID)
	}

	ginx.Accepted(c, gin.H{"order_id": orderID, "enqueued": inserted})
}

// verifySignature checks the HMAC-SHA256 digest of the raw body against
// the header value, in constant time.
func (h *Handler) verifySignature(body []byte, header string) bool {
	if header == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(header))
}
