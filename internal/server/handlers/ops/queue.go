package ops

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"olp/backend/internal/domains/common/job"
	"olp/backend/internal/entity"
	"olp/backend/pkg/ginx"
)

const jobTTL = 86400

// QueueStatus handles GET /ops/queue.
func (h *Handler) QueueStatus(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.queue.Status(ctx)
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}

	checkpoints, err := h.checkpoints.All(ctx)
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}

	ckpts := make(map[string]string, len(checkpoints))
	for _, ck := range checkpoints {
		ckpts[ck.Key] = ck.Value
	}

	ginx.Success(c, gin.H{
		"queue":       summary,
		"checkpoints": ckpts,
	})
}

// GetEntry handles GET /ops/queue/:orderID.
func (h *Handler) GetEntry(c *gin.Context) {
	orderID := c.Param("orderID")

	entry, err := h.queue.Get(c.Request.Context(), orderID)
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}
	if entry == nil {
		ginx.NotFound(c, "no queue entry for "+orderID)
		return
	}

	ginx.Success(c, entry)
}

// Requeue handles POST /ops/queue/:orderID/requeue: reset a failed entry
// to pending and republish the job.
func (h *Handler) Requeue(c *gin.Context) {
	ctx := c.Request.Context()
	orderID := c.Param("orderID")

	if err := h.queue.Requeue(ctx, orderID); err != nil {
		ginx.BadRequest(c, err.Error())
		return
	}

	if err := h.publishReconcile(orderID, false); err != nil {
		h.logger.Errorf(ctx, "[Ops] publish requeued job for %s failed: %v", orderID, err)
		ginx.InternalError(c, "entry requeued but job publish failed")
		return
	}

	h.logger.Infof(ctx, "[Ops] order %s requeued", orderID)
	ginx.Success(c, gin.H{"order_id": orderID, "state": entity.QueueStatePending})
}

// EnqueueRequest is the manual enqueue body.
type EnqueueRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	DryRun  bool   `json:"dry_run"`
}

// Enqueue handles POST /ops/enqueue?wait=10: manual ingestion of one
// order. With wait set, the call blocks up to that many seconds for the
// worker's result signal instead of making the operator poll.
func (h *Handler) Enqueue(c *gin.Context) {
	ctx := c.Request.Context()

	waitSeconds := 0
	if waitStr := c.Query("wait"); waitStr != "" {
		if w, err := strconv.Atoi(waitStr); err == nil && w > 0 {
			waitSeconds = w
		}
	}

	var req EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	inserted, err := h.queue.Enqueue(ctx, req.OrderID, entity.QueueSourceManual)
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}
	if !inserted {
		entry, _ := h.queue.Get(ctx, req.OrderID)
		ginx.Success(c, gin.H{"order_id": req.OrderID, "enqueued": false, "entry": entry})
		return
	}

	if err := h.publishReconcile(req.OrderID, req.DryRun); err != nil {
		h.logger.Errorf(ctx, "[Ops] publish job for %s failed: %v", req.OrderID, err)
		ginx.InternalError(c, "entry created but job publish failed")
		return
	}

	if waitSeconds == 0 || h.pubsub == nil {
		ginx.Accepted(c, gin.H{
			"order_id": req.OrderID,
			"enqueued": true,
			"poll_url": "/ops/queue/" + req.OrderID,
		})
		return
	}

	// Wait for the worker's completion signal. On timeout the operator
	// falls back to polling; the work itself is unaffected.
	payload, err := h.pubsub.Subscribe(ctx, job.ResultChannel(req.OrderID), time.Duration(waitSeconds)*time.Second)
	if err != nil {
		ginx.Accepted(c, gin.H{
			"order_id": req.OrderID,
			"enqueued": true,
			"poll_url": "/ops/queue/" + req.OrderID,
		})
		return
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		ginx.Success(c, gin.H{"order_id": req.OrderID, "raw_result": payload})
		return
	}
	ginx.Success(c, gin.H{"order_id": req.OrderID, "result": result})
}

func (h *Handler) publishReconcile(orderID string, dryRun bool) error {
	payload, err := job.Marshal(uuid.New().String(), job.ActionOrderReconcile, orderID, job.ReconcileData{
		OrderID: orderID,
		DryRun:  dryRun,
	})
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return h.jobs.Publish(h.queueName, payload, jobTTL, 0)
}
