package ops

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"olp/backend/internal/domains/common/job"
	"olp/backend/pkg/ginx"
)

// BackfillRequest triggers a paid-order scan.
type BackfillRequest struct {
	DryRun bool `json:"dry_run"`
	Limit  int  `json:"limit" binding:"omitempty,min=1,max=250"`
}

// Backfill handles POST /ops/backfill: publish one backfill job; the
// worker does the scanning and enqueues each order it finds.
func (h *Handler) Backfill(c *gin.Context) {
	var req BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	requestID := uuid.New().String()
	payload, err := job.Marshal(requestID, job.ActionOrdersBackfill, "", job.BackfillData{
		DryRun: req.DryRun,
		Limit:  req.Limit,
	})
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}
	if err := h.jobs.Publish(h.queueName, payload, jobTTL, 0); err != nil {
		ginx.InternalError(c, err.Error())
		return
	}

	h.logger.Infof(c.Request.Context(), "[Ops] backfill triggered: request_id=%s dry_run=%t limit=%d",
		requestID, req.DryRun, req.Limit)
	ginx.Accepted(c, gin.H{"request_id": requestID})
}

// SyncRequest triggers a mirror refresh.
type SyncRequest struct {
	Resources []string `json:"resources" binding:"omitempty,dive,oneof=contacts sales accounts"`
}

// Sync handles POST /ops/sync: publish one ledger_sync job.
func (h *Handler) Sync(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	requestID := uuid.New().String()
	payload, err := job.Marshal(requestID, job.ActionLedgerSync, "", job.SyncData{
		Resources: req.Resources,
	})
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}
	if err := h.jobs.Publish(h.queueName, payload, jobTTL, 0); err != nil {
		ginx.InternalError(c, err.Error())
		return
	}

	h.logger.Infof(c.Request.Context(), "[Ops] sync triggered: request_id=%s resources=%v", requestID, req.Resources)
	ginx.Accepted(c, gin.H{"request_id": requestID})
}
