package backfill

import (
	"context"
	"encoding/json"
	"fmt"

	"olp/backend/internal/domains/common"
	"olp/backend/internal/domains/common/job"
	"olp/backend/internal/domains/common/response"
	"olp/backend/internal/entity"
)

// jobTTL keeps unconsumed backfill jobs alive for a day.
const jobTTL = 86400

// Handler scans paid orders from the order source and feeds them through
// the normal reconciliation path: durable enqueue plus one reconcile job
// per order. It never touches the ledger itself.
type Handler struct {
	ctx  context.Context
	meta *job.Meta
	data job.BackfillData
	deps *common.Deps
}

func NewHandler(ctx context.Context, meta *job.Meta, payload interface{}, deps *common.Deps) (common.HandlerServ, error) {
	var data job.BackfillData
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload failed: %w", err)
		}
		if err := json.Unmarshal(payloadBytes, &data); err != nil {
			return nil, fmt.Errorf("unmarshal backfill data failed: %w", err)
		}
	}

	return &Handler{
		ctx:  ctx,
		meta: meta,
		data: data,
		deps: deps,
	}, nil
}

func (h *Handler) GetProcess() *response.Response {
	result := response.NewBackfillResult()
	result.DryRun = h.data.DryRun

	err := h.process(result)

	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)
	return resp
}

func (h *Handler) process(result *response.BackfillResult) error {
	log := h.deps.Logger

	orders, err := h.deps.Orders.ListPaidOrders(h.ctx, h.data.Limit)
	if err != nil {
		return err
	}
	result.Scanned = len(orders)

	for _, o := range orders {
		inserted, err := h.deps.Queue.Enqueue(h.ctx, o.ID, entity.QueueSourceBackfill)
		if err != nil {
			log.Errorf(h.ctx, "[BackfillHandler] enqueue %s failed: %v", o.ID, err)
			continue
		}
		if !inserted {
			log.Debugf(h.ctx, "[BackfillHandler] order %s already queued, skipping", o.ID)
			continue
		}

		payload, err := job.Marshal(h.meta.RequestID, job.ActionOrderReconcile, o.ID, job.ReconcileData{
			OrderID: o.ID,
			DryRun:  h.data.DryRun,
		})
		if err != nil {
			log.Errorf(h.ctx, "[BackfillHandler] marshal job for %s failed: %v", o.ID, err)
			continue
		}
		if err := h.deps.Jobs.Publish(h.deps.JobQueue, payload, jobTTL, 0); err != nil {
			// The durable entry survives; a later backfill or manual
			// requeue re-publishes it.
			log.Errorf(h.ctx, "[BackfillHandler] publish job for %s failed: %v", o.ID, err)
			continue
		}

		result.Enqueued++
	}

	log.Infof(h.ctx, "[BackfillHandler] scanned %d paid orders, enqueued %d (dry_run=%t)",
		result.Scanned, result.Enqueued, h.data.DryRun)
	return nil
}
