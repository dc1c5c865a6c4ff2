package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"olp/backend/internal/domains/common"
	"olp/backend/internal/domains/common/job"
	"olp/backend/internal/domains/common/response"
	"olp/backend/internal/recon"
	"olp/backend/pkg/errorutil"
	"olp/backend/pkg/logger"
)

// Handler reconciles one order against the remote ledger: claim the
// durable entry, run the state machine, record the outcome, publish the
// result signal.
type Handler struct {
	ctx  context.Context
	meta *job.Meta
	data job.ReconcileData
	deps *common.Deps
}

// NewHandler parses the action body. The order identifier may come from
// the body or fall back to the envelope id.
func NewHandler(ctx context.Context, meta *job.Meta, payload interface{}, deps *common.Deps) (common.HandlerServ, error) {
	var data job.ReconcileData
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload failed: %w", err)
		}
		if err := json.Unmarshal(payloadBytes, &data); err != nil {
			return nil, fmt.Errorf("unmarshal reconcile data failed: %w", err)
		}
	}

	if data.OrderID == "" {
		data.OrderID = meta.ID
	}
	if data.OrderID == "" {
		return nil, fmt.Errorf("order_id is required")
	}

	return &Handler{
		ctx:  ctx,
		meta: meta,
		data: data,
		deps: deps,
	}, nil
}

func (h *Handler) GetProcess() *response.Response {
	result := response.NewReconcileResult()
	result.DryRun = h.data.DryRun

	err := h.process(result)

	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)

	h.publishResult(result)
	return resp
}

func (h *Handler) process(result *response.ReconcileResult) error {
	ctx := context.WithValue(h.ctx, logger.CtxOrderKey, h.data.OrderID)
	log := h.deps.Logger

	entry, err := h.deps.Queue.Claim(ctx, h.data.OrderID)
	if err != nil {
		return errorutil.RetriableWithDetails("claim queue entry failed", err.Error())
	}
	if entry == nil {
		// Already done or being worked on right now. Either way this
		// delivery has nothing left to do.
		log.Infof(ctx, "[ReconcileHandler] entry for %s not claimable, skipping", h.data.OrderID)
		result.Status = response.StatusSkipped
		return nil
	}

	cache := recon.NewCounterpartyCache()
	out, runErr := h.deps.Runner.Run(ctx, h.data.OrderID, cache, h.data.DryRun)

	result.OrderKey = out.OrderKey
	result.PostingID = out.PostingID
	result.Step = out.Step
	result.Existing = out.Existing

	if runErr != nil {
		wrapped := errorutil.Wrap(runErr)
		if wrapped.Retryable && entry.Attempts < h.deps.MaxAttempts {
			if err := h.deps.Queue.Release(ctx, h.data.OrderID, wrapped.Message, out.Step); err != nil {
				log.Errorf(ctx, "[ReconcileHandler] release entry %s failed: %v", h.data.OrderID, err)
			}
			log.Warnf(ctx, "[ReconcileHandler] order %s failed at %s (attempt %d), will retry: %v",
				h.data.OrderID, out.Step, entry.Attempts, runErr)
			return wrapped
		}

		if err := h.deps.Queue.Fail(ctx, h.data.OrderID, wrapped.Message, out.Step); err != nil {
			log.Errorf(ctx, "[ReconcileHandler] fail entry %s failed: %v", h.data.OrderID, err)
		}
		log.Errorf(ctx, "[ReconcileHandler] order %s failed permanently at %s after %d attempts: %v",
			h.data.OrderID, out.Step, entry.Attempts, runErr)
		return errorutil.NonRetriableWithDetails(wrapped.Message, wrapped.DevDetails)
	}

	if h.data.DryRun {
		// Dry runs leave the entry pending so a real run can follow.
		if err := h.deps.Queue.Release(ctx, h.data.OrderID, "", out.Step); err != nil {
			log.Errorf(ctx, "[ReconcileHandler] release entry %s after dry run failed: %v", h.data.OrderID, err)
		}
		return nil
	}

	if out.Skipped {
		result.Status = response.StatusSkipped
	}
	if err := h.deps.Queue.Finish(ctx, h.data.OrderID, out.PostingID, out.Step); err != nil {
		log.Errorf(ctx, "[ReconcileHandler] finish entry %s failed: %v", h.data.OrderID, err)
	}
	return nil
}

// publishResult signals waiting API callers over redis. Best effort: a
// missed signal only degrades an operator wait into a poll.
func (h *Handler) publishResult(result *response.ReconcileResult) {
	if h.deps.PubSub == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		h.deps.Logger.Errorf(h.ctx, "[ReconcileHandler] marshal result failed: %v", err)
		return
	}
	if err := h.deps.PubSub.Publish(h.ctx, job.ResultChannel(h.data.OrderID), string(payload)); err != nil {
		h.deps.Logger.Warnf(h.ctx, "[ReconcileHandler] publish result for %s failed: %v", h.data.OrderID, err)
	}
}
