package recon

import (
	"context"
	"fmt"

	"olp/backend/internal/ledger"
	"olp/backend/pkg/errorutil"
	"olp/backend/pkg/logger"
)

// Steps of the per-order pipeline, recorded on the durable entry so a
// failure names where it happened.
const (
	StepLoading             = "LOADING"
	StepResolvingCounterpty = "RESOLVING_COUNTERPARTY"
	StepBuildingPosting     = "BUILDING_POSTING"
	StepCheckingIdempotency = "CHECKING_IDEMPOTENCY"
	StepCreating            = "CREATING"
	StepSkippingExisting    = "SKIPPING_EXISTING"
	StepSettlingPayment     = "SETTLING_PAYMENT"
	StepAttachingReceipt    = "ATTACHING_RECEIPT"
	StepDone                = "DONE"
)

// OrderLoader fetches the full order snapshot by identifier. The runner
// never trusts order data carried in the triggering event.
type OrderLoader interface {
	GetOrder(ctx context.Context, orderID string) (*Order, error)
}

// Outcome summarizes one completed run for the caller to persist.
type Outcome struct {
	OrderKey  string
	PostingID string
	Step      string
	Skipped   bool // order not eligible (unpaid, cancelled)
	Existing  bool // posting already existed, no create issued
	DryRun    bool
}

// Runner drives one order through load, counterparty resolution, posting
// construction, the idempotency check, create, settlement and receipt
// attachment. One order at a time; a failed order never aborts the batch
// the caller is iterating.
type Runner struct {
	loader   OrderLoader
	gateway  ledger.Gateway
	guard    *IdempotencyGuard
	receipts ReceiptSource
	params   PostingParams
	logger   logger.Logger
}

func NewRunner(loader OrderLoader, gateway ledger.Gateway, guard *IdempotencyGuard, receipts ReceiptSource, params PostingParams, log logger.Logger) *Runner {
	return &Runner{
		loader:   loader,
		gateway:  gateway,
		guard:    guard,
		receipts: receipts,
		params:   params,
		logger:   log,
	}
}

// Run processes a single order identifier to completion. The returned
// Outcome carries the step reached, so the caller can record it on the
// queue entry even when err != nil.
//
// With dryRun set, Run computes and logs the posting but performs no
// remote write of any kind.
func (r *Runner) Run(ctx context.Context, orderID string, cache *CounterpartyCache, dryRun bool) (Outcome, error) {
	out := Outcome{Step: StepLoading, DryRun: dryRun}

	order, err := r.loader.GetOrder(ctx, orderID)
	if err != nil {
		return out, fmt.Errorf("load order %s: %w", orderID, err)
	}
	out.OrderKey = order.BusinessKey()

	if order.PaymentStatus != PaymentStatusPaid {
		r.logger.Infof(ctx, "[Runner] order %s is %s, skipping", out.OrderKey, order.PaymentStatus)
		out.Skipped = true
		out.Step = StepDone
		return out, nil
	}

	out.Step = StepBuildingPosting
	breakdown, err := ComputeBreakdown(*order, r.params)
	if err != nil {
		return out, errorutil.NonRetriableWithDetails("breakdown failed for "+out.OrderKey, err.Error())
	}

	out.Step = StepCheckingIdempotency
	existing, err := r.guard.Existing(ctx, out.OrderKey)
	if err != nil {
		return out, fmt.Errorf("idempotency check for %s: %w", out.OrderKey, err)
	}

	if dryRun {
		r.logger.Infof(ctx, "[Runner] dry run %s: gross=%d net=%d vat=%d lines=%d existing=%t",
			out.OrderKey, breakdown.GrossMinor, breakdown.NetMinor, breakdown.VATMinor, len(breakdown.Lines), existing != nil)
		return out, nil
	}

	if existing != nil {
		out.Existing = true
		out.PostingID = existing.ID
		out.Step = StepSkippingExisting
		r.logger.Infof(ctx, "[Runner] posting already exists for %s (id=%s), skipping create", out.OrderKey, existing.ID)

		if existing.AttachmentCount > 0 {
			out.Step = StepDone
			return out, nil
		}
		return r.attachReceipt(ctx, out, *order, breakdown, existing.ID)
	}

	out.Step = StepResolvingCounterpty
	resolver := NewCounterpartyResolver(r.gateway, cache, r.logger)
	contact, err := resolver.Resolve(ctx, *order)
	if err != nil {
		return out, fmt.Errorf("resolve counterparty for %s: %w", out.OrderKey, err)
	}

	out.Step = StepBuildingPosting
	req, err := BuildPosting(*order, breakdown, contact.ID)
	if err != nil {
		return out, errorutil.NonRetriableWithDetails("build posting for "+out.OrderKey, err.Error())
	}

	out.Step = StepCreating
	sale, err := r.gateway.CreateSale(ctx, req)
	if err != nil {
		return out, fmt.Errorf("create posting for %s: %w", out.OrderKey, err)
	}
	out.PostingID = sale.ID
	r.logger.Infof(ctx, "[Runner] created posting %s for %s, gross=%d %s",
		sale.ID, out.OrderKey, breakdown.GrossMinor, breakdown.Currency)

	out.Step = StepSettlingPayment
	lines, feeDropped := SettlementLines(breakdown.GrossMinor, r.params)
	if feeDropped {
		r.logger.Warnf(ctx, "[Runner] computed fee >= gross for %s, settling full gross to bank", out.OrderKey)
	}
	if _, err := r.gateway.AddPayment(ctx, sale.ID, ledger.PaymentRequest{
		Date:  order.PostingDate(),
		Lines: lines,
	}); err != nil {
		return out, fmt.Errorf("settle posting %s for %s: %w", sale.ID, out.OrderKey, err)
	}

	return r.attachReceipt(ctx, out, *order, breakdown, sale.ID)
}

// attachReceipt renders and uploads the receipt. Failures here are
// non-fatal: the posting already exists and is settled, so the order
// still completes.
func (r *Runner) attachReceipt(ctx context.Context, out Outcome, order Order, bd Breakdown, saleID string) (Outcome, error) {
	out.Step = StepAttachingReceipt

	receipt, err := r.receipts.Render(order, bd)
	if err != nil {
		r.logger.Errorf(ctx, "[Runner] render receipt for %s failed: %v", out.OrderKey, err)
		out.Step = StepDone
		return out, nil
	}

	if _, err := r.gateway.AttachDocument(ctx, saleID, receipt.Filename, receipt.Data); err != nil {
		r.logger.Errorf(ctx, "[Runner] attach receipt to %s for %s failed: %v", saleID, out.OrderKey, err)
	}

	out.PostingID = saleID
	out.Step = StepDone
	return out, nil
}
