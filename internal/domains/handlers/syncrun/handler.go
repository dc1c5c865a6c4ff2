package syncrun

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"olp/backend/internal/domains/common"
	"olp/backend/internal/domains/common/job"
	"olp/backend/internal/domains/common/response"
	"olp/backend/internal/entity"
	"olp/backend/internal/repo/rpcheckpoint"
)

// Resource names accepted in the action body.
const (
	ResourceContacts = "contacts"
	ResourceSales    = "sales"
	ResourceAccounts = "accounts"
)

// Handler refreshes the local mirror from the remote ledger. Each page
// commits together with its checkpoint in one transaction, so a crash
// mid-pass resumes from the last fully committed page.
type Handler struct {
	ctx  context.Context
	meta *job.Meta
	data job.SyncData
	deps *common.Deps
}

func NewHandler(ctx context.Context, meta *job.Meta, payload interface{}, deps *common.Deps) (common.HandlerServ, error) {
	var data job.SyncData
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload failed: %w", err)
		}
		if err := json.Unmarshal(payloadBytes, &data); err != nil {
			return nil, fmt.Errorf("unmarshal sync data failed: %w", err)
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
	result := response.NewSyncResult()

	err := h.process(result)

	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)
	return resp
}

func (h *Handler) process(result *response.SyncResult) error {
	for _, resource := range h.resources() {
		var err error
		switch resource {
		case ResourceContacts:
			err = h.syncContacts(result)
		case ResourceSales:
			err = h.syncSales(result)
		case ResourceAccounts:
			err = h.syncAccounts(result)
		default:
			err = fmt.Errorf("unknown sync resource: %s", resource)
		}
		if err != nil {
			return fmt.Errorf("sync %s: %w", resource, err)
		}
	}

	h.deps.Logger.Infof(h.ctx, "[SyncHandler] mirror refreshed: contacts=%d sales=%d accounts=%d pages=%d",
		result.Contacts, result.Sales, result.Accounts, result.Pages)
	return nil
}

func (h *Handler) resources() []string {
	if len(h.data.Resources) > 0 {
		return h.data.Resources
	}
	return []string{ResourceContacts, ResourceSales, ResourceAccounts}
}

func (h *Handler) syncContacts(result *response.SyncResult) error {
	cursor, err := h.deps.Checkpoints.Get(h.ctx, entity.CheckpointSyncContacts)
	if err != nil {
		return err
	}

	for {
		contacts, next, err := h.deps.Gateway.ListContacts(h.ctx, cursor)
		if err != nil {
			return err
		}

		rows := make([]entity.MirrorContact, 0, len(contacts))
		now := time.Now()
		for _, c := range contacts {
			payload, _ := json.Marshal(c)
			rows = append(rows, entity.MirrorContact{
				RemoteID: c.ID,
				Email:    c.Email,
				Name:     c.Name,
				Payload:  datatypes.JSON(payload),
				SyncedAt: now,
			})
		}

		if err := h.commitPage(next, entity.CheckpointSyncContacts, func(tx *gorm.DB) error {
			return h.deps.Mirror.WithTx(tx).UpsertContacts(h.ctx, rows)
		}); err != nil {
			return err
		}

		result.Contacts += len(rows)
		result.Pages++
		if next == "" {
			return nil
		}
		cursor = next
	}
}

func (h *Handler) syncSales(result *response.SyncResult) error {
	cursor, err := h.deps.Checkpoints.Get(h.ctx, entity.CheckpointSyncSales)
	if err != nil {
		return err
	}

	for {
		sales, next, err := h.deps.Gateway.ListSales(h.ctx, cursor)
		if err != nil {
			return err
		}

		rows := make([]entity.MirrorSale, 0, len(sales))
		now := time.Now()
		for _, s := range sales {
			payload, _ := json.Marshal(s)
			rows = append(rows, entity.MirrorSale{
				RemoteID:        s.ID,
				Reference:       s.Reference,
				Date:            s.Date,
				GrossMinor:      s.GrossMinor,
				Currency:        s.Currency,
				AttachmentCount: s.AttachmentCount,
				Payload:         datatypes.JSON(payload),
				SyncedAt:        now,
			})
		}

		if err := h.commitPage(next, entity.CheckpointSyncSales, func(tx *gorm.DB) error {
			return h.deps.Mirror.WithTx(tx).UpsertSales(h.ctx, rows)
		}); err != nil {
			return err
		}

		result.Sales += len(rows)
		result.Pages++
		if next == "" {
			return nil
		}
		cursor = next
	}
}

func (h *Handler) syncAccounts(result *response.SyncResult) error {
	cursor, err := h.deps.Checkpoints.Get(h.ctx, entity.CheckpointSyncAccounts)
	if err != nil {
		return err
	}

	for {
		accounts, next, err := h.deps.Gateway.ListAccounts(h.ctx, cursor)
		if err != nil {
			return err
		}

		rows := make([]entity.MirrorAccount, 0, len(accounts))
		now := time.Now()
		for _, a := range accounts {
			payload, _ := json.Marshal(a)
			rows = append(rows, entity.MirrorAccount{
				Code:     a.Code,
				Name:     a.Name,
				Payload:  datatypes.JSON(payload),
				SyncedAt: now,
			})
		}

		if err := h.commitPage(next, entity.CheckpointSyncAccounts, func(tx *gorm.DB) error {
			return h.deps.Mirror.WithTx(tx).UpsertAccounts(h.ctx, rows)
		}); err != nil {
			return err
		}

		result.Accounts += len(rows)
		result.Pages++
		if next == "" {
			return nil
		}
		cursor = next
	}
}

// commitPage writes one page and its checkpoint atomically. The
// checkpoint records the cursor of the NEXT page, so replaying after a
// crash re-reads nothing already committed.
func (h *Handler) commitPage(nextCursor, checkpointKey string, upsert func(tx *gorm.DB) error) error {
	return h.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx); err != nil {
			return err
		}
		return rpcheckpoint.NewCheckpointRepository(tx).Set(h.ctx, checkpointKey, nextCursor)
	})
}
