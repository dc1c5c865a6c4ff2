package domains

import (
	"olp/backend/internal/domains/common"
	"olp/backend/internal/domains/common/job"
	"olp/backend/internal/domains/handlers/backfill"
	"olp/backend/internal/domains/handlers/reconcile"
	"olp/backend/internal/domains/handlers/syncrun"
)

// HandlerMap routes action types to handler constructors.
var HandlerMap = map[string]common.HandlerServProc{
	job.ActionOrderReconcile: reconcile.NewHandler,
	job.ActionOrdersBackfill: backfill.NewHandler,
	job.ActionLedgerSync:     syncrun.NewHandler,
}
