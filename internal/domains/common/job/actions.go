package job

import "encoding/json"

// Action types routed through the handler map.
const (
	ActionOrderReconcile = "order_reconcile"
	ActionOrdersBackfill = "orders_backfill"
	ActionLedgerSync     = "ledger_sync"
)

// ResultChannel is the redis Pub/Sub channel carrying the reconciliation
// result for one order.
func ResultChannel(orderID string) string {
	return "recon:result:" + orderID
}

// Marshal builds the standard job envelope for publishing.
func Marshal(requestID, actionType, id string, data interface{}) ([]byte, error) {
	return json.Marshal(&Job{
		Payload: &JobPayload{
			Data: &JobPayloadData{
				RequestID:  requestID,
				ActionType: actionType,
				ID:         id,
				Data:       data,
			},
		},
	})
}

// ReconcileData is the action body for order_reconcile.
type ReconcileData struct {
	OrderID string `json:"order_id"`
	DryRun  bool   `json:"dry_run,omitempty"`
}

// BackfillData is the action body for orders_backfill.
type BackfillData struct {
	DryRun bool `json:"dry_run,omitempty"`
	Limit  int  `json:"limit,omitempty"`
}

// SyncData is the action body for ledger_sync.
type SyncData struct {
	// Resources limits the pass to a subset of contacts, sales, accounts.
	// Empty means all.
	Resources []string `json:"resources,omitempty"`
}
