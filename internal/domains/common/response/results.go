package response

import "olp/backend/internal/domains/common/job"

// Terminal statuses shared by all results.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// ReconcileResult is the outcome of one order reconciliation.
type ReconcileResult struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id,omitempty"`
	OrderKey  string `json:"order_key,omitempty"`
	PostingID string `json:"posting_id,omitempty"`
	Step      string `json:"step,omitempty"`
	Existing  bool   `json:"existing,omitempty"`
	DryRun    bool   `json:"dry_run,omitempty"`
	Error     string `json:"error,omitempty"`
}

func NewReconcileResult() *ReconcileResult {
	return &ReconcileResult{Status: StatusOK}
}

func (r *ReconcileResult) Set(meta *job.Meta, err error) {
	if meta != nil {
		r.RequestID = meta.RequestID
	}
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	}
}

func (r *ReconcileResult) GetStatus() string {
	return r.Status
}

// BackfillResult is the outcome of one backfill scan.
type BackfillResult struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id,omitempty"`
	Scanned   int    `json:"scanned"`
	Enqueued  int    `json:"enqueued"`
	DryRun    bool   `json:"dry_run,omitempty"`
	Error     string `json:"error,omitempty"`
}

func NewBackfillResult() *BackfillResult {
	return &BackfillResult{Status: StatusOK}
}

func (r *BackfillResult) Set(meta *job.Meta, err error) {
	if meta != nil {
		r.RequestID = meta.RequestID
	}
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	}
}

func (r *BackfillResult) GetStatus() string {
	return r.Status
}

// SyncResult is the outcome of one mirror sync pass.
type SyncResult struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id,omitempty"`
	Contacts  int    `json:"contacts"`
	Sales     int    `json:"sales"`
	Accounts  int    `json:"accounts"`
	Pages     int    `json:"pages"`
	Error     string `json:"error,omitempty"`
}

func NewSyncResult() *SyncResult {
	return &SyncResult{Status: StatusOK}
}

func (r *SyncResult) Set(meta *job.Meta, err error) {
	if meta != nil {
		r.RequestID = meta.RequestID
	}
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	}
}

func (r *SyncResult) GetStatus() string {
	return r.Status
}
