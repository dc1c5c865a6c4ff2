package common

import (
	"context"

	"gorm.io/gorm"

	"olp/backend/internal/domains/common/job"
	"olp/backend/internal/domains/common/response"
	"olp/backend/internal/ledger"
	"olp/backend/internal/recon"
	"olp/backend/internal/repo/rpcheckpoint"
	"olp/backend/internal/repo/rpmirror"
	"olp/backend/internal/repo/rpqueue"
	"olp/backend/internal/shopify"
	"olp/backend/pkg/lmstfy"
	"olp/backend/pkg/logger"
	"olp/backend/pkg/redisx"
)

// Deps bundles everything a handler may need. Built once at worker
// startup and shared read-only across handlers.
type Deps struct {
	Logger      logger.Logger
	DB          *gorm.DB
	Queue       rpqueue.QueueRepository
	Mirror      rpmirror.MirrorRepository
	Checkpoints rpcheckpoint.CheckpointRepository
	Gateway     ledger.Gateway
	Orders      shopify.OrderSource
	Runner      *recon.Runner
	PubSub      *redisx.PubSubClient
	Jobs        *lmstfy.Client
	JobQueue    string
	MaxAttempts int
}

// HandlerServProc constructs a handler from a parsed job.
type HandlerServProc func(ctx context.Context, meta *job.Meta, payload interface{}, deps *Deps) (HandlerServ, error)

// HandlerServ is one runnable business handler.
type HandlerServ interface {
	GetProcess() *response.Response
}
