package ops

import (
	"olp/backend/internal/repo/rpcheckpoint"
	"olp/backend/internal/repo/rpmirror"
	"olp/backend/internal/repo/rpqueue"
	"olp/backend/pkg/lmstfy"
	"olp/backend/pkg/logger"
	"olp/backend/pkg/redisx"
)

// Handler exposes the operator surface: queue introspection, manual
// enqueue/requeue, backfill and sync triggers, and mirror reads.
type Handler struct {
	queue       rpqueue.QueueRepository
	checkpoints rpcheckpoint.CheckpointRepository
	mirror      rpmirror.MirrorRepository
	jobs        *lmstfy.Client
	pubsub      *redisx.PubSubClient
	queueName   string
	logger      logger.Logger
}

func NewHandler(
	queue rpqueue.QueueRepository,
	checkpoints rpcheckpoint.CheckpointRepository,
	mirror rpmirror.MirrorRepository,
	jobs *lmstfy.Client,
	pubsub *redisx.PubSubClient,
	queueName string,
	log logger.Logger,
) *Handler {
	return &Handler{
		queue:       queue,
		checkpoints: checkpoints,
		mirror:      mirror,
		jobs:        jobs,
		pubsub:      pubsub,
		queueName:   queueName,
		logger:      log,
	}
}
