package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"olp/backend/internal/config"
	"olp/backend/internal/domains"
	"olp/backend/internal/domains/common"
	"olp/backend/internal/framework"
	"olp/backend/pkg/logger"
)

// Manager owns the worker lifecycle.
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance runs the reconciliation worker and coordinates its
// graceful shutdown.
type ManagerInstance struct {
	ctx        context.Context
	cfg        *config.Config
	deps       *common.Deps
	workers    []Worker
	closing    *atomic.Bool
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	logger     logger.Logger
}

// NewManagerInstance builds the manager. deps carries the already-wired
// repositories, clients and runner; the manager only adds the pipeline.
func NewManagerInstance(cfg *config.Config, deps *common.Deps, log logger.Logger) (Manager, error) {
	if deps.Jobs == nil {
		return nil, fmt.Errorf("lmstfy client is required")
	}

	return &ManagerInstance{
		ctx:        context.Background(),
		cfg:        cfg,
		deps:       deps,
		closing:    atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
		workers:    make([]Worker, 0),
		logger:     log,
	}, nil
}

// Start loads and runs the workers, then blocks until Shutdown.
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	if err := m.loadWorkers(); err != nil {
		return fmt.Errorf("failed to load workers: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	m.logger.Infof(m.ctx, "[Manager] Start success")

	<-m.shutdownCh
	return nil
}

// Shutdown stops every worker exactly once.
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	if m.closing.CAS(false, true) {
		for _, worker := range m.workers {
			m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
			worker.Shutdown()
		}

		m.wg.Wait()
		close(m.shutdownCh)

		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

func (m *ManagerInstance) loadWorkers() error {
	workerCfg := m.cfg.Worker

	subCfg := &framework.SubscriberConfig{
		QueueName:    m.cfg.Lmstfy.Queue,
		Concurrency:  workerCfg.Subscriber.Threads,
		Rate:         workerCfg.Subscriber.Rate,
		Timeout:      workerCfg.Subscriber.Timeout,
		TTR:          workerCfg.Subscriber.TTR,
		ErrorBackoff: workerCfg.Subscriber.ErrorBackoff,
	}

	procCfg := &framework.ProcessorConfig{
		Concurrency: workerCfg.Processor.Threads,
		BufferSize:  workerCfg.Processor.BufferSize,
		Timeout:     workerCfg.Processor.Timeout,
	}

	getProcess := domains.GetProcess(m.logger, m.deps)

	name := workerCfg.Name
	if name == "" {
		name = "ledgersync-worker"
	}

	worker, err := NewWorkerInstance(
		m.ctx,
		name,
		subCfg,
		procCfg,
		m.deps.Jobs,
		getProcess,
		m.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create worker %s: %w", name, err)
	}

	m.workers = append(m.workers, worker)
	return nil
}
