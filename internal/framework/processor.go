package framework

import (
	"context"
	"sync"
	"time"

	"github.com/bitleak/lmstfy/client"

	"olp/backend/pkg/lmstfyx"
	"olp/backend/pkg/logger"
)

// Processor receives messages from the Subscriber and runs the injected
// business function, then settles each job against the queue based on
// the returned action.
type Processor struct {
	cfg        *ProcessorConfig
	proc       lmstfyx.Proc
	source     MessageSource
	logger     Logger
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

func NewProcessor(cfg *ProcessorConfig, proc lmstfyx.Proc, source MessageSource, log Logger) *Processor {
	return &Processor{
		cfg:        cfg,
		proc:       proc,
		source:     source,
		logger:     log,
		shutdownCh: make(chan struct{}),
	}
}

// Start launches the processing loops.
func (p *Processor) Start(ctx context.Context, inputChan <-chan *Message) error {
	p.logger.Infof(ctx, "[Processor] Starting with %d workers", p.cfg.Concurrency)

	for i := 0; i < p.cfg.Concurrency; i++ {
		workerID := i
		p.wg.Add(1)
		go p.loop(ctx, workerID, inputChan)
	}

	return nil
}

// SignalShutdown moves the loops into drain mode: process what is
// already buffered, then exit.
func (p *Processor) SignalShutdown() {
	p.logger.Infof(context.Background(), "[Processor] Shutdown signal received")
	close(p.shutdownCh)
}

// Wait blocks until every processing loop has exited.
func (p *Processor) Wait() {
	p.wg.Wait()
	p.logger.Infof(context.Background(), "[Processor] All workers exited")
}

func (p *Processor) loop(ctx context.Context, workerID int, inputChan <-chan *Message) {
	defer p.wg.Done()
	p.logger.Infof(ctx, "[Processor-%d] Started", workerID)

	for {
		select {
		case msg := <-inputChan:
			p.process(ctx, msg, workerID)

		case <-p.shutdownCh:
			p.logger.Infof(ctx, "[Processor-%d] Entering DRAIN mode", workerID)
			count := 0
			for {
				select {
				case msg := <-inputChan:
					p.process(ctx, msg, workerID)
					count++
				default:
					p.logger.Infof(ctx, "[Processor-%d] Drained %d messages, exiting", workerID, count)
					return
				}
			}
		}
	}
}

func (p *Processor) process(ctx context.Context, msg *Message, workerID int) {
	if msg == nil {
		return
	}

	startTime := time.Now()

	procCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	procCtx = context.WithValue(procCtx, logger.CtxWorkerID, workerID)

	p.logger.Infof(procCtx, "[Processor-%d] Processing message: %s", workerID, msg.ID)

	job := &client.Job{
		ID:    msg.ID,
		Queue: msg.Queue,
		Data:  msg.Data,
	}

	resp := p.proc(procCtx, job)

	duration := time.Since(startTime)
	p.logger.Infof(procCtx, "[Processor-%d] Message processed: %s, action: %d, duration: %v",
		workerID, msg.ID, resp.Action, duration)

	p.settle(procCtx, msg, resp, workerID)
}

// settle executes the queue-side consequence of the processing outcome.
// Success and Bury both ACK: a buried job's failure already lives on the
// durable queue entry, so redelivery would only repeat it. Release
// leaves the job un-ACKed and the TTR brings it back.
func (p *Processor) settle(ctx context.Context, msg *Message, resp *lmstfyx.JobResp, workerID int) {
	switch resp.Action {
	case lmstfyx.JobRespStatusSuccess, lmstfyx.JobRespStatusBury:
		if err := p.source.Ack(msg.Queue, msg.ID); err != nil {
			p.logger.Errorf(ctx, "[Processor-%d] Ack failed for %s: %v", workerID, msg.ID, err)
		}

	case lmstfyx.JobRespStatusRelease:
		p.logger.Infof(ctx, "[Processor-%d] Message %s released for redelivery", workerID, msg.ID)

	default:
		p.logger.Errorf(ctx, "[Processor-%d] Unknown action %d for %s, leaving for redelivery", workerID, resp.Action, msg.ID)
	}
}
