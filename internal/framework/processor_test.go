package framework

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olp/backend/pkg/lmstfyx"
	"olp/backend/pkg/logger"
)

type fakeSource struct {
	mu    sync.Mutex
	acked []string
}

func (f *fakeSource) Consume(queue string, timeout, ttr time.Duration) (*Message, error) {
	return nil, nil
}

func (f *fakeSource) Ack(queue, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, jobID)
	return nil
}

func (f *fakeSource) ackedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.acked...)
}

func procReturning(action lmstfyx.JobRespStatus) lmstfyx.Proc {
	return func(ctx context.Context, j *client.Job) *lmstfyx.JobResp {
		return &lmstfyx.JobResp{Action: action}
	}
}

func testProcCfg() *ProcessorConfig {
	return &ProcessorConfig{Concurrency: 1, BufferSize: 8, Timeout: time.Second}
}

func runOne(t *testing.T, action lmstfyx.JobRespStatus) *fakeSource {
	t.Helper()
	source := &fakeSource{}
	p := NewProcessor(testProcCfg(), procReturning(action), source, logger.NopLogger{})

	ch := make(chan *Message, 1)
	ch <- &Message{ID: "job-1", Queue: "q", Data: []byte("{}")}

	require.NoError(t, p.Start(context.Background(), ch))
	time.Sleep(50 * time.Millisecond)
	p.SignalShutdown()
	p.Wait()
	return source
}

func TestProcessorAcksOnSuccess(t *testing.T) {
	source := runOne(t, lmstfyx.JobRespStatusSuccess)
	assert.Equal(t, []string{"job-1"}, source.ackedIDs())
}

func TestProcessorAcksOnBury(t *testing.T) {
	// A buried job is ACKed too: its failure already lives on the durable
	// queue entry, redelivery would only repeat it.
	source := runOne(t, lmstfyx.JobRespStatusBury)
	assert.Equal(t, []string{"job-1"}, source.ackedIDs())
}

func TestProcessorLeavesReleasedJobsUnacked(t *testing.T) {
	source := runOne(t, lmstfyx.JobRespStatusRelease)
	assert.Empty(t, source.ackedIDs())
}

func TestProcessorDrainsBufferOnShutdown(t *testing.T) {
	source := &fakeSource{}
	p := NewProcessor(testProcCfg(), procReturning(lmstfyx.JobRespStatusSuccess), source, logger.NopLogger{})

	ch := make(chan *Message, 8)
	require.NoError(t, p.Start(context.Background(), ch))
	time.Sleep(20 * time.Millisecond)

	// Buffer a few messages, then signal shutdown: all of them must still
	// be processed before the loop exits.
	for _, id := range []string{"a", "b", "c"} {
		ch <- &Message{ID: id, Queue: "q", Data: []byte("{}")}
	}
	p.SignalShutdown()
	p.Wait()

	assert.ElementsMatch(t, []string{"a", "b", "c"}, source.ackedIDs())
}
