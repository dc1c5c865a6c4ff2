package lmstfyx

import (
	"context"

	"github.com/bitleak/lmstfy/client"
)

// Proc is the signature of the business processing function injected into
// the worker's Processor.
type Proc func(ctx context.Context, job *client.Job) *JobResp

// JobRespStatus tells the worker what to do with the consumed job.
type JobRespStatus int

const (
	// JobRespStatusSuccess means the job was handled; ACK it.
	JobRespStatusSuccess JobRespStatus = iota
	// JobRespStatusRelease means the job hit a retryable failure; leave it
	// un-ACKed so the TTR mechanism redelivers it.
	JobRespStatusRelease
	// JobRespStatusBury means the job failed permanently; ACK it so it is
	// not redelivered. The failure is recorded on the durable queue entry.
	JobRespStatusBury
)

// JobResp is the outcome of processing one job.
type JobResp struct {
	Action JobRespStatus
	Data   []byte
}
