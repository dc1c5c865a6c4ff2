package framework

import (
	"context"
	"time"
)

// MessageSource abstracts the message queue behind the worker.
type MessageSource interface {
	// Consume blocks until a message arrives or the timeout elapses.
	// A nil message with nil error means the wait timed out.
	Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error)

	// Ack removes the message from the queue. A message left un-ACKed is
	// redelivered once its TTR expires.
	Ack(queue string, jobID string) error
}

// Logger is the minimal logging surface the framework needs.
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
}
