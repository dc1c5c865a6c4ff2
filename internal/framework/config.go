package framework

import "time"

// SubscriberConfig controls the pull side of the pipeline.
type SubscriberConfig struct {
	QueueName    string
	Concurrency  int
	Timeout      time.Duration // blocking consume timeout
	TTR          time.Duration // time-to-run before redelivery
	Rate         time.Duration // minimum interval between pulls
	ErrorBackoff time.Duration // sleep after a consume error
}

// ProcessorConfig controls the processing side of the pipeline.
type ProcessorConfig struct {
	Concurrency int
	BufferSize  int           // inputChan capacity
	Timeout     time.Duration // per-message processing deadline
}
