package job

// Job is the standard envelope every queued message carries.
type Job struct {
	Payload *JobPayload `json:"payload"`
}

type JobPayload struct {
	Data *JobPayloadData `json:"data"`
}

type JobPayloadData struct {
	RequestID  string `json:"request_id"`  // trace id
	ActionType string `json:"action_type"` // routing key
	ID         string `json:"id"`          // business id (order identifier)

	// Data holds the action-specific body.
	Data interface{} `json:"data"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Meta is the extracted envelope metadata handed to handlers.
type Meta struct {
	RequestID  string
	ActionType string
	ID         string
}
