package response

import (
	"olp/backend/internal/domains/common/job"
	"olp/backend/pkg/errorutil"
)

// ResultI is the business result carried inside a Response.
type ResultI interface {
	// Set stamps the result with envelope metadata and the outcome error.
	Set(meta *job.Meta, err error)

	// GetStatus returns the terminal status string.
	GetStatus() string
}

// Response is the uniform outcome of one handled job.
type Response struct {
	Error     *errorutil.Error `json:"error"`
	Result    ResultI          `json:"result"`
	Processed bool             `json:"processed"`
	Meta      interface{}      `json:"meta"`
}

// WrapResponse fills the response from a result and an error.
func (r *Response) WrapResponse(result ResultI, meta *job.Meta, err error) {
	result.Set(meta, err)

	if err == nil {
		r.Processed = true
	}
	r.Meta = meta
	r.Error = errorutil.Wrap(err)
	r.Result = result
}
