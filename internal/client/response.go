package client

import (
	"encoding/json"

	"github.com/noah-isme/edulegit-bridge/internal/dto"
)

// Response normalizes one EduLegit HTTP exchange. Transport failures are
// captured in TransportErr rather than surfaced as Go errors; callers
// inspect the outcome.
type Response struct {
	Body         string
	StatusCode   int
	TransportErr string
	URL          string

	parsed     *dto.RemoteEnvelope
	parseTried bool
}

// IsSuccess reports a 2xx exchange with no transport failure.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300 && r.TransportErr == ""
}

// Payload lazily parses the body as a RemoteEnvelope. Returns nil when the
// body is not valid JSON; it never fails hard.
func (r *Response) Payload() *dto.RemoteEnvelope {
	if r.parseTried {
		return r.parsed
	}
	r.parseTried = true

	if r.Body == "" {
		return nil
	}
	var envelope dto.RemoteEnvelope
	if err := json.Unmarshal([]byte(r.Body), &envelope); err != nil {
		return nil
	}
	r.parsed = &envelope
	return r.parsed
}
