package trainercentral

import "fmt"

// UpstreamError is a non-2xx response from TrainerCentral. The status and
// body are preserved so the front door can pass them through verbatim.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}

// MalformedResponseError is a 2xx response whose body was not valid JSON.
type MalformedResponseError struct {
	Status int
	Body   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("upstream returned unparseable body (status %d)", e.Status)
}
