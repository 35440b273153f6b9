package revizto

import "fmt"

// TransportError reports a network failure or a non-2xx response.
type TransportError struct {
	URL        string
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("revizto: %s returned HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("revizto: request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedPayloadError reports a response that parsed as JSON but did
// not carry the expected result/data envelope.
type MalformedPayloadError struct {
	URL    string
	Reason string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("revizto: unexpected payload from %s: %s", e.URL, e.Reason)
}
