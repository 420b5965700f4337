package model

import "fmt"

// HTTPError records a non-success response from the job board so callers can
// log the status code of the request that was skipped.
type HTTPError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d from %s: %v", e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
