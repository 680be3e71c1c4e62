package fetch

import "fmt"

// FetchError reports a page that could not be retrieved at all: transport
// failure, timeout or a non-200 status.
type FetchError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: received non-200 status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a fetched page whose structure does not match what the
// extractors expect. It usually means the site was redesigned, so callers
// must surface it rather than treat the page as empty.
type ParseError struct {
	URL    string
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse %s: %s: %v", e.URL, e.Detail, e.Err)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.URL, e.Detail)
}

// Unwrap returns the underlying cause, if any.
func (e *ParseError) Unwrap() error { return e.Err }
