package search

import "fmt"

// DomainError reports a URL that points outside the scraped site. It is a
// correctness failure rather than ordinary absence: resolving it would mean
// fetching a page the caller never asked this scraper about.
type DomainError struct {
	URL    string
	Host   string
	Domain string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("non %s url %q", e.Domain, e.URL)
}
