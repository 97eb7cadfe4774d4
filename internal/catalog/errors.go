package catalog

import "fmt"

// FetchError is a transport failure or a non-2xx answer from the catalog
// endpoint. Status is 0 when no response was received. Callers may retry.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("catalog fetch: %s", e.Message)
	}
	return fmt.Sprintf("catalog fetch: status %d: %s", e.Status, e.Message)
}

// ParseError is a 2xx answer whose payload is unusable: not JSON, success
// false or missing, or no listing array.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return "catalog parse: " + e.Message
}
