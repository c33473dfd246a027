package api

import (
	"errors"
	"net/http"
)

// Details of requests rejected before reaching the repository.
const (
	msgInvalidJSON      = "Invalid JSON body"
	msgExpectedObject   = "Expected a JSON object in the JSON body"
	msgMissingVector    = "Missing 'vector' in JSON body"
	msgVectorNotList    = "The 'vector' must be provided as a list of numbers"
	msgMissingQuery     = "Missing 'query' in JSON body"
	msgMissingFields    = "Missing 'field_names' in JSON body"
	msgExpectedList     = "Expected a list of items in the JSON body"
	msgItemNotObject    = "Each item in the JSON body must be a JSON object"
	msgBodyTooLarge     = "Request body too large"
	msgNotFound         = "Not Found"
	msgMethodNotAllowed = "Method Not Allowed"
)

// HTTPError is an error with an explicit response status. Any other error
// returned by a handler becomes a 500 with its message as detail.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	return e.Detail
}

func badRequest(detail string) error {
	return &HTTPError{Status: http.StatusBadRequest, Detail: detail}
}

// statusOf returns the response status for err.
func statusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return http.StatusInternalServerError
}
