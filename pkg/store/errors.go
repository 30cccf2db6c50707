// Package store wraps the hosting platform's repository-contents API:
// read, write, list and delete of JSON documents with the platform's
// content hash as the optimistic-concurrency revision token.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrNotFound means the store has no document at the path. Callers
	// treat it as "not created yet", not as a failure.
	ErrNotFound = errors.New("document not found")

	// ErrConflict means the presented revision token is stale: the
	// store's current revision for the path differs. The pending
	// mutation must be discarded and the document reloaded.
	ErrConflict = errors.New("revision conflict")

	// ErrUnauthenticated means credentials are missing or rejected.
	// No operation is attempted without a complete credential bundle.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// TransportError is any other store-reported or transport-level failure
// (network error, 5xx, malformed response).
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("store request failed: %s", e.Message)
	}
	return fmt.Sprintf("store request failed (%d): %s", e.Status, e.Message)
}

type apiError struct {
	Message string `json:"message"`
}

// decodeError maps an error response onto the failure taxonomy. The
// platform reports a stale hash as 409, and as 422 naming "sha" when an
// existing path is written without one.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var ae apiError
	if err := json.Unmarshal(body, &ae); err != nil || ae.Message == "" {
		ae.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, ae.Message)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, ae.Message)
	case resp.StatusCode == http.StatusUnprocessableEntity &&
		strings.Contains(strings.ToLower(ae.Message), "sha"):
		return fmt.Errorf("%w: %s", ErrConflict, ae.Message)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthenticated, ae.Message)
	default:
		return &TransportError{Status: resp.StatusCode, Message: ae.Message}
	}
}
