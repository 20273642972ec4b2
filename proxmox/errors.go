package proxmox

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Failure classes of a Proxmox API call. Every error returned by Client
// matches exactly one of them with errors.Is.
var (
	ErrTransport        = errors.New("transport error")
	ErrHTTP             = errors.New("unexpected HTTP status")
	ErrDecode           = errors.New("undecodable response")
	ErrAuthDataMissing  = errors.New("ticket or CSRF token missing in response")
	ErrInvalidSession   = errors.New("session has no ticket or CSRF token")
	ErrUnknownAction    = errors.New("unknown power action")
	ErrResourceNotFound = errors.New("resource not found")
)

// HTTPError is returned for non-2xx responses. Payload holds the decoded
// server body when it was valid JSON.
type HTTPError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Status     string
	Payload    map[string]interface{}
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.Endpoint, e.Status)
	if len(e.Payload) > 0 {
		if details, err := json.Marshal(e.Payload); err == nil {
			msg += ": " + string(details)
		}
	}
	return msg
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTP
}

// StatusCode extracts the HTTP status of err, or 0 when err is not an HTTPError.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
