package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Failure kinds surfaced to callers of write operations.
const (
	KindTimeout    = "timeout"
	KindConnection = "connection_error"
	KindUnknown    = "unknown_error"
)

// Classify maps a transport error to its stable failure kind:
// timeout, http_status_<code>, connection_error or unknown_error.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("http_status_%d", statusErr.Code)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}
	return KindUnknown
}
