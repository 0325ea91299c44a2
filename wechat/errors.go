package wechat

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned when a profile is requested for an openid that has
// never completed a code exchange in this process. Match with errors.Is.
var ErrNoToken = errors.New("no cached token for openid, authorize first")

// TransportError wraps a network-level failure reaching the provider
// (DNS, connection refused, client timeout). It is never retried.
type TransportError struct {
	Op  string // the session operation that failed
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("wechat: %s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError indicates the provider was reached but answered with
// something this client cannot use: a non-200 status, a body that is not
// valid JSON, or a token payload without the openid needed to key the cache.
type ProtocolError struct {
	Op     string
	Status int
	Body   []byte // raw response body, kept for caller diagnostics
	Err    error  // decode error, if any
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wechat: %s: malformed provider response (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("wechat: %s: unexpected provider response (status %d): %s", e.Op, e.Status, e.Body)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
