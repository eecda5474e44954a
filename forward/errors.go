// Copyright 2015 Light Code Labs, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package forward

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// forwardError annotates an error with the HTTP status and machine
// code a caller should surface to the client.
type forwardError struct {
	status int
	code   string
	err    error
}

func (e *forwardError) Error() string {
	if e.err == nil {
		return e.code
	}
	return e.err.Error()
}

func (e *forwardError) Unwrap() error { return e.err }

func newError(status int, code string, err error) error {
	return &forwardError{status: status, code: code, err: err}
}

// StatusCode returns the HTTP status that should be returned to the
// client for err, 500 if a non-nil err carries no annotation, or 0
// if err is nil.
func StatusCode(err error) int {
	var fe *forwardError
	if errors.As(err, &fe) {
		return fe.status
	}
	if err == nil {
		return 0
	}
	return http.StatusInternalServerError
}

// Code returns the machine-readable error code (e.g. "ECONNREFUSED")
// associated with err, or "" if none applies.
func Code(err error) string {
	var fe *forwardError
	if errors.As(err, &fe) {
		return fe.code
	}
	return ""
}

var (
	errLoopDetected        = func() error { return newError(http.StatusLoopDetected, "", errors.New("proxy loop detected")) }
	errUpgradeMethod       = func() error { return newError(http.StatusMethodNotAllowed, "", errors.New("upgrade requires GET")) }
	errNotWebsocketUpgrade = func() error { return newError(http.StatusBadRequest, "", errors.New("upgrade header is not websocket")) }
	errRequestTimeout      = func() error { return newError(http.StatusRequestTimeout, "", errors.New("request timeout")) }
	errUpstreamAborted     = func() error {
		return newError(http.StatusBadGateway, "ECONNRESET", errors.New("socket hang up"))
	}

	// ErrUpgradeViaWeb is returned by Web when the upstream answers a
	// request with 101 Switching Protocols. Web has no hijacked client
	// connection to relay the upgrade over, so this is surfaced as an
	// error rather than mishandled - callers must route upgrade-capable
	// requests through WS instead.
	ErrUpgradeViaWeb = newError(http.StatusInternalServerError, "", errors.New("upstream attempted a protocol upgrade on a Web call; use WS instead"))
)

// errUpstreamTimeout wraps err, the error RoundTrip returned when the
// upstream failed to respond within the configured timeout, as a 504.
func errUpstreamTimeout(err error) error {
	return newError(http.StatusGatewayTimeout, "", err)
}

// classify maps an arbitrary error from dialing or round-tripping the
// upstream onto an HTTP status and machine code. Errors that are
// already a *forwardError pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var fe *forwardError
	if errors.As(err, &fe) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errUpstreamTimeout(err)
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return newError(http.StatusServiceUnavailable, "ECONNREFUSED", err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return newError(http.StatusServiceUnavailable, "ENOTFOUND", err)
	}

	if strings.Contains(err.Error(), "malformed HTTP") {
		return newError(http.StatusBadGateway, "HPE_INVALID_CONSTANT", err)
	}

	// Covers both *net.OpError (a dial or read/write deadline) and the
	// unexported error http.Transport returns when ResponseHeaderTimeout
	// elapses, neither of which is context.DeadlineExceeded.
	if te, ok := err.(interface{ Timeout() bool }); ok && te.Timeout() {
		return errUpstreamTimeout(err)
	}

	return newError(http.StatusInternalServerError, "", err)
}
