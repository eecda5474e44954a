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
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyPassesThroughForwardError(t *testing.T) {
	original := errLoopDetected()
	got := classify(original)
	require.Equal(t, original, got)
}

func TestClassifyDeadlineExceeded(t *testing.T) {
	err := classify(context.DeadlineExceeded)
	require.Equal(t, http.StatusGatewayTimeout, StatusCode(err))
}

func TestClassifyConnRefused(t *testing.T) {
	err := classify(&net.OpError{Op: "dial", Err: syscall.ECONNREFUSED})
	require.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	require.Equal(t, "ECONNREFUSED", Code(err))
}

func TestClassifyDNSNotFound(t *testing.T) {
	err := classify(&net.DNSError{Err: "no such host", Name: "nope.invalid", IsNotFound: true})
	require.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	require.Equal(t, "ENOTFOUND", Code(err))
}

func TestClassifyMalformedHTTP(t *testing.T) {
	err := classify(errors.New("net/http: malformed HTTP response"))
	require.Equal(t, http.StatusBadGateway, StatusCode(err))
	require.Equal(t, "HPE_INVALID_CONSTANT", Code(err))
}

// timeoutError satisfies interface{ Timeout() bool } without being a
// *net.OpError or context.DeadlineExceeded, mirroring the error
// http.Transport returns when ResponseHeaderTimeout elapses.
type timeoutError struct{}

func (timeoutError) Error() string   { return "timeout awaiting response headers" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyGenericTimeoutInterface(t *testing.T) {
	err := classify(timeoutError{})
	require.Equal(t, http.StatusGatewayTimeout, StatusCode(err))
}

func TestClassifyNilIsNil(t *testing.T) {
	require.Nil(t, classify(nil))
	require.Equal(t, 0, StatusCode(nil))
}

func TestClassifyUnknownDefaultsTo500(t *testing.T) {
	err := classify(errors.New("something unexpected"))
	require.Equal(t, http.StatusInternalServerError, StatusCode(err))
}
