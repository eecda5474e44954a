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
	"net/http"
	"time"

	"go.uber.org/zap"
)

// CompletionFunc is invoked exactly once per Web or WS call, after
// teardown has finished and every listener this package installed has
// been detached. err is nil on a clean finish.
type CompletionFunc func(err error, req *http.Request, res http.ResponseWriter)

// Options configures a single Web or WS call. It is immutable for the
// duration of that call; the same Options value may be reused across
// many concurrent calls.
type Options struct {
	// Hostname is the upstream host. It may be a plain hostname, a
	// "unix://<path>" locator to dial a Unix domain socket, or a
	// "srv://<service>"/"srv+https://<service>" locator resolved via
	// DNS SRV (see ResolveSRV).
	Hostname string

	// Port is the upstream port. Ignored for unix:// and srv://
	// locators.
	Port string

	// Timeout is the idle limit applied to the inbound request body.
	// Zero means no limit.
	Timeout time.Duration

	// ProxyTimeout is the idle limit applied while waiting for the
	// upstream to respond. Zero means no limit.
	ProxyTimeout time.Duration

	// ProxyName identifies this proxy in the Via header it adds to
	// the upstream request, and is used for loop detection: a request
	// whose Via chain already names ProxyName is rejected with 508.
	ProxyName string

	// OnReq, if non-nil, is called with the inbound request and the
	// request the engine built for the upstream round trip. It may
	// return a replacement request and/or RoundTripper (e.g. to dial
	// a custom transport); either return value may be nil to keep the
	// engine's default.
	OnReq func(req, built *http.Request) (*http.Request, http.RoundTripper)

	// OnRes, if non-nil, is called with the upstream response before
	// its status and headers are flushed to the client. It is the
	// only hook permitted to mutate res's headers/status at that
	// point.
	OnRes func(req *http.Request, res http.ResponseWriter, proxyRes *http.Response)

	// InsecureSkipVerify disables upstream certificate verification
	// when Hostname implies an https:// upstream.
	InsecureSkipVerify bool

	// FlushInterval, when non-zero, periodically flushes the
	// response writer while copying the upstream body, for
	// streaming/SSE upstreams. Zero means no periodic flush.
	FlushInterval time.Duration

	// Logger receives structured diagnostics for this call. A nil
	// Logger disables logging.
	Logger *zap.Logger

	// Metrics, if non-nil, records call counters and durations.
	Metrics *Metrics
}

func (o *Options) logger() *zap.Logger {
	if o == nil || o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Options) metrics() *Metrics {
	if o == nil {
		return nil
	}
	return o.Metrics
}

func (o *Options) timeout() time.Duration {
	if o == nil {
		return 0
	}
	return o.Timeout
}

func (o *Options) proxyTimeout() time.Duration {
	if o == nil {
		return 0
	}
	return o.ProxyTimeout
}

func (o *Options) proxyName() string {
	if o == nil {
		return ""
	}
	return o.ProxyName
}
