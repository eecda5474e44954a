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
	"io"
	"net/http"
	"time"
)

// idleTimeoutReader wraps an inbound request body so that onTimeout
// fires if no Read call completes within d of the previous one. It is
// only meaningful for a request that actually has a body to read; a
// caller with nothing to read the timeout off of should leave the body
// unwrapped instead.
type idleTimeoutReader struct {
	io.ReadCloser
	d     time.Duration
	timer *time.Timer
}

// newIdleTimeoutReader returns r unchanged if d is zero (no idle
// limit configured).
func newIdleTimeoutReader(r io.ReadCloser, d time.Duration, onTimeout func()) io.ReadCloser {
	if d <= 0 {
		return r
	}
	return &idleTimeoutReader{
		ReadCloser: r,
		d:          d,
		timer:      time.AfterFunc(d, onTimeout),
	}
}

// wrapInboundBody arms an idle-timeout reader around req's body, or
// returns it unwrapped if req has no body for anything to read the
// timeout off of. Arming the timer regardless would fire onTimeout on
// the first idle tick of a bodyless request, which for a long-lived
// streamed response tears down a call that isn't actually stuck.
func wrapInboundBody(req *http.Request, d time.Duration, onTimeout func()) io.ReadCloser {
	if req.ContentLength == 0 {
		return req.Body
	}
	return newIdleTimeoutReader(req.Body, d, onTimeout)
}

func (r *idleTimeoutReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	r.timer.Reset(r.d)
	return n, err
}

func (r *idleTimeoutReader) Close() error {
	r.timer.Stop()
	return r.ReadCloser.Close()
}
