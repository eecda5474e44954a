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

	"go.uber.org/zap"
)

// teardown is the single, idempotent cleanup routine for a call. It
// may be called concurrently from any of the goroutines a call spawns
// (body-copy completion, context cancellation, upstream dial error,
// cross-pipe completion); only the first call has any effect.
func (fc *forwardContext) teardown(cause error) {
	fc.mu.Lock()
	if fc.done {
		fc.mu.Unlock()
		return
	}
	fc.done = true
	upstreamRes := fc.upstreamRes
	upstreamConn := fc.upstreamConn
	conn := fc.conn
	fc.mu.Unlock()

	if fc.cancel != nil {
		fc.cancel()
	}

	if upstreamRes != nil && upstreamRes.Body != nil {
		_ = upstreamRes.Body.Close()
	}
	if upstreamConn != nil {
		_ = upstreamConn.Close()
	}
	// conn is only ever set in ws mode (the hijacked client
	// connection); in web mode the caller's http.ResponseWriter is
	// never closed by this package. In ws mode the raw relay has no
	// other end-of-life signal, so every teardown - clean or not -
	// closes it.
	if conn != nil {
		_ = conn.Close()
	}

	err := classify(cause)

	if fc.metrics != nil {
		fc.metrics.observeCall(err, time.Since(fc.start))
	}

	if err != nil {
		fc.logger.Warn("forward: call finished with error",
			zap.String("call_id", fc.id),
			zap.Int("status", StatusCode(err)),
			zap.String("code", Code(err)),
			zap.Error(err),
		)
	} else {
		fc.logger.Debug("forward: call finished",
			zap.String("call_id", fc.id),
			zap.Duration("duration", time.Since(fc.start)),
		)
	}

	fc.cb(err, fc.req, fc.res)
}

// setUpstreamRes records the in-flight upstream response under the
// lock so a concurrent teardown call can see it.
func (fc *forwardContext) setUpstreamRes(res *http.Response) {
	fc.mu.Lock()
	fc.upstreamRes = res
	fc.mu.Unlock()
}

// setUpstreamConn records the connection captured after a successful
// protocol upgrade, under the lock so a concurrent teardown call can
// see it.
func (fc *forwardContext) setUpstreamConn(conn io.Closer) {
	fc.mu.Lock()
	fc.upstreamConn = conn
	fc.mu.Unlock()
}
