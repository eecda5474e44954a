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
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// forwardContext is the per-call state shared by every goroutine and
// callback a single Web or WS call spawns. Every event handler closes
// over (or is a method on) this value rather than mutating the
// caller-owned request/response/connection objects directly.
type forwardContext struct {
	id string

	req     *http.Request
	res     http.ResponseWriter // nil in ws mode
	conn    net.Conn            // the client connection; nil in web mode
	opts    *Options
	cb      CompletionFunc
	logger  *zap.Logger
	metrics *Metrics

	cancel context.CancelFunc
	start  time.Time

	mu             sync.Mutex
	done           bool
	upstreamReq    *http.Request
	upstreamRes    *http.Response
	upstreamConn   io.Closer // set only after a successful upgrade
	headersFlushed bool
}

func newForwardContext(req *http.Request, opts *Options, cb CompletionFunc) *forwardContext {
	if opts == nil {
		opts = &Options{}
	}
	return &forwardContext{
		id:      uuid.NewString(),
		req:     req,
		opts:    opts,
		cb:      cb,
		logger:  opts.logger(),
		metrics: opts.metrics(),
		start:   time.Now(),
	}
}
