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

import "go.uber.org/zap"

// logStart emits a debug line when a call begins dialing the
// upstream, tagged with the call id so a host's log aggregation can
// correlate every line belonging to one Web/WS call.
func (fc *forwardContext) logStart(mode string) {
	fc.logger.Debug("forward: dialing upstream",
		zap.String("call_id", fc.id),
		zap.String("mode", mode),
		zap.String("hostname", fc.opts.Hostname),
		zap.String("port", fc.opts.Port),
	)
}

// logUpgrade emits a debug line once an upstream upgrade response has
// been observed and the relay is about to start.
func (fc *forwardContext) logUpgrade() {
	fc.logger.Debug("forward: upgrading connection",
		zap.String("call_id", fc.id),
	)
}
