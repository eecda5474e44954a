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
	"net"
	"time"
)

// tuneConn applies the standard long-lived-connection options to any
// raw duplex socket the engine keeps open for full-duplex
// streaming: disable idle deadlines, enable TCP_NODELAY, enable
// keepalive (a zero period leaves Go's default keepalive idle time in
// place). conn types that aren't a
// *net.TCPConn (e.g. a test net.Pipe or a Unix socket) are left
// untouched - there is nothing equivalent to tune on them.
func tuneConn(conn net.Conn) {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tcp.SetNoDelay(true)
	_ = tcp.SetKeepAlive(true)
	_ = tcp.SetKeepAlivePeriod(0)
	_ = tcp.SetDeadline(time.Time{})
}
