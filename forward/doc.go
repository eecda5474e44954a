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

// Package forward is an embeddable HTTP/1.1 reverse-proxy forwarding
// engine. It forwards one inbound request to one configured upstream,
// handling both plain request/response exchanges and protocol-upgrade
// (e.g. WebSocket) exchanges, and streams the response back to the
// caller-owned client connection.
//
// The package does not listen on sockets, does not route, does not
// terminate TLS, and does not choose between multiple upstreams. All
// of that is left to the host server; this package only drives the
// two paired full-duplex byte streams (client<->proxy and
// proxy<->upstream) for a single call.
package forward
