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
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripHopByHop(t *testing.T) {
	h := http.Header{}
	h.Set("Connection", "X-Custom, Keep-Alive")
	h.Set("X-Custom", "drop-me")
	h.Set("Keep-Alive", "timeout=5")
	h.Set("Upgrade", "websocket")
	h.Set("X-Real", "keep-me")

	stripHopByHop(h)

	require.Empty(t, h.Get("X-Custom"))
	require.Empty(t, h.Get("Keep-Alive"))
	require.Empty(t, h.Get("Upgrade"))
	require.Equal(t, "keep-me", h.Get("X-Real"))
}

func TestCopyHeaderSkipsPseudoAndInvalid(t *testing.T) {
	src := http.Header{
		":authority":  {"example.com"},
		"X-Valid":     {"a", "b"},
		"Bad Header!": {"nope"},
	}
	dst := http.Header{}
	copyHeader(dst, src)

	require.Empty(t, dst.Get(":authority"))
	require.ElementsMatch(t, []string{"a", "b"}, dst["X-Valid"])
	require.Empty(t, dst.Get("Bad Header!"))
}

func TestAddForwardedAppendsInboundFor(t *testing.T) {
	h := http.Header{}
	addForwarded(h, "10.0.0.1", "203.0.113.5", "example.com", true, "for=192.0.2.1, for=192.0.2.2")

	got := h.Get("Forwarded")
	require.Contains(t, got, "by=10.0.0.1")
	require.Contains(t, got, "for=203.0.113.5")
	require.Contains(t, got, "for=192.0.2.1")
	require.Contains(t, got, "for=192.0.2.2")
	require.Contains(t, got, "host=example.com")
	require.Contains(t, got, "proto=https")
}

func TestAddViaAndLoopDetection(t *testing.T) {
	h := http.Header{}
	addVia(h, "1.1", "proxy-a")
	require.Equal(t, "1.1 proxy-a", h.Get("Via"))

	addVia(h, "1.1", "proxy-b")
	require.Equal(t, "1.1 proxy-a, 1.1 proxy-b", h.Get("Via"))

	require.True(t, viaContains(h, "proxy-a"))
	require.True(t, viaContains(h, "PROXY-B"))
	require.False(t, viaContains(h, "proxy-c"))
}

func TestAddViaBlankProxyNameIsNoop(t *testing.T) {
	h := http.Header{}
	addVia(h, "1.1", "")
	require.Empty(t, h.Get("Via"))
}

func TestBuildUpstreamHeadersStripsAndForwards(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/path", nil)
	req.RemoteAddr = "198.51.100.9:54321"
	req.Header.Set("Connection", "close")
	req.Header.Set("X-Keep", "yes")

	h := buildUpstreamHeaders(req)

	require.Empty(t, h.Get("Connection"))
	require.Equal(t, "yes", h.Get("X-Keep"))
	require.Contains(t, h.Get("Forwarded"), "for=198.51.100.9")
}
