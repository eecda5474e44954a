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
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// hopByHopHeaders are stripped unconditionally in both directions, per
// RFC 7230 §6.1.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Transfer-Encoding",
	"Te",
	"Upgrade",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Trailer",
	"Http2-Settings",
}

// forwardedForRe extracts for= tokens from an inbound Forwarded header.
// It is deliberately lenient - a superset of strict RFC 7239 grammar -
// rather than a full parser.
var forwardedForRe = regexp.MustCompile(`(?i)for=\s*(\S+)`)

// stripHopByHop deletes, from h, every header named in the Connection
// header's token list plus the fixed hop-by-hop set.
func stripHopByHop(h http.Header) {
	if c := h.Get("Connection"); c != "" {
		for _, tok := range strings.Split(c, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			lower := strings.ToLower(tok)
			if lower == "connection" || lower == "keep-alive" {
				continue
			}
			h.Del(tok)
		}
	}
	for _, name := range hopByHopHeaders {
		h.Del(name)
	}
}

// copyHeader copies every header from src to dst except HTTP/2
// pseudo-headers (":"-prefixed names) and names that are not valid
// HTTP header field names. A conforming net/http request never carries
// either by the time a handler sees it, but the check is kept as a
// defensive no-op should a misbehaving front end smuggle one through.
func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		if strings.HasPrefix(k, ":") || !httpguts.ValidHeaderFieldName(k) {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// addForwarded sets the Forwarded header on h to
// "by=<localAddr>; for=<remoteAddr>[; for=<inbound-for>...][; host=<host>]; proto=<http|https>",
// synthesized fresh per call per RFC 7239. Any for= tokens already
// present on inboundForwarded are appended in their original order.
func addForwarded(h http.Header, localAddr, remoteAddr, host string, isTLS bool, inboundForwarded string) {
	var b strings.Builder
	b.WriteString("by=")
	b.WriteString(localAddr)
	b.WriteString("; for=")
	b.WriteString(remoteAddr)

	if inboundForwarded != "" {
		for _, m := range forwardedForRe.FindAllStringSubmatch(inboundForwarded, -1) {
			b.WriteString("; for=")
			b.WriteString(m[1])
		}
	}

	if host != "" {
		b.WriteString("; host=")
		b.WriteString(host)
	}

	if isTLS {
		b.WriteString("; proto=https")
	} else {
		b.WriteString("; proto=http")
	}

	h.Set("Forwarded", b.String())
}

// addVia appends "<httpVersion> <proxyName>" to any existing Via
// header (comma-separated), or sets it if absent. A blank proxyName
// leaves Via untouched.
func addVia(h http.Header, httpVersion, proxyName string) {
	if proxyName == "" {
		return
	}
	entry := httpVersion + " " + proxyName
	if existing := h.Get("Via"); existing != "" {
		h.Set("Via", existing+", "+entry)
	} else {
		h.Set("Via", entry)
	}
}

// viaContains reports whether h's Via header already names proxyName,
// used for loop detection. Matching is case-insensitive and matches a
// comma-separated token by suffix, since a Via token is
// "<version> <name>".
func viaContains(h http.Header, proxyName string) bool {
	if proxyName == "" {
		return false
	}
	via := h.Get("Via")
	if via == "" {
		return false
	}
	needle := strings.ToLower(proxyName)
	for _, tok := range strings.Split(via, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if strings.HasSuffix(tok, needle) {
			return true
		}
	}
	return false
}

// remoteHost extracts the host portion of req.RemoteAddr, falling back
// to the raw value if it isn't a host:port pair.
func remoteHost(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

// localHost extracts the host portion of the connection's local
// address from req's context, as set by net/http's server for every
// inbound request (http.LocalAddrContextKey).
func localHost(req *http.Request) string {
	v := req.Context().Value(http.LocalAddrContextKey)
	addr, ok := v.(net.Addr)
	if !ok {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// authorityOrHost returns the HTTP/2 :authority pseudo-header's
// equivalent for an inbound request: net/http already folds
// :authority into req.Host for both HTTP/1.1 and HTTP/2 requests
// before a handler ever sees them, so req.Host is the single source
// of truth here.
func authorityOrHost(req *http.Request) string {
	return req.Host
}

// buildUpstreamHeaders returns the header set to send upstream for
// req: a copy of the inbound headers with hop-by-hop stripped and a
// freshly synthesized Forwarded header appended.
func buildUpstreamHeaders(req *http.Request) http.Header {
	h := make(http.Header, len(req.Header)+2)
	copyHeader(h, req.Header)
	stripHopByHop(h)
	addForwarded(h, localHost(req), remoteHost(req), authorityOrHost(req), req.TLS != nil, req.Header.Get("Forwarded"))
	return h
}
