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
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
)

const (
	unixPrefix      = "unix://"
	srvPrefix       = "srv://"
	srvSecurePrefix = "srv+https://"
	httpsPrefix     = "https://"
	dialTimeout     = 30 * time.Second
)

// ResolveSRV resolves service (a DNS SRV record name) to the target
// and port with the lowest priority value, preferring the highest
// weight among records that share that priority, using miekg/dns
// directly rather than net.DefaultResolver so the resolver and query
// behavior used for srv:// locators comes from the pack's dedicated
// DNS library, consistent with the rest of the domain stack.
func ResolveSRV(ctx context.Context, service string) (host string, port uint16, err error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(service), dns.TypeSRV)
	c := new(dns.Client)

	cfg, cerr := dns.ClientConfigFromFile("/etc/resolv.conf")
	if cerr != nil || len(cfg.Servers) == 0 {
		return "", 0, fmt.Errorf("forward: resolve srv %q: no resolver configuration: %w", service, cerr)
	}

	r, _, err := c.ExchangeContext(ctx, m, net.JoinHostPort(cfg.Servers[0], cfg.Port))
	if err != nil {
		return "", 0, fmt.Errorf("forward: resolve srv %q: %w", service, err)
	}
	if len(r.Answer) == 0 {
		return "", 0, &net.DNSError{Err: "no SRV records", Name: service, IsNotFound: true}
	}

	best := r.Answer[0].(*dns.SRV)
	for _, rr := range r.Answer[1:] {
		if srv, ok := rr.(*dns.SRV); ok {
			if srv.Priority < best.Priority || (srv.Priority == best.Priority && srv.Weight > best.Weight) {
				best = srv
			}
		}
	}
	return strings.TrimSuffix(best.Target, "."), best.Port, nil
}

// resolvedUpstream is what dialerFor works out from Options.Hostname:
// the dial function, the address RoundTrip should connect to, and the
// scheme to put on the outbound request URL.
type resolvedUpstream struct {
	dial   func(ctx context.Context, network, addr string) (net.Conn, error)
	addr   string
	scheme string
}

// dialerFor resolves Options.Hostname into a dial function, address,
// and URL scheme, covering a plain host[:port], a unix:// socket path,
// and srv:// / srv+https:// DNS SRV locators.
func dialerFor(ctx context.Context, opts *Options) (resolvedUpstream, error) {
	host := opts.Hostname

	switch {
	case strings.HasPrefix(host, unixPrefix):
		path := strings.TrimPrefix(host, unixPrefix)
		return resolvedUpstream{
			dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", path)
			},
			addr:   "unix",
			scheme: "http",
		}, nil

	case strings.HasPrefix(host, srvPrefix), strings.HasPrefix(host, srvSecurePrefix):
		scheme := "http"
		service := strings.TrimPrefix(host, srvPrefix)
		if strings.HasPrefix(host, srvSecurePrefix) {
			scheme = "https"
			service = strings.TrimPrefix(host, srvSecurePrefix)
		}
		target, port, err := ResolveSRV(ctx, service)
		if err != nil {
			return resolvedUpstream{}, err
		}
		return resolvedUpstream{
			dial:   (&net.Dialer{Timeout: dialTimeout, KeepAlive: dialTimeout}).DialContext,
			addr:   net.JoinHostPort(target, fmt.Sprintf("%d", port)),
			scheme: scheme,
		}, nil

	case strings.HasPrefix(host, httpsPrefix):
		return resolvedUpstream{
			dial:   (&net.Dialer{Timeout: dialTimeout, KeepAlive: dialTimeout}).DialContext,
			addr:   net.JoinHostPort(strings.TrimPrefix(host, httpsPrefix), opts.Port),
			scheme: "https",
		}, nil

	default:
		return resolvedUpstream{
			dial:   (&net.Dialer{Timeout: dialTimeout, KeepAlive: dialTimeout}).DialContext,
			addr:   net.JoinHostPort(host, opts.Port),
			scheme: "http",
		}, nil
	}
}

// capturingDialer wraps a DialContext func and remembers the last
// net.Conn it dialed, so WS can apply socket tuning to the raw upgraded
// connection even though the round trip exposes it to the caller only
// as an io.ReadWriteCloser (net/http's native 101 support, see
// forwarder.go).
type capturingDialer struct {
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
	mu   sync.Mutex
	conn net.Conn
}

func (d *capturingDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	c, err := d.dial(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.conn = c
	d.mu.Unlock()
	return c, nil
}

func (d *capturingDialer) lastConn() net.Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn
}

// newTransport builds the default http.RoundTripper for a single call,
// honoring opts.ProxyTimeout as the transport's ResponseHeaderTimeout
// and opts.InsecureSkipVerify as a permissive TLSClientConfig.
func newTransport(resolved resolvedUpstream, opts *Options) http.RoundTripper {
	t := &http.Transport{
		DialContext:           resolved.dial,
		ResponseHeaderTimeout: opts.proxyTimeout(),
		ExpectContinueTimeout: 1 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   8,
	}
	if opts.InsecureSkipVerify {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return t
}

// buildUpstreamRequest assembles the outbound HTTP/1.1 request: method
// and path (raw, including query) copied from the inbound request,
// host/scheme from the resolved upstream, headers as computed by
// buildUpstreamHeaders.
func buildUpstreamRequest(ctx context.Context, req *http.Request, headers http.Header, resolved resolvedUpstream) (*http.Request, error) {
	u := *req.URL
	u.Scheme = resolved.scheme
	u.Host = resolved.addr

	var body = req.Body
	if req.ContentLength == 0 {
		body = nil
	}

	outreq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	outreq.Header = headers
	outreq.ContentLength = req.ContentLength
	outreq.Host = resolved.addr
	return outreq, nil
}
