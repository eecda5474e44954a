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

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/caddyserver/forwardcore/forward"
)

// version is set at build time via -ldflags; left as a plain default
// here since forwardctl is a reference CLI, not a shipped binary.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "forwardctl",
		Short: "Reference host for the forward reverse-proxy engine",
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the forwardctl version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var configPath string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Forward every inbound request/WebSocket to a single configured upstream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, metricsAddr)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "forwardctl.toml", "path to a TOML config file")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address")
	return cmd
}

func runServe(configPath, metricsAddr string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("forwardctl: build logger: %w", err)
	}
	defer logger.Sync()

	opts, listenAddr, wsPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	opts.Logger = logger

	if metricsAddr != "" {
		opts.Metrics = forward.NewMetrics(prometheus.DefaultRegisterer)
		go serveMetrics(logger, metricsAddr)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", handleWeb(opts))
	if wsPath != "" {
		mux.HandleFunc(wsPath, handleWS(opts))
	}

	logger.Info("forwardctl: listening",
		zap.String("addr", listenAddr),
		zap.String("upstream", opts.Hostname+":"+opts.Port),
	)
	return http.ListenAndServe(listenAddr, mux)
}

func serveMetrics(logger *zap.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("forwardctl: metrics server exited", zap.Error(err))
	}
}

// handleWeb returns a handler that forwards every request/response
// exchange to the configured upstream, writing the final error status
// itself since the engine never writes an error body on the caller's
// behalf.
func handleWeb(opts *forward.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		done := make(chan struct{})
		forward.Web(r, w, opts, func(err error, _ *http.Request, res http.ResponseWriter) {
			if err != nil {
				http.Error(res, err.Error(), forward.StatusCode(err))
			}
			close(done)
		})
		<-done
	}
}

// handleWS upgrades the inbound connection and forwards it to the
// configured upstream, in the style of net/http/httputil's hijack
// idiom generalized to this package's ws entry point.
func handleWS(opts *forward.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			http.Error(w, "websocket upgrade unsupported on this connection", http.StatusInternalServerError)
			return
		}

		conn, rw, err := hj.Hijack()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		var head []byte
		if n := rw.Reader.Buffered(); n > 0 {
			head, _ = rw.Reader.Peek(n)
		}

		done := make(chan struct{})
		forward.WS(r, conn, head, opts, func(err error, _ *http.Request, _ http.ResponseWriter) {
			if err != nil && opts.Logger != nil {
				opts.Logger.Warn("forwardctl: ws call finished with error", zap.Error(err))
			}
			close(done)
		})
		<-done
	}
}
