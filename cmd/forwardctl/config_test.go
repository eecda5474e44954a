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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forwardctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
hostname = "upstream.internal"
port = "9000"
timeout = "5s"
proxy_timeout = "10s"
proxy_name = "edge"
listen_addr = ":9090"
ws_path = "/ws"
`)

	opts, listenAddr, wsPath, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "upstream.internal", opts.Hostname)
	require.Equal(t, "9000", opts.Port)
	require.Equal(t, 5*time.Second, opts.Timeout)
	require.Equal(t, 10*time.Second, opts.ProxyTimeout)
	require.Equal(t, "edge", opts.ProxyName)
	require.Equal(t, ":9090", listenAddr)
	require.Equal(t, "/ws", wsPath)
}

func TestLoadConfigDefaultsListenAddr(t *testing.T) {
	path := writeConfig(t, `hostname = "upstream.internal"`)

	_, listenAddr, _, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", listenAddr)
}

func TestLoadConfigRequiresHostname(t *testing.T) {
	path := writeConfig(t, `port = "9000"`)

	_, _, _, err := loadConfig(path)
	require.Error(t, err)
}
