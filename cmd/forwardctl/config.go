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
	"time"

	"github.com/BurntSushi/toml"

	"github.com/caddyserver/forwardcore/forward"
)

// fileConfig is the on-disk shape of a forwardctl config file. Durations
// are plain strings (e.g. "30s") so the TOML stays human-editable.
type fileConfig struct {
	Hostname     string `toml:"hostname"`
	Port         string `toml:"port"`
	Timeout      string `toml:"timeout"`
	ProxyTimeout string `toml:"proxy_timeout"`
	ProxyName    string `toml:"proxy_name"`
	ListenAddr   string `toml:"listen_addr"`
	WSPath       string `toml:"ws_path"`
}

// loadConfig reads a TOML config file at path and converts it to a
// forward.Options plus the host-CLI-only listenAddr/wsPath fields.
func loadConfig(path string) (*forward.Options, string, string, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, "", "", fmt.Errorf("forwardctl: decode config %q: %w", path, err)
	}

	if fc.Hostname == "" {
		return nil, "", "", fmt.Errorf("forwardctl: config %q: hostname is required", path)
	}

	opts := &forward.Options{
		Hostname:  fc.Hostname,
		Port:      fc.Port,
		ProxyName: fc.ProxyName,
	}

	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return nil, "", "", fmt.Errorf("forwardctl: config %q: timeout: %w", path, err)
		}
		opts.Timeout = d
	}
	if fc.ProxyTimeout != "" {
		d, err := time.ParseDuration(fc.ProxyTimeout)
		if err != nil {
			return nil, "", "", fmt.Errorf("forwardctl: config %q: proxy_timeout: %w", path, err)
		}
		opts.ProxyTimeout = d
	}

	listenAddr := fc.ListenAddr
	if listenAddr == "" {
		listenAddr = ":8080"
	}
	return opts, listenAddr, fc.WSPath, nil
}
