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
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is optional Prometheus instrumentation for the engine. It is
// nil-safe: a nil *Metrics records nothing, so a caller that doesn't
// want instrumentation can simply leave Options.Metrics unset.
type Metrics struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance and registers its collectors
// with reg. Passing prometheus.DefaultRegisterer matches the common
// case of a single proxy per process.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forward",
			Name:      "calls_total",
			Help:      "Total number of Web/WS calls, labeled by outcome status code.",
		}, []string{"status"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "forward",
			Name:      "call_duration_seconds",
			Help:      "Duration of a Web/WS call from entry to teardown.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	reg.MustRegister(m.callsTotal, m.callDuration)
	return m
}

func (m *Metrics) observeCall(err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "200"
	if err != nil {
		status = strconv.Itoa(StatusCode(err))
	}
	m.callsTotal.WithLabelValues(status).Inc()
	m.callDuration.WithLabelValues(status).Observe(d.Seconds())
}
