// Copyright 2025 Tom Barlow
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

package linelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for filesProcessed.
const (
	outcomePassthrough = "passthrough"
	outcomeTruncated   = "truncated"
	outcomeError       = "error"
)

var (
	// filesProcessed tracks ApplyLineLimit calls by language and outcome
	filesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repopacker_linelimit_files_total",
			Help: "Total files processed by language and outcome",
		},
		[]string{"language", "outcome"},
	)

	// textualFallbacks tracks analyses that ran without a usable parse tree
	textualFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repopacker_linelimit_fallbacks_total",
			Help: "Total analyses that used the textual fallback by language",
		},
		[]string{"language"},
	)

	// functionsTruncated tracks functions omitted from results
	functionsTruncated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repopacker_linelimit_truncated_functions_total",
			Help: "Total functions that did not fit the line limit by language",
		},
		[]string{"language"},
	)

	// cacheRequests tracks result cache lookups
	cacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repopacker_linelimit_cache_requests_total",
			Help: "Total result cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	// analysisDuration tracks time spent parsing and allocating
	analysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repopacker_linelimit_analysis_duration_seconds",
			Help:    "Time spent analyzing and allocating a file by language",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"language"},
	)
)

func recordOutcome(language, outcome string) {
	filesProcessed.WithLabelValues(language, outcome).Inc()
}

func recordFallback(language string) {
	textualFallbacks.WithLabelValues(language).Inc()
}

func recordTruncatedFunctions(language string, n int) {
	if n > 0 {
		functionsTruncated.WithLabelValues(language).Add(float64(n))
	}
}

func recordCache(hit bool) {
	if hit {
		cacheRequests.WithLabelValues("hit").Inc()
		return
	}
	cacheRequests.WithLabelValues("miss").Inc()
}

func observeDuration(language string, seconds float64) {
	analysisDuration.WithLabelValues(language).Observe(seconds)
}
