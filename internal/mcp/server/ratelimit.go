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

package server

import (
	"golang.org/x/time/rate"
)

// RateLimiter limits MCP tool calls with a token bucket.
type RateLimiter struct {
	calls *rate.Limiter
}

// NewRateLimiter allows perSecond calls per second with the given burst.
// A perSecond of zero or less disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		return &RateLimiter{calls: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{calls: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// AllowCall reports whether a tool call may proceed now.
func (rl *RateLimiter) AllowCall() bool {
	return rl.calls.Allow()
}
