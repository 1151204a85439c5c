// Copyright 2025 The a2a-book-agent Authors
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

// Package ratelimit is a coarse in-memory fixed-window request counter
// keyed by caller address. It is unrelated to task concurrency.
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type record struct {
	count     int
	windowEnd time.Time
}

// Limiter counts requests per key within fixed windows. Suitable for a
// single-instance deployment only.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	records map[string]*record
}

// New creates a limiter allowing limit requests per window per key.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		records: make(map[string]*record),
	}
}

// Allow records one request for key and reports whether it fits in the
// current window; when it does not, the remaining window duration is
// returned as a retry hint.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	rec, ok := l.records[key]
	if !ok || rec.windowEnd.Before(now) {
		l.records[key] = &record{count: 1, windowEnd: now.Add(l.window)}
		return true, 0
	}

	if rec.count >= l.limit {
		return false, time.Until(rec.windowEnd)
	}
	rec.count++
	return true, 0
}

// Middleware rejects over-limit callers with 429 and a Retry-After
// header. The caller key is the remote address without its port.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			key = r.RemoteAddr
		}

		ok, retryAfter := l.Allow(key)
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"RATE_LIMITED","message":"too many requests"}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
