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

// Package task provides task identifiers and the in-memory task store.
package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID generates a task identifier of the form
// task-<unix-millis>-<8 hex chars>. The embedded timestamp is later used
// to compute task age and processing time.
func NewID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("task-%d-%s", time.Now().UnixMilli(), suffix)
}

// CreatedAt extracts the creation time embedded in a task id. It returns
// the zero time when the id does not carry a parsable timestamp.
func CreatedAt(id string) time.Time {
	parts := strings.Split(id, "-")
	if len(parts) < 3 || parts[0] != "task" {
		return time.Time{}
	}
	millis, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}

// Age returns the elapsed time since the task id was generated, or zero
// when the id carries no timestamp.
func Age(id string) time.Duration {
	created := CreatedAt(id)
	if created.IsZero() {
		return 0
	}
	return time.Since(created)
}
