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

package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/seyiFortress/a2a-book-agent/pkg/a2a"
)

// Store is an in-memory task store keyed by task id. It is owned by the
// process and injected into the protocol handler; tasks live for the
// process lifetime unless a sweeper is started. Updates to the same id
// are last-write-wins.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*a2a.Task
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{tasks: make(map[string]*a2a.Task)}
}

// Create inserts a task under its id.
func (s *Store) Create(t *a2a.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
}

// Get returns the task for id, or false when absent.
func (s *Store) Get(id string) (*a2a.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

// Update replaces the task stored under id.
func (s *Store) Update(id string, t *a2a.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[id] = t
}

// All returns a snapshot of every stored task.
func (s *Store) All() []*a2a.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*a2a.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	return out
}

// Delete removes the task for id and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	delete(s.tasks, id)
	return ok
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// StartSweeper evicts terminal tasks older than ttl every interval until
// ctx is done. A ttl of zero disables the sweeper.
func (s *Store) StartSweeper(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.sweep(ttl); n > 0 {
					slog.Debug("Swept expired tasks", "count", n)
				}
			}
		}
	}()
}

func (s *Store) sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, t := range s.tasks {
		if !t.Status.State.Terminal() {
			continue
		}
		created := CreatedAt(id)
		if created.IsZero() {
			created = t.Status.Timestamp
		}
		if time.Since(created) > ttl {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}
