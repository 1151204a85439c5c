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

// Package server wires the REST and A2A endpoints onto one HTTP
// listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seyiFortress/a2a-book-agent/pkg/a2a"
	"github.com/seyiFortress/a2a-book-agent/pkg/agent"
	"github.com/seyiFortress/a2a-book-agent/pkg/config"
	"github.com/seyiFortress/a2a-book-agent/pkg/extract"
	"github.com/seyiFortress/a2a-book-agent/pkg/observability"
	"github.com/seyiFortress/a2a-book-agent/pkg/ratelimit"
)

// Server hosts the book agent's HTTP surface.
type Server struct {
	cfg        *config.Config
	handler    *agent.Handler
	service    *extract.Service
	limiter    *ratelimit.Limiter
	httpServer *http.Server
	started    time.Time
}

// New assembles a server from its injected collaborators.
func New(cfg *config.Config, handler *agent.Handler, service *extract.Service) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handler,
		service: service,
	}
	if cfg.RateLimit.Enabled {
		s.limiter = ratelimit.New(cfg.RateLimit.RequestsPerMinute, time.Minute)
	}
	s.httpServer = &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: s.routes(),
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(observability.Middleware(routeName))
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/.well-known/agent.json", s.handleAgentCard)
	r.Post("/api/extract-book", s.handleExtractBook)
	r.Post("/a2a/{agentID}", s.handleA2A)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// routeName reduces request paths to a bounded metric label set.
func routeName(r *http.Request) string {
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Start runs the listener until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.started = time.Now()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting",
			"address", s.httpServer.Addr,
			"agent", s.cfg.Agent.ID)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// AgentCard builds the static capability descriptor served at the
// well-known path.
func (s *Server) AgentCard() *a2a.AgentCard {
	baseURL := s.cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s", s.cfg.Server.Address())
	}
	return &a2a.AgentCard{
		Name:        s.cfg.Agent.Name,
		Description: s.cfg.Agent.Description,
		URL:         fmt.Sprintf("%s/a2a/%s", baseURL, s.cfg.Agent.ID),
		Version:     s.cfg.Agent.Version,
		Capabilities: a2a.AgentCapabilities{
			Streaming:         true,
			PushNotifications: true,
		},
		Methods: a2a.Methods(),
		Skills: []a2a.AgentSkill{
			{
				Name:        "book_excerpt",
				Description: "Search a public book catalog and return a short excerpt from the best match.",
				Tags:        []string{"books", "literature", "public-domain"},
			},
		},
	}
}
