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

// Command bookagent serves the book excerpt agent over REST and the A2A
// protocol.
//
// Usage:
//
//	bookagent serve --config config.yaml
//	bookagent serve --port 8080 --log-level debug
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/seyiFortress/a2a-book-agent/pkg/agent"
	"github.com/seyiFortress/a2a-book-agent/pkg/config"
	"github.com/seyiFortress/a2a-book-agent/pkg/extract"
	"github.com/seyiFortress/a2a-book-agent/pkg/gutendex"
	"github.com/seyiFortress/a2a-book-agent/pkg/logger"
	"github.com/seyiFortress/a2a-book-agent/pkg/observability"
	"github.com/seyiFortress/a2a-book-agent/pkg/server"
	"github.com/seyiFortress/a2a-book-agent/pkg/task"
)

// CLI defines the command-line interface.
type CLI struct {
	Version VersionCmd `cmd:"" help:"Show version information."`
	Serve   ServeCmd   `cmd:"" help:"Start the agent server."`

	Config   string `short:"c" help:"Path to config file." type:"path"`
	LogLevel string `name:"log-level" help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile  string `name:"log-file" help:"Log file path (empty = stderr)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("bookagent %s\n", version)
	return nil
}

// ServeCmd starts the server.
type ServeCmd struct {
	Host string `help:"Listen host (overrides config)."`
	Port int    `help:"Listen port (overrides config)."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	observability.Register()

	store := task.NewStore()
	store.StartSweeper(ctx, cfg.Tasks.TTL, cfg.Tasks.SweepInterval)

	catalog := gutendex.New(
		gutendex.WithBaseURL(cfg.Catalog.BaseURL),
		gutendex.WithMaxRetries(cfg.Catalog.MaxRetries),
	)
	service := extract.NewService(catalog)
	handler := agent.NewHandler(store, service)

	return server.New(cfg, handler, service).Start(ctx)
}

func main() {
	_ = config.LoadDotEnv()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("bookagent"),
		kong.Description("Book excerpt agent - REST and A2A protocol server."),
		kong.UsageOnError(),
	)

	level, err := logger.ParseLevel(cli.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	output := os.Stderr
	if cli.LogFile != "" {
		file, cleanup, err := logger.OpenLogFile(cli.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		output = file
	}
	logger.Init(level, output)

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
