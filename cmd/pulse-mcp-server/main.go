package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"pulse-ai/internal/app"
	"pulse-ai/internal/config"
	"pulse-ai/internal/logger"
	"pulse-ai/internal/mcpserver"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("dotenv not loaded: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		logrus.Fatalf("❌ %v", err)
	}
	// stdout carries the MCP protocol.
	logger.Setup(cfg.LogLevel, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("❌ failed to build services: %v", err)
	}
	defer func() { _ = a.Close() }()

	server := mcpserver.NewServer(mcpserver.NewHandlers(a.Search, a.Selection, a.Subscriptions, a.Interests), version)

	logrus.Info("🚀 pulse MCP server listening on stdio")
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		logrus.Errorf("❌ MCP server stopped: %v", err)
	}
}
