package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/dianafit/internal/app"
	"github.com/claude/dianafit/internal/config"
	"github.com/claude/dianafit/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (optional)")
	serverURL := flag.String("server", "", "dianafit server URL (e.g. http://127.0.0.1:8420); reads the local data directory when empty")
	apiKey := flag.String("api-key", os.Getenv("DIANAFIT_AUTH_API_KEY"), "API key for -server")
	flag.Parse()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	var ds mcp.DataSource
	if *serverURL != "" {
		ds = mcp.NewHTTPClient(*serverURL, *apiKey)
		log.Info("dianafit-mcp using remote API", "server", *serverURL)
	} else {
		a, err := app.Open(context.Background(), cfg, log, app.Options{})
		if err != nil {
			log.Error("failed to open data", "error", err)
			os.Exit(1)
		}
		defer a.Close()
		ds = mcp.Local{T: a.Tracker}
		log.Info("dianafit-mcp using local data", "driver", cfg.Storage.Driver)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server stopped", "error", err)
	}
}
