package main

import (
	"log/slog"
	"net/http"
	"os"

	"tarjetas/internal/config"
	"tarjetas/internal/deck"
	"tarjetas/internal/gitsource"
	"tarjetas/internal/session"
	"tarjetas/internal/storage"
	"tarjetas/internal/web"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DB)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DB, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DB)

	catalog, err := buildCatalog(cfg)
	if err != nil {
		slog.Error("failed to load deck catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("deck catalog loaded", "decks", len(catalog.Decks()))

	engine := session.NewEngine(db)
	engine.Restore(catalog)

	server := web.NewServer(engine, catalog)
	slog.Info("serving web UI", "addr", cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, server); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// buildCatalog picks the deck source: a git repository, a local directory, or
// the built-in decks.
func buildCatalog(cfg config.Config) (*deck.Catalog, error) {
	if cfg.DecksRepo != "" {
		localPath, err := gitsource.LocalPath(cfg.ReposDir, cfg.DecksRepo)
		if err != nil {
			return nil, err
		}
		if err := gitsource.Sync(cfg.DecksRepo, localPath); err != nil {
			return nil, err
		}
		return deck.LoadDir(localPath)
	}
	if cfg.DecksDir != "" {
		return deck.LoadDir(cfg.DecksDir)
	}
	return deck.Builtin(), nil
}
