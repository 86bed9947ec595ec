package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/fiuba-lse/consulta"
	"github.com/fiuba-lse/consulta/ingest"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	force := flag.Bool("force", false, "Ignore content hashes and reprocess every document")
	doc := flag.String("doc", "", "Restrict the run to a single document (by stem)")
	skipGraph := flag.Bool("skip-graph", false, "Skip the entity/relation graph rebuild")
	pdfDir := flag.String("pdf-dir", "", "Override the configured raw document directory")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := consulta.LoadFile(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	rawDir := cfg.RawDir
	if *pdfDir != "" {
		rawDir = *pdfDir
	}

	engine, err := consulta.New(cfg)
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	res, err := engine.Ingest(context.Background(), rawDir, ingest.Options{
		Force:       *force,
		Doc:         *doc,
		SkipGraph:   *skipGraph,
		Concurrency: cfg.IngestConcurrency,
	})
	if err != nil {
		slog.Error("ingest run failed", "error", err)
		os.Exit(1)
	}

	failed := 0
	for _, f := range res.Files {
		if f.Err != nil {
			failed++
			slog.Error("document failed", "document", f.Name, "error", f.Err)
			continue
		}
		if f.Skipped {
			slog.Info("document unchanged, skipped", "document", f.Name)
			continue
		}
		slog.Info("document processed", "document", f.Name, "stage", f.Stage)
	}

	slog.Info("ingest complete",
		"files", len(res.Files),
		"failed", failed,
		"chunks", res.ChunkCount,
		"graph_nodes", res.GraphNodes,
	)
	if res.GraphErr != nil {
		slog.Warn("graph rebuild reported an error", "error", res.GraphErr)
	}

	if len(res.Files) == 0 || failed == len(res.Files) {
		os.Exit(1)
	}
}
