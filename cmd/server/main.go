package main

import (
	"flag"
	"log"
	"strings"

	"github.com/himanishpuri/SimilarityRater/internal/config"
	"github.com/himanishpuri/SimilarityRater/internal/sessions"
	"github.com/himanishpuri/SimilarityRater/pkg/logger"
	"github.com/himanishpuri/SimilarityRater/pkg/rater"
)

var (
	port           int
	dbPath         string
	minScore       float64
	maxScore       float64
	seed           uint64
	maxUploadMB    int64
	allowedOrigins string
	exportFile     string
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	flag.IntVar(&port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&dbPath, "db", cfg.DBPath, "Path to SQLite checkpoint database (empty disables checkpoints)")
	flag.Float64Var(&minScore, "min", cfg.MinScore, "Lowest accepted similarity score")
	flag.Float64Var(&maxScore, "max", cfg.MaxScore, "Highest accepted similarity score")
	flag.Uint64Var(&seed, "seed", cfg.Seed, "Shuffle seed (0 for random)")
	flag.Int64Var(&maxUploadMB, "max-upload", cfg.MaxUploadMB, "Maximum upload size in MB")
	flag.StringVar(&allowedOrigins, "origins", strings.Join(cfg.AllowedOrigins, ","), "Comma-separated list of allowed CORS origins (use * for all)")
	flag.StringVar(&exportFile, "export-name", cfg.ExportFile, "File name offered for rating downloads")
	flag.Parse()

	cfg.Port, cfg.DBPath, cfg.MinScore, cfg.MaxScore = port, dbPath, minScore, maxScore
	cfg.Seed, cfg.MaxUploadMB, cfg.ExportFile = seed, maxUploadMB, exportFile
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if level, ok := logger.ParseLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	origins := []string{"*"}
	if allowedOrigins != "*" {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	var store rater.Store
	if cfg.DBPath != "" {
		store, err = rater.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open checkpoint database: %v", err)
		}
		defer store.Close()
	}

	registry := sessions.New(sessionFactory(cfg, store))

	server := NewServer(registry, &ServerConfig{
		Port:           cfg.Port,
		DBPath:         cfg.DBPath,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AllowedOrigins: origins,
		ExportFile:     cfg.ExportFile,
	})
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// sessionFactory builds each new session with the configured score range,
// seed and checkpoint store.
func sessionFactory(cfg config.Config, store rater.Store) func(id string) *rater.Session {
	return func(id string) *rater.Session {
		opts := []rater.Option{
			rater.WithSessionID(id),
			rater.WithScoreRange(cfg.MinScore, cfg.MaxScore),
		}
		if cfg.Seed != 0 {
			opts = append(opts, rater.WithSeed(cfg.Seed))
		}
		if store != nil {
			opts = append(opts, rater.WithStore(store))
		}
		return rater.NewSession(opts...)
	}
}
