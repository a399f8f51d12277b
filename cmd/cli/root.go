package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/himanishpuri/SimilarityRater/internal/config"
	"github.com/himanishpuri/SimilarityRater/pkg/logger"
	"github.com/himanishpuri/SimilarityRater/pkg/models"
	"github.com/himanishpuri/SimilarityRater/pkg/rater"
	"github.com/himanishpuri/SimilarityRater/pkg/utils"
	"github.com/spf13/cobra"
)

// cliContext carries settings shared by every subcommand.
type cliContext struct {
	cfg    config.Config
	cfgErr error
	log    rater.Logger
}

func newRootCommand() *cobra.Command {
	cfg, cfgErr := config.Load()
	ctx := &cliContext{cfg: cfg, cfgErr: cfgErr, log: logger.GetLogger()}

	rootCmd := &cobra.Command{
		Use:           "similarity-rater",
		Short:         "Rate how similar pairs of audio clips sound",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if ctx.cfgErr != nil {
				return ctx.cfgErr
			}
			if level, ok := logger.ParseLevel(ctx.cfg.LogLevel); ok {
				logger.SetLevel(level)
			}
			return ctx.cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.cfg.DBPath, "db", cfg.DBPath, "Path to SQLite checkpoint database")
	flags.Float64Var(&ctx.cfg.MinScore, "min", cfg.MinScore, "Lowest accepted similarity score")
	flags.Float64Var(&ctx.cfg.MaxScore, "max", cfg.MaxScore, "Highest accepted similarity score")
	flags.Uint64Var(&ctx.cfg.Seed, "seed", cfg.Seed, "Shuffle seed (0 for random)")

	rootCmd.AddCommand(newRateCommand(ctx))
	rootCmd.AddCommand(newPairsCommand(ctx))
	rootCmd.AddCommand(newProgressCommand(ctx))
	rootCmd.AddCommand(newSessionsCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))

	return rootCmd
}

// sessionOptions returns the rater options implied by the flags.
func (c *cliContext) sessionOptions() []rater.Option {
	opts := []rater.Option{
		rater.WithScoreRange(c.cfg.MinScore, c.cfg.MaxScore),
		rater.WithLogger(c.log),
	}
	if c.cfg.Seed != 0 {
		opts = append(opts, rater.WithSeed(c.cfg.Seed))
	}
	return opts
}

func (c *cliContext) openStore() (rater.Store, error) {
	if c.cfg.DBPath == "" {
		return nil, fmt.Errorf("--db (or RATER_DB_PATH) is required")
	}
	return rater.NewSQLiteStore(c.cfg.DBPath)
}

// loadItems returns the names of the WAV files directly inside dir.
func loadItems(dir string) ([]string, error) {
	files, err := utils.ListFilesByExt(dir, ".wav")
	if err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	return names, nil
}

func loadPrior(path string) ([]models.Judgment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return rater.DecodeJudgments(f)
}
