package main

import (
	"fmt"
	"strconv"

	"github.com/himanishpuri/SimilarityRater/pkg/models"
	"github.com/himanishpuri/SimilarityRater/pkg/rater"
	"github.com/spf13/cobra"
)

// buildQueue loads items and an optional prior file into a fresh queue.
func (c *cliContext) buildQueue(dir, priorPath string) (rater.Queue, error) {
	items, err := loadItems(dir)
	if err != nil {
		return rater.Queue{}, err
	}

	var prior []models.Judgment
	if priorPath != "" {
		if prior, err = loadPrior(priorPath); err != nil {
			return rater.Queue{}, err
		}
	}

	return rater.NewBuilder(c.sessionOptions()...).Build(items, prior)
}

func newPairsCommand(ctx *cliContext) *cobra.Command {
	var priorPath string

	cmd := &cobra.Command{
		Use:   "pairs <dir>",
		Short: "List the pairs that still need a score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := ctx.buildQueue(args[0], priorPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(q.Pairs) == 0 {
				fmt.Fprintln(out, "🎉 Nothing left to rate.")
				return nil
			}

			rows := make([][]string, len(q.Pairs))
			for i, p := range q.Pairs {
				rows[i] = []string{strconv.Itoa(i + 1), p.A, p.B}
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Song A", "Song B"}, rows, []columnAlignment{alignRight}))
			fmt.Fprintf(out, "%d of %d pairs remaining\n", len(q.Pairs), q.Total())
			return nil
		},
	}

	cmd.Flags().StringVar(&priorPath, "prior", "", "Earlier judgment file; judged pairs are left out")
	return cmd
}

func newProgressCommand(ctx *cliContext) *cobra.Command {
	var priorPath string

	cmd := &cobra.Command{
		Use:   "progress <dir>",
		Short: "Show how many pairs of a directory have been judged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := ctx.buildQueue(args[0], priorPath)
			if err != nil {
				return err
			}

			p := models.Progress{Judged: q.Total() - len(q.Pairs), Total: q.Total()}
			fmt.Fprintf(cmd.OutOrStdout(), "📊 %d/%d pairs judged (%.0f%%)\n", p.Judged, p.Total, 100*p.Fraction())
			return nil
		},
	}

	cmd.Flags().StringVar(&priorPath, "prior", ctx.cfg.ExportFile, "Judgment file to measure")
	return cmd
}

func newSessionsCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List checkpointed sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListSessions()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No sessions found.")
				return nil
			}

			rows := make([][]string, len(records))
			for i, r := range records {
				total := rater.PairCount(r.ItemCount)
				rows[i] = []string{
					r.ID,
					strconv.Itoa(r.ItemCount),
					fmt.Sprintf("%d/%d", r.JudgmentCount, total),
					r.UpdatedAt.Format("2006-01-02 15:04"),
				}
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Session", "Items", "Judged", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newExportCommand(ctx *cliContext) *cobra.Command {
	var sessionID, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a checkpointed session as a judgment file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				return fmt.Errorf("--session is required")
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			js, err := store.LoadJudgments(sessionID)
			if err != nil {
				return err
			}

			exp, err := openExport(outPath)
			if err != nil {
				return err
			}
			defer exp.Close()

			if err := exp.Write(js); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Exported %d judgments to %s\n", len(js), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to export")
	cmd.Flags().StringVarP(&outPath, "out", "o", ctx.cfg.ExportFile, "Output file")
	return cmd
}
