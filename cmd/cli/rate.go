package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/himanishpuri/SimilarityRater/pkg/models"
	"github.com/himanishpuri/SimilarityRater/pkg/rater"
	"github.com/himanishpuri/SimilarityRater/pkg/rater/audio"
	"github.com/spf13/cobra"
)

func newRateCommand(ctx *cliContext) *cobra.Command {
	var priorPath, outPath, sessionID string

	cmd := &cobra.Command{
		Use:   "rate <dir>",
		Short: "Interactively score every pair of WAV files in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			printBanner(out)

			dir := args[0]
			items, err := loadItems(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "📁 Found %d WAV files in %s\n", len(items), dir)

			exp, err := openExport(outPath)
			if err != nil {
				return err
			}
			defer exp.Close()

			var store rater.Store
			if ctx.cfg.DBPath != "" {
				if store, err = ctx.openStore(); err != nil {
					return err
				}
				defer store.Close()
			}

			sess, err := ctx.openSession(out, store, items, priorPath, outPath, sessionID)
			if err != nil {
				return err
			}

			save := func() error { return exp.Write(sess.Judgments()) }
			if err := save(); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}

			loop := &ratingLoop{
				sess:  sess,
				items: items,
				infos: probeItems(dir, items),
				in:    bufio.NewReader(cmd.InOrStdin()),
				out:   out,
				save:  save,
			}
			if err := loop.run(); err != nil {
				return err
			}

			p := sess.Progress()
			fmt.Fprintf(out, "\n💾 %d judgments saved to %s (%d/%d pairs)\n", len(sess.Judgments()), outPath, p.Judged, p.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&priorPath, "prior", "", "Earlier judgment file to resume from (defaults to --out when it exists)")
	cmd.Flags().StringVarP(&outPath, "out", "o", ctx.cfg.ExportFile, "Where to write judgments")
	cmd.Flags().StringVar(&sessionID, "session", "", "Checkpoint session to resume (requires --db)")
	return cmd
}

// openSession builds the session for rate: resumed from a checkpoint when
// --session is given, otherwise loaded from the prior file if any.
func (c *cliContext) openSession(out io.Writer, store rater.Store, items []string, priorPath, outPath, sessionID string) (*rater.Session, error) {
	opts := c.sessionOptions()
	if store != nil {
		opts = append(opts, rater.WithStore(store))
	}

	if sessionID != "" {
		if store == nil {
			return nil, errors.New("--session requires --db")
		}
		sess, snap, err := rater.Resume(store, sessionID, items, opts...)
		if err != nil && !errors.Is(err, rater.ErrTooFewItems) {
			return nil, err
		}
		fmt.Fprintf(out, "📂 Resumed session %s (%d/%d judged)\n", sess.ID(), snap.Progress.Judged, snap.Progress.Total)
		return sess, nil
	}

	if priorPath == "" {
		if _, err := os.Stat(outPath); err == nil {
			priorPath = outPath
		}
	}

	var prior []models.Judgment
	if priorPath != "" {
		var err error
		prior, err = loadPrior(priorPath)
		if err != nil {
			if filepath.Clean(priorPath) == filepath.Clean(outPath) {
				return nil, fmt.Errorf("%s cannot be loaded and would be overwritten: %w", outPath, err)
			}
			fmt.Fprintf(out, "⚠️  Could not load previous ratings: %v\n", err)
			fmt.Fprintln(out, "   Starting with every pair.")
			prior = nil
		} else {
			fmt.Fprintf(out, "📂 Loaded %d previous judgments from %s\n", len(prior), priorPath)
		}
	}

	sess := rater.NewSession(opts...)
	if _, err := sess.Load(items, prior); err != nil && !errors.Is(err, rater.ErrTooFewItems) {
		return nil, err
	}
	if store != nil {
		fmt.Fprintf(out, "🗄️  Checkpoint session: %s\n", sess.ID())
	}
	return sess, nil
}

func probeItems(dir string, items []string) map[string]audio.Info {
	infos := make(map[string]audio.Info, len(items))
	for _, name := range items {
		if info, _ := audio.ProbeFile(filepath.Join(dir, name)); info != nil {
			infos[name] = *info
		}
	}
	return infos
}

// ratingLoop reads one command per line: a score, "s" to save, "q" to
// quit, or "reset" twice to discard everything.
type ratingLoop struct {
	sess  *rater.Session
	items []string
	infos map[string]audio.Info
	in    *bufio.Reader
	out   io.Writer
	save  func() error
}

func (l *ratingLoop) run() error {
	if l.sess.State() == rater.StateEmpty {
		fmt.Fprintln(l.out, "⚠️  Need at least two WAV files to rate.")
		return nil
	}

	lo, hi := l.sess.Snapshot().MinScore, l.sess.Snapshot().MaxScore
	for {
		pair, ok := l.sess.Current()
		if !ok {
			fmt.Fprintln(l.out, "\n🎉 All pairs rated!")
			return nil
		}

		p := l.sess.Progress()
		fmt.Fprintf(l.out, "\n[%d/%d] %s  vs  %s\n", p.Judged+1, p.Total, l.describe(pair.A), l.describe(pair.B))
		fmt.Fprintf(l.out, "Score %g-%g (s=save, q=quit, reset): ", lo, hi)

		line, err := l.in.ReadString('\n')
		input := strings.TrimSpace(line)
		if err != nil && input == "" {
			if errors.Is(err, io.EOF) {
				return l.save()
			}
			return err
		}

		switch strings.ToLower(input) {
		case "":
			l.sess.CancelReset()
		case "q", "quit":
			return l.save()
		case "s", "save":
			l.sess.CancelReset()
			if err := l.save(); err != nil {
				return err
			}
			fmt.Fprintln(l.out, "💾 Saved")
		case "reset":
			if err := l.reset(); err != nil {
				return err
			}
		default:
			l.score(input)
		}
	}
}

func (l *ratingLoop) score(input string) {
	score, err := strconv.ParseFloat(input, 64)
	if err != nil {
		l.sess.CancelReset()
		fmt.Fprintf(l.out, "❌ %q is not a number\n", input)
		return
	}

	j, _, err := l.sess.Submit(score)
	if err != nil {
		fmt.Fprintf(l.out, "❌ %v\n", err)
		return
	}
	if err := l.save(); err != nil {
		fmt.Fprintf(l.out, "❌ Failed to save: %v\n", err)
		return
	}
	fmt.Fprintf(l.out, "✅ %s vs %s = %g\n", j.SongA, j.SongB, j.Score)
}

func (l *ratingLoop) reset() error {
	if !l.sess.Snapshot().ResetArmed {
		snap := l.sess.RequestReset()
		fmt.Fprintf(l.out, "⚠️  This discards %d judgments. Type reset again to confirm.\n", snap.Judgments)
		return nil
	}

	if _, err := l.sess.ConfirmReset(); err != nil {
		return err
	}
	if _, err := l.sess.Load(l.items, nil); err != nil {
		return err
	}
	fmt.Fprintln(l.out, "🔄 All judgments discarded, starting over")
	return l.save()
}

func (l *ratingLoop) describe(name string) string {
	info, ok := l.infos[name]
	if !ok || info.DurationMs <= 0 {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, audio.FormatDuration(info.DurationMs))
}
