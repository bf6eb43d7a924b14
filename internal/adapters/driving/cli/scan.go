package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gitsleuth-cli/internal/catalog"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gitsleuth-cli/internal/logger"
)

var (
	scanCategories  []string
	scanQueries     []string
	scanTimeout     time.Duration
	scanIdleTimeout time.Duration
	scanAbandonIdle bool
	scanConcurrency int
	scanRadius      int
	scanJSON        bool
	scanWatch       bool
	scanShowAll     bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [seed]",
	Short: "Search GitHub code for leaked secrets",
	Long: `Runs the query catalog against GitHub code search and classifies every
snippet around a match.

The seed is a domain or keyword every query is scoped to, e.g. acme.com.
Without --category the whole catalog runs; --query adds custom queries
(alone they replace the catalog). Findings are printed as they are found;
false positives are hidden unless --all is given.

Press Ctrl+C to stop early; findings so far are kept and recorded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	flags := scanCmd.Flags()
	flags.StringSliceVarP(&scanCategories, "category", "c", nil, "only run these categories (see 'gitsleuth queries --categories')")
	flags.StringArrayVar(&scanQueries, "query", nil, "add a custom query (repeatable)")
	flags.DurationVar(&scanTimeout, "timeout", 0, "stop the run after this long (default from config)")
	flags.DurationVar(&scanIdleTimeout, "idle-timeout", 0, "how long a run may go without a new finding")
	flags.BoolVar(&scanAbandonIdle, "abandon-on-idle", false, "end the run once the idle timeout passes")
	flags.IntVar(&scanConcurrency, "concurrency", 0, "parallel credential streams (default from config)")
	flags.IntVar(&scanRadius, "radius", 0, "characters kept either side of a match")
	flags.BoolVar(&scanJSON, "json", false, "output the report as JSON")
	flags.BoolVar(&scanWatch, "watch-config", false, "reload ignore rules when the config file changes")
	flags.BoolVar(&scanShowAll, "all", false, "also print false positives")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	seed := ""
	if len(args) > 0 {
		seed = args[0]
	}
	cat, err := catalog.Compose(seed, scanCategories, scanQueries...)
	if err != nil {
		return err
	}

	req := a.Engine.Request(cat)
	applyScanFlags(cmd, &req.Settings)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if scanWatch {
		stopWatch := watchIgnoreRules(ctx, a)
		defer stopWatch()
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)

	var handle driving.FindingHandler
	if !scanJSON {
		fmt.Fprintf(out, "Running %d queries", cat.Len())
		if cat.Seed != "" {
			fmt.Fprintf(out, " for %q", cat.Seed)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out)
		handle = func(f domain.Finding) {
			if f.Verdict == domain.VerdictFalsePositive && !scanShowAll {
				return
			}
			printFinding(out, st, f)
		}
	}

	report, err := a.Engine.Scan(ctx, req, handle)
	if report == nil {
		return err
	}

	// The scan finished even if recording failed; show the report first.
	if scanJSON {
		if jerr := writeJSON(out, report); jerr != nil {
			return jerr
		}
		return err
	}
	if perr := printScanSummary(out, st, report); perr != nil {
		return perr
	}
	return err
}

func applyScanFlags(cmd *cobra.Command, s *domain.ScanSettings) {
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		s.Timeout = scanTimeout
	}
	if flags.Changed("idle-timeout") {
		s.IdleTimeout = scanIdleTimeout
	}
	if flags.Changed("abandon-on-idle") {
		s.AbandonOnIdle = scanAbandonIdle
	}
	if flags.Changed("concurrency") {
		s.Concurrency = scanConcurrency
	}
	if flags.Changed("radius") {
		s.WindowRadius = scanRadius
	}
}

// watchIgnoreRules reloads the ignore rules into the running scan whenever
// the config file changes. The returned function stops watching.
func watchIgnoreRules(ctx context.Context, a *App) func() {
	if a.WatchConfig == nil {
		logger.Warn("--watch-config ignored: config is not file-backed")
		return func() {}
	}

	w, err := a.WatchConfig(func() {
		if err := a.Settings.Reload(); err != nil {
			logger.Warn("Config reload failed: %v", err)
			return
		}
		rules := a.Settings.IgnoreRules()
		if err := a.Engine.Scanner.UpdateIgnoreRules(rules); err != nil {
			logger.Warn("Ignore rules not applied: %v", err)
			return
		}
		logger.Info("Ignore rules reloaded from %s", a.Settings.Path())
	})
	if err != nil {
		logger.Warn("Cannot watch config: %v", err)
		return func() {}
	}

	go w.Run(ctx)
	return func() {
		if err := w.Close(); err != nil {
			logger.Debug("Closing config watcher: %v", err)
		}
	}
}

func printFinding(w io.Writer, st styles, f domain.Finding) {
	fmt.Fprintf(w, "[%s] %s/%s  entropy=%.2f score=%.2f", st.verdict(f.Verdict), f.Repository, f.Path, f.Entropy, f.Score)
	if f.RuleID != "" {
		fmt.Fprintf(w, " rule=%s", f.RuleID)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "      %s\n", f.Snippet)
	fmt.Fprintf(w, "      %s\n", st.faint.Render(f.URL))
}

func printScanSummary(w io.Writer, st styles, report *domain.ScanReport) error {
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.heading.Render("Queries"))

	rows := make([][]string, 0, len(report.Queries))
	for _, q := range report.Queries {
		status := string(q.Status)
		if q.Error != "" {
			status += ": " + truncate(q.Error, 40)
		}
		rows = append(rows, []string{
			q.Query.Category.String(),
			truncate(q.Query.Query, 60),
			status,
			strconv.Itoa(q.Items),
			strconv.Itoa(q.Ignored),
			strconv.Itoa(q.Findings),
		})
	}
	if err := renderTable(w, []string{"Category", "Query", "Status", "Items", "Ignored", "Findings"}, rows); err != nil {
		return err
	}

	state := string(report.State)
	if report.IdleAbandoned {
		state += " (no new findings)"
	}
	fmt.Fprintf(w, "\nRun %s %s after %s: %d/%d queries attempted\n",
		report.RunID, state, report.Duration().Round(time.Second), report.Attempted(), len(report.Queries))
	fmt.Fprintf(w, "%s %d  %s %d  %s %d\n",
		st.verdict(domain.VerdictTruePositive), report.CountByVerdict(domain.VerdictTruePositive),
		st.verdict(domain.VerdictLowConfidence), report.CountByVerdict(domain.VerdictLowConfidence),
		st.verdict(domain.VerdictFalsePositive), report.CountByVerdict(domain.VerdictFalsePositive))
	return nil
}
