package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

var errNoHistory = errors.New("findings history is disabled (--no-store)")

var (
	findingsRun     string
	findingsVerdict string
	findingsRepo    string
	findingsLimit   int
	findingsJSON    bool

	runsLimit int
	runsJSON  bool
)

var findingsCmd = &cobra.Command{
	Use:   "findings",
	Short: "List findings from past runs",
	Args:  cobra.NoArgs,
	RunE:  runFindings,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	flags := findingsCmd.Flags()
	flags.StringVar(&findingsRun, "run", "", "only findings of this run")
	flags.StringVar(&findingsVerdict, "verdict", "", "only this verdict (tp, fp, low)")
	flags.StringVar(&findingsRepo, "repo", "", "only this repository (owner/name)")
	flags.IntVarP(&findingsLimit, "limit", "n", 50, "maximum findings to list")
	flags.BoolVar(&findingsJSON, "json", false, "output as JSON")

	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum runs to list")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(findingsCmd)
	rootCmd.AddCommand(runsCmd)
}

func runFindings(cmd *cobra.Command, _ []string) error {
	filter := domain.FindingFilter{
		RunID:      findingsRun,
		Repository: findingsRepo,
		Limit:      findingsLimit,
	}
	if findingsVerdict != "" {
		v, ok := domain.ParseVerdict(findingsVerdict)
		if !ok {
			return fmt.Errorf("%w: unknown verdict %q", domain.ErrInvalidInput, findingsVerdict)
		}
		filter.Verdict = v
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	if a.Engine.Findings == nil {
		return errNoHistory
	}

	findings, err := a.Engine.Findings.Findings(cmd.Context(), filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if findingsJSON {
		return writeJSON(out, findings)
	}
	if len(findings) == 0 {
		fmt.Fprintln(out, "No findings.")
		return nil
	}

	st := newStyles(out)
	for _, f := range findings {
		printFinding(out, st, f)
	}
	return nil
}

func runRuns(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if a.Engine.Findings == nil {
		return errNoHistory
	}

	runs, err := a.Engine.Findings.Runs(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if runsJSON {
		return writeJSON(out, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		state := string(r.State)
		if r.IdleAbandoned {
			state += " (idle)"
		}
		rows = append(rows, []string{
			r.ID,
			r.Seed,
			r.StartedAt.Local().Format(time.DateTime),
			state,
			fmt.Sprintf("%d/%d", r.Attempted, r.QueriesTotal),
			strconv.Itoa(r.FindingsCount),
		})
	}
	return renderTable(out, []string{"Run", "Seed", "Started", "State", "Queries", "Findings"}, rows)
}
