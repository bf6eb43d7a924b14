package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var quotaJSON bool

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show the search quota of every token",
	Args:  cobra.NoArgs,
	RunE:  runQuota,
}

func init() {
	quotaCmd.Flags().BoolVar(&quotaJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(quotaCmd)
}

type quotaRow struct {
	Credential string        `json:"credential"`
	Remaining  int           `json:"remaining"`
	Limit      int           `json:"limit,omitempty"`
	ResetIn    time.Duration `json:"reset_in"`
	Error      string        `json:"error,omitempty"`
}

func runQuota(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	quotas, err := a.Engine.Quota(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([]quotaRow, 0, len(quotas))
	for _, q := range quotas {
		r := quotaRow{
			Credential: q.Credential,
			Remaining:  q.Quota.Remaining,
			Limit:      q.Quota.Limit,
			ResetIn:    q.Quota.Wait,
		}
		if q.Err != nil {
			r.Error = q.Err.Error()
		}
		rows = append(rows, r)
	}

	out := cmd.OutOrStdout()
	if quotaJSON {
		return writeJSON(out, rows)
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		if r.Error != "" {
			cells = append(cells, []string{r.Credential, "-", "-", "-", truncate(r.Error, 60)})
			continue
		}
		cells = append(cells, []string{
			r.Credential,
			strconv.Itoa(r.Remaining),
			strconv.Itoa(r.Limit),
			r.ResetIn.Round(time.Second).String(),
			"",
		})
	}
	if err := renderTable(out, []string{"Token", "Remaining", "Limit", "Reset in", "Error"}, cells); err != nil {
		return fmt.Errorf("rendering quota: %w", err)
	}
	return nil
}
