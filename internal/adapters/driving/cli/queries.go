package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gitsleuth-cli/internal/catalog"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

var (
	queriesCategories     []string
	queriesCustom         []string
	queriesJSON           bool
	queriesListCategories bool
)

var queriesCmd = &cobra.Command{
	Use:   "queries [seed]",
	Short: "Print the query catalog",
	Long: `Prints the code-search queries a scan would run, grouped by category,
without contacting GitHub.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQueries,
}

func init() {
	flags := queriesCmd.Flags()
	flags.StringSliceVarP(&queriesCategories, "category", "c", nil, "only these categories")
	flags.StringArrayVar(&queriesCustom, "query", nil, "add a custom query (repeatable)")
	flags.BoolVar(&queriesJSON, "json", false, "output as JSON")
	flags.BoolVar(&queriesListCategories, "categories", false, "list category names only")
	rootCmd.AddCommand(queriesCmd)
}

func runQueries(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if queriesListCategories {
		for _, c := range domain.AllCategories() {
			fmt.Fprintf(out, "%-16s %s\n", c, c.Title())
		}
		return nil
	}

	seed := ""
	if len(args) > 0 {
		seed = args[0]
	}
	cat, err := catalog.Compose(seed, queriesCategories, queriesCustom...)
	if err != nil {
		return err
	}

	if queriesJSON {
		return writeJSON(out, cat.Queries())
	}

	st := newStyles(out)
	for _, group := range cat.Groups {
		fmt.Fprintln(out, st.heading.Render(fmt.Sprintf("%s (%d)", group.Category.Title(), len(group.Queries))))
		for _, q := range group.Queries {
			fmt.Fprintf(out, "  %s\n", q.Query)
			if q.Description != "" {
				fmt.Fprintf(out, "      %s\n", st.faint.Render(q.Description))
			}
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%d queries\n", cat.Len())
	return nil
}
