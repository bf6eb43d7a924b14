package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	classifyPath string
	classifyJSON bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <phrase>",
	Short: "Explain how a snippet is classified",
	Long: `Classifies a phrase the way scan classifies snippets. Every credential
assignment in the phrase (api_key = "...") is reported on its own with its
value entropy, shape and verdict.

  gitsleuth classify 'AWS_SECRET_ACCESS_KEY="wJalrXUtnFEMI/K7MDENG/bPxRfiCY"' --path .env`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyPath, "path", "", "file path the phrase came from")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	results := a.Classifier.Analyze(strings.Join(args, " "), classifyPath)

	out := cmd.OutOrStdout()
	if classifyJSON {
		return writeJSON(out, results)
	}

	st := newStyles(out)
	fmt.Fprintf(out, "Scorer: %s\n\n", a.Classifier.Scorer().Name())
	for _, r := range results {
		c := r.Classification
		label := r.Indicator
		if label == "" {
			label = "(phrase)"
		}
		fmt.Fprintf(out, "[%s] %s\n", st.verdict(c.Verdict), label)
		fmt.Fprintf(out, "      value:   %s\n", truncate(r.Value, 80))
		fmt.Fprintf(out, "      entropy: %.2f (value %.2f)\n", c.Entropy, r.ValueEntropy)
		if r.Shape != "" {
			fmt.Fprintf(out, "      shape:   %s\n", r.Shape)
		}
		fmt.Fprintf(out, "      score:   %.3f\n", c.Score)
		if c.Reason != "" {
			fmt.Fprintf(out, "      reason:  %s\n", c.Reason)
		}
		if c.RuleID != "" {
			fmt.Fprintf(out, "      rule:    %s\n", c.RuleID)
		}
	}
	return nil
}
