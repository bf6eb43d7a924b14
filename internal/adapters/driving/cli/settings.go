package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the settings stored in the config file.

Values set here are validated before they are saved; an invalid value is
rolled back.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting in the config file.

Lists are comma separated and durations use Go syntax, e.g.

  gitsleuth settings set scan.timeout 45m
  gitsleuth settings set ignore.globs "*.lock,vendor/**"

Run 'gitsleuth settings keys' for every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configurable keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, k := range services.SettingKeys() {
			cmd.Println(k)
		}
	},
}

var settingsTokenCmd = &cobra.Command{
	Use:   "add-token [name]",
	Short: "Store a GitHub token in the config file",
	Long: `Prompts for a GitHub token without echoing it and appends it to
github.tokens. The optional name labels the token in logs and quota output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsAddToken,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsTokenCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	settings, err := a.Settings.Get()
	if err != nil {
		fmt.Fprintf(out, "Warning: %v\n", err)
		fmt.Fprintln(out, "Run 'gitsleuth settings set' to fix configuration issues.")
		return nil
	}

	fmt.Fprintf(out, "Config: %s\n\n", a.Settings.Path())
	printSettings(out, settings)
	return nil
}

func printSettings(w io.Writer, s *domain.AppSettings) {
	fmt.Fprintln(w, "[GitHub]")
	if len(s.GitHub.Tokens) == 0 {
		fmt.Fprintln(w, "  Tokens: (none in config)")
	}
	for _, t := range s.GitHub.Tokens {
		name, token, found := strings.Cut(t, "=")
		if !found {
			name, token = "", t
		}
		if name != "" {
			fmt.Fprintf(w, "  Token: %s (%s)\n", maskToken(token), name)
		} else {
			fmt.Fprintf(w, "  Token: %s\n", maskToken(token))
		}
	}
	baseURL := s.GitHub.BaseURL
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	fmt.Fprintf(w, "  Base URL: %s\n", baseURL)
	fmt.Fprintf(w, "  Search rate: %.3f req/s\n", s.GitHub.SearchRate)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[Scan]")
	fmt.Fprintf(w, "  Timeout: %s\n", s.Scan.Timeout)
	fmt.Fprintf(w, "  Idle timeout: %s (abandon: %t)\n", s.Scan.IdleTimeout, s.Scan.AbandonOnIdle)
	fmt.Fprintf(w, "  Window radius: %d\n", s.Scan.WindowRadius)
	fmt.Fprintf(w, "  Concurrency: %d\n", s.Scan.Concurrency)
	fmt.Fprintf(w, "  Retry: %d attempts, fallback wait %s, max wait %s, transient %t\n",
		s.Scan.Retry.MaxAttempts, s.Scan.Retry.FallbackWait, s.Scan.Retry.MaxWait, s.Scan.Retry.RetryTransient)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[Ignore]")
	fmt.Fprintf(w, "  Patterns: %s\n", listOrNone(s.Scan.Ignore.Patterns))
	fmt.Fprintf(w, "  Globs: %s\n", listOrNone(s.Scan.Ignore.Globs))
	fmt.Fprintf(w, "  Filenames: %s\n", listOrNone(s.Scan.Ignore.Filenames))
	fmt.Fprintln(w)

	th := s.Classifier.Thresholds
	fmt.Fprintln(w, "[Classifier]")
	model := s.Classifier.ModelPath
	if model == "" {
		model = "(entropy threshold)"
	}
	fmt.Fprintf(w, "  Model: %s\n", model)
	fmt.Fprintf(w, "  Entropy threshold: %.2f\n", th.EntropyThreshold)
	fmt.Fprintf(w, "  Assignment entropy: %.2f\n", th.AssignmentEntropy)
	fmt.Fprintf(w, "  Annotation window: %d\n", th.AnnotationWindow)
	fmt.Fprintf(w, "  Filters: %s\n", enabled(!th.DisableFilters))
	fmt.Fprintf(w, "  Gitleaks rules: %s\n", enabled(s.Classifier.Gitleaks))
	fmt.Fprintf(w, "  Allow list: %s\n", listOrNone(s.Classifier.AllowList))
	fmt.Fprintln(w)

	storage := s.StoragePath
	if storage == "" {
		storage = "~/.gitsleuth/data"
	}
	fmt.Fprintln(w, "[Storage]")
	fmt.Fprintf(w, "  Path: %s\n", storage)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := a.Settings.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s updated in %s\n", args[0], a.Settings.Path())
	return nil
}

func runSettingsAddToken(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	cmd.Print("GitHub token: ")
	token := readPassword(cmd.InOrStdin())
	cmd.Println()
	if token == "" {
		return errors.New("no token entered")
	}

	entry := token
	if len(args) == 1 {
		entry = args[0] + "=" + token
	}
	if err := a.Settings.AddToken(entry); err != nil {
		return err
	}
	cmd.Printf("Token %s saved to %s\n", maskToken(token), a.Settings.Path())
	return nil
}

// readPassword reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(input)
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func enabled(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
