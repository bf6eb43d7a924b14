// Package cli implements the gitsleuth command line with cobra.
//
// Commands operate on an App built lazily by the Bootstrap function the
// entry point registers, so commands that need neither GitHub nor storage
// (version, train) run without configuration.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gitsleuth-cli/internal/classifier"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/services"
	"github.com/custodia-labs/gitsleuth-cli/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Options carries the global flags to the bootstrap function.
type Options struct {
	// ConfigPath is the config file. Empty means ~/.gitsleuth/config.toml.
	ConfigPath string

	// Tokens are extra credentials from --token, as name=token or bare tokens.
	Tokens []string

	// DBPath is the findings database directory. Empty uses storage.path.
	DBPath string

	// NoStore disables the findings history.
	NoStore bool
}

// ConfigWatcher reports changes to the config file.
type ConfigWatcher interface {
	Run(ctx context.Context)
	Close() error
}

// App is everything the commands operate on.
type App struct {
	Engine     *services.Engine
	Settings   *services.SettingsService
	Classifier *classifier.Classifier

	// WatchConfig starts watching the config file. Nil when the config is
	// not file-backed.
	WatchConfig func(onChange func()) (ConfigWatcher, error)

	// Close releases the app's resources. May be nil.
	Close func() error
}

// Bootstrap builds the App from the global flags.
type Bootstrap func(opts Options) (*App, error)

var (
	bootstrap Bootstrap
	app       *App
)

// Global flags.
var (
	cfgFile    string
	verbose    bool
	quiet      bool
	tokenFlags []string
	dbPath     string
	noStore    bool
)

var rootCmd = &cobra.Command{
	Use:   "gitsleuth",
	Short: "Hunt for leaked secrets in public code on GitHub",
	Long: `gitsleuth searches GitHub code for credentials leaked by an organisation.

It builds a catalog of code-search queries scoped to a domain or keyword,
rotates across several GitHub tokens as rate limits hit, cuts the text around
every match and classifies it as a likely real secret or a placeholder.

Tokens are read from GITHUB_TOKENS (comma separated, name=token or bare),
GITHUB_OAUTH_TOKEN, GITHUB_TOKEN, github.tokens in the config file, and --token.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		switch {
		case quiet:
			logger.SetLevel(logger.LevelError)
		case verbose:
			logger.SetVerbose(true)
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.gitsleuth/config.toml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every query, rotation and backoff")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	flags.StringArrayVar(&tokenFlags, "token", nil, "GitHub token, as name=token or bare (repeatable)")
	flags.StringVar(&dbPath, "db", "", "findings database directory (default ~/.gitsleuth/data)")
	flags.BoolVar(&noStore, "no-store", false, "do not record runs and findings")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// SetBootstrap registers the function that builds the App.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}

// loadApp builds the App on first use.
func loadApp() (*App, error) {
	if app != nil {
		return app, nil
	}
	if bootstrap == nil {
		return nil, errors.New("application not configured")
	}

	a, err := bootstrap(Options{
		ConfigPath: cfgFile,
		Tokens:     tokenFlags,
		DBPath:     dbPath,
		NoStore:    noStore,
	})
	if err != nil {
		return nil, err
	}
	app = a
	return app, nil
}

func closeApp() {
	if app == nil || app.Close == nil {
		return
	}
	if err := app.Close(); err != nil {
		logger.Warn("Closing: %v", err)
	}
	app = nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
