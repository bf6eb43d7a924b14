// Command gitsleuth searches GitHub code for leaked organisational secrets.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/gitsleuth-cli/internal/adapters/driven/auth"
	"github.com/custodia-labs/gitsleuth-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/gitsleuth-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/gitsleuth-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/gitsleuth-cli/internal/classifier"
	"github.com/custodia-labs/gitsleuth-cli/internal/connectors/github"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/services"
	"github.com/custodia-labs/gitsleuth-cli/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap wires the adapters into an App.
func bootstrap(opts cli.Options) (*cli.App, error) {
	var (
		configStore *file.ConfigStore
		err         error
	)
	if opts.ConfigPath != "" {
		configStore, err = file.OpenConfigStore(opts.ConfigPath)
	} else {
		configStore, err = file.NewConfigStore("")
	}
	if err != nil {
		return nil, err
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	creds := mergeCredentials(
		auth.CredentialsFromEnv(),
		auth.ParseTokens(settings.GitHub.Tokens...),
		auth.ParseTokens(opts.Tokens...),
	)
	logger.Debug("Loaded %d GitHub credential(s)", len(creds))

	factory := github.NewFactory(github.Config{
		BaseURL:    settings.GitHub.BaseURL,
		SearchRate: settings.GitHub.SearchRate,
	})

	cls, err := newClassifier(settings.Classifier)
	if err != nil {
		return nil, err
	}

	cfg := services.EngineConfig{
		Settings:   *settings,
		Pool:       auth.NewPool(creds...),
		Clients:    factory,
		Classifier: cls,
	}

	var store *sqlite.Store
	if !opts.NoStore {
		dir := opts.DBPath
		if dir == "" {
			dir = settings.StoragePath
		}
		store, err = sqlite.NewStore(dir)
		if err != nil {
			return nil, err
		}
		cfg.Store = store.FindingStore()
	}

	engine, err := services.NewEngine(cfg)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	a := &cli.App{
		Engine:     engine,
		Settings:   settingsService,
		Classifier: cls,
		WatchConfig: func(onChange func()) (cli.ConfigWatcher, error) {
			w, err := file.NewWatcher(configStore.Path(), 0, onChange)
			if err != nil {
				return nil, err
			}
			return w, nil
		},
	}
	if store != nil {
		a.Close = store.Close
	}
	return a, nil
}

func newClassifier(cs domain.ClassifierSettings) (*classifier.Classifier, error) {
	scorer, err := classifier.LoadScorer(cs.ModelPath, cs.Thresholds)
	if err != nil {
		if !errors.Is(err, domain.ErrClassificationDegraded) {
			return nil, err
		}
		logger.Warn("Using the entropy threshold: %v", err)
	}

	opts := []classifier.Option{
		classifier.WithScorer(scorer),
		classifier.WithAllowList(cs.AllowList...),
	}
	if cs.Gitleaks {
		screen, err := classifier.NewGitleaksScreen()
		if err != nil {
			return nil, fmt.Errorf("loading gitleaks rules: %w", err)
		}
		opts = append(opts, classifier.WithSecretScreen(screen))
	}
	return classifier.New(cs.Thresholds, opts...)
}

// mergeCredentials concatenates credential lists, keeping the first
// occurrence of each token.
func mergeCredentials(lists ...[]domain.Credential) []domain.Credential {
	seen := make(map[string]bool)
	var out []domain.Credential
	for _, list := range lists {
		for _, c := range list {
			if seen[c.Token] {
				continue
			}
			seen[c.Token] = true
			out = append(out, c)
		}
	}
	return out
}
