package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gitsleuth-cli/internal/logger"
)

// EngineConfig lists the collaborators of an Engine.
type EngineConfig struct {
	Settings   domain.AppSettings
	Pool       driven.CredentialPool
	Clients    driven.ClientFactory
	Classifier driving.SnippetClassifier

	// Store is optional. Without it runs are not recorded.
	Store driven.FindingStore

	ScanOptions []ScanOption
}

// Engine holds everything one scanning context needs. Several engines,
// each with their own credentials and settings, can live in one process.
type Engine struct {
	Settings   domain.AppSettings
	Pool       driven.CredentialPool
	Clients    driven.ClientFactory
	Classifier driving.SnippetClassifier
	Scanner    *ScanOrchestrator

	// Findings is nil when no store is configured.
	Findings *FindingService
}

// NewEngine wires an engine from its collaborators.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Pool == nil || cfg.Clients == nil || cfg.Classifier == nil {
		return nil, fmt.Errorf("%w: engine needs a credential pool, client factory and classifier", domain.ErrConfiguration)
	}

	e := &Engine{
		Settings:   cfg.Settings,
		Pool:       cfg.Pool,
		Clients:    cfg.Clients,
		Classifier: cfg.Classifier,
		Scanner:    NewScanOrchestrator(cfg.Pool, cfg.Clients, cfg.Classifier, cfg.ScanOptions...),
	}
	if cfg.Store != nil {
		e.Findings = NewFindingService(cfg.Store)
	}
	return e, nil
}

// Request builds a scan request for the catalog using the engine's settings.
func (e *Engine) Request(cat domain.Catalog) domain.ScanRequest {
	return domain.ScanRequest{Catalog: cat, Settings: e.Settings.Scan}
}

// Scan runs the request and records the report when a store is configured.
// The report is returned even when recording fails.
func (e *Engine) Scan(ctx context.Context, req domain.ScanRequest, handle driving.FindingHandler) (*domain.ScanReport, error) {
	report, err := e.Scanner.Run(ctx, req, handle)
	if err != nil {
		return nil, err
	}

	if e.Findings != nil {
		// A cancelled scan still keeps what it found.
		if err := e.Findings.Record(context.WithoutCancel(ctx), report); err != nil {
			logger.Warn("Failed to record run %s: %v", report.RunID, err)
			return report, fmt.Errorf("record run: %w", err)
		}
	}
	return report, nil
}

// CredentialQuota is the quota of one credential, or why it could not be read.
type CredentialQuota struct {
	Credential string             `json:"credential"`
	Quota      domain.QuotaStatus `json:"quota"`
	Err        error              `json:"-"`
}

// Quota reads the remaining search quota of every credential in pool order.
func (e *Engine) Quota(ctx context.Context) ([]CredentialQuota, error) {
	creds := e.Pool.All()
	if len(creds) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrNoCredentials)
	}

	out := make([]CredentialQuota, 0, len(creds))
	for _, cred := range creds {
		q := CredentialQuota{Credential: cred.Name}
		client, err := e.Clients.ForCredential(cred)
		if err != nil {
			q.Err = err
			out = append(out, q)
			continue
		}
		q.Quota, q.Err = client.CheckQuota(ctx)
		out = append(out, q)
	}
	return out, nil
}
