// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The central service is the ScanOrchestrator, which walks a query catalog
// through the code search client, the snippet extractor and the classifier.
// The Engine bundles it with its collaborators so that no configuration or
// credential state is held at package level.
package services
