// Package domain defines the core business entities for GitSleuth.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Credential: A named GitHub access token
//   - SearchQuery / Catalog: The ordered set of code-search queries
//   - SearchResultItem / SearchOutcome: What the code-search API returned
//   - Snippet / FeatureVector / Classification: Evidence and its verdict
//   - Finding / ScanReport: What a run produced
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
