// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CredentialPool: Rotating set of access tokens
//   - ClientFactory / CodeSearchClient: Rate-limited code-search API access
//   - Scorer: Second-layer snippet scoring
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SecretScreen: Rule-based corroboration of candidate secrets
//   - FindingStore: Run and finding history. Without it findings are only printed.
//   - ConfigStore: Application configuration. Without it defaults apply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
