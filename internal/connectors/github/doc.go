// Package github implements code search against the GitHub REST API.
//
// # Architecture
//
// The package provides the driven ports [driven.CodeSearchClient] and
// [driven.ClientFactory]:
//
//   - Client: one authenticated go-github client per credential
//   - Factory: caches clients by token and owns the shared content cache
//   - RateLimiter: proactive token bucket plus header bookkeeping
//   - Config: endpoint, throttling, pagination and cache options
//
// # Rate Limiting
//
// The code search API allows a small number of requests per minute per
// token. Two mechanisms are involved:
//
//  1. Proactive throttling: a token bucket spaces search requests at the
//     configured rate (10 per minute by default). Content fetches use a
//     separate, faster bucket.
//
//  2. Reactive reporting: 403 and 429 responses that signal an exhausted
//     quota are returned as a rate-limited outcome carrying the backoff.
//     Retry-After wins when present; otherwise the wait is the distance to
//     X-RateLimit-Reset, never negative.
//
// The client never sleeps on an exhausted quota itself. Rotating to another
// credential or backing off is decided by the scan orchestrator.
//
// # Outcomes
//
// Search results are returned as [domain.SearchOutcome]:
//
//   - OK with the result items (repository, path, blob SHA, web link)
//   - RateLimited with the suggested wait
//   - Failed with the HTTP status, or zero for transport errors
//
// Content fetches treat 404, directories and undecodable files as
// unavailable rather than failed, so the caller simply skips them.
package github
