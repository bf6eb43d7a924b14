package driving

import "github.com/custodia-labs/gitsleuth-cli/internal/core/domain"

// SnippetClassifier decides whether a snippet likely holds a real secret.
// It never fails: malformed input is classified as a false positive.
type SnippetClassifier interface {
	Classify(snippet, path string) domain.Classification
}
