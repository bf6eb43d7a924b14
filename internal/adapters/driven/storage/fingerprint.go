// Package storage holds helpers shared by the finding store implementations.
package storage

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// Fingerprint identifies a finding within its run: the same snippet at the
// same location is stored once even if several queries surface it.
func Fingerprint(f domain.Finding) string {
	d := xxhash.New()
	for _, part := range []string{f.RunID, f.Repository, f.Path, f.Snippet} {
		_, _ = d.WriteString(part)
		_, _ = d.Write([]byte{0})
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
