package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// Environment variables read by CredentialsFromEnv.
const (
	EnvTokens     = "GITHUB_TOKENS"
	EnvOAuthToken = "GITHUB_OAUTH_TOKEN"
	EnvToken      = "GITHUB_TOKEN"
)

// ParseTokens splits a comma- or newline-separated token list. Entries may
// be bare tokens or name=token pairs; bare tokens are named token-N by
// position. Blank entries and repeated tokens are skipped.
func ParseTokens(raw ...string) []domain.Credential {
	var out []domain.Credential
	seen := make(map[string]bool)
	for _, chunk := range raw {
		fields := strings.FieldsFunc(chunk, func(r rune) bool {
			return r == ',' || r == '\n' || r == '\r'
		})
		for _, f := range fields {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			name, token, ok := strings.Cut(f, "=")
			if !ok {
				name, token = "", f
			}
			name, token = strings.TrimSpace(name), strings.TrimSpace(token)
			if token == "" || seen[token] {
				continue
			}
			seen[token] = true
			if name == "" {
				name = fmt.Sprintf("token-%d", len(out)+1)
			}
			out = append(out, domain.Credential{Name: name, Token: token})
		}
	}
	return out
}

// CredentialsFromEnv reads GITHUB_TOKENS, then GITHUB_OAUTH_TOKEN, then
// GITHUB_TOKEN.
func CredentialsFromEnv() []domain.Credential {
	return ParseTokens(os.Getenv(EnvTokens), os.Getenv(EnvOAuthToken), os.Getenv(EnvToken))
}
