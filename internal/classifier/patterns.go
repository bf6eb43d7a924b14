package classifier

import "regexp"

var (
	envVarNameRe  = regexp.MustCompile(`^[A-Z0-9_]{8,}$`)
	base64TokenRe = regexp.MustCompile(`^[-A-Za-z0-9_+/]{16,}={0,2}$`)
	hexTokenRe    = regexp.MustCompile(`^[0-9a-fA-F]{32,}$`)
)

// Shape names the token family a value resembles.
type Shape string

// Token shapes.
const (
	ShapeNone       Shape = ""
	ShapeEnvVarName Shape = "env_var_name"
	ShapeHex        Shape = "hex"
	ShapeBase64     Shape = "base64"
)

// IsEnvVarName reports whether s looks like an environment variable name,
// e.g. DATABASE_PASSWORD.
func IsEnvVarName(s string) bool {
	return envVarNameRe.MatchString(s)
}

// ShapeOf classifies s as a hex token, a base64-style token, an
// environment variable name, or none. Hex wins over base64.
func ShapeOf(s string) Shape {
	switch {
	case hexTokenRe.MatchString(s):
		return ShapeHex
	case IsEnvVarName(s):
		return ShapeEnvVarName
	case base64TokenRe.MatchString(s):
		return ShapeBase64
	default:
		return ShapeNone
	}
}
