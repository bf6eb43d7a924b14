package classifier

import (
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

var (
	configExts = map[string]bool{
		".env": true, ".json": true, ".yml": true, ".yaml": true, ".toml": true,
		".ini": true, ".cfg": true, ".conf": true, ".config": true, ".properties": true,
		".xml": true, ".tf": true, ".tfvars": true, ".tfstate": true, ".npmrc": true,
		".htpasswd": true, ".s3cfg": true, ".dockercfg": true, ".git-credentials": true,
		".pem": true, ".ppk": true, ".plist": true,
	}
	configNames = map[string]bool{
		"credentials": true, "config": true, "jenkinsfile": true, "dockerfile": true,
		"id_rsa": true, "id_dsa": true, "id_ed25519": true, "wp-config.php": true,
		".bash_history": true, ".mysql_history": true, ".zsh_history": true,
	}
	sourceExts = map[string]bool{
		".go": true, ".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
		".java": true, ".kt": true, ".scala": true, ".rb": true, ".php": true, ".cs": true,
		".c": true, ".h": true, ".cpp": true, ".hpp": true, ".rs": true, ".swift": true,
		".m": true, ".sh": true, ".bash": true, ".zsh": true, ".ps1": true, ".pl": true,
		".lua": true, ".r": true, ".dart": true, ".groovy": true, ".sql": true, ".vue": true,
	}
	logExts = map[string]bool{".log": true, ".out": true, ".err": true, ".trace": true}
)

// FileKindOf maps a repository path to a coarse file kind.
func FileKindOf(p string) domain.FileKind {
	if p == "" {
		return domain.FileKindOther
	}
	base := strings.ToLower(path.Base(p))
	ext := path.Ext(base)
	switch {
	case configNames[base]:
		return domain.FileKindConfig
	case strings.HasPrefix(base, ".env"):
		return domain.FileKindConfig
	case configExts[ext] || (ext == "" && configExts[base]):
		return domain.FileKindConfig
	case logExts[ext]:
		return domain.FileKindLog
	case sourceExts[ext]:
		return domain.FileKindSource
	default:
		return domain.FileKindOther
	}
}

var (
	setterRe = regexp.MustCompile(
		`(?i)\bset_?[a-z]*(?:password|passwd|secret|token|key|credential|auth)[a-z_]*\s*\(` +
			`|\.set\(\s*["'][^"']*(?:password|passwd|secret|token|key)`)
)

// Features computes the feature vector of a snippet from path.
// Ratios count runes; spaces are neither digits, letters nor specials.
func Features(snippet, path string) domain.FeatureVector {
	fv := domain.FeatureVector{FileKind: FileKindOf(path)}
	n := utf8.RuneCountInString(snippet)
	if n == 0 {
		return fv
	}

	var digits, alpha, special int
	for _, r := range snippet {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			alpha++
		case unicode.IsSpace(r):
		default:
			special++
		}
	}

	length := float64(n)
	fv.Entropy = ShannonEntropy(snippet)
	fv.Length = length
	fv.DigitRatio = float64(digits) / length
	fv.AlphaRatio = float64(alpha) / length
	fv.SpecialRatio = float64(special) / length
	fv.HasAssignment = len(Assignments(snippet)) > 0
	fv.HasSetterCall = setterRe.MatchString(snippet)
	return fv
}
