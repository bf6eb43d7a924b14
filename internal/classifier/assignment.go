package classifier

import (
	"regexp"
	"strings"
)

// Assignment is one NAME=value or NAME: value pair found in a snippet.
type Assignment struct {
	Name  string
	Value string

	// Start and End are byte offsets of the whole pair in the snippet.
	Start int
	End   int
}

// Expr returns the assignment as NAME=value.
func (a Assignment) Expr() string {
	return a.Name + "=" + a.Value
}

var assignmentRe = regexp.MustCompile(
	`([A-Za-z_$][A-Za-z0-9_.\-\[\]'"]*?)["']?\s*(?::=|=>|=|:)\s*(?:"([^"\n]*)"|'([^'\n]*)'|([^\s"',;)}\]]*))`)

// secretWords mark an assignment name as credential-bearing.
var secretWords = []string{
	"pass", "pwd", "secret", "token", "key", "auth", "cred", "private",
	"contraseña", "passwort", "senha", "mot_de_passe", "пароль", "密码", "パスワード",
}

// Assignments returns the assignment pairs in snippet, in order.
// Comparisons (==, ===) and URL schemes (https://) are not assignments.
func Assignments(snippet string) []Assignment {
	var out []Assignment
	for _, m := range assignmentRe.FindAllStringSubmatchIndex(snippet, -1) {
		name := strings.Trim(snippet[m[2]:m[3]], `"'[]`)
		value := ""
		for g := 2; g <= 4; g++ {
			if m[2*g] >= 0 {
				value = snippet[m[2*g]:m[2*g+1]]
				break
			}
		}
		if name == "" || strings.HasPrefix(value, "=") || strings.HasPrefix(value, "//") {
			continue
		}
		out = append(out, Assignment{Name: name, Value: value, Start: m[0], End: m[1]})
	}
	return out
}

// IsSecretName reports whether an assignment name suggests a credential.
func IsSecretName(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range secretWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
