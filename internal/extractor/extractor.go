// Package extractor pulls the text around query terms out of file content.
package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// qualifiers are search-syntax prefixes that never appear in file content.
var qualifiers = map[string]bool{
	"filename":  true,
	"extension": true,
	"language":  true,
	"path":      true,
	"repo":      true,
	"org":       true,
	"user":      true,
	"in":        true,
	"size":      true,
	"fork":      true,
	"is":        true,
	"symbol":    true,
	"content":   true,
}

// Terms returns the literal terms of a search query, in query order and
// without duplicates. Qualifier tokens, boolean operators and the term
// following NOT are dropped; quoted phrases are kept whole.
func Terms(query string) []string {
	tokens := tokenize(query)
	seen := make(map[string]bool, len(tokens))
	var terms []string

	skipNext := false
	for _, tok := range tokens {
		if skipNext {
			skipNext = false
			continue
		}
		if !tok.quoted {
			switch strings.Trim(tok.text, "()") {
			case "AND", "OR":
				continue
			case "NOT":
				skipNext = true
				continue
			}
			if isQualifier(tok.text) {
				continue
			}
		}
		text := strings.Trim(tok.text, "()")
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		terms = append(terms, text)
	}
	return terms
}

type token struct {
	text   string
	quoted bool
}

func tokenize(query string) []token {
	var (
		tokens []token
		buf    strings.Builder
		quoted bool
	)
	flush := func(wasQuoted bool) {
		if buf.Len() > 0 || wasQuoted {
			tokens = append(tokens, token{text: buf.String(), quoted: wasQuoted})
		}
		buf.Reset()
	}
	for _, r := range query {
		switch {
		case r == '"':
			if quoted {
				flush(true)
			} else {
				flush(false)
			}
			quoted = !quoted
		case !quoted && (r == ' ' || r == '\t' || r == '\n'):
			flush(false)
		default:
			buf.WriteRune(r)
		}
	}
	flush(quoted)
	return tokens
}

func isQualifier(tok string) bool {
	tok = strings.TrimLeft(tok, "(-")
	key, _, ok := strings.Cut(tok, ":")
	return ok && qualifiers[strings.ToLower(key)]
}

// Extract returns the deduplicated snippets of content around every
// case-insensitive occurrence of every term in query. Each snippet holds
// at most radius characters either side of its match, with newlines
// collapsed to spaces and surrounding whitespace trimmed. Snippets keep
// the order in which they were first produced.
func Extract(content, query string, radius int) []domain.Snippet {
	if content == "" {
		return nil
	}
	if radius < 0 {
		radius = 0
	}
	content = strings.ToValidUTF8(content, "�")

	seen := make(map[string]struct{})
	var out []domain.Snippet
	for _, term := range Terms(query) {
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
		for _, loc := range re.FindAllStringIndex(content, -1) {
			start := back(content, loc[0], radius)
			end := forward(content, loc[1], radius)
			text := flatten(content[start:end])
			if text == "" {
				continue
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			out = append(out, domain.Snippet{Text: text, Term: term, Offset: loc[0]})
		}
	}
	return out
}

// back moves i left by up to n runes.
func back(s string, i, n int) int {
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return i
}

// forward moves i right by up to n runes.
func forward(s string, i, n int) int {
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func flatten(s string) string {
	return strings.TrimSpace(newlines.Replace(s))
}
