package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenPattern keeps letters, digits and the characters that carry meaning in
// technology names: "c++", "c#", "node.js". Everything else is a separator.
var tokenPattern = regexp.MustCompile(`[a-z0-9+.#]+`)

// accentFolder decomposes accented characters and drops the combining marks,
// so "évaluée" and "evaluee" tokenize identically.
var accentFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// StripAccents removes diacritical marks from s. Input that cannot be
// transformed is returned unchanged.
func StripAccents(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// Tokenize lowercases and accent-folds text, then extracts tokens. It is the
// single entry point for turning free text into comparable units; callers must
// never split text any other way.
func Tokenize(text string) []string {
	lowered := strings.ToLower(StripAccents(text))
	return tokenPattern.FindAllString(lowered, -1)
}

// Canonicalize maps each token through the default alias table. The pair
// "front", "end" collapses into a single "frontend" token, consuming both.
func Canonicalize(tokens []string) []string {
	return defaultLexicon.Canonicalize(tokens)
}

// Canonicalize applies this lexicon's alias table to tokens.
func (l *Lexicon) Canonicalize(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if tokens[i] == "front" && i+1 < len(tokens) && tokens[i+1] == "end" {
			out = append(out, "frontend")
			i++
			continue
		}
		out = append(out, l.canon(tokens[i]))
	}
	return out
}

// TokenSet is a deduplicated bag of canonical tokens.
type TokenSet map[string]struct{}

// NewTokenSet builds a set from already-canonicalized tokens.
func NewTokenSet(tokens []string) TokenSet {
	s := make(TokenSet, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// Contains reports whether tok is in the set.
func (s TokenSet) Contains(tok string) bool {
	_, ok := s[tok]
	return ok
}

// ContainsAll reports whether every token is in the set. An empty slice is
// vacuously contained.
func (s TokenSet) ContainsAll(tokens []string) bool {
	for _, t := range tokens {
		if !s.Contains(t) {
			return false
		}
	}
	return true
}

// isDigits reports whether tok consists only of ASCII digits.
func isDigits(tok string) bool {
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(tok) > 0
}

// keepKeyword filters out stopwords, bare numbers and one-character noise.
func keepKeyword(tok string) bool {
	if len(tok) < 2 || isDigits(tok) {
		return false
	}
	_, stop := stopwords[tok]
	return !stop
}

// KeywordSet reduces canonical tokens to the deduplicated set used for
// coverage matching: stopwords, pure numbers and single characters are
// dropped.
func KeywordSet(tokens []string) TokenSet {
	s := make(TokenSet, len(tokens))
	for _, t := range tokens {
		if keepKeyword(t) {
			s[t] = struct{}{}
		}
	}
	return s
}

// Normalize is the full text-to-keyword-set pipeline using the default
// lexicon. It also returns the canonical token count before deduplication,
// which feeds the length penalty.
func Normalize(text string) (TokenSet, int) {
	return defaultLexicon.Normalize(text)
}

// Normalize runs tokenization, canonicalization and keyword filtering with
// this lexicon's alias table.
func (l *Lexicon) Normalize(text string) (TokenSet, int) {
	canon := l.Canonicalize(Tokenize(text))
	return KeywordSet(canon), len(canon)
}
