package match

import (
	"maps"
	"sync"
)

// defaultAliases folds common technology spellings to one canonical token.
// The table runs on both CV text and job requirement text; the two sides must
// always agree or coverage comparisons silently miss.
var defaultAliases = map[string]string{
	// JavaScript ecosystem
	"react.js":   "react",
	"reactjs":    "react",
	"next.js":    "nextjs",
	"nextjs":     "nextjs",
	"node.js":    "node",
	"nodejs":     "node",
	"js":         "javascript",
	"javascript": "javascript",
	"ts":         "typescript",
	"typescript": "typescript",
	// Frontend variants
	"front-end": "frontend",
	"front":     "frontend",
	"frontend":  "frontend",
	// Web technologies
	"html5": "html",
	"css3":  "css",
	// ML / data science
	"scikit-learn": "sklearn",
	"scikitlearn":  "sklearn",
}

// stopwords is a bilingual (English/French) list matching the candidate pool
// this service is deployed against. Applied only when building keyword sets.
var stopwords = map[string]struct{}{
	"and": {}, "or": {}, "with": {}, "the": {}, "a": {}, "an": {}, "of": {},
	"in": {}, "to": {}, "for": {}, "on": {}, "as": {}, "at": {}, "by": {}, "from": {},
	"experience": {}, "experiences": {}, "strong": {}, "good": {}, "solid": {},
	"et": {}, "ou": {}, "avec": {}, "le": {}, "la": {}, "les": {}, "de": {},
	"des": {}, "du": {}, "un": {}, "une": {}, "dans": {}, "pour": {}, "sur": {},
	"en": {}, "par": {},
}

// languageAliases maps canonical language names to their known spellings,
// including own-language forms so "français" or "deutsch" in a French or
// German posting still resolves.
var languageAliases = map[string][]string{
	"english": {"english", "en", "anglais", "ingles"},
	"french":  {"french", "fr", "francais"},
	"arabic":  {"arabic", "ar", "arabe"},
	"spanish": {"spanish", "es", "espanol"},
	"german":  {"german", "de", "deutsch", "allemand"},
	"italian": {"italian", "it", "italiano"},
}

// Lexicon holds the alias table used during canonicalization. The default
// table can be extended at runtime with deployment-specific overrides (see
// the fsnotify-backed watcher in lexicon_watcher.go); reads are lock-free in
// the common no-override case.
type Lexicon struct {
	mu      sync.RWMutex
	aliases map[string]string
}

// NewLexicon returns a lexicon seeded with the built-in alias table.
func NewLexicon() *Lexicon {
	l := &Lexicon{aliases: make(map[string]string, len(defaultAliases))}
	maps.Copy(l.aliases, defaultAliases)
	return l
}

// SetOverrides replaces any previous overrides with the given alias mappings,
// layered on top of the built-in table. Keys and values are expected to be
// already-tokenized lowercase strings.
func (l *Lexicon) SetOverrides(overrides map[string]string) {
	merged := make(map[string]string, len(defaultAliases)+len(overrides))
	maps.Copy(merged, defaultAliases)
	maps.Copy(merged, overrides)

	l.mu.Lock()
	l.aliases = merged
	l.mu.Unlock()
}

func (l *Lexicon) canon(token string) string {
	l.mu.RLock()
	mapped, ok := l.aliases[token]
	l.mu.RUnlock()
	if ok {
		return mapped
	}
	return token
}

// defaultLexicon backs the package-level Canonicalize helpers. The serve path
// owns its own instance so file-based overrides never leak into library use.
var defaultLexicon = NewLexicon()
