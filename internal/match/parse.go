package match

import (
	"regexp"
	"sort"
	"strings"
)

// mandatoryPattern flags clauses that express a hard requirement, in English
// or French. Matching is done on the accent-folded lowercase clause.
var mandatoryPattern = regexp.MustCompile(`\b(must|mandatory|required|obligatoire|necessaire|requis)\b`)

// clauseSplitter breaks free-form requirement text into candidate clauses.
var clauseSplitter = regexp.MustCompile(`[\n;,•]+`)

// ParsedRequirements is the result of segmenting a job's free-text
// requirement blob.
type ParsedRequirements struct {
	// Profile holds the non-mandatory clauses verbatim, in input order.
	Profile []string `json:"profile"`
	// MustHaves holds the canonical tokens extracted from mandatory
	// clauses, deduplicated and sorted.
	MustHaves []string `json:"must_haves"`
	// Languages holds the canonical names of languages mentioned anywhere
	// in the text, deduplicated and sorted.
	Languages []string `json:"languages"`
}

// ParseProfileRequirements segments free-form requirement text into
// nice-to-have profile clauses and hard must-have tokens, and detects spoken
// languages, using the default lexicon.
func ParseProfileRequirements(text string, knownSkills []string) ParsedRequirements {
	return defaultLexicon.ParseProfileRequirements(text, knownSkills)
}

// ParseProfileRequirements segments requirement text with this lexicon's
// alias table. Clauses matching a mandatory-intent pattern contribute
// tokens to MustHaves; when knownSkills is non-empty the tokens are further
// restricted to that vocabulary, so clauses like "must have 3 years
// experience" never gate the score on generic words. All other clauses are
// kept verbatim as profile entries.
func (l *Lexicon) ParseProfileRequirements(text string, knownSkills []string) ParsedRequirements {
	var parsed ParsedRequirements

	vocab := make(TokenSet)
	for _, skill := range knownSkills {
		for _, tok := range l.Canonicalize(Tokenize(skill)) {
			vocab[tok] = struct{}{}
		}
	}

	musts := make(TokenSet)
	for _, raw := range clauseSplitter.Split(text, -1) {
		clause := strings.Trim(raw, " \t-–*·")
		if clause == "" {
			continue
		}
		lowered := strings.ToLower(StripAccents(clause))
		if !mandatoryPattern.MatchString(lowered) {
			parsed.Profile = append(parsed.Profile, clause)
			continue
		}
		for _, tok := range l.Canonicalize(Tokenize(clause)) {
			if len(vocab) > 0 && !vocab.Contains(tok) {
				continue
			}
			musts[tok] = struct{}{}
		}
	}
	parsed.MustHaves = sortedTokens(musts)

	fullText := NewTokenSet(l.Canonicalize(Tokenize(text)))
	langs := make(TokenSet)
	for name, aliases := range languageAliases {
		for _, alias := range aliases {
			if fullText.Contains(alias) {
				langs[name] = struct{}{}
				break
			}
		}
	}
	parsed.Languages = sortedTokens(langs)

	return parsed
}

func sortedTokens(s TokenSet) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for tok := range s {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}
