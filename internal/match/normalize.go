// Package match resolves raw sponsor and collaborator strings against a
// canonical set of company names. Normalization is deliberately lossy:
// each raw name produces one or more candidate keys, and only keys that
// identify exactly one company are usable for matching.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSuffixes lists common legal-entity designators stripped during
// normalization. A production deployment loads its own vocabulary from the
// business-suffixes resource file; this set covers the usual suspects.
var DefaultSuffixes = []string{
	"inc", "incorporated", "corp", "corporation", "co", "company",
	"ltd", "limited", "llc", "lp", "llp", "plc",
	"gmbh", "ag", "sa", "nv", "bv", "ab", "as", "oy", "spa", "srl",
	"kk", "pty", "pte", "bhd", "sdn",
	"pharmaceuticals", "pharmaceutical", "pharma",
}

// Options configures a Normalizer.
type Options struct {
	// Suffixes is the legal-suffix vocabulary, matched case-insensitively
	// as whole words anywhere in the cleaned name. Empty falls back to
	// DefaultSuffixes.
	Suffixes []string

	// DropShortTrailing removes trailing tokens of three or fewer runes
	// that survive cleaning. Lossy: it also strips meaningful short names,
	// so it is off unless explicitly enabled.
	DropShortTrailing bool
}

// Normalizer turns raw organization names into candidate lookup keys.
// Safe for concurrent use once constructed.
type Normalizer struct {
	suffixes          map[string]struct{}
	dropShortTrailing bool
	lower             cases.Caser
}

// NewNormalizer builds a Normalizer from opts.
func NewNormalizer(opts Options) *Normalizer {
	vocab := opts.Suffixes
	if len(vocab) == 0 {
		vocab = DefaultSuffixes
	}
	lower := cases.Lower(language.Und)
	suffixes := make(map[string]struct{}, len(vocab))
	for _, s := range vocab {
		s = strings.TrimSpace(lower.String(s))
		if s != "" {
			suffixes[s] = struct{}{}
		}
	}
	return &Normalizer{
		suffixes:          suffixes,
		dropShortTrailing: opts.DropShortTrailing,
		lower:             lower,
	}
}

// Normalize returns the distinct, non-empty candidate keys for raw, in a
// deterministic order. An empty or whitespace-only input yields nil.
//
// Two branches are always produced: the name as given, and the name
// truncated at the first '(' (which captures forms like
// "Acme Corp (USA) GmbH"). Keeping both maximizes recall when the
// parenthetical carries distinguishing information. If the last word of the
// original name is fully uppercase and not itself a legal suffix, it is
// emitted as an additional acronym key.
func (n *Normalizer) Normalize(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var keys []string
	seen := make(map[string]struct{}, 3)
	add := func(k string) {
		if k == "" {
			return
		}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	add(n.cleanKey(raw))
	if i := strings.IndexByte(raw, '('); i >= 0 {
		add(n.cleanKey(raw[:i]))
	}
	if acr := n.acronymKey(raw); acr != "" {
		add(acr)
	}

	return keys
}

// cleanKey runs the full normalization pipeline on one branch of the name.
func (n *Normalizer) cleanKey(s string) string {
	s = stripPunct(s)
	s = n.lower.String(s)

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if _, isSuffix := n.suffixes[w]; !isSuffix {
			kept = append(kept, w)
		}
	}

	if n.dropShortTrailing {
		for len(kept) > 0 && len([]rune(kept[len(kept)-1])) <= 3 {
			kept = kept[:len(kept)-1]
		}
	}

	return strings.Join(kept, " ")
}

// acronymKey returns the lowercased last word of the original raw name when
// it is fully uppercase (all cased runes upper, at least one of them) and
// not a legal suffix. Companies commonly referenced by acronym appear in
// sponsor fields as the bare acronym.
func (n *Normalizer) acronymKey(raw string) string {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return ""
	}
	last := words[len(words)-1]
	if !isAllUpper(last) {
		return ""
	}
	key := n.lower.String(stripPunct(last))
	if key == "" {
		return ""
	}
	if _, isSuffix := n.suffixes[key]; isSuffix {
		return ""
	}
	return key
}

// stripPunct removes every rune that is not a letter, digit, underscore,
// or whitespace.
func stripPunct(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isAllUpper reports whether s contains at least one cased rune and no
// lowercase runes, mirroring the "looks like an acronym" check.
func isAllUpper(s string) bool {
	hasUpper := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}
