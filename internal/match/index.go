package match

import (
	"sort"

	"go.uber.org/zap"
)

// Index maps canonical keys to exactly one company name each. Keys that two
// or more distinct companies reduce to are ambiguous: they are excluded
// from lookup entirely rather than resolved to an arbitrary winner, so a
// collision can never silently misattribute a trial. Read-only after
// construction and safe to share across goroutines.
type Index struct {
	usable     map[string]string   // key → canonical raw name
	collisions map[string][]string // key → the distinct raw names that produced it
}

// BuildIndex normalizes every known company name and constructs the lookup
// index. Every collision is logged for operator review. Names that
// normalize to nothing are discarded.
func BuildIndex(n *Normalizer, companyNames []string) *Index {
	keyToNames := make(map[string][]string)
	for _, raw := range companyNames {
		for _, key := range n.Normalize(raw) {
			if !containsString(keyToNames[key], raw) {
				keyToNames[key] = append(keyToNames[key], raw)
			}
		}
	}

	idx := &Index{
		usable:     make(map[string]string, len(keyToNames)),
		collisions: make(map[string][]string),
	}
	for key, names := range keyToNames {
		if len(names) == 1 {
			idx.usable[key] = names[0]
			continue
		}
		sort.Strings(names)
		idx.collisions[key] = names
		zap.L().Warn("match: ambiguous key excluded from index",
			zap.String("key", key),
			zap.Strings("companies", names),
		)
	}

	zap.L().Info("match: index built",
		zap.Int("companies", len(companyNames)),
		zap.Int("usable_keys", len(idx.usable)),
		zap.Int("collisions", len(idx.collisions)),
	)
	return idx
}

// Lookup resolves a candidate key to its canonical company name. Ambiguous
// keys never resolve.
func (idx *Index) Lookup(key string) (string, bool) {
	name, ok := idx.usable[key]
	return name, ok
}

// Collisions returns the ambiguous keys and the company names behind each,
// for the collision report.
func (idx *Index) Collisions() map[string][]string {
	return idx.collisions
}

// Len returns the number of usable keys.
func (idx *Index) Len() int {
	return len(idx.usable)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
