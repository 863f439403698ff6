package match

import (
	"strings"

	"github.com/helix-group/trials-cli/internal/model"
)

// Status describes the outcome of matching one trial.
type Status string

const (
	// StatusExcluded means the lead sponsor contained a banned phrase and
	// the trial was dropped before matching was attempted.
	StatusExcluded Status = "excluded"
	// StatusLead means the lead sponsor resolved to a known company.
	StatusLead Status = "lead"
	// StatusCollaborator means a collaborator resolved to a known company.
	StatusCollaborator Status = "collaborator"
	// StatusUnknown means no sponsor or collaborator matched.
	StatusUnknown Status = "unknown"
)

// Match is the result of resolving one trial's sponsors against the index.
type Match struct {
	Status  Status
	Company string // canonical company name; empty unless matched
	Via     string // the raw sponsor/collaborator string that produced the match
}

// Matcher resolves trial records against a company index. Read-only after
// construction.
type Matcher struct {
	norm   *Normalizer
	idx    *Index
	banned []string // lowercased banned phrases
}

// NewMatcher builds a Matcher. Banned phrases are matched as
// case-insensitive substrings of the raw lead sponsor.
func NewMatcher(norm *Normalizer, idx *Index, bannedPhrases []string) *Matcher {
	banned := make([]string, 0, len(bannedPhrases))
	for _, p := range bannedPhrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			banned = append(banned, p)
		}
	}
	return &Matcher{norm: norm, idx: idx, banned: banned}
}

// Banned reports whether s contains any banned phrase.
func (m *Matcher) Banned(s string) bool {
	ls := strings.ToLower(s)
	for _, p := range m.banned {
		if strings.Contains(ls, p) {
			return true
		}
	}
	return false
}

// MatchTrial resolves one trial. A banned lead sponsor excludes the trial
// outright. Otherwise the lead sponsor is tried first; only if it does not
// match are collaborators scanned in order, stopping at the first hit. The
// lead sponsor therefore always takes priority over collaborators.
func (m *Matcher) MatchTrial(trial *model.Trial) Match {
	lead := strings.TrimSpace(trial.LeadSponsor)
	if m.Banned(lead) {
		return Match{Status: StatusExcluded}
	}

	if company, ok := m.resolve(lead); ok {
		return Match{Status: StatusLead, Company: company, Via: lead}
	}

	for _, collab := range trial.CollaboratorList() {
		if company, ok := m.resolve(collab); ok {
			return Match{Status: StatusCollaborator, Company: company, Via: collab}
		}
	}

	return Match{Status: StatusUnknown}
}

// Collisions exposes the index's ambiguous keys for reporting.
func (m *Matcher) Collisions() map[string][]string {
	return m.idx.Collisions()
}

// resolve normalizes one raw name and checks its candidate keys against the
// usable index, first hit wins.
func (m *Matcher) resolve(raw string) (string, bool) {
	for _, key := range m.norm.Normalize(raw) {
		if company, ok := m.idx.Lookup(key); ok {
			return company, true
		}
	}
	return "", false
}
