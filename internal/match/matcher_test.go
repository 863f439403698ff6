package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helix-group/trials-cli/internal/model"
)

func newTestMatcher(companies []string, banned []string) *Matcher {
	n := newTestNormalizer()
	return NewMatcher(n, BuildIndex(n, companies), banned)
}

func TestMatchTrial_LeadSponsor(t *testing.T) {
	m := newTestMatcher([]string{"Acme Therapeutics Inc."}, nil)

	got := m.MatchTrial(&model.Trial{LeadSponsor: "Acme Therapeutics"})
	assert.Equal(t, StatusLead, got.Status)
	assert.Equal(t, "Acme Therapeutics Inc.", got.Company)
	assert.Equal(t, "Acme Therapeutics", got.Via)
}

func TestMatchTrial_LeadTakesPriorityOverCollaborator(t *testing.T) {
	m := newTestMatcher([]string{"Acme Therapeutics", "Beta Bio"}, nil)

	got := m.MatchTrial(&model.Trial{
		LeadSponsor:   "Acme Therapeutics Inc.",
		Collaborators: "Beta Bio Ltd",
	})
	assert.Equal(t, StatusLead, got.Status)
	assert.Equal(t, "Acme Therapeutics", got.Company)
}

func TestMatchTrial_CollaboratorFallback(t *testing.T) {
	m := newTestMatcher([]string{"Beta Bio"}, nil)

	got := m.MatchTrial(&model.Trial{
		LeadSponsor:   "University of Somewhere",
		Collaborators: "Beta Bio Ltd",
	})
	assert.Equal(t, StatusCollaborator, got.Status)
	assert.Equal(t, "Beta Bio", got.Company)
	assert.Equal(t, "Beta Bio Ltd", got.Via)
}

func TestMatchTrial_FirstCollaboratorWins(t *testing.T) {
	// Scanning stops at the first collaborator hit.
	m := newTestMatcher([]string{"Beta Bio", "Gamma Pharma"}, nil)

	got := m.MatchTrial(&model.Trial{
		LeadSponsor:   "Unknown Sponsor",
		Collaborators: "Beta Bio, Gamma Pharma",
	})
	assert.Equal(t, StatusCollaborator, got.Status)
	assert.Equal(t, "Beta Bio", got.Company)
}

func TestMatchTrial_Unknown(t *testing.T) {
	m := newTestMatcher([]string{"Acme Therapeutics"}, nil)

	got := m.MatchTrial(&model.Trial{LeadSponsor: "Someone Else"})
	assert.Equal(t, StatusUnknown, got.Status)
	assert.Empty(t, got.Company)
}

func TestMatchTrial_BannedLeadExcludesTrial(t *testing.T) {
	// A banned lead excludes the trial entirely, even when a collaborator
	// would have matched.
	m := newTestMatcher([]string{"Beta Bio"}, []string{"national institutes of health"})

	got := m.MatchTrial(&model.Trial{
		LeadSponsor:   "National Institutes of Health (NIH)",
		Collaborators: "Beta Bio",
	})
	assert.Equal(t, StatusExcluded, got.Status)
	assert.Empty(t, got.Company)
}

func TestMatchTrial_BannedIsCaseInsensitiveSubstring(t *testing.T) {
	m := newTestMatcher(nil, []string{"university"})

	assert.True(t, m.Banned("UNIVERSITY of Testing"))
	assert.True(t, m.Banned("The State University Hospital"))
	assert.False(t, m.Banned("Universal Pharma"))
}

func TestMatchTrial_AmbiguousKeyNeverResolves(t *testing.T) {
	// Colliding companies are absent from the index, so a sponsor reducing
	// to the shared key is unknown rather than arbitrarily attributed.
	m := newTestMatcher([]string{"Acme Inc.", "ACME Incorporated"}, nil)

	got := m.MatchTrial(&model.Trial{LeadSponsor: "Acme"})
	assert.Equal(t, StatusUnknown, got.Status)
}

func TestMatchTrial_EmptyLeadSponsor(t *testing.T) {
	m := newTestMatcher([]string{"Acme Therapeutics"}, nil)

	got := m.MatchTrial(&model.Trial{LeadSponsor: ""})
	assert.Equal(t, StatusUnknown, got.Status)
}
