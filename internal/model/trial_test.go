package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrial_CollaboratorList(t *testing.T) {
	trial := Trial{Collaborators: "Acme Bio, , Beta Therapeutics ,Gamma Pharma"}
	assert.Equal(t, []string{"Acme Bio", "Beta Therapeutics", "Gamma Pharma"}, trial.CollaboratorList())
}

func TestTrial_CollaboratorList_Empty(t *testing.T) {
	trial := Trial{}
	assert.Nil(t, trial.CollaboratorList())
}

func TestTrial_Description(t *testing.T) {
	trial := Trial{DetailedDescription: "A phase 2 study.", BriefSummary: "Short summary."}
	assert.Equal(t, "A phase 2 study. Short summary.", trial.Description())

	trial = Trial{BriefSummary: "Short summary."}
	assert.Equal(t, "Short summary.", trial.Description())

	trial = Trial{DetailedDescription: "A phase 2 study."}
	assert.Equal(t, "A phase 2 study.", trial.Description())
}

func TestTrial_JSONFieldNames(t *testing.T) {
	// The flat export format uses human-readable keys; downstream tooling
	// depends on them verbatim.
	raw := `{"NCT ID":"NCT01234567","Lead Sponsor":"Acme Bio","Collaborators":"Beta Inc","Failed?":true,"Enrollment":120}`
	var trial Trial
	require.NoError(t, json.Unmarshal([]byte(raw), &trial))
	assert.Equal(t, "NCT01234567", trial.NCTID)
	assert.Equal(t, "Acme Bio", trial.LeadSponsor)
	assert.True(t, trial.Failed)
	require.NotNil(t, trial.Enrollment)
	assert.Equal(t, 120, *trial.Enrollment)
}
