package model

import "strings"

// Trial is a flattened clinical trial record as produced by the
// ClinicalTrials.gov ingest and consumed by matching and classification.
// JSON field names follow the flat export format shared with downstream
// analysis tooling.
type Trial struct {
	NCTID                 string `json:"NCT ID"`
	OfficialTitle         string `json:"Official Title"`
	LeadSponsor           string `json:"Lead Sponsor"`
	Collaborators         string `json:"Collaborators"` // comma-joined
	OverallStatus         string `json:"Overall Status"`
	Failed                bool   `json:"Failed?"`
	BriefSummary          string `json:"Brief Summary"`
	DetailedDescription   string `json:"Detailed Description"`
	Conditions            string `json:"Conditions"`
	Interventions         string `json:"Interventions"`
	Enrollment            *int   `json:"Enrollment"`
	PrimaryOutcomes       string `json:"Primary Outcomes"`
	SecondaryOutcomes     string `json:"Secondary Outcomes"`
	MinAge                string `json:"Min Age"`
	MaxAge                string `json:"Max Age"`
	SexEligibility        string `json:"Sex Eligibility"`
	AcceptsHealthy        *bool  `json:"Accepts Healthy Volunteers"`
	StartDate             string `json:"Start Date"`
	PrimaryCompletionDate string `json:"Primary Completion Date"`
	LastUpdateDate        string `json:"Last Update Date"`
	StudyType             string `json:"Study Type"`
	Phases                string `json:"Phases"`
	Locations             string `json:"Locations"`
	Randomization         string `json:"Randomization"`
	Masking               string `json:"Masking"`
	InterventionModel     string `json:"Intervention Model"`
	PrimaryPurpose        string `json:"Primary Purpose"`
	Arms                  string `json:"Arms"`
	NumberOfSites         int    `json:"Number of Sites"`
	FDARegulatedDrug      *bool  `json:"FDA Regulated Drug"`
	FDARegulatedDevice    *bool  `json:"FDA Regulated Device"`
	DSMBPresent           *bool  `json:"DSMB Present"`
	ExpandedAccess        *bool  `json:"Expanded Access"`
	IPDSharing            string `json:"IPD Sharing"`
}

// CollaboratorList splits the comma-joined Collaborators field into
// trimmed, non-empty entries, preserving order.
func (t *Trial) CollaboratorList() []string {
	if t.Collaborators == "" {
		return nil
	}
	var out []string
	for _, c := range strings.Split(t.Collaborators, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Description joins the detailed description and brief summary for
// classification prompts.
func (t *Trial) Description() string {
	switch {
	case t.DetailedDescription == "":
		return t.BriefSummary
	case t.BriefSummary == "":
		return t.DetailedDescription
	default:
		return t.DetailedDescription + " " + t.BriefSummary
	}
}
