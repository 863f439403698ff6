package ingest

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/helix-group/trials-cli/internal/model"
)

// failedStatuses are the overall statuses counted as a failed trial.
var failedStatuses = map[string]bool{
	"TERMINATED": true,
	"SUSPENDED":  true,
	"WITHDRAWN":  true,
}

// study mirrors the subset of the v2 API study document the pipeline uses.
type study struct {
	ProtocolSection struct {
		IdentificationModule struct {
			NCTID         string `json:"nctId"`
			OfficialTitle string `json:"officialTitle"`
		} `json:"identificationModule"`
		StatusModule struct {
			OverallStatus            string    `json:"overallStatus"`
			StartDateStruct          dateField `json:"startDateStruct"`
			PrimaryCompletionDate    dateField `json:"primaryCompletionDateStruct"`
			LastUpdatePostDateStruct dateField `json:"lastUpdatePostDateStruct"`
			ExpandedAccessInfo       struct {
				HasExpandedAccess *bool `json:"hasExpandedAccess"`
			} `json:"expandedAccessInfo"`
		} `json:"statusModule"`
		SponsorCollaboratorsModule struct {
			LeadSponsor struct {
				Name string `json:"name"`
			} `json:"leadSponsor"`
			Collaborators []struct {
				Name string `json:"name"`
			} `json:"collaborators"`
		} `json:"sponsorCollaboratorsModule"`
		DescriptionModule struct {
			BriefSummary        string `json:"briefSummary"`
			DetailedDescription string `json:"detailedDescription"`
		} `json:"descriptionModule"`
		ConditionsModule struct {
			Conditions []string `json:"conditions"`
		} `json:"conditionsModule"`
		DesignModule struct {
			StudyType      string   `json:"studyType"`
			Phases         []string `json:"phases"`
			EnrollmentInfo struct {
				Count *int `json:"count"`
			} `json:"enrollmentInfo"`
			DesignInfo struct {
				Allocation        string `json:"allocation"`
				InterventionModel string `json:"interventionModel"`
				PrimaryPurpose    string `json:"primaryPurpose"`
				MaskingInfo       struct {
					Masking string `json:"masking"`
				} `json:"maskingInfo"`
			} `json:"designInfo"`
		} `json:"designModule"`
		ArmsInterventionsModule struct {
			Interventions []struct {
				Name string `json:"name"`
			} `json:"interventions"`
			ArmGroups []struct {
				Label string `json:"label"`
			} `json:"armGroups"`
		} `json:"armsInterventionsModule"`
		OutcomesModule struct {
			PrimaryOutcomes []struct {
				Measure string `json:"measure"`
			} `json:"primaryOutcomes"`
			SecondaryOutcomes []struct {
				Measure string `json:"measure"`
			} `json:"secondaryOutcomes"`
		} `json:"outcomesModule"`
		EligibilityModule struct {
			MinimumAge        string `json:"minimumAge"`
			MaximumAge        string `json:"maximumAge"`
			Sex               string `json:"sex"`
			HealthyVolunteers *bool  `json:"healthyVolunteers"`
		} `json:"eligibilityModule"`
		ContactsLocationsModule struct {
			Locations []struct {
				City    string `json:"city"`
				Country string `json:"country"`
			} `json:"locations"`
		} `json:"contactsLocationsModule"`
		OversightModule struct {
			IsFDARegulatedDrug   *bool `json:"isFdaRegulatedDrug"`
			IsFDARegulatedDevice *bool `json:"isFdaRegulatedDevice"`
			OversightHasDMC      *bool `json:"oversightHasDmc"`
		} `json:"oversightModule"`
		IPDSharingStatementModule struct {
			IPDSharing string `json:"ipdSharing"`
		} `json:"ipdSharingStatementModule"`
	} `json:"protocolSection"`
}

type dateField struct {
	Date string `json:"date"`
}

// flattenStudy converts one raw API study into the flat trial record. A
// study without an NCT ID is malformed.
func flattenStudy(raw json.RawMessage) (model.Trial, error) {
	var s study
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.Trial{}, eris.Wrap(err, "ingest: decode study")
	}

	ps := s.ProtocolSection
	if ps.IdentificationModule.NCTID == "" {
		return model.Trial{}, eris.New("ingest: study missing nctId")
	}

	var collaborators []string
	for _, c := range ps.SponsorCollaboratorsModule.Collaborators {
		if c.Name != "" {
			collaborators = append(collaborators, c.Name)
		}
	}

	var interventions []string
	for _, iv := range ps.ArmsInterventionsModule.Interventions {
		if iv.Name != "" {
			interventions = append(interventions, iv.Name)
		}
	}

	var arms []string
	for _, ag := range ps.ArmsInterventionsModule.ArmGroups {
		if ag.Label != "" {
			arms = append(arms, ag.Label)
		}
	}

	var primaryOutcomes, secondaryOutcomes []string
	for _, o := range ps.OutcomesModule.PrimaryOutcomes {
		if o.Measure != "" {
			primaryOutcomes = append(primaryOutcomes, o.Measure)
		}
	}
	for _, o := range ps.OutcomesModule.SecondaryOutcomes {
		if o.Measure != "" {
			secondaryOutcomes = append(secondaryOutcomes, o.Measure)
		}
	}

	var locations []string
	for _, loc := range ps.ContactsLocationsModule.Locations {
		if loc.City == "" && loc.Country == "" {
			continue
		}
		locations = append(locations, loc.City+", "+loc.Country)
	}

	return model.Trial{
		NCTID:                 ps.IdentificationModule.NCTID,
		OfficialTitle:         ps.IdentificationModule.OfficialTitle,
		LeadSponsor:           ps.SponsorCollaboratorsModule.LeadSponsor.Name,
		Collaborators:         strings.Join(collaborators, ", "),
		OverallStatus:         ps.StatusModule.OverallStatus,
		Failed:                failedStatuses[ps.StatusModule.OverallStatus],
		BriefSummary:          ps.DescriptionModule.BriefSummary,
		DetailedDescription:   ps.DescriptionModule.DetailedDescription,
		Conditions:            strings.Join(ps.ConditionsModule.Conditions, ", "),
		Interventions:         strings.Join(interventions, ", "),
		Enrollment:            ps.DesignModule.EnrollmentInfo.Count,
		PrimaryOutcomes:       strings.Join(primaryOutcomes, "; "),
		SecondaryOutcomes:     strings.Join(secondaryOutcomes, "; "),
		MinAge:                ps.EligibilityModule.MinimumAge,
		MaxAge:                ps.EligibilityModule.MaximumAge,
		SexEligibility:        ps.EligibilityModule.Sex,
		AcceptsHealthy:        ps.EligibilityModule.HealthyVolunteers,
		StartDate:             ps.StatusModule.StartDateStruct.Date,
		PrimaryCompletionDate: ps.StatusModule.PrimaryCompletionDate.Date,
		LastUpdateDate:        ps.StatusModule.LastUpdatePostDateStruct.Date,
		StudyType:             ps.DesignModule.StudyType,
		Phases:                strings.Join(ps.DesignModule.Phases, ", "),
		Locations:             strings.Join(locations, ", "),
		Randomization:         ps.DesignModule.DesignInfo.Allocation,
		Masking:               ps.DesignModule.DesignInfo.MaskingInfo.Masking,
		InterventionModel:     ps.DesignModule.DesignInfo.InterventionModel,
		PrimaryPurpose:        ps.DesignModule.DesignInfo.PrimaryPurpose,
		Arms:                  strings.Join(arms, ", "),
		NumberOfSites:         len(ps.ContactsLocationsModule.Locations),
		FDARegulatedDrug:      ps.OversightModule.IsFDARegulatedDrug,
		FDARegulatedDevice:    ps.OversightModule.IsFDARegulatedDevice,
		DSMBPresent:           ps.OversightModule.OversightHasDMC,
		ExpandedAccess:        ps.StatusModule.ExpandedAccessInfo.HasExpandedAccess,
		IPDSharing:            ps.IPDSharingStatementModule.IPDSharing,
	}, nil
}

// LoadTrials reads a previously fetched flat trial export. Records that
// fail to decode individually are reported via the returned count.
func LoadTrials(data []byte) ([]model.Trial, error) {
	var trials []model.Trial
	if err := json.Unmarshal(data, &trials); err != nil {
		return nil, eris.Wrap(err, "ingest: decode trials file")
	}
	return trials, nil
}
