package classify

import "strings"

// PhaseColumns are the one-hot phase columns in the per-company export.
var PhaseColumns = []string{"Phase 1", "Phase 2", "Phase 3"}

// OneHotPhases encodes the comma-joined Phases field. A trial spanning
// multiple phases ("PHASE1, PHASE2") sets both columns.
func OneHotPhases(phases string) map[string]int {
	compact := strings.ReplaceAll(strings.ToUpper(phases), " ", "")
	out := map[string]int{"Phase 1": 0, "Phase 2": 0, "Phase 3": 0}
	if strings.Contains(compact, "PHASE1") {
		out["Phase 1"] = 1
	}
	if strings.Contains(compact, "PHASE2") {
		out["Phase 2"] = 1
	}
	if strings.Contains(compact, "PHASE3") {
		out["Phase 3"] = 1
	}
	return out
}

// OneHotStudyType encodes the study type as interventional or
// observational. Unrecognized types default to interventional, matching
// the historical export behavior.
func OneHotStudyType(studyType string) map[string]int {
	out := map[string]int{"Interventional": 0, "Observational": 0}
	st := strings.ToLower(studyType)
	switch {
	case strings.Contains(st, "observat"):
		out["Observational"] = 1
	default:
		out["Interventional"] = 1
	}
	return out
}

// ArmsCount counts the comma-separated arm labels.
func ArmsCount(arms string) int {
	if arms == "" {
		return 0
	}
	n := 0
	for _, a := range strings.Split(arms, ",") {
		if strings.TrimSpace(a) != "" {
			n++
		}
	}
	return n
}

// OneHotBool encodes a nullable boolean as 0/1, nil counting as false.
func OneHotBool(v *bool) int {
	if v != nil && *v {
		return 1
	}
	return 0
}

// OneHot encodes the classifier's findings against the full category list,
// comparing case-insensitively.
func OneHot(found, categories []string) map[string]int {
	lower := make(map[string]struct{}, len(found))
	for _, f := range found {
		lower[strings.ToLower(f)] = struct{}{}
	}
	out := make(map[string]int, len(categories))
	for _, c := range categories {
		if _, ok := lower[strings.ToLower(c)]; ok {
			out[c] = 1
		} else {
			out[c] = 0
		}
	}
	return out
}
