package aggregate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/helix-group/trials-cli/internal/model"
)

// WriteKnownCompanies writes the canonical-company → trials mapping.
func (r *Result) WriteKnownCompanies(path string) error {
	return writeJSON(path, r.Known)
}

// WriteUnknownTrials writes the trials no company could be matched to.
func (r *Result) WriteUnknownTrials(path string) error {
	trials := r.Unknown
	if trials == nil {
		trials = []model.Trial{}
	}
	return writeJSON(path, trials)
}

// WriteLeadSponsors writes the deduplicated, sorted sponsor report, one
// numbered "lead | collaborators" line per pair.
func (r *Result) WriteLeadSponsors(path string) error {
	var b strings.Builder
	for i, p := range r.SponsorPairs() {
		fmt.Fprintf(&b, "%d. %s | %s\n", i+1, p.Lead, p.Collaborators)
	}
	if err := writeFile(path, []byte(b.String())); err != nil {
		return eris.Wrapf(err, "aggregate: write %s", path)
	}
	return nil
}

// WriteCollisionReport writes the ambiguous keys excluded from the index,
// with the company names behind each, for operator review.
func WriteCollisionReport(path string, collisions map[string][]string) error {
	keys := make([]string, 0, len(collisions))
	for k := range collisions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s | %s\n", k, strings.Join(collisions[k], ", "))
	}
	if err := writeFile(path, []byte(b.String())); err != nil {
		return eris.Wrapf(err, "aggregate: write %s", path)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "aggregate: marshal %s", path)
	}
	if err := writeFile(path, data); err != nil {
		return eris.Wrapf(err, "aggregate: write %s", path)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
