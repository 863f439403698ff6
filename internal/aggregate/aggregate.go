// Package aggregate buckets matched trials by canonical company and writes
// the aggregation artifacts consumed by the classification stage.
package aggregate

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/helix-group/trials-cli/internal/match"
	"github.com/helix-group/trials-cli/internal/model"
)

// sponsorPair is one deduplicated (lead, collaborators) combination for
// the lead-sponsor report.
type sponsorPair struct {
	Lead          string
	Collaborators string
}

// Result holds the outcome of one aggregation pass.
type Result struct {
	Known    map[string]*model.CompanyBucket // canonical company → bucket
	Unknown  []model.Trial
	Excluded int // trials dropped for a banned lead sponsor

	pairs map[sponsorPair]struct{}
}

// Run matches every trial and buckets it. Banned-lead trials are excluded
// from both the known and unknown buckets; they are counted only so the
// summary adds up.
func Run(m *match.Matcher, trials []model.Trial) *Result {
	res := &Result{
		Known: make(map[string]*model.CompanyBucket),
		pairs: make(map[sponsorPair]struct{}),
	}

	for _, trial := range trials {
		outcome := m.MatchTrial(&trial)
		switch outcome.Status {
		case match.StatusExcluded:
			res.Excluded++
			continue
		case match.StatusLead, match.StatusCollaborator:
			bucket := res.Known[outcome.Company]
			if bucket == nil {
				bucket = &model.CompanyBucket{}
				res.Known[outcome.Company] = bucket
			}
			bucket.TrialCount++
			bucket.Trials = append(bucket.Trials, trial)
		default:
			res.Unknown = append(res.Unknown, trial)
		}

		res.recordSponsorPair(m, trial)
	}

	matched := 0
	for _, b := range res.Known {
		matched += b.TrialCount
	}
	zap.L().Info("aggregate: complete",
		zap.Int("trials", len(trials)),
		zap.Int("matched", matched),
		zap.Int("unknown", len(res.Unknown)),
		zap.Int("excluded", res.Excluded),
		zap.Int("companies", len(res.Known)),
	)
	return res
}

// recordSponsorPair tracks the raw (lead, collaborators) combination for
// the report, skipping pairs where any collaborator carries a banned
// phrase.
func (r *Result) recordSponsorPair(m *match.Matcher, trial model.Trial) {
	collabs := trial.CollaboratorList()
	for _, c := range collabs {
		if m.Banned(c) {
			return
		}
	}
	r.pairs[sponsorPair{
		Lead:          strings.TrimSpace(trial.LeadSponsor),
		Collaborators: strings.Join(collabs, ", "),
	}] = struct{}{}
}

// SponsorPairs returns the deduplicated pairs sorted lexicographically by
// lead then collaborators.
func (r *Result) SponsorPairs() []sponsorPair {
	pairs := make([]sponsorPair, 0, len(r.pairs))
	for p := range r.pairs {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Lead != pairs[j].Lead {
			return pairs[i].Lead < pairs[j].Lead
		}
		return pairs[i].Collaborators < pairs[j].Collaborators
	})
	return pairs
}
