// Package review implements a sample analyzer that scores the shared fixed
// catalog against a static, hand-curated reliability rating table.
package review

import (
	"context"
	"sort"

	"github.com/motorlot/recoengine/agentrunner"
	"github.com/motorlot/recoengine/candidate"
	"github.com/motorlot/recoengine/profile"
)

// ratings is a fixed reliability score per vehicle id, standing in for an
// external review aggregation service.
var ratings = map[string]float64{
	"v1": 0.92,
	"v2": 0.81,
	"v3": 0.95,
	"v4": 0.74,
	"v5": 0.63,
}

// Analyzer scores catalog listings by a fixed reliability rating table.
type Analyzer struct{}

// New creates a review Analyzer.
func New() *Analyzer { return &Analyzer{} }

// ID identifies this analyzer in events and fusion contributions.
func (a *Analyzer) ID() string { return "review" }

// DisplayName is the human-readable label for this analyzer.
func (a *Analyzer) DisplayName() string { return "Review Reliability Analyzer" }

// Analyze returns every rated listing, regardless of budget — reliability
// is considered independent of affordability and left for the Fuser to
// weigh against the other sources. Candidates are ranked highest-rated
// first so a downstream per-source take sees the best reviews, not
// whatever order the ratings table happens to iterate in.
func (a *Analyzer) Analyze(ctx context.Context, p profile.UserProfile) (agentrunner.Result, error) {
	cands := make([]candidate.Candidate, 0, len(ratings))
	for id, score := range ratings {
		cands = append(cands, candidate.Candidate{
			VehicleID: id,
			Score:     score,
			Reason:    "reliability rating",
		})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].VehicleID < cands[j].VehicleID
	})
	return agentrunner.Result{Candidates: cands, Confidence: 0.65}, nil
}
