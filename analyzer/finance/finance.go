// Package finance implements a sample analyzer that scores the same fixed
// catalog the vehicle analyzer owns, but purely on affordability: how
// comfortably a listing's price sits inside the requester's budget.
package finance

import (
	"context"
	"sort"

	"github.com/motorlot/recoengine/agentrunner"
	"github.com/motorlot/recoengine/candidate"
	"github.com/motorlot/recoengine/profile"
)

type listing struct {
	vehicleID string
	price     float64
}

var catalog = []listing{
	{vehicleID: "v1", price: 18500},
	{vehicleID: "v2", price: 9800},
	{vehicleID: "v3", price: 27200},
	{vehicleID: "v4", price: 14300},
	{vehicleID: "v5", price: 6100},
}

// Analyzer scores listings by how comfortably they fit the stated budget.
type Analyzer struct{}

// New creates a finance Analyzer.
func New() *Analyzer { return &Analyzer{} }

// ID identifies this analyzer in events and fusion contributions.
func (a *Analyzer) ID() string { return "finance" }

// DisplayName is the human-readable label for this analyzer.
func (a *Analyzer) DisplayName() string { return "Finance Affordability Analyzer" }

// Analyze scores every listing the requester can afford, rewarding more
// headroom under the budget ceiling.
func (a *Analyzer) Analyze(ctx context.Context, p profile.UserProfile) (agentrunner.Result, error) {
	if p.Budget.Max <= 0 {
		return agentrunner.Result{}, nil
	}

	var cands []candidate.Candidate
	for _, l := range catalog {
		if l.price > p.Budget.Max {
			continue
		}
		headroom := candidate.Clamp(1 - l.price/p.Budget.Max)
		cands = append(cands, candidate.Candidate{
			VehicleID: l.vehicleID,
			Score:     candidate.Clamp(0.4 + 0.6*headroom),
			Reason:    "affordable within stated budget",
		})
	}
	if len(cands) == 0 {
		return agentrunner.Result{}, nil
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].VehicleID < cands[j].VehicleID
	})
	return agentrunner.Result{Candidates: cands, Confidence: 0.7}, nil
}
