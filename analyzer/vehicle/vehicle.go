// Package vehicle implements a sample analyzer that scores a small fixed
// catalog against the requester's budget, brand and year preferences. It
// is an illustrative plugin, not a production catalog integration.
package vehicle

import (
	"context"
	"sort"
	"strings"

	"github.com/motorlot/recoengine/agentrunner"
	"github.com/motorlot/recoengine/candidate"
	"github.com/motorlot/recoengine/profile"
)

// listing is one row of the fixed sample catalog this analyzer owns.
type listing struct {
	vehicleID string
	price     float64
	year      int
	brand     string
}

var catalog = []listing{
	{vehicleID: "v1", price: 18500, year: 2021, brand: "Toyota"},
	{vehicleID: "v2", price: 9800, year: 2016, brand: "Honda"},
	{vehicleID: "v3", price: 27200, year: 2023, brand: "Ford"},
	{vehicleID: "v4", price: 14300, year: 2019, brand: "Toyota"},
	{vehicleID: "v5", price: 6100, year: 2013, brand: "Nissan"},
}

// Analyzer scores catalog listings against budget and preference fields.
type Analyzer struct{}

// New creates a vehicle Analyzer.
func New() *Analyzer { return &Analyzer{} }

// ID identifies this analyzer in events and fusion contributions.
func (a *Analyzer) ID() string { return "vehicle" }

// DisplayName is the human-readable label for this analyzer.
func (a *Analyzer) DisplayName() string { return "Vehicle Catalog Analyzer" }

// Analyze scores every catalog listing that satisfies the profile's budget,
// year floor and brand list, ranking by priceScore (spend against the
// budget ceiling blended with model-year recency).
func (a *Analyzer) Analyze(ctx context.Context, p profile.UserProfile) (agentrunner.Result, error) {
	var cands []candidate.Candidate
	for _, l := range catalog {
		if !matches(l, p) {
			continue
		}
		cands = append(cands, candidate.Candidate{
			VehicleID: l.vehicleID,
			Score:     priceScore(l, p),
			Reason:    "within budget and preference bounds",
		})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].VehicleID < cands[j].VehicleID
	})
	return agentrunner.Result{Candidates: cands, Confidence: confidence(len(cands))}, nil
}

func matches(l listing, p profile.UserProfile) bool {
	if p.Budget.Max > 0 && l.price > p.Budget.Max {
		return false
	}
	if p.Budget.Min > 0 && l.price < p.Budget.Min {
		return false
	}
	if p.Preferences.MinYear > 0 && l.year < p.Preferences.MinYear {
		return false
	}
	if len(p.Preferences.Brands) > 0 && !containsFold(p.Preferences.Brands, l.brand) {
		return false
	}
	return true
}

// priceScore rewards listings priced closer to (but under) the budget
// ceiling, on the theory that the requester is optimizing spend, not
// minimizing it. With a ceiling set, the score is half spend ratio and half
// model-year recency; with no ceiling set, listings score on recency alone.
func priceScore(l listing, p profile.UserProfile) float64 {
	recency := candidate.Clamp(float64(l.year-2010) / 15)
	if p.Budget.Max <= 0 {
		return recency
	}
	spendRatio := candidate.Clamp(l.price / p.Budget.Max)
	return candidate.Clamp(0.5*spendRatio + 0.5*recency)
}

func confidence(matchCount int) float64 {
	if matchCount == 0 {
		return 0
	}
	if matchCount >= len(catalog) {
		return 0.9
	}
	return candidate.Clamp(0.5 + 0.1*float64(matchCount))
}

func containsFold(brands []string, brand string) bool {
	for _, b := range brands {
		if strings.EqualFold(b, brand) {
			return true
		}
	}
	return false
}
