// Package fuser deterministically merges agent and predictor candidate
// lists into a single ranked result, per the fixed averaging rule: weight
// is the arithmetic mean of contributing confidences, score is the
// weight-weighted average of contributing scores.
package fuser

import (
	"sort"

	"github.com/motorlot/recoengine/agentrunner"
	"github.com/motorlot/recoengine/candidate"
	"github.com/motorlot/recoengine/predictorrunner"
)

// PerSourceTake is the number of top candidates drawn from each successful
// source before deduplication.
const PerSourceTake = 3

// TopK is the number of candidates returned after fusion.
const TopK = 10

// FinalCandidate is one ranked row of a FusedResult.
type FinalCandidate struct {
	VehicleID       string   `json:"vehicleId"`
	Score           float64  `json:"score"`
	Weight          float64  `json:"weight"`
	ContributingIDs []string `json:"contributingSources"`
}

// FusedResult is the terminal payload of a recommendation.
type FusedResult struct {
	Candidates            []FinalCandidate   `json:"candidates"`
	FusionMethod          string             `json:"fusionMethod"`
	PerSourceContribution map[string]float64 `json:"perSourceContribution"`
	PredictorContribution float64            `json:"predictorContribution,omitempty"`
}

type contribution struct {
	sourceID string
	score    float64
	weight   float64
}

// Fuse merges agentResults and an optional predictorResult (nil if the
// predictor did not run or errored) into a single ranked FusedResult.
func Fuse(agentResults []agentrunner.AgentResult, predictorResult *predictorrunner.PredictorResult, perSourceTake, topK int) FusedResult {
	if perSourceTake <= 0 {
		perSourceTake = PerSourceTake
	}
	if topK <= 0 {
		topK = TopK
	}

	rows := make(map[string][]contribution)
	perSource := make(map[string]float64)
	var predictorContribution float64
	anySucceeded := false

	for _, ar := range agentResults {
		if ar.Status != "ok" {
			continue
		}
		anySucceeded = true
		perSource[ar.AgentID] = ar.Confidence
		for _, c := range take(ar.Candidates, perSourceTake) {
			rows[c.VehicleID] = append(rows[c.VehicleID], contribution{
				sourceID: ar.AgentID,
				score:    candidate.Clamp(c.Score),
				weight:   candidate.Clamp(ar.Confidence),
			})
		}
	}

	if predictorResult != nil && predictorResult.Status == "ok" {
		anySucceeded = true
		predictorContribution = predictorResult.Confidence
		for _, c := range take(predictorResult.Candidates, perSourceTake) {
			rows[c.VehicleID] = append(rows[c.VehicleID], contribution{
				sourceID: predictorResult.Name,
				score:    candidate.Clamp(c.Score),
				weight:   candidate.Clamp(predictorResult.Confidence),
			})
		}
	}

	if !anySucceeded {
		return FusedResult{
			Candidates:            []FinalCandidate{},
			FusionMethod:          "empty",
			PerSourceContribution: perSource,
		}
	}

	merged := make([]FinalCandidate, 0, len(rows))
	for vehicleID, contribs := range rows {
		merged = append(merged, mergeRow(vehicleID, contribs))
	}

	sort.Slice(merged, func(i, j int) bool {
		pi := merged[i].Weight * merged[i].Score
		pj := merged[j].Weight * merged[j].Score
		if pi != pj {
			return pi > pj
		}
		if len(merged[i].ContributingIDs) != len(merged[j].ContributingIDs) {
			return len(merged[i].ContributingIDs) > len(merged[j].ContributingIDs)
		}
		return merged[i].VehicleID < merged[j].VehicleID
	})

	if len(merged) > topK {
		merged = merged[:topK]
	}

	return FusedResult{
		Candidates:            merged,
		FusionMethod:          "weighted_fusion_v1",
		PerSourceContribution: perSource,
		PredictorContribution: predictorContribution,
	}
}

// mergeRow collapses every contribution to vehicleID into a single row:
// weight is the arithmetic mean of contributing weights; score is the
// weight-weighted average of contributing scores, clamped to [0,1].
func mergeRow(vehicleID string, contribs []contribution) FinalCandidate {
	var weightSum, weightedScoreSum float64
	ids := make([]string, 0, len(contribs))
	for _, c := range contribs {
		weightSum += c.weight
		weightedScoreSum += c.weight * c.score
		ids = append(ids, c.sourceID)
	}

	meanWeight := weightSum / float64(len(contribs))
	var score float64
	if weightSum > 0 {
		score = weightedScoreSum / weightSum
	}

	return FinalCandidate{
		VehicleID:       vehicleID,
		Score:           candidate.Clamp(score),
		Weight:          candidate.Clamp(meanWeight),
		ContributingIDs: ids,
	}
}

func take(cands []candidate.Candidate, n int) []candidate.Candidate {
	if len(cands) <= n {
		return cands
	}
	return cands[:n]
}
