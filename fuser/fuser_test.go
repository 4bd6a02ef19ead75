package fuser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorlot/recoengine/agentrunner"
	"github.com/motorlot/recoengine/candidate"
	"github.com/motorlot/recoengine/fuser"
	"github.com/motorlot/recoengine/predictorrunner"
)

func ok(agentID string, confidence float64, cands ...candidate.Candidate) agentrunner.AgentResult {
	return agentrunner.AgentResult{AgentID: agentID, Status: "ok", Confidence: confidence, Candidates: cands}
}

func failed(agentID string) agentrunner.AgentResult {
	return agentrunner.AgentResult{AgentID: agentID, Status: "error"}
}

func TestFuseDedupesAndWeightsByConfidenceMean(t *testing.T) {
	agents := []agentrunner.AgentResult{
		ok("vehicle", 0.9, candidate.Candidate{VehicleID: "v1", Score: 0.8}),
		ok("finance", 0.7, candidate.Candidate{VehicleID: "v1", Score: 0.6}),
	}

	result := fuser.Fuse(agents, nil, fuser.PerSourceTake, fuser.TopK)
	require.Len(t, result.Candidates, 1)

	row := result.Candidates[0]
	assert.Equal(t, "v1", row.VehicleID)
	// weight = mean(0.9, 0.7) = 0.8
	assert.InDelta(t, 0.8, row.Weight, 1e-9)
	// score = (0.9*0.8 + 0.7*0.6)/(0.9+0.7) = (0.72+0.42)/1.6 = 0.7125
	assert.InDelta(t, 0.7125, row.Score, 1e-9)
	assert.ElementsMatch(t, []string{"vehicle", "finance"}, row.ContributingIDs)
	assert.Equal(t, "weighted_fusion_v1", result.FusionMethod)
}

func TestFuseRanksByWeightTimesScoreDescending(t *testing.T) {
	agents := []agentrunner.AgentResult{
		ok("vehicle", 0.9, candidate.Candidate{VehicleID: "v1", Score: 0.9}), // product 0.81
		ok("finance", 0.3, candidate.Candidate{VehicleID: "v2", Score: 0.4}), // product 0.12
	}
	result := fuser.Fuse(agents, nil, fuser.PerSourceTake, fuser.TopK)
	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "v1", result.Candidates[0].VehicleID)
	assert.Equal(t, "v2", result.Candidates[1].VehicleID)
}

func TestFuseTieBreaksBySourceCountThenVehicleID(t *testing.T) {
	agents := []agentrunner.AgentResult{
		ok("vehicle", 0.5, candidate.Candidate{VehicleID: "vz", Score: 0.5}),
		ok("finance", 0.5, candidate.Candidate{VehicleID: "va", Score: 0.5}),
		ok("review", 0.5, candidate.Candidate{VehicleID: "va", Score: 0.5}),
	}
	result := fuser.Fuse(agents, nil, fuser.PerSourceTake, fuser.TopK)
	require.Len(t, result.Candidates, 2)
	// va has two contributing sources and the same weight*score as vz; more
	// sources wins the tie.
	assert.Equal(t, "va", result.Candidates[0].VehicleID)
	assert.Equal(t, "vz", result.Candidates[1].VehicleID)
}

func TestFuseIgnoresErroredSourcesButKeepsPartialResults(t *testing.T) {
	agents := []agentrunner.AgentResult{
		failed("vehicle"),
		ok("finance", 0.6, candidate.Candidate{VehicleID: "v3", Score: 0.5}),
	}
	result := fuser.Fuse(agents, nil, fuser.PerSourceTake, fuser.TopK)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "v3", result.Candidates[0].VehicleID)
	assert.NotContains(t, result.PerSourceContribution, "vehicle")
}

func TestFuseAllSourcesFailedReturnsEmpty(t *testing.T) {
	agents := []agentrunner.AgentResult{failed("vehicle"), failed("finance")}
	result := fuser.Fuse(agents, nil, fuser.PerSourceTake, fuser.TopK)
	assert.Equal(t, "empty", result.FusionMethod)
	assert.Empty(t, result.Candidates)
}

func TestFuseIncludesPredictorContribution(t *testing.T) {
	agents := []agentrunner.AgentResult{
		ok("vehicle", 0.5, candidate.Candidate{VehicleID: "v1", Score: 0.5}),
	}
	predictor := &predictorrunner.PredictorResult{
		Name: "collaborative", Status: "ok", Confidence: 0.4,
		Candidates: []candidate.Candidate{{VehicleID: "v9", Score: 0.9}},
	}
	result := fuser.Fuse(agents, predictor, fuser.PerSourceTake, fuser.TopK)
	assert.Equal(t, 0.4, result.PredictorContribution)
	require.Len(t, result.Candidates, 2)
}

func TestFuseTruncatesToTopK(t *testing.T) {
	var agents []agentrunner.AgentResult
	for i := 0; i < 15; i++ {
		id := string(rune('a' + i))
		agents = append(agents, ok("src"+id, 0.5, candidate.Candidate{VehicleID: "v" + id, Score: 0.5}))
	}
	result := fuser.Fuse(agents, nil, fuser.PerSourceTake, 10)
	assert.Len(t, result.Candidates, 10)
}

func TestFuseOnlyTakesTopNPerSourceBeforeDedup(t *testing.T) {
	agents := []agentrunner.AgentResult{
		ok("vehicle", 0.9,
			candidate.Candidate{VehicleID: "v1", Score: 0.9},
			candidate.Candidate{VehicleID: "v2", Score: 0.8},
			candidate.Candidate{VehicleID: "v3", Score: 0.7},
			candidate.Candidate{VehicleID: "v4", Score: 0.1}, // beyond PerSourceTake=3
		),
	}
	result := fuser.Fuse(agents, nil, fuser.PerSourceTake, fuser.TopK)
	require.Len(t, result.Candidates, 3)
	for _, c := range result.Candidates {
		assert.NotEqual(t, "v4", c.VehicleID)
	}
}
