package vehicle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorlot/recoengine/analyzer/vehicle"
	"github.com/motorlot/recoengine/profile"
)

func TestAnalyzeFiltersByBudgetAndYear(t *testing.T) {
	a := vehicle.New()
	res, err := a.Analyze(context.Background(), profile.UserProfile{
		Budget:      profile.Budget{Max: 20000},
		Preferences: profile.Preferences{MinYear: 2018},
	})
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, c := range res.Candidates {
		ids[c.VehicleID] = true
	}
	assert.True(t, ids["v1"])
	assert.True(t, ids["v4"])
	assert.False(t, ids["v3"]) // over budget
	assert.False(t, ids["v2"]) // below MinYear
	assert.Greater(t, res.Confidence, 0.0)
}

func TestAnalyzeFiltersByBrand(t *testing.T) {
	a := vehicle.New()
	res, err := a.Analyze(context.Background(), profile.UserProfile{
		Preferences: profile.Preferences{Brands: []string{"toyota"}},
	})
	require.NoError(t, err)
	for _, c := range res.Candidates {
		assert.Contains(t, []string{"v1", "v4"}, c.VehicleID)
	}
}

func TestAnalyzeNoMatchesYieldsZeroConfidence(t *testing.T) {
	a := vehicle.New()
	res, err := a.Analyze(context.Background(), profile.UserProfile{
		Budget: profile.Budget{Max: 100},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, 0.0, res.Confidence)
}
