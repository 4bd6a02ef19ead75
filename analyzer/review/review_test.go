package review_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorlot/recoengine/analyzer/review"
	"github.com/motorlot/recoengine/profile"
)

func TestAnalyzeReturnsEveryRatedListingRegardlessOfBudget(t *testing.T) {
	a := review.New()
	res, err := a.Analyze(context.Background(), profile.UserProfile{Budget: profile.Budget{Max: 1}})
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 5)
	assert.Equal(t, 0.65, res.Confidence)
	assert.Equal(t, "v3", res.Candidates[0].VehicleID)
}
