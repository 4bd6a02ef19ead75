package collaborative_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorlot/recoengine/predictor/collaborative"
	"github.com/motorlot/recoengine/profile"
)

func TestPredictReturnsFixedCoOccurrenceTable(t *testing.T) {
	p := collaborative.New()
	res, err := p.Predict(context.Background(), profile.UserProfile{})
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 3)
	assert.Equal(t, 0.5, res.Confidence)
	assert.Equal(t, "collaborative", p.Name())
}
