package candidate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motorlot/recoengine/candidate"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, candidate.Clamp(-1))
	assert.Equal(t, 1.0, candidate.Clamp(1.5))
	assert.Equal(t, 0.5, candidate.Clamp(0.5))
	assert.Equal(t, 0.0, candidate.Clamp(0))
	assert.Equal(t, 1.0, candidate.Clamp(1))
}

func TestClampAll(t *testing.T) {
	in := []candidate.Candidate{
		{VehicleID: "v1", Score: 1.4},
		{VehicleID: "v2", Score: -0.2},
		{VehicleID: "v3", Score: 0.4},
	}
	out := candidate.ClampAll(in)
	assert.Equal(t, 1.0, out[0].Score)
	assert.Equal(t, 0.0, out[1].Score)
	assert.Equal(t, 0.4, out[2].Score)
	// Original slice is untouched.
	assert.Equal(t, 1.4, in[0].Score)
}
