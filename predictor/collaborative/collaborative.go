// Package collaborative implements a sample predictor: a fixed
// co-occurrence table standing in for a trained collaborative-filtering
// model. It ignores the requester's stated preferences by design — that
// is precisely the gap a real recommender would close.
package collaborative

import (
	"context"

	"github.com/motorlot/recoengine/candidate"
	"github.com/motorlot/recoengine/predictorrunner"
	"github.com/motorlot/recoengine/profile"
)

// coOccurrence is a static "people who looked at similar profiles also
// liked" table.
var coOccurrence = []candidate.Candidate{
	{VehicleID: "v1", Score: 0.7, Reason: "frequently selected by similar profiles"},
	{VehicleID: "v3", Score: 0.6, Reason: "frequently selected by similar profiles"},
	{VehicleID: "v4", Score: 0.4, Reason: "occasionally selected by similar profiles"},
}

// Predictor is the sample collaborative-filtering plugin.
type Predictor struct{}

// New creates a collaborative Predictor.
func New() *Predictor { return &Predictor{} }

// Name identifies this predictor in events and fusion contributions.
func (p *Predictor) Name() string { return "collaborative" }

// Predict returns the fixed co-occurrence table unconditionally.
func (p *Predictor) Predict(ctx context.Context, _ profile.UserProfile) (predictorrunner.Result, error) {
	return predictorrunner.Result{Candidates: coOccurrence, Confidence: 0.5}, nil
}
