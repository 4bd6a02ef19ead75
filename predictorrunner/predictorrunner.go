// Package predictorrunner executes the collaborative-filtering predictor
// plugin. Its contract mirrors agentrunner's, but it routes lifecycle
// notifications to predictor_progress / predictor_completed /
// predictor_error events instead of a single status-tagged event type, per
// the predictor's distinct event-routing requirement.
package predictorrunner

import (
	"context"
	"time"

	"github.com/motorlot/recoengine/candidate"
	"github.com/motorlot/recoengine/eventbus"
	"github.com/motorlot/recoengine/internal/runloop"
	"github.com/motorlot/recoengine/profile"
	"github.com/motorlot/recoengine/recoerrors"
)

// Result is what a Predictor returns on success.
type Result struct {
	Candidates []candidate.Candidate
	Confidence float64
}

// Predictor is the plugin contract for the collaborative-filtering model,
// treated by the orchestrator as a black box returning a ranked list with
// a single confidence scalar.
type Predictor interface {
	Name() string
	Predict(ctx context.Context, p profile.UserProfile) (Result, error)
}

// PredictorResult is the immutable outcome of one predictor run.
type PredictorResult struct {
	Name         string
	Status       string
	Confidence   float64
	Candidates   []candidate.Candidate
	Duration     time.Duration
	ErrorKind    string
	ErrorMessage string
}

// Runner executes a Predictor and reports its lifecycle to an EventBus.
type Runner struct {
	bus      *eventbus.EventBus
	deadline time.Duration
}

// New creates a Runner publishing to bus with the given watchdog deadline.
func New(bus *eventbus.EventBus, deadline time.Duration) *Runner {
	return &Runner{bus: bus, deadline: deadline}
}

// Run executes predictor against profile for the given session.
func (r *Runner) Run(ctx context.Context, sessionID string, predictor Predictor, p profile.UserProfile) PredictorResult {
	sink := &predictorSink{bus: r.bus, sessionID: sessionID, name: predictor.Name()}

	outcome := runloop.Run(ctx, predictor.Name(), r.deadline, sink, func(
		runCtx context.Context, report runloop.Reporter,
	) ([]candidate.Candidate, float64, error) {
		res, err := predictor.Predict(runCtx, p)
		if err != nil {
			// Same taxonomy boundary as agentrunner: a predictor's own
			// failure is always an analyzer_error on the wire; timeout and
			// cancellation are classified upstream by runloop.Run itself.
			return nil, 0, recoerrors.NewAnalyzerError(err.Error())
		}
		return res.Candidates, res.Confidence, nil
	})

	status := "ok"
	if !outcome.OK {
		status = "error"
	}
	return PredictorResult{
		Name:         predictor.Name(),
		Status:       status,
		Confidence:   outcome.Confidence,
		Candidates:   outcome.Candidates,
		Duration:     outcome.Duration,
		ErrorKind:    outcome.ErrorKind,
		ErrorMessage: outcome.ErrorMessage,
	}
}

// predictorSink routes runloop lifecycle callbacks to the predictor's
// distinct event types.
type predictorSink struct {
	bus       *eventbus.EventBus
	sessionID string
	name      string
}

func (s *predictorSink) Starting(ctx context.Context) {
	s.bus.Publish(s.sessionID, eventbus.NewPredictorProgress(s.sessionID, s.name, 0, "starting"))
}

func (s *predictorSink) Progress(ctx context.Context, progress float64, message string) {
	s.bus.Publish(s.sessionID, eventbus.NewPredictorProgress(s.sessionID, s.name, progress, message))
}

func (s *predictorSink) Completed(ctx context.Context) {
	s.bus.Publish(s.sessionID, eventbus.NewPredictorCompleted(s.sessionID, s.name))
}

func (s *predictorSink) Error(ctx context.Context, kind, message string) {
	s.bus.Publish(s.sessionID, eventbus.NewPredictorError(s.sessionID, s.name, kind, message))
}
