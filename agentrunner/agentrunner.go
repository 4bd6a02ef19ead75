// Package agentrunner executes one registered analyzer plugin against a
// UserProfile and surfaces its lifecycle as agent_progress events on an
// EventBus.
package agentrunner

import (
	"context"
	"time"

	"github.com/motorlot/recoengine/candidate"
	"github.com/motorlot/recoengine/eventbus"
	"github.com/motorlot/recoengine/internal/runloop"
	"github.com/motorlot/recoengine/profile"
	"github.com/motorlot/recoengine/recoerrors"
)

// Result is what an Analyzer returns on success.
type Result struct {
	Candidates []candidate.Candidate
	Confidence float64
}

// Analyzer is the plugin contract every domain expert implements. The
// orchestrator provides no direct database access to analyzers — any data
// fetching is the analyzer's own concern.
type Analyzer interface {
	ID() string
	DisplayName() string
	Analyze(ctx context.Context, p profile.UserProfile) (Result, error)
}

// AgentResult is the immutable, owned-by-the-orchestrator outcome of one
// analyzer run.
type AgentResult struct {
	AgentID      string
	DisplayName  string
	Status       string // "ok" or "error"
	Confidence   float64
	Candidates   []candidate.Candidate
	Duration     time.Duration
	ErrorKind    string
	ErrorMessage string
}

// Runner executes a single Analyzer and reports its lifecycle to an
// EventBus as agent_progress events.
type Runner struct {
	bus      *eventbus.EventBus
	deadline time.Duration
}

// New creates a Runner publishing to bus with the given watchdog deadline.
func New(bus *eventbus.EventBus, deadline time.Duration) *Runner {
	return &Runner{bus: bus, deadline: deadline}
}

// Run executes analyzer against profile for the given session, emitting
// agent_progress{starting}, zero or more agent_progress{analyzing,p}, and
// exactly one terminal agent_progress{completed} or agent_progress{error}.
func (r *Runner) Run(ctx context.Context, sessionID string, analyzer Analyzer, p profile.UserProfile) AgentResult {
	sink := &agentSink{bus: r.bus, sessionID: sessionID, agentID: analyzer.ID()}

	outcome := runloop.Run(ctx, analyzer.DisplayName(), r.deadline, sink, func(
		runCtx context.Context, report runloop.Reporter,
	) ([]candidate.Candidate, float64, error) {
		res, err := analyzer.Analyze(runCtx, p)
		if err != nil {
			// An analyzer's own failure is always an analyzer_error on the
			// wire, per the taxonomy in spec section 7 — timeout and
			// cancellation are classified upstream by runloop.Run itself,
			// never surfaced to the task.
			return nil, 0, recoerrors.NewAnalyzerError(err.Error())
		}
		return res.Candidates, res.Confidence, nil
	})

	return AgentResult{
		AgentID:      analyzer.ID(),
		DisplayName:  analyzer.DisplayName(),
		Status:       status(outcome.OK),
		Confidence:   outcome.Confidence,
		Candidates:   outcome.Candidates,
		Duration:     outcome.Duration,
		ErrorKind:    outcome.ErrorKind,
		ErrorMessage: outcome.ErrorMessage,
	}
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// agentSink routes runloop lifecycle callbacks to agent_progress events.
type agentSink struct {
	bus       *eventbus.EventBus
	sessionID string
	agentID   string
}

func (s *agentSink) Starting(ctx context.Context) {
	s.bus.Publish(s.sessionID, eventbus.NewAgentProgress(s.sessionID, s.agentID, eventbus.StatusStarting, 0, "starting"))
}

func (s *agentSink) Progress(ctx context.Context, progress float64, message string) {
	s.bus.Publish(s.sessionID, eventbus.NewAgentProgress(s.sessionID, s.agentID, eventbus.StatusAnalyzing, progress, message))
}

func (s *agentSink) Completed(ctx context.Context) {
	s.bus.Publish(s.sessionID, eventbus.NewAgentProgress(s.sessionID, s.agentID, eventbus.StatusCompleted, 1.0, ""))
}

func (s *agentSink) Error(ctx context.Context, kind, message string) {
	evt := eventbus.NewAgentProgress(s.sessionID, s.agentID, eventbus.StatusError, 0, message)
	evt.ErrorKind = kind
	evt.ErrorMessage = message
	s.bus.Publish(s.sessionID, evt)
}
