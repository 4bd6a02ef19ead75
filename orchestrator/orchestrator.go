// Package orchestrator glues analyzer and predictor runners to the Fuser
// and the EventBus: it is the single public entry point from a
// recommendation request to a terminal event.
package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/motorlot/recoengine/agentrunner"
	"github.com/motorlot/recoengine/config"
	"github.com/motorlot/recoengine/eventbus"
	"github.com/motorlot/recoengine/fuser"
	"github.com/motorlot/recoengine/log"
	"github.com/motorlot/recoengine/predictorrunner"
	"github.com/motorlot/recoengine/profile"
	"github.com/motorlot/recoengine/recoerrors"
)

// Orchestrator runs every registered analyzer and the predictor
// concurrently against one profile, then fuses their outputs.
type Orchestrator struct {
	bus             *eventbus.EventBus
	cfg             config.Config
	analyzers       []agentrunner.Analyzer
	predictor       predictorrunner.Predictor
	agentRunner     *agentrunner.Runner
	predictorRunner *predictorrunner.Runner

	pool *ants.PoolWithFunc
}

// New builds an Orchestrator bounding runner concurrency to
// cfg.RunnerPoolSize. predictor may be nil if no collaborative-filtering
// plugin is registered.
func New(bus *eventbus.EventBus, cfg config.Config, analyzers []agentrunner.Analyzer, predictor predictorrunner.Predictor) (*Orchestrator, error) {
	o := &Orchestrator{
		bus:             bus,
		cfg:             cfg,
		analyzers:       analyzers,
		predictor:       predictor,
		agentRunner:     agentrunner.New(bus, cfg.RunnerDeadline),
		predictorRunner: predictorrunner.New(bus, cfg.RunnerDeadline),
	}

	pool, err := newRunnerPool(cfg.RunnerPoolSize)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: create runner pool: %w", err)
	}
	o.pool = pool
	return o, nil
}

// Close releases the runner worker pool. Call once at process teardown.
func (o *Orchestrator) Close() {
	o.pool.Release()
}

// OpenSession opens (or returns the existing) session eagerly, so a
// transport Start handler can answer with {sessionId, streamPath} before
// Recommend is dispatched asynchronously.
func (o *Orchestrator) OpenSession(sessionID string) string {
	return o.bus.Open(sessionID).ID
}

// Recommend runs the full protocol: collaboration_started, concurrent
// analyzer/predictor fan-out, fusion, and a terminal event. It always
// closes the session before returning, whether it succeeds, partially
// fails, or is cancelled. limit overrides the configured fusion_top_k for
// this request alone; a value <= 0 leaves the configured default in place.
func (o *Orchestrator) Recommend(ctx context.Context, sessionID string, p profile.UserProfile, limit int) (fuser.FusedResult, error) {
	o.bus.Open(sessionID)
	o.bus.Publish(sessionID, eventbus.NewEvent(sessionID, eventbus.TypeCollaborationStarted))

	agentResults := make([]agentrunner.AgentResult, len(o.analyzers))
	var predictorResult *predictorrunner.PredictorResult

	// errgroup carries the await-all discipline: every runner's own error
	// is non-fatal and captured in its result, so each goroutine below
	// always returns nil — g.Wait only ever blocks until the last runner
	// finishes or the parent context is cancelled, it never short-circuits
	// on a single analyzer's failure.
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range o.analyzers {
		i, a := i, a
		g.Go(func() error {
			done := make(chan struct{})
			o.submit(func() {
				defer close(done)
				agentResults[i] = o.agentRunner.Run(gctx, sessionID, a, p)
			})
			<-done
			return nil
		})
	}
	if o.predictor != nil {
		g.Go(func() error {
			done := make(chan struct{})
			o.submit(func() {
				defer close(done)
				res := o.predictorRunner.Run(gctx, sessionID, o.predictor, p)
				predictorResult = &res
			})
			<-done
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		cancelErr := recoerrors.NewCancelledError("recommendation cancelled before fusion")
		o.bus.Publish(sessionID, eventbus.NewError(sessionID, recoerrors.KindCancelled, cancelErr.Error()))
		o.bus.Close(sessionID)
		return fuser.FusedResult{}, cancelErr
	}

	topK := o.cfg.FusionTopK
	if limit > 0 {
		topK = limit
	}

	o.bus.Publish(sessionID, eventbus.NewEvent(sessionID, eventbus.TypeFusionStarted))
	result, err := o.fuse(agentResults, predictorResult, topK)
	if err != nil {
		o.bus.Publish(sessionID, eventbus.NewError(sessionID, recoerrors.Kind(err), err.Error()))
		o.bus.Close(sessionID)
		return fuser.FusedResult{}, err
	}
	o.bus.Publish(sessionID, eventbus.NewEvent(sessionID, eventbus.TypeFusionCompleted))

	o.bus.Publish(sessionID, eventbus.NewRecommendationCompleted(sessionID, result))
	o.bus.Close(sessionID)
	return result, nil
}

// fuse invokes the Fuser with panic recovery: a Fuser panic is the one
// thing (besides cancellation) that is fatal to a recommendation.
func (o *Orchestrator) fuse(agentResults []agentrunner.AgentResult, predictorResult *predictorrunner.PredictorResult, topK int) (result fuser.FusedResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("orchestrator: fuser panicked: %v\n%s", r, string(debug.Stack()))
			err = recoerrors.NewInternalError(fmt.Sprintf("fusion failed: %v", r))
		}
	}()
	result = fuser.Fuse(agentResults, predictorResult, o.cfg.PerSourceTake, topK)
	return result, nil
}

// submit runs fn on the bounded worker pool, falling back to running it
// inline if Invoke refuses the task with an error — fan-out must never
// silently drop a registered analyzer.
func (o *Orchestrator) submit(fn func()) {
	param := runnerParamPool.Get().(*runnerParam)
	param.fn = fn
	if err := o.pool.Invoke(param); err != nil {
		param.fn = nil
		runnerParamPool.Put(param)
		fn()
	}
}

// runnerParam carries one queued closure through the ants pool, pooled to
// avoid an allocation per fan-out task.
type runnerParam struct {
	fn func()
}

func (p *runnerParam) reset() {
	p.fn = nil
}

var runnerParamPool = &sync.Pool{
	New: func() any { return new(runnerParam) },
}

func newRunnerPool(size int) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		size = config.Default().RunnerPoolSize
	}
	return ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*runnerParam)
		if !ok {
			panic("orchestrator: runner pool args type error")
		}
		fn := param.fn
		param.reset()
		runnerParamPool.Put(param)
		fn()
	})
}
