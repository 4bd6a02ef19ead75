// Package runloop holds the watchdog, panic-recovery and monotonic-progress
// machinery shared by agentrunner and predictorrunner. AgentRunner and
// PredictorRunner differ only in which Event types they route progress and
// terminal notifications to — runloop centralizes the actual execution
// protocol a ParallelAgent-style runner needs, generalized from the
// teacher's sub-agent goroutine (panic recovery, context derivation) to a
// single-task watchdog shape.
package runloop

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/motorlot/recoengine/candidate"
	"github.com/motorlot/recoengine/log"
	"github.com/motorlot/recoengine/recoerrors"
)

// Reporter lets a Task report incremental progress. Values <= the last
// reported progress are silently dropped by Run so downstream consumers
// always observe a non-decreasing sequence, independent of what the task
// itself reports.
type Reporter func(progress float64, message string)

// Task is the unit of work a runner executes: an analyzer or predictor
// plugin call. It must honor ctx cancellation.
type Task func(ctx context.Context, report Reporter) (cands []candidate.Candidate, confidence float64, err error)

// Sink receives the lifecycle notifications Run emits, so AgentRunner and
// PredictorRunner can route them to their own distinct Event shapes.
type Sink interface {
	Starting(ctx context.Context)
	Progress(ctx context.Context, progress float64, message string)
	Completed(ctx context.Context)
	Error(ctx context.Context, kind, message string)
}

// Outcome is the result of one Run call, independent of how the caller
// wraps it into an AgentResult or PredictorResult.
type Outcome struct {
	OK           bool
	Confidence   float64
	Candidates   []candidate.Candidate
	Duration     time.Duration
	ErrorKind    string
	ErrorMessage string
}

// Run executes task under a watchdog deadline, recovers panics, enforces
// monotonically non-decreasing progress, clamps confidence and every
// candidate score to [0,1], and reports the whole lifecycle through sink.
// The final Sink call is always exactly one of Completed or Error.
func Run(ctx context.Context, name string, deadline time.Duration, sink Sink, task Task) (outcome Outcome) {
	start := time.Now()
	sink.Starting(ctx)

	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	type result struct {
		cands []candidate.Candidate
		conf  float64
		err   error
	}
	done := make(chan result, 1)

	var lastProgress float64
	var reported bool
	var finished atomic.Bool
	report := func(progress float64, message string) {
		if finished.Load() {
			return
		}
		if reported && progress <= lastProgress {
			return
		}
		reported = true
		lastProgress = progress
		sink.Progress(runCtx, candidate.Clamp(progress), message)
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("runloop: task %q panicked: %v\n%s", name, r, string(debug.Stack()))
				done <- result{err: recoerrors.NewInternalError(fmt.Sprintf("internal_error: %v", r))}
			}
		}()
		cands, conf, err := task(runCtx, report)
		done <- result{cands: cands, conf: conf, err: err}
	}()

	select {
	case res := <-done:
		finished.Store(true)
		outcome.Duration = time.Since(start)
		if res.err != nil {
			return finishError(ctx, sink, outcome, res.err)
		}
		outcome.OK = true
		outcome.Confidence = candidate.Clamp(res.conf)
		outcome.Candidates = candidate.ClampAll(res.cands)
		sink.Completed(ctx)
		return outcome
	case <-runCtx.Done():
		finished.Store(true)
		outcome.Duration = time.Since(start)
		if ctx.Err() != nil {
			// Parent cancellation, not a watchdog expiry; the orchestrator
			// handles this as a cancellation, not a per-runner timeout.
			return finishError(ctx, sink, outcome, recoerrors.NewCancelledError("cancelled"))
		}
		return finishError(ctx, sink, outcome, recoerrors.NewTimeoutError(fmt.Sprintf("%s exceeded deadline %s", name, deadline)))
	}
}

func finishError(ctx context.Context, sink Sink, outcome Outcome, err error) Outcome {
	kind := recoerrors.Kind(err)
	outcome.ErrorKind = kind
	outcome.ErrorMessage = err.Error()
	sink.Error(ctx, kind, err.Error())
	return outcome
}
