// Package main wires the sample analyzers and predictor to the
// orchestrator and serves the HTTP transport surface.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/motorlot/recoengine/agentrunner"
	"github.com/motorlot/recoengine/analyzer/finance"
	"github.com/motorlot/recoengine/analyzer/review"
	"github.com/motorlot/recoengine/analyzer/vehicle"
	"github.com/motorlot/recoengine/config"
	"github.com/motorlot/recoengine/eventbus"
	"github.com/motorlot/recoengine/log"
	"github.com/motorlot/recoengine/orchestrator"
	"github.com/motorlot/recoengine/predictor/collaborative"
	"github.com/motorlot/recoengine/transport"
)

var (
	addr           = flag.String("addr", ":8080", "HTTP listen address")
	logLevel       = flag.String("log-level", "info", "log level: debug, info, warn, error")
	runnerDeadline = flag.Duration("runner-deadline", 10*time.Second, "watchdog deadline for a single analyzer or predictor run")
	runnerPoolSize = flag.Int("runner-pool-size", 64, "max concurrent analyzer/predictor goroutines")
)

func main() {
	flag.Parse()
	log.SetLevel(*logLevel)

	cfg := config.New(
		config.WithRunnerDeadline(*runnerDeadline),
		config.WithRunnerPoolSize(*runnerPoolSize),
	)

	bus := eventbus.New(cfg)
	defer bus.Shutdown()

	orch, err := orchestrator.New(bus, cfg, []agentrunner.Analyzer{
		vehicle.New(),
		finance.New(),
		review.New(),
	}, collaborative.New())
	if err != nil {
		log.Errorf("recoengine: build orchestrator: %v", err)
		os.Exit(1)
	}
	defer orch.Close()

	srv := transport.New(bus, orch, nil)

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: srv.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		log.Infof("recoengine: listening on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("recoengine: server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("recoengine: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("recoengine: graceful shutdown failed: %v", err)
	}
}
