package log_test

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/motorlot/recoengine/log"
)

type recordingLogger struct {
	calls []string
}

func (r *recordingLogger) Debug(args ...any)                  { r.calls = append(r.calls, "debug") }
func (r *recordingLogger) Debugf(format string, args ...any)  { r.calls = append(r.calls, "debugf") }
func (r *recordingLogger) Info(args ...any)                   { r.calls = append(r.calls, "info") }
func (r *recordingLogger) Infof(format string, args ...any)   { r.calls = append(r.calls, "infof") }
func (r *recordingLogger) Warn(args ...any)                   { r.calls = append(r.calls, "warn") }
func (r *recordingLogger) Warnf(format string, args ...any)   { r.calls = append(r.calls, "warnf") }
func (r *recordingLogger) Error(args ...any)                  { r.calls = append(r.calls, "error") }
func (r *recordingLogger) Errorf(format string, args ...any)  { r.calls = append(r.calls, "errorf") }

func TestPackageLevelHelpersDelegateToDefault(t *testing.T) {
	original := log.Default
	t.Cleanup(func() { log.Default = original })

	rec := &recordingLogger{}
	log.Default = rec

	log.Debug("x")
	log.Debugf("x")
	log.Info("x")
	log.Infof("x")
	log.Warn("x")
	log.Warnf("x")
	log.Error("x")
	log.Errorf("x")

	want := []string{"debug", "debugf", "info", "infof", "warn", "warnf", "error", "errorf"}
	if len(rec.calls) != len(want) {
		t.Fatalf("got %d calls, want %d: %v", len(rec.calls), len(want), rec.calls)
	}
	for i, c := range want {
		if rec.calls[i] != c {
			t.Fatalf("call %d = %q, want %q", i, rec.calls[i], c)
		}
	}
}

func TestSetLevel(t *testing.T) {
	cases := []struct {
		in string
	}{
		{log.LevelDebug},
		{log.LevelInfo},
		{log.LevelWarn},
		{log.LevelError},
		{log.LevelFatal},
		{"unknown"},
	}
	for _, c := range cases {
		// SetLevel must not panic for any input, including unrecognized levels.
		log.SetLevel(c.in)
	}
	_ = zapcore.InfoLevel
}
