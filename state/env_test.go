package state

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"wfc/config"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
	if env.Cfg != nil || env.Rpt != nil || env.Log != nil {
		t.Error("fresh environment must not have configuration, report or log")
	}
}

func TestEnvFromContext_Missing(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when env not in context")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_RunID(t *testing.T) {
	first := EnvFromContext(ContextWithEnv(context.Background()))
	second := EnvFromContext(ContextWithEnv(context.Background()))

	id, err := uuid.Parse(first.RunID)
	if err != nil {
		t.Fatalf("RunID %q is not uuid: %v", first.RunID, err)
	}
	if id.Version() != 7 {
		t.Errorf("RunID version = %d, want 7", id.Version())
	}
	if first.RunID == second.RunID {
		t.Error("RunID must differ between environments")
	}
	if first.RunID > second.RunID {
		t.Errorf("RunID must be time ordered: %s > %s", first.RunID, second.RunID)
	}
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))

	time.Sleep(10 * time.Millisecond)
	uptime := env.Uptime()

	if uptime < 10*time.Millisecond {
		t.Errorf("Uptime() = %v, expected at least 10ms", uptime)
	}
	if uptime > 5*time.Second {
		t.Errorf("Uptime() = %v, unexpectedly large", uptime)
	}
}

func TestLocalEnv_Named(t *testing.T) {
	env := &LocalEnv{}
	if env.Named("crawl") == nil {
		t.Fatal("Named() without log returned nil")
	}

	core, logs := observer.New(zapcore.DebugLevel)
	env.Log = zap.New(core)
	env.Named("crawl").Info("hello")

	entries := logs.All()
	if len(entries) != 1 || entries[0].LoggerName != "crawl" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestLocalEnv_RedirectAndRestore(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	env := &LocalEnv{Log: zap.New(core)}

	env.RedirectStdLog()
	if env.restoreStdLog == nil {
		t.Fatal("Expected restoreStdLog to be set")
	}
	log.Print("from standard log")
	env.RestoreStdLog()

	if env.restoreStdLog != nil {
		t.Error("restore function must be cleared")
	}
	if logs.FilterMessage("from standard log").Len() != 1 {
		t.Errorf("standard log output was not redirected: %+v", logs.All())
	}

	// second restore is harmless
	env.RestoreStdLog()
}

func TestLocalEnv_NoLogger(t *testing.T) {
	env := &LocalEnv{Cfg: &config.Config{Version: 1}}
	env.RedirectStdLog()
	if env.restoreStdLog != nil {
		t.Error("restoreStdLog must not be set without logger")
	}
	env.RestoreStdLog()
}
