package audit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger(t *testing.T, rotation RotationConfig) *FileLogger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(path, rotation)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func TestEventBuilder(t *testing.T) {
	event := NewEvent("alice", "gateway", "dns", "add").
		WithTarget("web.lan").
		WithSuccess()

	if event.ID == "" {
		t.Error("expected generated id")
	}
	if event.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
	if event.Router != "gateway" || event.Module != "dns" || event.Operation != "add" {
		t.Errorf("unexpected event: %+v", event)
	}
	if !event.Success || event.Error != "" {
		t.Errorf("expected success, got %+v", event)
	}

	failed := NewEvent("alice", "gateway", "dns", "delete").
		WithResult(errors.New("entry not found"))
	if failed.Success || failed.Error != "entry not found" {
		t.Errorf("expected failure, got %+v", failed)
	}
	if ok := NewEvent("alice", "gateway", "dns", "add").WithResult(nil); !ok.Success {
		t.Error("WithResult(nil) should mark success")
	}
}

func TestLogAndQuery(t *testing.T) {
	logger := testLogger(t, RotationConfig{})

	events := []*Event{
		NewEvent("alice", "gateway", "dns", "add").WithTarget("web.lan").WithSuccess(),
		NewEvent("bob", "gateway", "dns", "delete").WithTarget("old.lan").WithError(errors.New("not found")),
		NewEvent("alice", "branch", "dhcp", "add").WithTarget("AA:BB:CC:00:00:01").WithSuccess(),
	}
	for _, e := range events {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	t.Run("all", func(t *testing.T) {
		got, err := logger.Query(Filter{})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 events, got %d", len(got))
		}
	})

	t.Run("by router", func(t *testing.T) {
		got, err := logger.Query(Filter{Router: "branch"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 1 || got[0].Module != "dhcp" {
			t.Errorf("router filter failed: %v", got)
		}
	})

	t.Run("by user", func(t *testing.T) {
		got, err := logger.Query(Filter{User: "alice"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("user filter failed: %v", got)
		}
	})

	t.Run("by module", func(t *testing.T) {
		got, err := logger.Query(Filter{Module: "dhcp"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 1 || got[0].Router != "branch" {
			t.Errorf("module filter failed: %v", got)
		}
	})

	t.Run("by module set", func(t *testing.T) {
		got, err := logger.Query(Filter{Module: "dhcp, firewall"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 1 || got[0].Module != "dhcp" {
			t.Errorf("module set filter failed: %v", got)
		}
	})

	t.Run("failures only", func(t *testing.T) {
		got, err := logger.Query(Filter{FailureOnly: true})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 1 || got[0].Error != "not found" {
			t.Errorf("failure filter failed: %v", got)
		}
	})

	t.Run("limit keeps newest", func(t *testing.T) {
		got, err := logger.Query(Filter{Limit: 2})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 events, got %d", len(got))
		}
		if got[1].Module != "dhcp" {
			t.Errorf("expected most recent event last, got %+v", got[1])
		}
	})

	t.Run("time window", func(t *testing.T) {
		got, err := logger.Query(Filter{StartTime: time.Now().Add(time.Hour)})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no events in future window, got %d", len(got))
		}
	})
}

func TestQueryMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer logger.Close()
	os.Remove(path)

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query on missing file: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestQuerySkipsMalformedLines(t *testing.T) {
	logger := testLogger(t, RotationConfig{})
	if err := logger.Log(NewEvent("alice", "gateway", "dns", "add").WithSuccess()); err != nil {
		t.Fatalf("Log: %v", err)
	}

	f, err := os.OpenFile(logger.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprintln(f, "{not json")
	f.Close()

	if err := logger.Log(NewEvent("bob", "gateway", "dns", "delete").WithSuccess()); err != nil {
		t.Fatalf("Log: %v", err)
	}

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected malformed line skipped, got %d events", len(events))
	}
}

func TestRotation(t *testing.T) {
	logger := testLogger(t, RotationConfig{MaxSize: 200, MaxBackups: 2})

	for i := 0; i < 20; i++ {
		event := NewEvent("alice", "gateway", "dns", "add").
			WithTarget(fmt.Sprintf("host-%02d.lan", i)).
			WithSuccess()
		if err := logger.Log(event); err != nil {
			t.Fatalf("Log %d: %v", i, err)
		}
	}

	info, err := os.Stat(logger.path)
	if err != nil {
		t.Fatalf("stat active log: %v", err)
	}
	if info.Size() > 1024 {
		t.Errorf("active log not rotated, size %d", info.Size())
	}

	matches, err := filepath.Glob(logger.path + ".*")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Error("expected rotated backups")
	}
	if len(matches) > 2 {
		t.Errorf("expected at most 2 backups, got %d", len(matches))
	}
}

func TestDefaultLogger(t *testing.T) {
	// No default configured: logging is a no-op, queries are empty.
	SetDefaultLogger(nil)
	if err := Log(NewEvent("alice", "gateway", "dns", "add")); err != nil {
		t.Fatalf("Log without default logger: %v", err)
	}
	events, err := Query(Filter{})
	if err != nil || len(events) != 0 {
		t.Fatalf("Query without default logger: %v %v", events, err)
	}

	logger := testLogger(t, RotationConfig{})
	SetDefaultLogger(logger)
	defer SetDefaultLogger(nil)

	if err := Log(NewEvent("alice", "gateway", "dns", "add").WithSuccess()); err != nil {
		t.Fatalf("Log: %v", err)
	}
	events, err = Query(Filter{User: "alice"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected one event, got %v", events)
	}
}
