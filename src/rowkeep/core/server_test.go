package core

import (
	"context"
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/bitswalk/rowkeep/src/common/paths"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	rt, err := openRuntime(context.Background())
	if err != nil {
		t.Fatalf("failed to open runtime: %v", err)
	}
	t.Cleanup(func() { rt.Close() })

	return NewServer(rt, nil)
}

func TestServer_RunListenErrorStopsJobs(t *testing.T) {
	setupTestConfig(t)

	// Hold the port so ListenAndServe fails immediately
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	viper.Set("server.bind", "127.0.0.1")
	viper.Set("server.port", ln.Addr().(*net.TCPAddr).Port)
	t.Cleanup(func() {
		viper.Set("server.bind", nil)
		viper.Set("server.port", nil)
	})

	s := newTestServer(t)

	var ticks atomic.Int64
	s.every(time.Millisecond, func() { ticks.Add(1) })

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error when the port is taken")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after listen failure")
	}

	select {
	case <-s.stop:
	default:
		t.Fatal("expected background jobs to be stopped")
	}

	before := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if after := ticks.Load(); after != before {
		t.Fatalf("job kept running after Run returned: %d -> %d ticks", before, after)
	}

	// A second shutdown is harmless
	if err := s.Shutdown(); err != nil {
		t.Fatalf("second shutdown failed: %v", err)
	}
}

func TestServer_Persist(t *testing.T) {
	setupTestConfig(t)

	path := filepath.Join(t.TempDir(), "state", "rowkeep.db")
	viper.Set("database.dsn", "")
	viper.Set("database.path", path)
	viper.Set("database.load_on_start", false)
	t.Cleanup(func() { viper.Set("database.load_on_start", nil) })

	s := newTestServer(t)
	if !s.runtime.database.InMemory() {
		t.Fatal("expected an in-memory database")
	}

	s.persist()
	if !paths.Exists(path) {
		t.Fatalf("expected database persisted to %s", path)
	}
	s.Shutdown()
}
