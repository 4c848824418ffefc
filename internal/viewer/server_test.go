package viewer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"aviary/internal/sim"
)

func testConfig() Config {
	params := sim.DefaultParams()
	params.Animals = 3
	params.Foods = 2
	params.GenerationLength = 1000
	params.EyeCells = 3
	return Config{
		Addr:           "127.0.0.1:0",
		Seed:           1,
		StepsPerSecond: 200,
		Params:         params,
		Logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestNewServerValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Addr = ""
	if _, err := NewServer(cfg); err == nil {
		t.Fatal("expected error for empty addr")
	}

	cfg = testConfig()
	cfg.StepsPerSecond = 0
	if _, err := NewServer(cfg); err == nil {
		t.Fatal("expected error for zero steps per second")
	}
}

func TestServerStreamsWorldEvents(t *testing.T) {
	server, err := NewServer(testConfig())
	if err != nil {
		t.Fatalf("build server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	waitUntil(t, "server to bind", func() bool { return server.Addr() != "" })

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+server.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial viewer: %v", err)
	}
	defer conn.Close()

	var hello Hello
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello.Type != "hello" {
		t.Fatalf("first event type = %q, want hello", hello.Type)
	}
	if hello.Animals != 3 || hello.Foods != 2 {
		t.Fatalf("hello shape = %d animals %d foods, want 3 and 2", hello.Animals, hello.Foods)
	}

	var event WorldEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read world event: %v", err)
	}
	if event.Type != "world" {
		t.Fatalf("second event type = %q, want world", event.Type)
	}
	if got := len(event.World.Animals); got != 3 {
		t.Fatalf("world animals = %d, want 3", got)
	}
	if got := len(event.World.Foods); got != 2 {
		t.Fatalf("world foods = %d, want 2", got)
	}
	if got := server.ClientCount(); got != 1 {
		t.Fatalf("client count = %d, want 1", got)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("run returned %v, want context.Canceled", err)
	}
}

func TestServerDropsDisconnectedClient(t *testing.T) {
	server, err := NewServer(testConfig())
	if err != nil {
		t.Fatalf("build server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	waitUntil(t, "server to bind", func() bool { return server.Addr() != "" })

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+server.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial viewer: %v", err)
	}
	waitUntil(t, "client to register", func() bool { return server.ClientCount() == 1 })

	conn.Close()
	waitUntil(t, "client to drop", func() bool { return server.ClientCount() == 0 })

	cancel()
	<-done
}

func TestServerReportsGenerationBoundary(t *testing.T) {
	cfg := testConfig()
	cfg.Params.GenerationLength = 2
	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("build server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	waitUntil(t, "server to bind", func() bool { return server.Addr() != "" })

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+server.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial viewer: %v", err)
	}
	defer conn.Close()

	var hello Hello
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("no generation event before deadline")
		}
		var raw struct {
			Type       string `json:"type"`
			Generation int    `json:"generation"`
		}
		if err := conn.ReadJSON(&raw); err != nil {
			t.Fatalf("read event: %v", err)
		}
		if raw.Type == "generation" {
			if raw.Generation != 0 {
				t.Fatalf("first boundary generation = %d, want 0", raw.Generation)
			}
			break
		}
	}

	cancel()
	<-done
}
