// Package viewer streams live simulation state to websocket clients. One
// goroutine owns the simulation and steps it on a fixed tick; clients only
// ever see snapshots.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"aviary/internal/platform"
	"aviary/internal/sim"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// Config describes one viewer server.
type Config struct {
	Addr           string
	Seed           int64
	StepsPerSecond int
	Params         sim.Params
	Logger         *slog.Logger
}

// Hello greets a fresh client with the fixed shape of the world.
type Hello struct {
	Type             string `json:"type"`
	Animals          int    `json:"animals"`
	Foods            int    `json:"foods"`
	GenerationLength int    `json:"generation_length"`
}

// WorldEvent carries one stepped world state.
type WorldEvent struct {
	Type       string            `json:"type"`
	Generation int               `json:"generation"`
	Age        int               `json:"age"`
	World      sim.WorldSnapshot `json:"world"`
}

// GenerationEvent reports the fitness summary of a finished generation.
type GenerationEvent struct {
	Type        string  `json:"type"`
	Generation  int     `json:"generation"`
	MinFitness  float64 `json:"min_fitness"`
	MaxFitness  float64 `json:"max_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
}

type Server struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	addr    string
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		return nil, errors.New("viewer addr is required")
	}
	if cfg.StepsPerSecond < 1 {
		return nil, fmt.Errorf("steps per second must be > 0, got=%d", cfg.StepsPerSecond)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Server{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}, nil
}

// Addr reports the bound listen address once Run is serving, or empty.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ClientCount reports how many websocket clients are connected.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Run builds a fresh simulation and serves it until the context is
// canceled. Every tick broadcasts a world event; generation boundaries add
// a generation event.
func (s *Server) Run(ctx context.Context) error {
	rng := platform.SeededRand(s.cfg.Seed)
	simulation, err := sim.Random(rng, s.cfg.Params)
	if err != nil {
		return fmt.Errorf("build simulation: %w", err)
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	server := &http.Server{Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()
	s.logger.Info("viewer listening", "addr", listener.Addr().String())

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		s.mu.Lock()
		s.addr = ""
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.StepsPerSecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-serveErr:
			return fmt.Errorf("serve viewer: %w", err)
		case <-ticker.C:
			stats, err := simulation.Step(rng)
			if err != nil {
				return fmt.Errorf("step simulation: %w", err)
			}
			if stats != nil {
				generation := simulation.Generation() - 1
				s.logger.Info("generation complete",
					"generation", generation,
					"min_fitness", stats.MinFitness,
					"max_fitness", stats.MaxFitness,
					"mean_fitness", stats.MeanFitness,
				)
				s.broadcast(GenerationEvent{
					Type:        "generation",
					Generation:  generation,
					MinFitness:  stats.MinFitness,
					MaxFitness:  stats.MaxFitness,
					MeanFitness: stats.MeanFitness,
				})
			}
			s.broadcast(WorldEvent{
				Type:       "world",
				Generation: simulation.Generation(),
				Age:        simulation.Age(),
				World:      simulation.World().Snapshot(),
			})
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn}
	if err := c.send(Hello{
		Type:             "hello",
		Animals:          s.cfg.Params.Animals,
		Foods:            s.cfg.Params.Foods,
		GenerationLength: s.cfg.Params.GenerationLength,
	}); err != nil {
		s.logger.Warn("websocket hello failed", "error", err)
		_ = conn.Close()
		return
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("viewer client connected", "remote", conn.RemoteAddr().String())

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		s.drop(c)
	}()
}

func (s *Server) broadcast(v any) {
	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.send(v); err != nil {
			s.logger.Warn("drop viewer client", "error", err)
			s.drop(c)
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		_ = c.conn.Close()
	}
}
