// Package capability exposes the named content-processing tools (analyze,
// summarize, keyword extraction, importance rating, newsletter composition)
// behind a uniform dispatch interface. Dispatch is a closed set: every tool
// name maps to exactly one function through an exhaustive switch, and every
// outcome, including failures, is delivered as a Result envelope.
package capability

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Capability names the tools a caller may dispatch to.
type Capability string

const (
	CapAnalyze   Capability = "analyze_article"
	CapSummarize Capability = "summarize_content"
	CapKeywords  Capability = "extract_keywords"
	CapRate      Capability = "rate_importance"
	CapCompose   Capability = "generate_newsletter"
)

// Capabilities returns the closed tool set in a stable order.
func Capabilities() []Capability {
	return []Capability{CapAnalyze, CapSummarize, CapKeywords, CapRate, CapCompose}
}

// Result is the uniform dispatch envelope. Exactly one of Payload and Error
// is set, matching Success.
type Result struct {
	Success     bool           `json:"success"`
	Tool        Capability     `json:"tool_used"`
	Payload     map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// Status reports the server's lifecycle state.
type Status struct {
	Status      string       `json:"status"`
	Connections int          `json:"connections"`
	Tools       []Capability `json:"tools_available"`
	Uptime      string       `json:"uptime"`
	LastUpdated time.Time    `json:"last_updated"`
}

// Server owns the capability lifecycle and dispatch. Dispatch calls are
// stateless relative to each other; only the running/connection bookkeeping
// is shared, guarded by the mutex.
type Server struct {
	logger *zap.Logger

	// delay simulates backend processing latency per dispatch. It stands in
	// for a real model call and is honored through the context so callers
	// can cancel or bound it.
	delay time.Duration

	mu          sync.Mutex
	running     bool
	startedAt   time.Time
	connections []io.Closer
}

// NewServer creates a stopped capability server. delay is the simulated
// per-dispatch processing latency; zero disables it.
func NewServer(logger *zap.Logger, delay time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{logger: logger, delay: delay}
}

// Start transitions the server to running. Starting an already running
// server is a no-op apart from resetting the connection count to zero.
func (s *Server) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.connections = nil
		return
	}
	s.running = true
	s.startedAt = time.Now()
	s.connections = nil
	s.logger.Info("capability server started", zap.Int("tools", len(Capabilities())))
}

// Stop transitions the server to stopped, closing and releasing any held
// connections.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	for _, conn := range s.connections {
		if err := conn.Close(); err != nil {
			s.logger.Warn("closing capability connection", zap.Error(err))
		}
	}
	s.connections = nil
	s.running = false
	s.logger.Info("capability server stopped")
}

// Track registers a connection handle to be closed on Stop.
func (s *Server) Track(conn io.Closer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections = append(s.connections, conn)
}

// GetStatus reports the current lifecycle state.
func (s *Server) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Status:      "stopped",
		Connections: len(s.connections),
		Tools:       Capabilities(),
		Uptime:      "0s",
		LastUpdated: time.Now(),
	}
	if s.running {
		st.Status = "running"
		st.Uptime = time.Since(s.startedAt).Round(time.Second).String()
	}
	return st
}

func (s *Server) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Process dispatches content to the named tool and always returns a Result:
// unknown tools, a stopped server, cancellation, and tool failures all come
// back as Success=false envelopes rather than escaping.
func (s *Server) Process(ctx context.Context, tool Capability, content string) Result {
	now := time.Now()

	if !s.isRunning() {
		return failure(tool, ErrNotRunning.Error(), now)
	}

	if err := s.simulateLatency(ctx); err != nil {
		return failure(tool, err.Error(), time.Now())
	}

	var (
		payload map[string]any
		err     error
	)
	switch tool {
	case CapAnalyze:
		payload = analyzeArticle(content)
	case CapSummarize:
		payload = summarizeContent(content)
	case CapKeywords:
		payload = extractKeywords(content)
	case CapRate:
		payload = rateImportance(content)
	case CapCompose:
		payload = composeNewsletter(content)
	default:
		err = ErrUnknownCapability
	}

	if err != nil {
		s.logger.Warn("capability dispatch failed",
			zap.String("tool", string(tool)), zap.Error(err))
		return failure(tool, err.Error(), time.Now())
	}

	return Result{
		Success:     true,
		Tool:        tool,
		Payload:     payload,
		ProcessedAt: time.Now(),
	}
}

// simulateLatency stands in for backend processing time. It respects the
// caller's context so a bounded dispatch never blocks past its deadline.
func (s *Server) simulateLatency(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func failure(tool Capability, msg string, at time.Time) Result {
	return Result{
		Success:     false,
		Tool:        tool,
		Error:       msg,
		ProcessedAt: at,
	}
}
