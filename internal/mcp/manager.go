package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ServerConfig describes one configured MCP server: how to launch it and
// how to present it to the user.
type ServerConfig struct {
	Name        string
	Command     string
	Args        []string
	Env         []string
	Description string
}

// Connection is a successfully established MCP server connection with
// its tool catalog, fetched once at connect time.
type Connection struct {
	Client *Client
	Config ServerConfig
	Tools  []ToolDefinition
}

// Manager owns the set of MCP server connections for the process.
// Connections are established once at startup and shared read-only
// afterwards; CloseAll releases every subprocess exactly once.
type Manager struct {
	logger *slog.Logger

	mu     sync.Mutex
	conns  []*Connection
	closed bool
}

// NewManager creates an empty connection manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// ConnectAll launches and initializes every configured server, in order.
// A server that fails to connect does not abort the rest: its error is
// collected (as a *ConnectionError naming the server) and the process
// continues with whatever subset connected. The returned slice holds one
// error per failed server and is empty when everything connected.
func (m *Manager) ConnectAll(ctx context.Context, specs []ServerConfig) []error {
	var errs []error
	for _, spec := range specs {
		conn, err := m.connect(ctx, spec)
		if err != nil {
			m.logger.Warn("MCP server unavailable", "server", spec.Name, "error", err)
			errs = append(errs, err)
			continue
		}

		m.mu.Lock()
		m.conns = append(m.conns, conn)
		m.mu.Unlock()
	}
	return errs
}

// connect launches one server, performs the handshake, and fetches its
// tool catalog. Any failure tears the subprocess down and is wrapped in
// a *ConnectionError.
func (m *Manager) connect(ctx context.Context, spec ServerConfig) (*Connection, error) {
	if spec.Command == "" {
		return nil, &ConnectionError{Server: spec.Name, Err: fmt.Errorf("no command configured")}
	}

	transport := NewStdioTransport(StdioConfig{
		Server:  spec.Name,
		Command: spec.Command,
		Args:    spec.Args,
		Env:     spec.Env,
		Logger:  m.logger,
	})
	client := NewClient(spec.Name, transport, m.logger)

	if err := client.Initialize(ctx); err != nil {
		_ = client.Close()
		return nil, connErr(spec.Name, err)
	}

	tools, err := client.ListTools(ctx)
	if err != nil {
		_ = client.Close()
		return nil, connErr(spec.Name, err)
	}

	m.logger.Info("connected to MCP server",
		"server", spec.Name,
		"tools", len(tools),
	)

	return &Connection{Client: client, Config: spec, Tools: tools}, nil
}

// connErr normalizes a connect-phase failure to a *ConnectionError.
// Launch failures already carry one (from the stdio transport); that
// inner error is surfaced directly so the server is named exactly once.
func connErr(server string, err error) error {
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return ce
	}
	return &ConnectionError{Server: server, Err: err}
}

// Connections returns the established connections in connect order.
func (m *Manager) Connections() []*Connection {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Connection, len(m.conns))
	copy(out, m.conns)
	return out
}

// CloseAll closes every connection. Safe to call more than once; only
// the first call closes anything.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	var firstErr error
	for _, conn := range m.conns {
		if err := conn.Client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
