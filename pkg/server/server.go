// Package server implements the KeyForge text-protocol server: one
// goroutine per client connection issuing GET/PUT/UPDATE/DELETE commands
// against the key/value store. Every connection gets its own session ID
// and all command activity is logged through the pipeline under that
// session.
package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/SouradipPatra7904/KeyForge/pkg/logging"
	"github.com/SouradipPatra7904/KeyForge/pkg/store"
)

// DefaultPort is the default listen port for the text protocol.
const DefaultPort = 7904

// Config configures a KeyForge server.
type Config struct {
	// Address to listen on (e.g., ":7904" or "127.0.0.1:7904").
	Address string

	// Store backs the GET/PUT/UPDATE/DELETE commands.
	Store *store.Store

	// Log receives all command activity, scoped per connection session.
	Log *logging.Pipeline

	// AuthTokenHashes are bcrypt hashes of accepted tokens. When non-empty,
	// mutating commands require a successful AUTH on the connection first.
	AuthTokenHashes []string
}

// Server accepts text-protocol connections and serves commands against the
// store, one goroutine per connection.
type Server struct {
	config   Config
	listener net.Listener

	// Active connections
	conns   map[net.Conn]struct{}
	connsMu sync.RWMutex

	// State
	running      atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// New creates a new server.
func New(config Config) (*Server, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("Store is required")
	}
	if config.Log == nil {
		return nil, fmt.Errorf("Log is required")
	}
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}

	return &Server{
		config:     config,
		conns:      make(map[net.Conn]struct{}),
		shutdownCh: make(chan struct{}),
	}, nil
}

// Start starts the server and begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("server already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener

	s.running.Store(true)
	s.config.Log.Info(fmt.Sprintf("server listening on %s", listener.Addr()))

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop stops the server and closes all connections.
func (s *Server) Stop() error {
	if !s.running.Load() {
		return nil
	}

	s.running.Store(false)
	s.cancel()

	if s.listener != nil {
		s.listener.Close()
	}

	s.connsMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	s.config.Log.Info("server stopped")

	return nil
}

// Addr returns the server's listen address.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// ConnectionCount returns the number of active connections.
func (s *Server) ConnectionCount() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

// ShutdownRequested returns a channel closed when a client issues the
// SHUTDOWN command.
func (s *Server) ShutdownRequested() <-chan struct{} {
	return s.shutdownCh
}

func (s *Server) requestShutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
	})
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || s.ctx.Err() != nil {
				return
			}
			s.config.Log.Warn(fmt.Sprintf("accept failed: %v", err))
			continue
		}

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	s.connsMu.Lock()
	s.conns[conn] = struct{}{}
	s.connsMu.Unlock()
	defer func() {
		s.connsMu.Lock()
		delete(s.conns, conn)
		s.connsMu.Unlock()
	}()

	session := logging.NewSessionLogger(s.config.Log, uuid.New().String())
	session.Info(fmt.Sprintf("client connected from %s", conn.RemoteAddr()))
	defer session.Info("client disconnected")

	// Authentication is only demanded when token hashes are configured.
	authed := len(s.config.AuthTokenHashes) == 0

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		resp, act := s.execute(line, &authed, session)
		if _, err := fmt.Fprintf(conn, "%s\n", resp); err != nil {
			session.Warn(fmt.Sprintf("write failed: %v", err))
			return
		}
		if act == actionShutdown {
			session.Warn("shutdown requested by client")
			s.requestShutdown()
			return
		}
	}
}
