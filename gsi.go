// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gsi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"

	"github.com/tomasfarias/dota-gsi/bus"
	"github.com/tomasfarias/dota-gsi/config"
	"github.com/tomasfarias/dota-gsi/internal/taskpool"
	"github.com/tomasfarias/dota-gsi/lifecycle"
	"github.com/tomasfarias/dota-gsi/pkg/health"
	"github.com/tomasfarias/dota-gsi/pkg/slogfield"

	"go.opentelemetry.io/otel/propagation"
)

// DefaultAddr is the address the game client sends game state payloads
// to when the integration config file uses the default uri.
const DefaultAddr = "127.0.0.1:3000"

// Handler consumes game state payloads published by the listener.
//
// The payload is the raw JSON body exactly as the game client sent it.
// Handlers must not modify it. Returning a non-nil error terminates
// this handler's subscription; other handlers are unaffected.
type Handler interface {
	Handle(context.Context, []byte) error
}

// HandlerFunc is a func variant of the [Handler] interface.
type HandlerFunc func(context.Context, []byte) error

// Handle implements the [Handler] interface.
func (f HandlerFunc) Handle(ctx context.Context, payload []byte) error {
	return f(ctx, payload)
}

type serverOptions struct {
	logHandler    slog.Handler
	backlog       uint
	shutdownHooks []lifecycle.Hook
}

// Option configures a [Server].
type Option func(*serverOptions)

// LogHandler configures the slog.Handler the server logs with.
//
// Default behaviour is to not log anything.
func LogHandler(h slog.Handler) Option {
	return func(so *serverOptions) {
		so.logHandler = h
	}
}

// Backlog configures how many unread payloads each handler may fall
// behind by before its oldest unread payload is dropped.
func Backlog(n uint) Option {
	return func(so *serverOptions) {
		so.backlog = n
	}
}

// OnShutdown registers hooks to run after the listener and all handler
// subscriptions have stopped. Hook errors are joined into the result
// of [Handle.Shutdown].
func OnShutdown(hooks ...lifecycle.Hook) Option {
	return func(so *serverOptions) {
		so.shutdownHooks = append(so.shutdownHooks, hooks...)
	}
}

// Server listens for game state payloads from the game client and fans
// them out to registered [Handler]s.
type Server struct {
	addr   string
	listen func(network, addr string) (net.Listener, error)

	log        *slog.Logger
	bus        *bus.Bus
	propagator propagation.TextMapPropagator
	liveness   *health.Binary
	hooks      lifecycle.Hook

	mu       sync.Mutex
	handlers []Handler
	started  bool
}

// New returns a fully initialized Server which will listen on addr
// once started.
func New(addr string, opts ...Option) *Server {
	so := &serverOptions{
		logHandler: noopLogHandler{},
	}
	for _, opt := range opts {
		opt(so)
	}

	return &Server{
		addr:       addr,
		listen:     net.Listen,
		log:        slog.New(so.logHandler),
		bus:        bus.New(bus.WithBacklog(so.backlog)),
		propagator: propagation.TraceContext{},
		liveness:   &health.Binary{},
		hooks:      lifecycle.MultiHook(so.shutdownHooks...),
	}
}

// ServerConfig represents the configurable values of a [Server].
type ServerConfig struct {
	Addr    string `config:"addr"`
	Backlog uint   `config:"backlog"`
}

// NewFromConfig returns a Server configured from the given config
// sources. Subsequent sources override previous ones. Missing values
// fall back to defaults, most notably [DefaultAddr].
func NewFromConfig(srcs ...config.Source) (*Server, error) {
	m, err := config.Read(srcs...)
	if err != nil {
		return nil, err
	}

	cfg := ServerConfig{
		Addr: DefaultAddr,
	}
	err = m.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg.Addr, Backlog(cfg.Backlog)), nil
}

// Register registers the given Handler with the Server. It returns the
// Server so calls can be chained. Handlers must be registered before
// [Server.Start]; any registered later never observe payloads.
func (s *Server) Register(h Handler) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
	return s
}

// Healthy implements the [health.Metric] interface. The Server is
// healthy while its listener is bound and accepting connections.
func (s *Server) Healthy(ctx context.Context) bool {
	return s.liveness.Healthy(ctx)
}

// Start binds the listener and begins accepting connections and
// dispatching payloads in the background. Bind failures are returned
// synchronously. Starting an already started server fails with
// [AlreadyStartedError].
//
// The server keeps running after ctx is cancelled; use the returned
// [Handle] to stop it and collect the aggregate result.
func (s *Server) Start(ctx context.Context) (*Handle, error) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil, AlreadyStartedError{}
	}
	s.started = true
	handlers := s.handlers
	s.mu.Unlock()

	ls, err := s.listen("tcp", s.addr)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to listen for connections", slogfield.Error(err))
		return nil, err
	}
	s.log.InfoContext(ctx, "listening for game state payloads", slogfield.String("addr", ls.Addr().String()))

	tasks := make([]taskpool.Task, 0, len(handlers)+1)
	tasks = append(tasks, s.serve(ls))
	for _, h := range handlers {
		sub := &subscription{
			log:        s.log,
			sub:        s.bus.Subscribe(),
			handler:    h,
			propagator: s.propagator,
		}
		tasks = append(tasks, sub.run)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := &Handle{
		addr:   ls.Addr(),
		cancel: cancel,
		ls:     ls,
		hooks:  s.hooks,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(h.done)
		h.tasksErr = taskpool.Wait(runCtx, tasks...)
	}()
	return h, nil
}

// Run starts the Server and blocks until ctx is cancelled, an OS
// interrupt is received or the listener terminates on its own. It then
// shuts the server down and returns the aggregate result.
func (s *Server) Run(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, os.Kill)
	defer stop()

	h, err := s.Start(sigCtx)
	if err != nil {
		return err
	}

	select {
	case <-sigCtx.Done():
	case <-h.done:
	}
	return h.Shutdown(context.WithoutCancel(ctx))
}

// Handle controls a started [Server].
type Handle struct {
	addr   net.Addr
	cancel context.CancelFunc
	ls     net.Listener
	hooks  lifecycle.Hook

	done     chan struct{}
	tasksErr error

	resultOnce sync.Once
	result     error

	stopOnce sync.Once
}

// Addr returns the address the listener is bound to. Useful when the
// server was started on a ":0" address.
func (h *Handle) Addr() net.Addr {
	return h.addr
}

// Done is closed once the listener and every handler subscription have
// stopped, whether through [Handle.Shutdown] or on their own.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Shutdown stops the server and blocks until the listener and every
// handler subscription have stopped, then runs any registered shutdown
// hooks. No handler invocation begins after Shutdown is called.
//
// The returned error is the errors.Join of the listener's failure, if
// any, every terminal handler failure and any hook errors. Shutdown is
// idempotent: every call reports the same result. ctx only bounds how
// long this call waits; an expired ctx does not become part of the
// cached result.
func (h *Handle) Shutdown(ctx context.Context) error {
	h.stopOnce.Do(func() {
		h.cancel()
		_ = h.ls.Close()
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
	}

	h.resultOnce.Do(func() {
		h.result = errors.Join(h.tasksErr, h.hooks.Run(ctx))
	})
	return h.result
}

type noopLogHandler struct{}

func (noopLogHandler) Enabled(_ context.Context, _ slog.Level) bool  { return true }
func (noopLogHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h noopLogHandler) WithAttrs(_ []slog.Attr) slog.Handler        { return h }
func (h noopLogHandler) WithGroup(name string) slog.Handler          { return h }
