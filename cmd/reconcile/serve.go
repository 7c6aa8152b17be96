package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/pkg/host/remote"
	"github.com/vango-dev/reconcile/pkg/metrics"
	"github.com/vango-dev/reconcile/pkg/protocol"
	"github.com/vango-dev/reconcile/pkg/renderer"
	"github.com/vango-dev/reconcile/pkg/scheduler"
)

const (
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	maxMessageSize  = protocol.FrameHeaderSize + protocol.MaxPayloadSize
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live demo over WebSocket",
		Long: `Serve a demo component tree through the remote host adapter.

Each WebSocket connection on /ws gets its own renderer and event loop.
Host operations are streamed to the client as binary op frames and
client events are dispatched back to the rendered listeners.

Endpoints:
  /ws       WebSocket session
  /metrics  Prometheus metrics
  /healthz  liveness check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Serve.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Serve.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", config.DefaultHost, "Host to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")

	return cmd
}

// server holds what every session shares.
type server struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Collector
	tracer   trace.Tracer
	upgrader websocket.Upgrader
	sessions atomic.Int64
	nextID   atomic.Uint64
}

func newServer(cfg *config.Config, logger *slog.Logger) *server {
	s := &server{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		tracer:   noop.NewTracerProvider().Tracer(""),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The demo has no cookies or credentials to protect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	if cfg.Metrics.Enabled {
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		s.metrics = metrics.New(
			metrics.WithRegistry(s.registry),
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithSubsystem(cfg.Metrics.Subsystem),
		)
	}
	if cfg.Tracing.Enabled {
		s.tracer = otel.Tracer(cfg.Tracing.TracerName)
	}
	return s
}

// routes builds the HTTP handler.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Get("/ws", s.handleWebSocket)
	return r
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)
	s := newServer(cfg, logger)

	srv := &http.Server{
		Addr:              cfg.ServeAddress(),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	success("Serving on http://%s", cfg.ServeAddress())
	info("WebSocket: ws://%s/ws", cfg.ServeAddress())
	if s.metrics == nil {
		warn("Metrics disabled")
	} else {
		info("Metrics:   http://%s/metrics", cfg.ServeAddress())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "sessions", s.sessions.Load())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	id := s.nextID.Add(1)
	logger := s.logger.With("session", id, "request_id", middleware.GetReqID(r.Context()))
	s.sessions.Add(1)
	defer s.sessions.Add(-1)

	sess := newSession(conn, s, logger)
	if err := sess.run(r.Context()); err != nil && !stderrors.Is(err, context.Canceled) {
		logger.Warn("session ended", "error", err)
		return
	}
	logger.Debug("session ended")
}

// session is one connection's renderer, adapter and event loop. The
// renderer and adapter are only touched on the loop goroutine.
type session struct {
	conn     *websocket.Conn
	loop     *scheduler.Loop
	adapter  *remote.Adapter
	renderer *renderer.Renderer
	demo     *demo
	logger   *slog.Logger
}

func newSession(conn *websocket.Conn, s *server, logger *slog.Logger) *session {
	sess := &session{conn: conn, logger: logger, demo: newDemo(s.cfg)}

	sess.adapter = remote.New(remote.SinkFunc(sess.send),
		remote.WithLogger(logger),
		remote.WithMetrics(s.metrics),
	)
	sess.loop = scheduler.NewLoop(
		scheduler.WithLogger(logger),
		scheduler.WithMetrics(s.metrics),
		scheduler.WithTracer(s.tracer),
		scheduler.WithRecursionLimit(s.cfg.Scheduler.RecursionLimit),
		scheduler.WithPostFlush(sess.flush),
	)
	sess.renderer = renderer.New(sess.adapter,
		renderer.WithHost(sess.loop),
		renderer.WithLogger(logger),
		renderer.WithMetrics(s.metrics),
		renderer.WithTracer(s.tracer),
	)
	return sess
}

// send writes one frame. Only the loop goroutine calls it once run has
// started, which keeps gorilla's single-writer rule.
func (s *session) send(f *protocol.Frame) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.BinaryMessage, f.Encode())
}

func (s *session) flush() {
	if err := s.adapter.Flush(); err != nil {
		s.loop.Stop()
	}
}

func (s *session) run(ctx context.Context) error {
	defer s.conn.Close()

	if err := s.send(s.adapter.Hello()); err != nil {
		return err
	}

	s.loop.Submit(func() {
		s.renderer.RenderContext(ctx, s.demo.App(), s.adapter.Root())
	})
	go s.readLoop()

	err := s.loop.Run(ctx)

	// The loop has stopped, so this goroutine now owns the renderer.
	s.renderer.Render(nil, s.adapter.Root())
	s.logger.Debug("unmounted", "instances", s.renderer.InstanceCount())
	return err
}

// readLoop decodes client frames and hands them to the loop. It stops
// the loop when the connection closes.
func (s *session) readLoop() {
	defer s.loop.Stop()
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read failed", "error", err)
			}
			return
		}
		f, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Warn("bad frame", "error", err)
			continue
		}
		if err := s.loop.Submit(func() {
			if err := s.adapter.HandleFrame(f); err != nil {
				s.logger.Warn("client frame rejected", "type", f.Type.String(), "error", err)
			}
		}); err != nil {
			return
		}
	}
}
