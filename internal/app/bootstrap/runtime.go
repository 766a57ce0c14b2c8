package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	httpadapter "github.com/jokel/beehive-mapper/internal/adapters/http"
	"github.com/jokel/beehive-mapper/internal/application"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	healthSrv  *health.Server

	mu       sync.Mutex
	httpLis  net.Listener
	grpcLis  net.Listener
	started  bool
	stopped  bool
	errCh    chan error
	stopOnce sync.Once
	stopErr  error
}

func NewRuntime(_ context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)
	return New(cfg, logger), nil
}

// New builds the route table and servers once. Nothing is bound until Start.
func New(cfg Config, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	service := application.NewService(application.Dependencies{
		Config: application.Config{ServiceName: cfg.ServiceID},
		Logger: logger,
	})

	handler := httpadapter.NewHandler(service, cfg.MaxBodyBytes)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	var grpcServer *grpc.Server
	var healthSrv *health.Server
	if cfg.GRPCEnabled {
		grpcServer = grpc.NewServer()
		healthSrv = health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, healthSrv)
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		httpServer: httpServer,
		grpcServer: grpcServer,
		healthSrv:  healthSrv,
		errCh:      make(chan error, 2),
	}
}

// Start binds all listeners before serving, so an unavailable port is
// reported here rather than from a background goroutine.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return errors.New("runtime already started")
	}
	if r.stopped {
		return errors.New("runtime already stopped")
	}

	httpLis, err := net.Listen("tcp", r.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}
	var grpcLis net.Listener
	if r.grpcServer != nil {
		grpcLis, err = net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen grpc: %w", err)
		}
	}
	r.httpLis = httpLis
	r.grpcLis = grpcLis
	r.started = true

	go func() {
		if err := r.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.errCh <- fmt.Errorf("serve http: %w", err)
		}
	}()
	if grpcLis != nil {
		go func() {
			if err := r.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				r.errCh <- fmt.Errorf("serve grpc: %w", err)
			}
		}()
		r.healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		r.healthSrv.SetServingStatus(r.cfg.ServiceID, healthpb.HealthCheckResponse_SERVING)
	}
	r.service.MarkReady()

	fields := []any{"http_addr", httpLis.Addr().String()}
	if grpcLis != nil {
		fields = append(fields, "grpc_addr", grpcLis.Addr().String())
	}
	r.logger.InfoContext(ctx, "runtime started", fields...)
	return nil
}

// Stop drains and closes the servers. Calling it more than once, or before
// Start, is safe.
func (r *Runtime) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		started := r.started
		r.stopped = true
		r.mu.Unlock()

		r.service.MarkDraining()
		if r.healthSrv != nil {
			r.healthSrv.Shutdown()
		}
		if !started {
			return
		}
		if err := r.httpServer.Shutdown(ctx); err != nil {
			r.stopErr = fmt.Errorf("shutdown http: %w", err)
		}
		if r.grpcServer != nil {
			if err := r.stopGRPC(ctx); err != nil && r.stopErr == nil {
				r.stopErr = err
			}
		}
		r.logger.InfoContext(ctx, "runtime stopped")
	})
	return r.stopErr
}

// stopGRPC drains in-flight RPCs until ctx ends, then closes the remaining
// streams. Health Watch streams never finish on their own.
func (r *Runtime) stopGRPC(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.grpcServer.Stop()
		<-done
		return fmt.Errorf("shutdown grpc: %w", ctx.Err())
	}
}

// RunAPI serves until the process is signalled or a server fails.
func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.Start(ctx); err != nil {
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-r.errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.cfg.ShutdownTimeout)
	defer cancel()
	if err := r.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (r *Runtime) HTTPAddr() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.httpLis == nil {
		return ""
	}
	return r.httpLis.Addr().String()
}

func (r *Runtime) GRPCAddr() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.grpcLis == nil {
		return ""
	}
	return r.grpcLis.Addr().String()
}
