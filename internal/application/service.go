package application

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/jokel/beehive-mapper/internal/domain"
)

const (
	GreetingText    = "Hello World!"
	AcknowledgeText = "Forwarded!"
)

type Config struct {
	ServiceName string
}

type Dependencies struct {
	Config Config
	Logger *slog.Logger
}

type Service struct {
	cfg    Config
	logger *slog.Logger
	ready  atomic.Bool
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:    deps.Config,
		logger: logger.With("module", "application", "layer", "service"),
	}
}

func (s *Service) Greet(_ context.Context) string {
	return GreetingText
}

// AcceptBeeData acknowledges an uplink. The message is not stored or
// forwarded anywhere despite the acknowledgement text.
// TODO: forward to the sensor data store once its contract exists.
func (s *Service) AcceptBeeData(ctx context.Context, _ domain.InboundMessage) string {
	s.logger.DebugContext(ctx, "bee data accepted",
		"operation", "accept_bee_data",
		"outcome", "success",
	)
	return AcknowledgeText
}

func (s *Service) MarkReady() { s.ready.Store(true) }
func (s *Service) MarkDraining() { s.ready.Store(false) }
func (s *Service) Ready() bool { return s.ready.Load() }
