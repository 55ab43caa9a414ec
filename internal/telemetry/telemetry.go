package telemetry

import (
	"context"

	"github.com/envsense/enviroctl/internal/collector"
	"github.com/envsense/enviroctl/internal/errors"
)

// Recorder persists polling cycles for later analysis.
type Recorder interface {
	Record(ctx context.Context, cycle *collector.Cycle) error
	Close() error
}

type service struct {
	repo Repository
	cfg  Config
}

func NewService(cfg Config) (Recorder, error) {
	errFactory := errors.New()

	if !cfg.Enabled {
		return &noopRecorder{}, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, err
	}

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) Record(ctx context.Context, cycle *collector.Cycle) error {
	errFactory := errors.New()

	if cycle == nil || cycle.Snapshot == nil {
		return errFactory.New(errors.ErrInvalidArgument)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(errors.ErrTimeout, ctx.Err())
	default:
		if err := s.repo.Store(ctx, cycle); err != nil {
			return errFactory.Wrap(errors.ErrRecordTelemetry, err)
		}
	}

	return nil
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(errors.ErrCloseTelemetry, err)
	}
	return nil
}

// noopRecorder satisfies Recorder when telemetry is disabled.
type noopRecorder struct{}

func (*noopRecorder) Record(context.Context, *collector.Cycle) error { return nil }

func (*noopRecorder) Close() error { return nil }
