package core

import (
	"context"
	"errors"
	"gomata/pkg/domain"
	"strings"
	"time"
)

// Service exposes the registry operations over a persistent store. Every
// mutation runs in a store transaction and is flushed before returning.
type Service struct {
	store         PersistentStore
	clock         Clock
	logger        Logger
	metrics       MetricsRecorder
	tracer        Tracer
	idSource      IDSource
	maxIDAttempts int
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the clock used for registration and lifecycle timestamps.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder injects an operation metrics recorder.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithTracer injects a tracer wrapping each mutating operation.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithIDSource replaces the random identifier draw.
func WithIDSource(source IDSource) Option {
	return func(s *Service) {
		if source != nil {
			s.idSource = source
		}
	}
}

// WithMaxIDAttempts bounds identifier redraws; non-positive values keep MaxIDAttempts.
func WithMaxIDAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxIDAttempts = n
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:         store,
		clock:         systemClock{},
		logger:        noopLogger{},
		metrics:       noopMetricsRecorder{},
		tracer:        noopTracer{},
		idSource:      defaultIDSource,
		maxIDAttempts: MaxIDAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

func (s *Service) now() string {
	return s.clock.Now().Format(domain.TimestampLayout)
}

func (s *Service) run(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	span.End(err)
	if err != nil {
		s.logger.Error("registry operation failed", "operation", op, "error", err)
		return err
	}
	s.logger.Debug("registry operation completed", "operation", op, "duration", elapsed)
	return nil
}

// GenerateID draws an identifier not currently present in the store.
func (s *Service) GenerateID() (string, error) {
	return GenerateID(func(id string) bool {
		_, ok := s.store.Get(id)
		return ok
	}, s.idSource, s.maxIDAttempts)
}

// Register creates an Active record and returns its identifier. Extra fields
// are merged last and may overwrite the standard ones.
func (s *Service) Register(ctx context.Context, owner, breed string, age int, gender, color string, extra Fields) (string, error) {
	var id string
	err := s.run(ctx, "register", func(ctx context.Context) error {
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			view := tx.Snapshot()
			var err error
			id, err = GenerateID(view.Contains, s.idSource, s.maxIDAttempts)
			if err != nil {
				return err
			}
			record := domain.NewRecord(
				Field{Key: domain.FieldID, Value: id},
				Field{Key: domain.FieldOwnerName, Value: owner},
				Field{Key: domain.FieldBreed, Value: breed},
				Field{Key: domain.FieldAge, Value: age},
				Field{Key: domain.FieldGender, Value: gender},
				Field{Key: domain.FieldColor, Value: color},
				Field{Key: domain.FieldRegistrationDate, Value: s.now()},
				Field{Key: domain.FieldStatus, Value: string(StatusActive)},
			)
			record.Merge(extra)
			_, err = tx.Insert(id, record)
			return err
		})
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("cattle registered", "adhaar_id", id, "owner_name", owner)
	return id, nil
}

// Verify looks a record up by identifier.
func (s *Service) Verify(id string) (Record, bool) {
	return s.store.Get(id)
}

// Update overlays updates onto an existing record and stamps last_updated.
// It reports false, without writing, when the identifier is unknown.
func (s *Service) Update(ctx context.Context, id string, updates Fields) (bool, error) {
	return s.mutate(ctx, "update", id, func(r *Record) {
		r.Merge(updates)
		r.Set(domain.FieldLastUpdated, s.now())
	})
}

// Deactivate marks a record Inactive. The reason is recorded only when non-empty.
func (s *Service) Deactivate(ctx context.Context, id, reason string) (bool, error) {
	return s.mutate(ctx, "deactivate", id, func(r *Record) {
		r.Set(domain.FieldStatus, string(StatusInactive))
		r.Set(domain.FieldDeactivationDate, s.now())
		if reason != "" {
			r.Set(domain.FieldDeactivationReason, reason)
		}
	})
}

func (s *Service) mutate(ctx context.Context, op, id string, apply func(*Record)) (bool, error) {
	found := false
	err := s.run(ctx, op, func(ctx context.Context) error {
		err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			_, err := tx.Update(id, func(r *Record) error {
				found = true
				apply(r)
				return nil
			})
			return err
		})
		var notFound domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return found, err
	}
	if !found {
		s.logger.Info("record not found", "operation", op, "adhaar_id", id)
	}
	return found, nil
}

// SearchByOwner returns records whose owner name matches case-insensitively,
// in store order. The result is empty, never nil, when nothing matches.
func (s *Service) SearchByOwner(owner string) []Record {
	matches := make([]Record, 0)
	for _, r := range s.store.List() {
		if strings.EqualFold(r.OwnerName(), owner) {
			matches = append(matches, r)
		}
	}
	return matches
}

// Statistics summarises the registry.
func (s *Service) Statistics() Statistics {
	return domain.ComputeStatistics(s.store.List())
}
