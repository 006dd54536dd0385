package app

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "tableflip.dev/pricematrix/pkg/errors"
	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/metrics"
	"tableflip.dev/pricematrix/pkg/rules"
	"tableflip.dev/pricematrix/pkg/session"
	"tableflip.dev/pricematrix/pkg/store"
)

// Service provides high-level operations on the stored matrix. It wraps
// persistence and validation so the TUI, CLI, HTTP and MCP surfaces share
// logic. Errors are *errors.Error values.
type Service struct {
	Persistence store.Persistence
	// Rules may be nil, in which case only the shape is checked.
	Rules *rules.Set
}

var _ session.Backend = (*Service)(nil)

var errNoPersistence = errors.New("app: no persistence configured")

// LoadMatrix returns the stored matrix.
func (s *Service) LoadMatrix(ctx context.Context) (m matrix.Matrix, err error) {
	defer observe(metrics.OpLoad, time.Now(), &err)
	if s.Persistence == nil {
		return nil, apperrors.InternalError("load failed", errNoPersistence)
	}
	m, err = s.Persistence.Load(ctx)
	if err != nil {
		return nil, classify("load", err)
	}
	metrics.MatrixCells.Set(float64(m.Len()))
	return m, nil
}

// SaveMatrix validates m against the stored document and the rules, then
// persists and returns the committed matrix.
func (s *Service) SaveMatrix(ctx context.Context, m matrix.Matrix) (out matrix.Matrix, err error) {
	defer observe(metrics.OpSave, time.Now(), &err)
	if s.Persistence == nil {
		return nil, apperrors.InternalError("save failed", errNoPersistence)
	}
	if m.Len() == 0 {
		return nil, apperrors.ValidationError("matrix has no pricing rows")
	}
	committed := m.Committed()

	current, err := s.Persistence.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// First save defines the shape.
	case err != nil:
		return nil, classify("load", err)
	default:
		if diff := current.ShapeDiff(committed); diff != "" {
			return nil, apperrors.ValidationError("matrix shape does not match the stored document").
				WithField("shape", diff)
		}
	}

	if err := s.validate(committed); err != nil {
		return nil, err
	}
	if err := s.Persistence.Save(ctx, committed); err != nil {
		return nil, classify("save", err)
	}
	metrics.MatrixCells.Set(float64(committed.Len()))
	return committed, nil
}

// Init seeds a zeroed matrix with the given rows. An existing document is
// only replaced when force is set.
func (s *Service) Init(ctx context.Context, rows []string, force bool) (matrix.Matrix, error) {
	if s.Persistence == nil {
		return nil, apperrors.InternalError("init failed", errNoPersistence)
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if r = strings.TrimSpace(r); r != "" {
			names = append(names, r)
		}
	}
	if len(names) == 0 {
		return nil, apperrors.ValidationError("at least one row is required")
	}

	if !force {
		_, err := s.Persistence.Load(ctx)
		switch {
		case err == nil:
			return nil, apperrors.ValidationError("matrix already initialized").WithField("hint", "use --force to replace it")
		case !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrMalformed):
			return nil, classify("load", err)
		}
	}

	m := matrix.New(names...)
	if err := s.Persistence.Save(ctx, m); err != nil {
		return nil, classify("save", err)
	}
	return m, nil
}

// Watch subscribes to persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	return s.Persistence.Watch(ctx)
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if s.Persistence == nil {
		return errNoPersistence
	}
	if err := s.Persistence.Ping(ctx); err != nil {
		return apperrors.IOError("store unavailable", err)
	}
	return nil
}

func (s *Service) validate(m matrix.Matrix) error {
	violations, err := s.Rules.Validate(m)
	if err != nil {
		return apperrors.InternalError("rule evaluation failed", err)
	}
	if len(violations) == 0 {
		return nil
	}
	metrics.RuleViolationsTotal.Add(float64(len(violations)))
	details := make([]string, 0, len(violations))
	for _, v := range violations {
		details = append(details, v.String())
	}
	return apperrors.ValidationError(details[0]).WithField("violations", details)
}

func classify(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NotFoundError("no pricing matrix has been saved")
	case errors.Is(err, store.ErrMalformed):
		return apperrors.ParseError("stored matrix is malformed", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.IOError(op+" interrupted", err)
	default:
		return apperrors.IOError(op+" failed", err)
	}
}

func observe(op string, start time.Time, err *error) {
	metrics.MatrixOpsTotal.WithLabelValues(op, metrics.Status(*err)).Inc()
	metrics.MatrixOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
