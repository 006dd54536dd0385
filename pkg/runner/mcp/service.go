// Package mcp provides the Model Context Protocol server integration for
// pricematrix.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tableflip.dev/pricematrix/pkg/app"
	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/session"
)

// Service coordinates backend operations shared by the MCP tools and
// resources.
type Service struct {
	Backend session.Backend
	Log     *slog.Logger
	Timeout time.Duration
}

// CellDTO is a transport-friendly projection of a single cell.
type CellDTO struct {
	Row   string  `json:"row"`
	Tier  string  `json:"tier"`
	Value float64 `json:"value"`
}

// PricingDTO is the matrix plus a flat cell list.
type PricingDTO struct {
	Matrix matrix.Matrix `json:"matrix"`
	Rows   []string      `json:"rows"`
	Tiers  []string      `json:"tiers"`
	Cells  []CellDTO     `json:"cells"`
}

// NewService builds a service over backend.
func NewService(backend session.Backend) *Service {
	return &Service{Backend: backend}
}

func (s *Service) editor() *app.Editor {
	opts := []session.Option{session.WithTimeout(s.Timeout)}
	if s.Log != nil {
		opts = append(opts, session.WithLogger(s.Log))
	}
	return &app.Editor{Backend: s.Backend, Options: opts}
}

// GetPricing returns the stored matrix.
func (s *Service) GetPricing(ctx context.Context) (PricingDTO, error) {
	if s.Backend == nil {
		return PricingDTO{}, errors.New("backend is not configured")
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	m, err := s.Backend.LoadMatrix(ctx)
	if err != nil {
		return PricingDTO{}, err
	}
	return toDTO(m), nil
}

// SetPrice edits one cell through an edit session and saves.
func (s *Service) SetPrice(ctx context.Context, row, tierName, value string) (PricingDTO, error) {
	m, err := s.editor().SetPrice(ctx, row, tierName, value)
	if err != nil {
		return PricingDTO{}, err
	}
	return toDTO(m), nil
}

// ClearPricing sets every cell to zero and saves.
func (s *Service) ClearPricing(ctx context.Context) (PricingDTO, error) {
	m, err := s.editor().Clear(ctx)
	if err != nil {
		return PricingDTO{}, err
	}
	return toDTO(m), nil
}

func toDTO(m matrix.Matrix) PricingDTO {
	dto := PricingDTO{
		Matrix: m,
		Rows:   m.Rows(),
		Tiers:  []string{},
		Cells:  make([]CellDTO, 0, m.Len()),
	}
	for _, t := range m.Columns() {
		dto.Tiers = append(dto.Tiers, t.String())
	}
	for _, row := range dto.Rows {
		for _, t := range m.Tiers(row) {
			dto.Cells = append(dto.Cells, CellDTO{Row: row, Tier: t.String(), Value: m[row][t].Float()})
		}
	}
	return dto
}
