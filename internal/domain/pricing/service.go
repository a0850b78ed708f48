package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dentio/dentio/internal/platform/apperr"
	"github.com/dentio/dentio/pkg/money"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve finds the effective price for (clinic, treatment) at asOf.
// Resolution degrades rather than failing: no catalog price falls back to
// the caller's estimate, and a zero estimate resolves to zero, so charting
// is never blocked by incomplete pricing configuration.
func (s *Service) Resolve(ctx context.Context, clinicID, treatmentID int64, asOf time.Time, fallback money.Amount) (Resolution, error) {
	if treatmentID > 0 {
		price, err := s.repo.GetActive(ctx, clinicID, treatmentID, asOf)
		if err != nil {
			return Resolution{}, err
		}
		if price != nil {
			amount, promotional := price.EffectiveAt(asOf)
			source := SourceBase
			if promotional {
				source = SourcePromotional
			}
			return Resolution{
				Amount:             amount,
				Source:             source,
				PriceID:            &price.ID,
				EstimatedSessions:  price.EstimatedSessions,
				RequiresAnesthesia: price.RequiresAnesthesia,
				AnesthesiaCost:     price.AnesthesiaCost,
				MaterialCost:       price.MaterialCost,
			}, nil
		}
	}
	if !fallback.IsZero() {
		return Resolution{Amount: fallback, Source: SourceFallbackEstimate, EstimatedSessions: 1}, nil
	}
	return Resolution{Source: SourceZero, EstimatedSessions: 1}, nil
}

// CreatePrice adds a catalog row.
func (s *Service) CreatePrice(ctx context.Context, p *ClinicTreatmentPrice) error {
	if p.ClinicID <= 0 {
		return apperr.Validation(apperr.CodeInvalidClinicReference, "clinic reference is missing or non-positive: %d", p.ClinicID)
	}
	if p.TreatmentID <= 0 {
		return apperr.Validation(apperr.CodeInvalidTreatmentReference, "treatment reference is missing or non-positive: %d", p.TreatmentID)
	}
	if p.EstimatedSessions <= 0 {
		p.EstimatedSessions = 1
	}
	if p.EffectiveFrom.IsZero() {
		p.EffectiveFrom = time.Now().UTC()
	}
	p.Active = true
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPrice(ctx context.Context, id uuid.UUID) (*ClinicTreatmentPrice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPrices(ctx context.Context, clinicID int64, limit, offset int) ([]*ClinicTreatmentPrice, int, error) {
	return s.repo.ListByClinic(ctx, clinicID, limit, offset)
}

func (s *Service) UpdatePrice(ctx context.Context, p *ClinicTreatmentPrice) error {
	if _, err := s.repo.GetByID(ctx, p.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeactivatePrice(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, id)
}
