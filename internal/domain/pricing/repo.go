package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists the clinic treatment price catalog.
type Repository interface {
	Create(ctx context.Context, p *ClinicTreatmentPrice) error
	GetByID(ctx context.Context, id uuid.UUID) (*ClinicTreatmentPrice, error)
	// GetActive returns the newest active price row for (clinic, treatment)
	// effective at asOf, or (nil, nil) when the pair has no price. Lookup is
	// keyed strictly by clinic and treatment.
	GetActive(ctx context.Context, clinicID, treatmentID int64, asOf time.Time) (*ClinicTreatmentPrice, error)
	ListByClinic(ctx context.Context, clinicID int64, limit, offset int) ([]*ClinicTreatmentPrice, int, error)
	Update(ctx context.Context, p *ClinicTreatmentPrice) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}
