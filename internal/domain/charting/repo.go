package charting

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OdontogramRepository persists odontogram headers.
type OdontogramRepository interface {
	Create(ctx context.Context, o *Odontogram) error
	GetByID(ctx context.Context, id uuid.UUID) (*Odontogram, error)
	GetByCode(ctx context.Context, clinicID int64, code string) (*Odontogram, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Odontogram, int, error)
	LatestByPatient(ctx context.Context, patientID int64) (*Odontogram, error)
	Update(ctx context.Context, o *Odontogram) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error
	// FindActiveByPatientAndDate returns the non-deleted odontogram covering
	// the same patient and calendar day, excluding excludeID (pass uuid.Nil
	// on create). It returns (nil, nil) when there is none.
	FindActiveByPatientAndDate(ctx context.Context, patientID int64, day time.Time, excludeID uuid.UUID) (*Odontogram, error)
	CountByStatus(ctx context.Context, clinicID int64) (map[LifecycleStatus]int, error)
}

// ToothRecordRepository persists the child tooth records.
type ToothRecordRepository interface {
	// ListByOdontogram returns records ordered by creation time, then id.
	ListByOdontogram(ctx context.Context, odontogramID uuid.UUID) ([]*ToothRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ToothRecord, error)
	Insert(ctx context.Context, r *ToothRecord) error
	// UpdateClinical writes the mutable clinical fields and updated_by only;
	// financial back-references and treatment status are untouched.
	UpdateClinical(ctx context.Context, r *ToothRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOdontogram(ctx context.Context, odontogramID uuid.UUID) error
	SetBudgetItemRef(ctx context.Context, id, budgetItemID uuid.UUID, updatedBy string) error
	SetInvoiceItemRef(ctx context.Context, id, invoiceItemID uuid.UUID, updatedBy string) error
	UpdateTreatmentStatus(ctx context.Context, id uuid.UUID, status TreatmentStatus, completedAt *time.Time, updatedBy string) error
}
