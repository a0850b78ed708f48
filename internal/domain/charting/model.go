// Package charting records a patient's per-tooth clinical state over time.
// One odontogram holds the findings of one examination day; its tooth
// records are owned children and never outlive the header.
package charting

import (
	"time"

	"github.com/google/uuid"

	"github.com/dentio/dentio/pkg/money"
)

// ToothStatus is the clinical finding recorded for a single tooth.
type ToothStatus string

const (
	ToothHealthy    ToothStatus = "healthy"
	ToothCaries     ToothStatus = "caries"
	ToothFilled     ToothStatus = "filled"
	ToothCrown      ToothStatus = "crown"
	ToothExtraction ToothStatus = "extraction"
	ToothMissing    ToothStatus = "missing"
	ToothImplant    ToothStatus = "implant"
	ToothRootCanal  ToothStatus = "root_canal"
	ToothBridge     ToothStatus = "bridge"
	ToothFractured  ToothStatus = "fractured"
	ToothSensitive  ToothStatus = "sensitive"
	ToothAbrasion   ToothStatus = "abrasion"
	ToothErosion    ToothStatus = "erosion"
)

var validToothStatuses = map[ToothStatus]bool{
	ToothHealthy:    true,
	ToothCaries:     true,
	ToothFilled:     true,
	ToothCrown:      true,
	ToothExtraction: true,
	ToothMissing:    true,
	ToothImplant:    true,
	ToothRootCanal:  true,
	ToothBridge:     true,
	ToothFractured:  true,
	ToothSensitive:  true,
	ToothAbrasion:   true,
	ToothErosion:    true,
}

// ValidToothStatus reports whether s is a member of the clinical-status
// vocabulary.
func ValidToothStatus(s ToothStatus) bool {
	return validToothStatuses[s]
}

// Surface identifies one affected tooth surface.
type Surface string

const (
	SurfaceOcclusal Surface = "occlusal"
	SurfaceMesial   Surface = "mesial"
	SurfaceDistal   Surface = "distal"
	SurfaceBuccal   Surface = "buccal"
	SurfaceLingual  Surface = "lingual"
	SurfaceIncisal  Surface = "incisal"
)

var validSurfaces = map[Surface]bool{
	SurfaceOcclusal: true,
	SurfaceMesial:   true,
	SurfaceDistal:   true,
	SurfaceBuccal:   true,
	SurfaceLingual:  true,
	SurfaceIncisal:  true,
}

// ValidSurface reports whether s is a member of the surface vocabulary.
func ValidSurface(s Surface) bool {
	return validSurfaces[s]
}

// ValidToothNumber reports whether n is a valid FDI two-digit tooth code:
// quadrant digit 1-4 concatenated with position digit 1-8, i.e. exactly the
// 32 values {11..18, 21..28, 31..38, 41..48}.
func ValidToothNumber(n int) bool {
	quadrant := n / 10
	position := n % 10
	return quadrant >= 1 && quadrant <= 4 && position >= 1 && position <= 8
}

// LifecycleStatus is the odontogram's lifecycle state.
type LifecycleStatus string

const (
	LifecycleDraft     LifecycleStatus = "draft"
	LifecycleCompleted LifecycleStatus = "completed"
	LifecycleReviewed  LifecycleStatus = "reviewed"
	LifecycleArchived  LifecycleStatus = "archived"
)

// lifecycleTransitions is the allowed-transition table. Archived is terminal.
var lifecycleTransitions = map[LifecycleStatus][]LifecycleStatus{
	LifecycleDraft:     {LifecycleCompleted, LifecycleArchived},
	LifecycleCompleted: {LifecycleReviewed, LifecycleDraft, LifecycleArchived},
	LifecycleReviewed:  {LifecycleCompleted, LifecycleArchived},
	LifecycleArchived:  {},
}

// ValidLifecycleStatus reports whether s is a known lifecycle state.
func ValidLifecycleStatus(s LifecycleStatus) bool {
	_, ok := lifecycleTransitions[s]
	return ok
}

// CanTransition reports whether the lifecycle state machine allows moving
// from one state to another.
func CanTransition(from, to LifecycleStatus) bool {
	for _, allowed := range lifecycleTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsFinalized reports whether s blocks deletion of the odontogram. Only
// draft and archived odontograms may be removed.
func IsFinalized(s LifecycleStatus) bool {
	return s == LifecycleCompleted || s == LifecycleReviewed
}

// TreatmentStatus tracks the financial/treatment progress of one tooth
// record. It is owned by the billing propagation path, not by charting edits.
type TreatmentStatus string

const (
	TreatmentPending    TreatmentStatus = "pending"
	TreatmentInProgress TreatmentStatus = "in_progress"
	TreatmentCompleted  TreatmentStatus = "completed"
	TreatmentCancelled  TreatmentStatus = "cancelled"
)

var validTreatmentStatuses = map[TreatmentStatus]bool{
	TreatmentPending:    true,
	TreatmentInProgress: true,
	TreatmentCompleted:  true,
	TreatmentCancelled:  true,
}

// ValidTreatmentStatus reports whether s is a known treatment status.
func ValidTreatmentStatus(s TreatmentStatus) bool {
	return validTreatmentStatuses[s]
}

// Odontogram maps to the odontogram table. At most one non-deleted
// odontogram exists per (patient, examination date).
type Odontogram struct {
	ID                     uuid.UUID       `db:"id" json:"id"`
	Code                   string          `db:"code" json:"code"`
	ClinicID               int64           `db:"clinic_id" json:"clinic_id"`
	PatientID              int64           `db:"patient_id" json:"patient_id"`
	ExaminationDate        time.Time       `db:"examination_date" json:"examination_date"`
	Status                 LifecycleStatus `db:"status" json:"status"`
	TotalExamined          int             `db:"total_examined" json:"total_examined"`
	HealthyCount           int             `db:"healthy_count" json:"healthy_count"`
	ProblematicCount       int             `db:"problematic_count" json:"problematic_count"`
	TreatmentRequiredCount int             `db:"treatment_required_count" json:"treatment_required_count"`
	UrgencyLevel           int             `db:"urgency_level" json:"urgency_level"`
	GeneralNotes           *string         `db:"general_notes" json:"general_notes,omitempty"`
	Diagnosis              *string         `db:"diagnosis" json:"diagnosis,omitempty"`
	TreatmentPlan          *string         `db:"treatment_plan" json:"treatment_plan,omitempty"`
	CreatedBy              string          `db:"created_by" json:"created_by"`
	UpdatedBy              string          `db:"updated_by" json:"updated_by"`
	CreatedAt              time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time       `db:"updated_at" json:"updated_at"`
	DeletedAt              *time.Time      `db:"deleted_at" json:"deleted_at,omitempty"`

	// ToothRecords is populated on aggregate reads; it is not a column.
	ToothRecords []*ToothRecord `db:"-" json:"tooth_records,omitempty"`
}

// ToothRecord maps to the tooth_record table, child of exactly one
// odontogram. BudgetItemID and InvoiceItemID are financial back-references
// stamped by the billing projector; reconciliation preserves them.
type ToothRecord struct {
	ID                   uuid.UUID       `db:"id" json:"id"`
	OdontogramID         uuid.UUID       `db:"odontogram_id" json:"odontogram_id"`
	ToothNumber          int             `db:"tooth_number" json:"tooth_number"`
	Status               ToothStatus     `db:"status" json:"status"`
	Surfaces             []Surface       `db:"surfaces" json:"surfaces,omitempty"`
	Notes                *string         `db:"notes" json:"notes,omitempty"`
	TreatmentRequired    bool            `db:"treatment_required" json:"treatment_required"`
	TreatmentCompleted   bool            `db:"treatment_completed" json:"treatment_completed"`
	Priority             int             `db:"priority" json:"priority"`
	CostEstimate         money.Amount    `db:"cost_estimate_cents" json:"cost_estimate_cents"`
	TreatmentID          *int64          `db:"treatment_id" json:"treatment_id,omitempty"`
	BudgetItemID         *uuid.UUID      `db:"budget_item_id" json:"budget_item_id,omitempty"`
	InvoiceItemID        *uuid.UUID      `db:"invoice_item_id" json:"invoice_item_id,omitempty"`
	TreatmentStatus      TreatmentStatus `db:"treatment_status" json:"treatment_status"`
	TreatmentCompletedAt *time.Time      `db:"treatment_completed_at" json:"treatment_completed_at,omitempty"`
	UpdatedBy            string          `db:"updated_by" json:"updated_by"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// Statistics is the denormalized counter set stored on the odontogram
// header. It is always recomputed from the full tooth-record set, never
// patched incrementally.
type Statistics struct {
	TotalExamined          int `json:"total_examined"`
	HealthyCount           int `json:"healthy_count"`
	ProblematicCount       int `json:"problematic_count"`
	TreatmentRequiredCount int `json:"treatment_required_count"`
}
