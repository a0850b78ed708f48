package charting

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentio/dentio/internal/platform/apperr"
	"github.com/dentio/dentio/internal/platform/auth"
	"github.com/dentio/dentio/internal/platform/db"
)

// Service owns all odontogram mutations. Every multi-statement write runs
// inside one transaction so a mid-sequence failure leaves the stored set
// unchanged.
type Service struct {
	odos  OdontogramRepository
	teeth ToothRecordRepository
	tx    func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewService(pool *pgxpool.Pool, odos OdontogramRepository, teeth ToothRecordRepository) *Service {
	return &Service{
		odos:  odos,
		teeth: teeth,
		tx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
	}
}

// CreateInput is the create-odontogram boundary contract.
type CreateInput struct {
	ClinicID        int64
	PatientID       int64
	ExaminationDate time.Time
	ToothRecords    []ToothSubmission
	GeneralNotes    *string
	Diagnosis       *string
	TreatmentPlan   *string
	UrgencyLevel    int
}

// UpdateInput carries an odontogram edit. Nil fields are left unchanged;
// a non-nil ToothRecords slice is the authoritative full tooth set and
// triggers reconciliation.
type UpdateInput struct {
	ExaminationDate *time.Time
	ToothRecords    []ToothSubmission
	GeneralNotes    *string
	Diagnosis       *string
	TreatmentPlan   *string
	UrgencyLevel    *int
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Odontogram, error) {
	urgency, err := normalizeUrgency(in.UrgencyLevel)
	if err != nil {
		return nil, err
	}
	if err := ValidateSubmission(in.PatientID, in.ExaminationDate, time.Now().UTC(), in.ToothRecords); err != nil {
		return nil, err
	}

	day := dayOf(in.ExaminationDate)
	o := &Odontogram{
		Code:            newCode(day),
		ClinicID:        in.ClinicID,
		PatientID:       in.PatientID,
		ExaminationDate: day,
		Status:          LifecycleDraft,
		UrgencyLevel:    urgency,
		GeneralNotes:    in.GeneralNotes,
		Diagnosis:       in.Diagnosis,
		TreatmentPlan:   in.TreatmentPlan,
		CreatedBy:       actor.ID,
		UpdatedBy:       actor.ID,
	}

	records := make([]*ToothRecord, len(in.ToothRecords))
	for i, sub := range in.ToothRecords {
		records[i] = newRecord(sub, actor.ID)
	}
	o.applyStatistics(recountStatistics(records))

	err = s.tx(ctx, func(ctx context.Context) error {
		// Application-level fast fail; the unique constraint is the
		// authoritative guard on the concurrent-create race.
		existing, err := s.odos.FindActiveByPatientAndDate(ctx, in.PatientID, day, uuid.Nil)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict(apperr.CodeDuplicateOdontogramForDate,
				"odontogram %s already covers patient %d on %s",
				existing.Code, in.PatientID, day.Format("2006-01-02"))
		}
		if err := s.odos.Create(ctx, o); err != nil {
			return err
		}
		for _, rec := range records {
			rec.OdontogramID = o.ID
			if err := s.teeth.Insert(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.ToothRecords = records
	return o, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput) (*Odontogram, error) {
	var o *Odontogram
	err := s.tx(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.odos.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if in.ExaminationDate != nil {
			day := dayOf(*in.ExaminationDate)
			if !day.Equal(o.ExaminationDate) {
				if day.After(dayOf(time.Now().UTC())) {
					return apperr.Validation(apperr.CodeInvalidExaminationDate,
						"examination date %s is in the future", day.Format("2006-01-02"))
				}
				existing, err := s.odos.FindActiveByPatientAndDate(ctx, o.PatientID, day, o.ID)
				if err != nil {
					return err
				}
				if existing != nil {
					return apperr.Conflict(apperr.CodeDuplicateOdontogramForDate,
						"odontogram %s already covers patient %d on %s",
						existing.Code, o.PatientID, day.Format("2006-01-02"))
				}
				o.ExaminationDate = day
			}
		}
		if in.UrgencyLevel != nil {
			urgency, err := normalizeUrgency(*in.UrgencyLevel)
			if err != nil {
				return err
			}
			o.UrgencyLevel = urgency
		}
		if in.GeneralNotes != nil {
			o.GeneralNotes = in.GeneralNotes
		}
		if in.Diagnosis != nil {
			o.Diagnosis = in.Diagnosis
		}
		if in.TreatmentPlan != nil {
			o.TreatmentPlan = in.TreatmentPlan
		}

		if in.ToothRecords != nil {
			if err := ValidateSubmission(o.PatientID, o.ExaminationDate, time.Now().UTC(), in.ToothRecords); err != nil {
				return err
			}
			final, err := s.reconcile(ctx, actor, o.ID, in.ToothRecords)
			if err != nil {
				return err
			}
			o.applyStatistics(recountStatistics(final))
			o.ToothRecords = final
		}

		o.UpdatedBy = actor.ID
		return s.odos.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	if o.ToothRecords == nil {
		records, err := s.teeth.ListByOdontogram(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.ToothRecords = records
	}
	return o, nil
}

// reconcile executes the reconciliation plan against one odontogram's
// children and returns the resulting record set. Must run inside the
// caller's transaction.
func (s *Service) reconcile(ctx context.Context, actor auth.Actor, odontogramID uuid.UUID, subs []ToothSubmission) ([]*ToothRecord, error) {
	stored, err := s.teeth.ListByOdontogram(ctx, odontogramID)
	if err != nil {
		return nil, err
	}
	plan := planReconciliation(stored, subs)

	for _, dup := range plan.duplicates {
		if err := s.teeth.Delete(ctx, dup.ID); err != nil {
			return nil, err
		}
	}
	for _, gone := range plan.removals {
		if err := s.teeth.Delete(ctx, gone.ID); err != nil {
			return nil, err
		}
	}

	final := make([]*ToothRecord, 0, len(subs))
	for _, upd := range plan.updates {
		applySubmission(upd.record, upd.sub, actor.ID)
		if err := s.teeth.UpdateClinical(ctx, upd.record); err != nil {
			return nil, err
		}
		final = append(final, upd.record)
	}
	for _, sub := range plan.inserts {
		rec := newRecord(sub, actor.ID)
		rec.OdontogramID = odontogramID
		if err := s.teeth.Insert(ctx, rec); err != nil {
			return nil, err
		}
		final = append(final, rec)
	}
	return final, nil
}

func (s *Service) UpdateStatus(ctx context.Context, actor auth.Actor, id uuid.UUID, newStatus LifecycleStatus) (*Odontogram, error) {
	if !ValidLifecycleStatus(newStatus) {
		return nil, apperr.Validation(apperr.CodeInvalidStatusTransition,
			"unknown status %q", newStatus)
	}
	var o *Odontogram
	err := s.tx(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.odos.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, newStatus) {
			return apperr.State(apperr.CodeInvalidStatusTransition,
				"cannot transition odontogram %s from %s to %s", o.Code, o.Status, newStatus)
		}
		o.Status = newStatus
		o.UpdatedBy = actor.ID
		return s.odos.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Delete hard-deletes the child tooth records, then soft-deletes the
// header, in one transaction. Finalized odontograms cannot be removed.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	return s.tx(ctx, func(ctx context.Context) error {
		o, err := s.odos.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if IsFinalized(o.Status) {
			return apperr.State(apperr.CodeCannotDeleteFinalized,
				"odontogram %s is %s and cannot be deleted", o.Code, o.Status)
		}
		if err := s.teeth.DeleteByOdontogram(ctx, o.ID); err != nil {
			return err
		}
		return s.odos.SoftDelete(ctx, o.ID, actor.ID)
	})
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Odontogram, error) {
	o, err := s.odos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.ToothRecords, err = s.teeth.ListByOdontogram(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) GetByCode(ctx context.Context, clinicID int64, code string) (*Odontogram, error) {
	o, err := s.odos.GetByCode(ctx, clinicID, code)
	if err != nil {
		return nil, err
	}
	o.ToothRecords, err = s.teeth.ListByOdontogram(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Odontogram, int, error) {
	return s.odos.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) LatestByPatient(ctx context.Context, patientID int64) (*Odontogram, error) {
	o, err := s.odos.LatestByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	o.ToothRecords, err = s.teeth.ListByOdontogram(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Statistics returns the clinic's odontogram counts by lifecycle status.
func (s *Service) Statistics(ctx context.Context, clinicID int64) (map[LifecycleStatus]int, error) {
	return s.odos.CountByStatus(ctx, clinicID)
}

// GetToothRecord is consumed by the billing projector.
func (s *Service) GetToothRecord(ctx context.Context, id uuid.UUID) (*ToothRecord, error) {
	return s.teeth.GetByID(ctx, id)
}

// SetBudgetItemRef stamps a tooth record's budget-line back-reference.
func (s *Service) SetBudgetItemRef(ctx context.Context, actor auth.Actor, toothRecordID, budgetItemID uuid.UUID) error {
	if _, err := s.teeth.GetByID(ctx, toothRecordID); err != nil {
		return err
	}
	return s.teeth.SetBudgetItemRef(ctx, toothRecordID, budgetItemID, actor.ID)
}

// SetInvoiceItemRef stamps a tooth record's invoice-line back-reference.
func (s *Service) SetInvoiceItemRef(ctx context.Context, actor auth.Actor, toothRecordID, invoiceItemID uuid.UUID) error {
	if _, err := s.teeth.GetByID(ctx, toothRecordID); err != nil {
		return err
	}
	return s.teeth.SetInvoiceItemRef(ctx, toothRecordID, invoiceItemID, actor.ID)
}

// SetTreatmentStatus updates a tooth record's treatment status. Repeat calls
// with the same status are no-ops: the completion date is stamped only on
// the transition into completed.
func (s *Service) SetTreatmentStatus(ctx context.Context, actor auth.Actor, toothRecordID uuid.UUID, status TreatmentStatus) (*ToothRecord, error) {
	if !ValidTreatmentStatus(status) {
		return nil, apperr.Validation(apperr.CodeInvalidTreatmentStatus,
			"invalid treatment status %q", status)
	}
	rec, err := s.teeth.GetByID(ctx, toothRecordID)
	if err != nil {
		return nil, err
	}
	if rec.TreatmentStatus == status {
		return rec, nil
	}
	completedAt := rec.TreatmentCompletedAt
	if status == TreatmentCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}
	if err := s.teeth.UpdateTreatmentStatus(ctx, toothRecordID, status, completedAt, actor.ID); err != nil {
		return nil, err
	}
	rec.TreatmentStatus = status
	rec.TreatmentCompleted = status == TreatmentCompleted
	rec.TreatmentCompletedAt = completedAt
	rec.UpdatedBy = actor.ID
	return rec, nil
}

func (o *Odontogram) applyStatistics(stats Statistics) {
	o.TotalExamined = stats.TotalExamined
	o.HealthyCount = stats.HealthyCount
	o.ProblematicCount = stats.ProblematicCount
	o.TreatmentRequiredCount = stats.TreatmentRequiredCount
}

func normalizeUrgency(level int) (int, error) {
	if level == 0 {
		return 1, nil
	}
	if level < 1 || level > 4 {
		return 0, apperr.Validation(apperr.CodeInvalidUrgencyLevel,
			"urgency level %d must be between 1 and 4", level)
	}
	return level, nil
}

// newCode builds the generated identity code, e.g. ODG-20240301-A41C9F.
func newCode(day time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "ODG-" + day.Format("20060102") + "-" + suffix
}
