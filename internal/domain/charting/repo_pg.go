package charting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentio/dentio/internal/platform/apperr"
	"github.com/dentio/dentio/internal/platform/db"
	"github.com/dentio/dentio/pkg/money"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// odontogramDayConstraint is the authoritative guard for the
// one-odontogram-per-patient-per-day invariant; violations are mapped to the
// same conflict the application-level check produces. The code constraint
// keeps generated identity codes unique.
const (
	odontogramDayConstraint  = "ux_odontogram_patient_day"
	odontogramCodeConstraint = "ux_odontogram_code"
)

type odontogramRepoPG struct {
	pool *pgxpool.Pool
}

// NewOdontogramRepo returns the pgx-backed odontogram repository.
func NewOdontogramRepo(pool *pgxpool.Pool) OdontogramRepository {
	return &odontogramRepoPG{pool: pool}
}

func (r *odontogramRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const odoCols = `id, code, clinic_id, patient_id, examination_date, status,
	total_examined, healthy_count, problematic_count, treatment_required_count,
	urgency_level, general_notes, diagnosis, treatment_plan,
	created_by, updated_by, created_at, updated_at, deleted_at`

func (r *odontogramRepoPG) Create(ctx context.Context, o *Odontogram) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO odontogram (
			id, code, clinic_id, patient_id, examination_date, status,
			total_examined, healthy_count, problematic_count, treatment_required_count,
			urgency_level, general_notes, diagnosis, treatment_plan,
			created_by, updated_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		o.ID, o.Code, o.ClinicID, o.PatientID, o.ExaminationDate, o.Status,
		o.TotalExamined, o.HealthyCount, o.ProblematicCount, o.TreatmentRequiredCount,
		o.UrgencyLevel, o.GeneralNotes, o.Diagnosis, o.TreatmentPlan,
		o.CreatedBy, o.UpdatedBy,
	)
	return mapOdontogramErr(err, o)
}

func (r *odontogramRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Odontogram, error) {
	o, err := scanOdontogram(r.conn(ctx).QueryRow(ctx,
		`SELECT `+odoCols+` FROM odontogram WHERE id = $1 AND deleted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(apperr.CodeOdontogramNotFound, "odontogram %s not found", id)
	}
	return o, err
}

func (r *odontogramRepoPG) GetByCode(ctx context.Context, clinicID int64, code string) (*Odontogram, error) {
	o, err := scanOdontogram(r.conn(ctx).QueryRow(ctx,
		`SELECT `+odoCols+` FROM odontogram WHERE clinic_id = $1 AND code = $2 AND deleted_at IS NULL`,
		clinicID, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(apperr.CodeOdontogramNotFound, "odontogram %s not found", code)
	}
	return o, err
}

func (r *odontogramRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Odontogram, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM odontogram WHERE patient_id = $1 AND deleted_at IS NULL`,
		patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+odoCols+` FROM odontogram
		 WHERE patient_id = $1 AND deleted_at IS NULL
		 ORDER BY examination_date DESC, created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var odos []*Odontogram
	for rows.Next() {
		o, err := scanOdontogram(rows)
		if err != nil {
			return nil, 0, err
		}
		odos = append(odos, o)
	}
	return odos, total, rows.Err()
}

func (r *odontogramRepoPG) LatestByPatient(ctx context.Context, patientID int64) (*Odontogram, error) {
	o, err := scanOdontogram(r.conn(ctx).QueryRow(ctx,
		`SELECT `+odoCols+` FROM odontogram
		 WHERE patient_id = $1 AND deleted_at IS NULL
		 ORDER BY examination_date DESC, created_at DESC LIMIT 1`, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(apperr.CodeOdontogramNotFound,
			"patient %d has no odontogram", patientID)
	}
	return o, err
}

func (r *odontogramRepoPG) Update(ctx context.Context, o *Odontogram) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE odontogram SET
			examination_date=$2, status=$3,
			total_examined=$4, healthy_count=$5, problematic_count=$6, treatment_required_count=$7,
			urgency_level=$8, general_notes=$9, diagnosis=$10, treatment_plan=$11,
			updated_by=$12, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		o.ID, o.ExaminationDate, o.Status,
		o.TotalExamined, o.HealthyCount, o.ProblematicCount, o.TreatmentRequiredCount,
		o.UrgencyLevel, o.GeneralNotes, o.Diagnosis, o.TreatmentPlan,
		o.UpdatedBy,
	)
	return mapOdontogramErr(err, o)
}

func (r *odontogramRepoPG) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE odontogram SET deleted_at = NOW(), updated_by = $2, updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id, deletedBy)
	return err
}

func (r *odontogramRepoPG) FindActiveByPatientAndDate(ctx context.Context, patientID int64, day time.Time, excludeID uuid.UUID) (*Odontogram, error) {
	o, err := scanOdontogram(r.conn(ctx).QueryRow(ctx,
		`SELECT `+odoCols+` FROM odontogram
		 WHERE patient_id = $1 AND examination_date = $2 AND id <> $3 AND deleted_at IS NULL
		 LIMIT 1`,
		patientID, day, excludeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

func (r *odontogramRepoPG) CountByStatus(ctx context.Context, clinicID int64) (map[LifecycleStatus]int, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT status, COUNT(*) FROM odontogram
		 WHERE clinic_id = $1 AND deleted_at IS NULL GROUP BY status`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[LifecycleStatus]int)
	for rows.Next() {
		var status LifecycleStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func mapOdontogramErr(err error, o *Odontogram) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case odontogramDayConstraint:
			return apperr.Conflict(apperr.CodeDuplicateOdontogramForDate,
				"an odontogram already exists for patient %d on %s",
				o.PatientID, o.ExaminationDate.Format("2006-01-02"))
		case odontogramCodeConstraint:
			return apperr.Conflict(apperr.CodeDuplicateOdontogramCode,
				"odontogram code %s already exists", o.Code)
		}
	}
	return err
}

func scanOdontogram(row pgx.Row) (*Odontogram, error) {
	var o Odontogram
	err := row.Scan(
		&o.ID, &o.Code, &o.ClinicID, &o.PatientID, &o.ExaminationDate, &o.Status,
		&o.TotalExamined, &o.HealthyCount, &o.ProblematicCount, &o.TreatmentRequiredCount,
		&o.UrgencyLevel, &o.GeneralNotes, &o.Diagnosis, &o.TreatmentPlan,
		&o.CreatedBy, &o.UpdatedBy, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

type toothRecordRepoPG struct {
	pool *pgxpool.Pool
}

// NewToothRecordRepo returns the pgx-backed tooth-record repository.
func NewToothRecordRepo(pool *pgxpool.Pool) ToothRecordRepository {
	return &toothRecordRepoPG{pool: pool}
}

func (r *toothRecordRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const toothCols = `id, odontogram_id, tooth_number, status, surfaces, notes,
	treatment_required, treatment_completed, priority, cost_estimate_cents,
	treatment_id, budget_item_id, invoice_item_id,
	treatment_status, treatment_completed_at, updated_by, created_at, updated_at`

func (r *toothRecordRepoPG) ListByOdontogram(ctx context.Context, odontogramID uuid.UUID) ([]*ToothRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+toothCols+` FROM tooth_record
		 WHERE odontogram_id = $1 ORDER BY created_at, id`, odontogramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*ToothRecord
	for rows.Next() {
		rec, err := scanTooth(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *toothRecordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ToothRecord, error) {
	rec, err := scanTooth(r.conn(ctx).QueryRow(ctx,
		`SELECT `+toothCols+` FROM tooth_record WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(apperr.CodeToothRecordNotFound, "tooth record %s not found", id)
	}
	return rec, err
}

func (r *toothRecordRepoPG) Insert(ctx context.Context, rec *ToothRecord) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO tooth_record (
			id, odontogram_id, tooth_number, status, surfaces, notes,
			treatment_required, treatment_completed, priority, cost_estimate_cents,
			treatment_id, treatment_status, updated_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		rec.ID, rec.OdontogramID, rec.ToothNumber, rec.Status, surfaceStrings(rec.Surfaces), rec.Notes,
		rec.TreatmentRequired, rec.TreatmentCompleted, rec.Priority, rec.CostEstimate.Cents(),
		rec.TreatmentID, rec.TreatmentStatus, rec.UpdatedBy,
	)
	return err
}

func (r *toothRecordRepoPG) UpdateClinical(ctx context.Context, rec *ToothRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE tooth_record SET
			status=$2, surfaces=$3, notes=$4,
			treatment_required=$5, treatment_completed=$6, priority=$7,
			cost_estimate_cents=$8, treatment_id=$9,
			updated_by=$10, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Status, surfaceStrings(rec.Surfaces), rec.Notes,
		rec.TreatmentRequired, rec.TreatmentCompleted, rec.Priority,
		rec.CostEstimate.Cents(), rec.TreatmentID,
		rec.UpdatedBy,
	)
	return err
}

func (r *toothRecordRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM tooth_record WHERE id = $1`, id)
	return err
}

func (r *toothRecordRepoPG) DeleteByOdontogram(ctx context.Context, odontogramID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM tooth_record WHERE odontogram_id = $1`, odontogramID)
	return err
}

func (r *toothRecordRepoPG) SetBudgetItemRef(ctx context.Context, id, budgetItemID uuid.UUID, updatedBy string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE tooth_record SET budget_item_id = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`,
		id, budgetItemID, updatedBy)
	return err
}

func (r *toothRecordRepoPG) SetInvoiceItemRef(ctx context.Context, id, invoiceItemID uuid.UUID, updatedBy string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE tooth_record SET invoice_item_id = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`,
		id, invoiceItemID, updatedBy)
	return err
}

func (r *toothRecordRepoPG) UpdateTreatmentStatus(ctx context.Context, id uuid.UUID, status TreatmentStatus, completedAt *time.Time, updatedBy string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE tooth_record SET
			treatment_status=$2, treatment_completed_at=$3,
			treatment_completed = ($2 = 'completed'),
			updated_by=$4, updated_at=NOW()
		WHERE id = $1`,
		id, status, completedAt, updatedBy)
	return err
}

func scanTooth(row pgx.Row) (*ToothRecord, error) {
	var rec ToothRecord
	var surfaces []string
	var cents int64
	err := row.Scan(
		&rec.ID, &rec.OdontogramID, &rec.ToothNumber, &rec.Status, &surfaces, &rec.Notes,
		&rec.TreatmentRequired, &rec.TreatmentCompleted, &rec.Priority, &cents,
		&rec.TreatmentID, &rec.BudgetItemID, &rec.InvoiceItemID,
		&rec.TreatmentStatus, &rec.TreatmentCompletedAt, &rec.UpdatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Surfaces = toSurfaces(surfaces)
	rec.CostEstimate = money.FromCents(cents)
	return &rec, nil
}

// surfaceStrings never returns nil: the surfaces column is NOT NULL.
func surfaceStrings(surfaces []Surface) []string {
	out := make([]string, len(surfaces))
	for i, s := range surfaces {
		out[i] = string(s)
	}
	return out
}

func toSurfaces(surfaces []string) []Surface {
	if surfaces == nil {
		return nil
	}
	out := make([]Surface, len(surfaces))
	for i, s := range surfaces {
		out[i] = Surface(s)
	}
	return out
}
