package pricing

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

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo returns the pgx-backed price catalog repository.
func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const priceCols = `id, clinic_id, treatment_id, base_price_cents, insurance_price_cents,
	promotional_price_cents, promotional_start_date, promotional_end_date,
	estimated_sessions, requires_anesthesia, anesthesia_cost_cents, material_cost_cents,
	effective_from, active, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *ClinicTreatmentPrice) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clinic_treatment_price (
			id, clinic_id, treatment_id, base_price_cents, insurance_price_cents,
			promotional_price_cents, promotional_start_date, promotional_end_date,
			estimated_sessions, requires_anesthesia, anesthesia_cost_cents, material_cost_cents,
			effective_from, active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.ClinicID, p.TreatmentID, p.BasePrice.Cents(), p.InsurancePrice.Cents(),
		optCents(p.PromotionalPrice), p.PromotionalStartDate, p.PromotionalEndDate,
		p.EstimatedSessions, p.RequiresAnesthesia, p.AnesthesiaCost.Cents(), p.MaterialCost.Cents(),
		p.EffectiveFrom, p.Active,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ClinicTreatmentPrice, error) {
	p, err := scanPrice(r.conn(ctx).QueryRow(ctx,
		`SELECT `+priceCols+` FROM clinic_treatment_price WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(apperr.CodePriceNotFound, "clinic treatment price %s not found", id)
	}
	return p, err
}

func (r *repoPG) GetActive(ctx context.Context, clinicID, treatmentID int64, asOf time.Time) (*ClinicTreatmentPrice, error) {
	p, err := scanPrice(r.conn(ctx).QueryRow(ctx,
		`SELECT `+priceCols+` FROM clinic_treatment_price
		 WHERE clinic_id = $1 AND treatment_id = $2 AND active AND effective_from <= $3
		 ORDER BY effective_from DESC LIMIT 1`,
		clinicID, treatmentID, asOf))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *repoPG) ListByClinic(ctx context.Context, clinicID int64, limit, offset int) ([]*ClinicTreatmentPrice, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM clinic_treatment_price WHERE clinic_id = $1`, clinicID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+priceCols+` FROM clinic_treatment_price
		 WHERE clinic_id = $1 ORDER BY treatment_id, effective_from DESC LIMIT $2 OFFSET $3`,
		clinicID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var prices []*ClinicTreatmentPrice
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, 0, err
		}
		prices = append(prices, p)
	}
	return prices, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, p *ClinicTreatmentPrice) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinic_treatment_price SET
			base_price_cents=$2, insurance_price_cents=$3,
			promotional_price_cents=$4, promotional_start_date=$5, promotional_end_date=$6,
			estimated_sessions=$7, requires_anesthesia=$8,
			anesthesia_cost_cents=$9, material_cost_cents=$10,
			effective_from=$11, active=$12, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.BasePrice.Cents(), p.InsurancePrice.Cents(),
		optCents(p.PromotionalPrice), p.PromotionalStartDate, p.PromotionalEndDate,
		p.EstimatedSessions, p.RequiresAnesthesia,
		p.AnesthesiaCost.Cents(), p.MaterialCost.Cents(),
		p.EffectiveFrom, p.Active,
	)
	return err
}

func (r *repoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE clinic_treatment_price SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func scanPrice(row pgx.Row) (*ClinicTreatmentPrice, error) {
	var p ClinicTreatmentPrice
	var base, insurance, anesthesia, material int64
	var promo *int64
	err := row.Scan(
		&p.ID, &p.ClinicID, &p.TreatmentID, &base, &insurance,
		&promo, &p.PromotionalStartDate, &p.PromotionalEndDate,
		&p.EstimatedSessions, &p.RequiresAnesthesia, &anesthesia, &material,
		&p.EffectiveFrom, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.BasePrice = money.FromCents(base)
	p.InsurancePrice = money.FromCents(insurance)
	p.AnesthesiaCost = money.FromCents(anesthesia)
	p.MaterialCost = money.FromCents(material)
	if promo != nil {
		amount := money.FromCents(*promo)
		p.PromotionalPrice = &amount
	}
	return &p, nil
}

func optCents(a *money.Amount) *int64 {
	if a == nil {
		return nil
	}
	cents := a.Cents()
	return &cents
}
