package billing

import (
	"context"
	"errors"

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

type budgetRepoPG struct {
	pool *pgxpool.Pool
}

// NewBudgetRepo returns the pgx-backed budget repository.
func NewBudgetRepo(pool *pgxpool.Pool) BudgetRepository {
	return &budgetRepoPG{pool: pool}
}

func (r *budgetRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const budgetCols = `id, code, clinic_id, patient_id, status, total_cents, created_by, created_at, updated_at`

func (r *budgetRepoPG) Create(ctx context.Context, b *Budget) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO budget (id, code, clinic_id, patient_id, status, total_cents, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		b.ID, b.Code, b.ClinicID, b.PatientID, b.Status, b.Total.Cents(), b.CreatedBy,
	)
	return err
}

func (r *budgetRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Budget, error) {
	b, err := scanBudget(r.conn(ctx).QueryRow(ctx,
		`SELECT `+budgetCols+` FROM budget WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(apperr.CodeBudgetNotFound, "budget %s not found", id)
	}
	return b, err
}

func (r *budgetRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Budget, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM budget WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+budgetCols+` FROM budget WHERE patient_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var budgets []*Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, 0, err
		}
		budgets = append(budgets, b)
	}
	return budgets, total, rows.Err()
}

func (r *budgetRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status BudgetStatus) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE budget SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *budgetRepoPG) SetTotal(ctx context.Context, id uuid.UUID, total money.Amount) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE budget SET total_cents = $2, updated_at = NOW() WHERE id = $1`, id, total.Cents())
	return err
}

const budgetItemCols = `id, budget_id, description, quantity, unit_price_cents, total_cents,
	tooth_record_id, tooth_number, surfaces, clinic_price_id, price_source,
	sessions_required, sessions_completed, priority, requires_anesthesia, created_at, updated_at`

func (r *budgetRepoPG) CreateItem(ctx context.Context, item *BudgetItem) error {
	item.ID = uuid.New()
	surfaces := item.Surfaces
	if surfaces == nil {
		surfaces = []string{}
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO budget_item (
			id, budget_id, description, quantity, unit_price_cents, total_cents,
			tooth_record_id, tooth_number, surfaces, clinic_price_id, price_source,
			sessions_required, sessions_completed, priority, requires_anesthesia
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		item.ID, item.BudgetID, item.Description, item.Quantity,
		item.UnitPrice.Cents(), item.Total.Cents(),
		item.ToothRecordID, item.ToothNumber, surfaces, item.ClinicPriceID, item.PriceSource,
		item.SessionsRequired, item.SessionsCompleted, item.Priority, item.RequiresAnesthesia,
	)
	return err
}

func (r *budgetRepoPG) GetItem(ctx context.Context, id uuid.UUID) (*BudgetItem, error) {
	item, err := scanBudgetItem(r.conn(ctx).QueryRow(ctx,
		`SELECT `+budgetItemCols+` FROM budget_item WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(apperr.CodeBudgetItemNotFound, "budget item %s not found", id)
	}
	return item, err
}

func (r *budgetRepoPG) ListItems(ctx context.Context, budgetID uuid.UUID) ([]*BudgetItem, error) {
	return r.listItems(ctx,
		`SELECT `+budgetItemCols+` FROM budget_item WHERE budget_id = $1 ORDER BY created_at, id`, budgetID)
}

func (r *budgetRepoPG) ListItemsByToothRecord(ctx context.Context, toothRecordID uuid.UUID) ([]*BudgetItem, error) {
	return r.listItems(ctx,
		`SELECT `+budgetItemCols+` FROM budget_item WHERE tooth_record_id = $1 ORDER BY created_at, id`, toothRecordID)
}

func (r *budgetRepoPG) listItems(ctx context.Context, sql string, arg interface{}) ([]*BudgetItem, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*BudgetItem
	for rows.Next() {
		item, err := scanBudgetItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *budgetRepoPG) SetItemSessionsCompleted(ctx context.Context, id uuid.UUID, completed int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE budget_item SET sessions_completed = $2, updated_at = NOW() WHERE id = $1`, id, completed)
	return err
}

func scanBudget(row pgx.Row) (*Budget, error) {
	var b Budget
	var cents int64
	err := row.Scan(&b.ID, &b.Code, &b.ClinicID, &b.PatientID, &b.Status, &cents,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Total = money.FromCents(cents)
	return &b, nil
}

func scanBudgetItem(row pgx.Row) (*BudgetItem, error) {
	var item BudgetItem
	var unit, total int64
	err := row.Scan(
		&item.ID, &item.BudgetID, &item.Description, &item.Quantity, &unit, &total,
		&item.ToothRecordID, &item.ToothNumber, &item.Surfaces, &item.ClinicPriceID, &item.PriceSource,
		&item.SessionsRequired, &item.SessionsCompleted, &item.Priority, &item.RequiresAnesthesia,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.UnitPrice = money.FromCents(unit)
	item.Total = money.FromCents(total)
	return &item, nil
}

type invoiceRepoPG struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepo returns the pgx-backed invoice repository.
func NewInvoiceRepo(pool *pgxpool.Pool) InvoiceRepository {
	return &invoiceRepoPG{pool: pool}
}

func (r *invoiceRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const invoiceCols = `id, code, clinic_id, patient_id, status, total_cents, created_by, created_at, updated_at`

func (r *invoiceRepoPG) Create(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO invoice (id, code, clinic_id, patient_id, status, total_cents, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		inv.ID, inv.Code, inv.ClinicID, inv.PatientID, inv.Status, inv.Total.Cents(), inv.CreatedBy,
	)
	return err
}

func (r *invoiceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := scanInvoice(r.conn(ctx).QueryRow(ctx,
		`SELECT `+invoiceCols+` FROM invoice WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(apperr.CodeInvoiceNotFound, "invoice %s not found", id)
	}
	return inv, err
}

func (r *invoiceRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Invoice, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM invoice WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+invoiceCols+` FROM invoice WHERE patient_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

func (r *invoiceRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status InvoiceStatus) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE invoice SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *invoiceRepoPG) SetTotal(ctx context.Context, id uuid.UUID, total money.Amount) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE invoice SET total_cents = $2, updated_at = NOW() WHERE id = $1`, id, total.Cents())
	return err
}

const invoiceItemCols = `id, invoice_id, description, quantity, unit_price_cents, total_cents,
	budget_item_id, tooth_record_id, clinic_price_id,
	anesthesia_cost_cents, material_cost_cents, created_at, updated_at`

func (r *invoiceRepoPG) CreateItem(ctx context.Context, item *InvoiceItem) error {
	item.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO invoice_item (
			id, invoice_id, description, quantity, unit_price_cents, total_cents,
			budget_item_id, tooth_record_id, clinic_price_id,
			anesthesia_cost_cents, material_cost_cents
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		item.ID, item.InvoiceID, item.Description, item.Quantity,
		item.UnitPrice.Cents(), item.Total.Cents(),
		item.BudgetItemID, item.ToothRecordID, item.ClinicPriceID,
		item.AnesthesiaCost.Cents(), item.MaterialCost.Cents(),
	)
	return err
}

func (r *invoiceRepoPG) GetItem(ctx context.Context, id uuid.UUID) (*InvoiceItem, error) {
	item, err := scanInvoiceItem(r.conn(ctx).QueryRow(ctx,
		`SELECT `+invoiceItemCols+` FROM invoice_item WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(apperr.CodeInvoiceNotFound, "invoice item %s not found", id)
	}
	return item, err
}

func (r *invoiceRepoPG) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]*InvoiceItem, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+invoiceItemCols+` FROM invoice_item WHERE invoice_id = $1 ORDER BY created_at, id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*InvoiceItem
	for rows.Next() {
		item, err := scanInvoiceItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var cents int64
	err := row.Scan(&inv.ID, &inv.Code, &inv.ClinicID, &inv.PatientID, &inv.Status, &cents,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.Total = money.FromCents(cents)
	return &inv, nil
}

func scanInvoiceItem(row pgx.Row) (*InvoiceItem, error) {
	var item InvoiceItem
	var unit, total, anesthesia, material int64
	err := row.Scan(
		&item.ID, &item.InvoiceID, &item.Description, &item.Quantity, &unit, &total,
		&item.BudgetItemID, &item.ToothRecordID, &item.ClinicPriceID,
		&anesthesia, &material, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.UnitPrice = money.FromCents(unit)
	item.Total = money.FromCents(total)
	item.AnesthesiaCost = money.FromCents(anesthesia)
	item.MaterialCost = money.FromCents(material)
	return &item, nil
}
