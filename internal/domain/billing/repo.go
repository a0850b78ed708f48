package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/dentio/dentio/pkg/money"
)

// BudgetRepository persists budgets and their line items.
type BudgetRepository interface {
	Create(ctx context.Context, b *Budget) error
	GetByID(ctx context.Context, id uuid.UUID) (*Budget, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Budget, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status BudgetStatus) error
	SetTotal(ctx context.Context, id uuid.UUID, total money.Amount) error

	CreateItem(ctx context.Context, item *BudgetItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*BudgetItem, error)
	ListItems(ctx context.Context, budgetID uuid.UUID) ([]*BudgetItem, error)
	ListItemsByToothRecord(ctx context.Context, toothRecordID uuid.UUID) ([]*BudgetItem, error)
	SetItemSessionsCompleted(ctx context.Context, id uuid.UUID, completed int) error
}

// InvoiceRepository persists invoices and their line items.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Invoice, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status InvoiceStatus) error
	SetTotal(ctx context.Context, id uuid.UUID, total money.Amount) error

	CreateItem(ctx context.Context, item *InvoiceItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*InvoiceItem, error)
	ListItems(ctx context.Context, invoiceID uuid.UUID) ([]*InvoiceItem, error)
}
