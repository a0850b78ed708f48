// Package billing holds treatment plans (budgets), invoices and the
// projector that derives their line items from clinical tooth records.
// Line items persist independently of charting edits; only the
// back-references form the audit chain tooth record -> budget item ->
// invoice item.
package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/dentio/dentio/pkg/money"
)

// BudgetStatus is the treatment plan's lifecycle state.
type BudgetStatus string

const (
	BudgetDraft     BudgetStatus = "draft"
	BudgetPresented BudgetStatus = "presented"
	BudgetApproved  BudgetStatus = "approved"
	BudgetRejected  BudgetStatus = "rejected"
	BudgetExpired   BudgetStatus = "expired"
)

var validBudgetStatuses = map[BudgetStatus]bool{
	BudgetDraft:     true,
	BudgetPresented: true,
	BudgetApproved:  true,
	BudgetRejected:  true,
	BudgetExpired:   true,
}

// ValidBudgetStatus reports whether s is a known budget status.
func ValidBudgetStatus(s BudgetStatus) bool {
	return validBudgetStatuses[s]
}

// InvoiceStatus is the invoice's lifecycle state.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceIssued    InvoiceStatus = "issued"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

var validInvoiceStatuses = map[InvoiceStatus]bool{
	InvoiceDraft:     true,
	InvoiceIssued:    true,
	InvoicePaid:      true,
	InvoiceCancelled: true,
}

// ValidInvoiceStatus reports whether s is a known invoice status.
func ValidInvoiceStatus(s InvoiceStatus) bool {
	return validInvoiceStatuses[s]
}

// Budget maps to the budget table: a proposed treatment plan.
type Budget struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	Code      string       `db:"code" json:"code"`
	ClinicID  int64        `db:"clinic_id" json:"clinic_id"`
	PatientID int64        `db:"patient_id" json:"patient_id"`
	Status    BudgetStatus `db:"status" json:"status"`
	Total     money.Amount `db:"total_cents" json:"total_cents"`
	CreatedBy string       `db:"created_by" json:"created_by"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`

	Items []*BudgetItem `db:"-" json:"items,omitempty"`
}

// BudgetItem maps to the budget_item table: one priced, quantified
// treatment line, optionally traceable back to the tooth record and the
// catalog price that produced it.
type BudgetItem struct {
	ID                 uuid.UUID    `db:"id" json:"id"`
	BudgetID           uuid.UUID    `db:"budget_id" json:"budget_id"`
	Description        string       `db:"description" json:"description"`
	Quantity           int          `db:"quantity" json:"quantity"`
	UnitPrice          money.Amount `db:"unit_price_cents" json:"unit_price_cents"`
	Total              money.Amount `db:"total_cents" json:"total_cents"`
	ToothRecordID      *uuid.UUID   `db:"tooth_record_id" json:"tooth_record_id,omitempty"`
	ToothNumber        *int         `db:"tooth_number" json:"tooth_number,omitempty"`
	Surfaces           []string     `db:"surfaces" json:"surfaces,omitempty"`
	ClinicPriceID      *uuid.UUID   `db:"clinic_price_id" json:"clinic_price_id,omitempty"`
	PriceSource        string       `db:"price_source" json:"price_source"`
	SessionsRequired   int          `db:"sessions_required" json:"sessions_required"`
	SessionsCompleted  int          `db:"sessions_completed" json:"sessions_completed"`
	Priority           int          `db:"priority" json:"priority"`
	RequiresAnesthesia bool         `db:"requires_anesthesia" json:"requires_anesthesia"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`
}

// Invoice maps to the invoice table.
type Invoice struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	Code      string        `db:"code" json:"code"`
	ClinicID  int64         `db:"clinic_id" json:"clinic_id"`
	PatientID int64         `db:"patient_id" json:"patient_id"`
	Status    InvoiceStatus `db:"status" json:"status"`
	Total     money.Amount  `db:"total_cents" json:"total_cents"`
	CreatedBy string        `db:"created_by" json:"created_by"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`

	Items []*InvoiceItem `db:"-" json:"items,omitempty"`
}

// InvoiceItem maps to the invoice_item table: the billed counterpart of a
// budget item once treatment is rendered.
type InvoiceItem struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	InvoiceID      uuid.UUID    `db:"invoice_id" json:"invoice_id"`
	Description    string       `db:"description" json:"description"`
	Quantity       int          `db:"quantity" json:"quantity"`
	UnitPrice      money.Amount `db:"unit_price_cents" json:"unit_price_cents"`
	Total          money.Amount `db:"total_cents" json:"total_cents"`
	BudgetItemID   *uuid.UUID   `db:"budget_item_id" json:"budget_item_id,omitempty"`
	ToothRecordID  *uuid.UUID   `db:"tooth_record_id" json:"tooth_record_id,omitempty"`
	ClinicPriceID  *uuid.UUID   `db:"clinic_price_id" json:"clinic_price_id,omitempty"`
	AnesthesiaCost money.Amount `db:"anesthesia_cost_cents" json:"anesthesia_cost_cents"`
	MaterialCost   money.Amount `db:"material_cost_cents" json:"material_cost_cents"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}
