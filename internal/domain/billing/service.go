package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentio/dentio/internal/domain/charting"
	"github.com/dentio/dentio/internal/domain/pricing"
	"github.com/dentio/dentio/internal/platform/apperr"
	"github.com/dentio/dentio/internal/platform/auth"
	"github.com/dentio/dentio/internal/platform/db"
	"github.com/dentio/dentio/pkg/money"
)

// ChartRecords is the slice of the charting service the projector needs:
// reading tooth records and stamping financial back-references on them.
type ChartRecords interface {
	GetToothRecord(ctx context.Context, id uuid.UUID) (*charting.ToothRecord, error)
	SetBudgetItemRef(ctx context.Context, actor auth.Actor, toothRecordID, budgetItemID uuid.UUID) error
	SetInvoiceItemRef(ctx context.Context, actor auth.Actor, toothRecordID, invoiceItemID uuid.UUID) error
	SetTreatmentStatus(ctx context.Context, actor auth.Actor, toothRecordID uuid.UUID, status charting.TreatmentStatus) (*charting.ToothRecord, error)
}

// PriceResolver resolves effective catalog prices for the projector.
type PriceResolver interface {
	Resolve(ctx context.Context, clinicID, treatmentID int64, asOf time.Time, fallback money.Amount) (pricing.Resolution, error)
	GetPrice(ctx context.Context, id uuid.UUID) (*pricing.ClinicTreatmentPrice, error)
}

// Service projects clinical tooth records into budget and invoice line
// items. Items are snapshots: once created they do not follow later
// charting edits, only the back-references keep the chain auditable.
type Service struct {
	budgets  BudgetRepository
	invoices InvoiceRepository
	charts   ChartRecords
	prices   PriceResolver
	tx       func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewService(pool *pgxpool.Pool, budgets BudgetRepository, invoices InvoiceRepository, charts ChartRecords, prices PriceResolver) *Service {
	return &Service{
		budgets:  budgets,
		invoices: invoices,
		charts:   charts,
		prices:   prices,
		tx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
	}
}

// CreateBudget opens an empty draft budget for a patient.
func (s *Service) CreateBudget(ctx context.Context, actor auth.Actor, clinicID, patientID int64) (*Budget, error) {
	if patientID <= 0 {
		return nil, apperr.Validation(apperr.CodeInvalidPatientReference,
			"patient reference %d is not valid", patientID)
	}
	if clinicID <= 0 {
		return nil, apperr.Validation(apperr.CodeInvalidClinicReference,
			"clinic reference %d is not valid", clinicID)
	}
	b := &Budget{
		Code:      newCode("BGT"),
		ClinicID:  clinicID,
		PatientID: patientID,
		Status:    BudgetDraft,
		CreatedBy: actor.ID,
	}
	if err := s.budgets.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBudget loads a budget with its line items attached.
func (s *Service) GetBudget(ctx context.Context, id uuid.UUID) (*Budget, error) {
	b, err := s.budgets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Items, err = s.budgets.ListItems(ctx, id); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListBudgets(ctx context.Context, patientID int64, limit, offset int) ([]*Budget, int, error) {
	return s.budgets.ListByPatient(ctx, patientID, limit, offset)
}

// UpdateBudgetStatus moves a budget through its lifecycle. Rejected and
// expired budgets are terminal.
func (s *Service) UpdateBudgetStatus(ctx context.Context, id uuid.UUID, status BudgetStatus) (*Budget, error) {
	if !ValidBudgetStatus(status) {
		return nil, apperr.Validation(apperr.CodeInvalidStatusTransition,
			"unknown budget status %q", status)
	}
	b, err := s.budgets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == BudgetRejected || b.Status == BudgetExpired {
		return nil, apperr.State(apperr.CodeInvalidStatusTransition,
			"budget %s is %s and can no longer change status", b.Code, b.Status)
	}
	if err := s.budgets.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	b.Status = status
	return b, nil
}

// ProjectToBudget turns one treatment-required tooth record into a budget
// line item. The unit price is resolved from the clinic's catalog at call
// time, falling back to the dentist's cost estimate; the resolution outcome
// is recorded on the item as its price source.
func (s *Service) ProjectToBudget(ctx context.Context, actor auth.Actor, budgetID, toothRecordID uuid.UUID) (*BudgetItem, error) {
	var item *BudgetItem
	err := s.tx(ctx, func(ctx context.Context) error {
		budget, err := s.budgets.GetByID(ctx, budgetID)
		if err != nil {
			return err
		}
		if budget.Status != BudgetDraft {
			return apperr.State(apperr.CodeInvalidStatusTransition,
				"budget %s is %s; items can only be added while draft", budget.Code, budget.Status)
		}
		rec, err := s.charts.GetToothRecord(ctx, toothRecordID)
		if err != nil {
			return err
		}
		if !rec.TreatmentRequired {
			return apperr.State(apperr.CodeTreatmentNotRequired,
				"tooth %d does not require treatment", rec.ToothNumber)
		}
		if rec.BudgetItemID != nil {
			return apperr.Conflict(apperr.CodeAlreadyProjected,
				"tooth %d is already on budget item %s", rec.ToothNumber, rec.BudgetItemID)
		}

		var treatmentID int64
		if rec.TreatmentID != nil {
			treatmentID = *rec.TreatmentID
		}
		res, err := s.prices.Resolve(ctx, budget.ClinicID, treatmentID, time.Now().UTC(), rec.CostEstimate)
		if err != nil {
			return err
		}

		toothNumber := rec.ToothNumber
		item = &BudgetItem{
			BudgetID:           budgetID,
			Description:        itemDescription(rec),
			Quantity:           1,
			UnitPrice:          res.Amount,
			Total:              res.Amount,
			ToothRecordID:      &rec.ID,
			ToothNumber:        &toothNumber,
			Surfaces:           surfaceStrings(rec.Surfaces),
			ClinicPriceID:      res.PriceID,
			PriceSource:        string(res.Source),
			SessionsRequired:   sessionsOrOne(res.EstimatedSessions),
			Priority:           rec.Priority,
			RequiresAnesthesia: res.RequiresAnesthesia,
		}
		if err := s.budgets.CreateItem(ctx, item); err != nil {
			return err
		}
		if err := s.refreshBudgetTotal(ctx, budgetID); err != nil {
			return err
		}
		return s.charts.SetBudgetItemRef(ctx, actor, rec.ID, item.ID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// CreateInvoice opens an empty draft invoice for a patient.
func (s *Service) CreateInvoice(ctx context.Context, actor auth.Actor, clinicID, patientID int64) (*Invoice, error) {
	if patientID <= 0 {
		return nil, apperr.Validation(apperr.CodeInvalidPatientReference,
			"patient reference %d is not valid", patientID)
	}
	if clinicID <= 0 {
		return nil, apperr.Validation(apperr.CodeInvalidClinicReference,
			"clinic reference %d is not valid", clinicID)
	}
	inv := &Invoice{
		Code:      newCode("INV"),
		ClinicID:  clinicID,
		PatientID: patientID,
		Status:    InvoiceDraft,
		CreatedBy: actor.ID,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetInvoice loads an invoice with its line items attached.
func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Items, err = s.invoices.ListItems(ctx, id); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) ListInvoices(ctx context.Context, patientID int64, limit, offset int) ([]*Invoice, int, error) {
	return s.invoices.ListByPatient(ctx, patientID, limit, offset)
}

// UpdateInvoiceStatus moves an invoice through its lifecycle. Paid and
// cancelled invoices are terminal.
func (s *Service) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status InvoiceStatus) (*Invoice, error) {
	if !ValidInvoiceStatus(status) {
		return nil, apperr.Validation(apperr.CodeInvalidStatusTransition,
			"unknown invoice status %q", status)
	}
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == InvoicePaid || inv.Status == InvoiceCancelled {
		return nil, apperr.State(apperr.CodeInvalidStatusTransition,
			"invoice %s is %s and can no longer change status", inv.Code, inv.Status)
	}
	if err := s.invoices.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	inv.Status = status
	return inv, nil
}

// ProjectToInvoice turns one budget item into an invoice line item. Price
// and total are carried over from the budget item, never re-resolved, so
// the patient is billed what was quoted; anesthesia and material costs are
// copied from the catalog row the budget item was priced from. Quantity is
// the sessions actually rendered, defaulting to one.
func (s *Service) ProjectToInvoice(ctx context.Context, actor auth.Actor, invoiceID, budgetItemID uuid.UUID) (*InvoiceItem, error) {
	var item *InvoiceItem
	err := s.tx(ctx, func(ctx context.Context) error {
		invoice, err := s.invoices.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != InvoiceDraft {
			return apperr.State(apperr.CodeInvalidStatusTransition,
				"invoice %s is %s; items can only be added while draft", invoice.Code, invoice.Status)
		}
		bItem, err := s.budgets.GetItem(ctx, budgetItemID)
		if err != nil {
			return err
		}
		if bItem.ToothRecordID != nil {
			rec, err := s.charts.GetToothRecord(ctx, *bItem.ToothRecordID)
			if err != nil {
				return err
			}
			if rec.InvoiceItemID != nil {
				return apperr.Conflict(apperr.CodeAlreadyProjected,
					"tooth %d is already on invoice item %s", rec.ToothNumber, rec.InvoiceItemID)
			}
		}

		quantity := bItem.SessionsCompleted
		if quantity <= 0 {
			quantity = 1
		}
		anesthesia, material := money.Amount(0), money.Amount(0)
		if bItem.ClinicPriceID != nil {
			price, err := s.prices.GetPrice(ctx, *bItem.ClinicPriceID)
			if err != nil {
				return err
			}
			anesthesia = price.AnesthesiaCost
			material = price.MaterialCost
		}

		item = &InvoiceItem{
			InvoiceID:      invoiceID,
			Description:    bItem.Description,
			Quantity:       quantity,
			UnitPrice:      bItem.UnitPrice,
			Total:          bItem.Total,
			BudgetItemID:   &bItem.ID,
			ToothRecordID:  bItem.ToothRecordID,
			ClinicPriceID:  bItem.ClinicPriceID,
			AnesthesiaCost: anesthesia,
			MaterialCost:   material,
		}
		if err := s.invoices.CreateItem(ctx, item); err != nil {
			return err
		}
		if err := s.refreshInvoiceTotal(ctx, invoiceID); err != nil {
			return err
		}
		if bItem.ToothRecordID != nil {
			return s.charts.SetInvoiceItemRef(ctx, actor, *bItem.ToothRecordID, item.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SyncTreatmentStatus updates a tooth record's treatment status and keeps
// the budget-side session counters in step: completion marks every budget
// item that references the record as fully rendered. Safe to repeat.
func (s *Service) SyncTreatmentStatus(ctx context.Context, actor auth.Actor, toothRecordID uuid.UUID, status charting.TreatmentStatus) (*charting.ToothRecord, error) {
	var rec *charting.ToothRecord
	err := s.tx(ctx, func(ctx context.Context) error {
		var err error
		if rec, err = s.charts.SetTreatmentStatus(ctx, actor, toothRecordID, status); err != nil {
			return err
		}
		if status != charting.TreatmentCompleted {
			return nil
		}
		items, err := s.budgets.ListItemsByToothRecord(ctx, toothRecordID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.SessionsCompleted >= item.SessionsRequired {
				continue
			}
			if err := s.budgets.SetItemSessionsCompleted(ctx, item.ID, item.SessionsRequired); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) refreshBudgetTotal(ctx context.Context, budgetID uuid.UUID) error {
	items, err := s.budgets.ListItems(ctx, budgetID)
	if err != nil {
		return err
	}
	var total money.Amount
	for _, item := range items {
		total = total.Add(item.Total)
	}
	return s.budgets.SetTotal(ctx, budgetID, total)
}

func (s *Service) refreshInvoiceTotal(ctx context.Context, invoiceID uuid.UUID) error {
	items, err := s.invoices.ListItems(ctx, invoiceID)
	if err != nil {
		return err
	}
	var total money.Amount
	for _, item := range items {
		total = total.Add(item.Total)
	}
	return s.invoices.SetTotal(ctx, invoiceID, total)
}

func itemDescription(rec *charting.ToothRecord) string {
	desc := fmt.Sprintf("Tooth %d %s treatment", rec.ToothNumber, rec.Status)
	if len(rec.Surfaces) > 0 {
		desc += " (" + strings.Join(surfaceStrings(rec.Surfaces), ", ") + ")"
	}
	return desc
}

func surfaceStrings(surfaces []charting.Surface) []string {
	if len(surfaces) == 0 {
		return nil
	}
	out := make([]string, len(surfaces))
	for i, s := range surfaces {
		out[i] = string(s)
	}
	return out
}

func sessionsOrOne(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func newCode(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return prefix + "-" + time.Now().UTC().Format("20060102") + "-" + suffix
}
