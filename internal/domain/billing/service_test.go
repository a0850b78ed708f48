package billing

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dentio/dentio/internal/domain/charting"
	"github.com/dentio/dentio/internal/domain/pricing"
	"github.com/dentio/dentio/internal/platform/apperr"
	"github.com/dentio/dentio/internal/platform/auth"
	"github.com/dentio/dentio/pkg/money"
)

// -- Mock Repositories --

type mockBudgetRepo struct {
	budgets map[uuid.UUID]*Budget
	items   map[uuid.UUID]*BudgetItem
	seq     int
}

func newMockBudgetRepo() *mockBudgetRepo {
	return &mockBudgetRepo{
		budgets: make(map[uuid.UUID]*Budget),
		items:   make(map[uuid.UUID]*BudgetItem),
	}
}

func (m *mockBudgetRepo) Create(_ context.Context, b *Budget) error {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.budgets[b.ID] = b
	return nil
}

func (m *mockBudgetRepo) GetByID(_ context.Context, id uuid.UUID) (*Budget, error) {
	b, ok := m.budgets[id]
	if !ok {
		return nil, apperr.NotFound(apperr.CodeBudgetNotFound, "budget %s not found", id)
	}
	copied := *b
	return &copied, nil
}

func (m *mockBudgetRepo) ListByPatient(_ context.Context, patientID int64, limit, offset int) ([]*Budget, int, error) {
	var out []*Budget
	for _, b := range m.budgets {
		if b.PatientID == patientID {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (m *mockBudgetRepo) UpdateStatus(_ context.Context, id uuid.UUID, status BudgetStatus) error {
	if b, ok := m.budgets[id]; ok {
		b.Status = status
	}
	return nil
}

func (m *mockBudgetRepo) SetTotal(_ context.Context, id uuid.UUID, total money.Amount) error {
	if b, ok := m.budgets[id]; ok {
		b.Total = total
	}
	return nil
}

func (m *mockBudgetRepo) CreateItem(_ context.Context, item *BudgetItem) error {
	item.ID = uuid.New()
	m.seq++
	item.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	item.UpdatedAt = item.CreatedAt
	m.items[item.ID] = item
	return nil
}

func (m *mockBudgetRepo) GetItem(_ context.Context, id uuid.UUID) (*BudgetItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound(apperr.CodeBudgetItemNotFound, "budget item %s not found", id)
	}
	copied := *item
	return &copied, nil
}

func (m *mockBudgetRepo) ListItems(_ context.Context, budgetID uuid.UUID) ([]*BudgetItem, error) {
	var out []*BudgetItem
	for _, item := range m.items {
		if item.BudgetID == budgetID {
			copied := *item
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockBudgetRepo) ListItemsByToothRecord(_ context.Context, toothRecordID uuid.UUID) ([]*BudgetItem, error) {
	var out []*BudgetItem
	for _, item := range m.items {
		if item.ToothRecordID != nil && *item.ToothRecordID == toothRecordID {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockBudgetRepo) SetItemSessionsCompleted(_ context.Context, id uuid.UUID, completed int) error {
	if item, ok := m.items[id]; ok {
		item.SessionsCompleted = completed
	}
	return nil
}

type mockInvoiceRepo struct {
	invoices map[uuid.UUID]*Invoice
	items    map[uuid.UUID]*InvoiceItem
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{
		invoices: make(map[uuid.UUID]*Invoice),
		items:    make(map[uuid.UUID]*InvoiceItem),
	}
}

func (m *mockInvoiceRepo) Create(_ context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	m.invoices[inv.ID] = inv
	return nil
}

func (m *mockInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, apperr.NotFound(apperr.CodeInvoiceNotFound, "invoice %s not found", id)
	}
	copied := *inv
	return &copied, nil
}

func (m *mockInvoiceRepo) ListByPatient(_ context.Context, patientID int64, limit, offset int) ([]*Invoice, int, error) {
	var out []*Invoice
	for _, inv := range m.invoices {
		if inv.PatientID == patientID {
			out = append(out, inv)
		}
	}
	return out, len(out), nil
}

func (m *mockInvoiceRepo) UpdateStatus(_ context.Context, id uuid.UUID, status InvoiceStatus) error {
	if inv, ok := m.invoices[id]; ok {
		inv.Status = status
	}
	return nil
}

func (m *mockInvoiceRepo) SetTotal(_ context.Context, id uuid.UUID, total money.Amount) error {
	if inv, ok := m.invoices[id]; ok {
		inv.Total = total
	}
	return nil
}

func (m *mockInvoiceRepo) CreateItem(_ context.Context, item *InvoiceItem) error {
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	m.items[item.ID] = item
	return nil
}

func (m *mockInvoiceRepo) GetItem(_ context.Context, id uuid.UUID) (*InvoiceItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound(apperr.CodeInvoiceNotFound, "invoice item %s not found", id)
	}
	copied := *item
	return &copied, nil
}

func (m *mockInvoiceRepo) ListItems(_ context.Context, invoiceID uuid.UUID) ([]*InvoiceItem, error) {
	var out []*InvoiceItem
	for _, item := range m.items {
		if item.InvoiceID == invoiceID {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

// mockCharts mirrors the charting service's tooth-record surface closely
// enough for the projector: reference stamping and idempotent treatment
// status updates.
type mockCharts struct {
	records map[uuid.UUID]*charting.ToothRecord
}

func newMockCharts() *mockCharts {
	return &mockCharts{records: make(map[uuid.UUID]*charting.ToothRecord)}
}

func (m *mockCharts) GetToothRecord(_ context.Context, id uuid.UUID) (*charting.ToothRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, apperr.NotFound(apperr.CodeToothRecordNotFound, "tooth record %s not found", id)
	}
	copied := *rec
	return &copied, nil
}

func (m *mockCharts) SetBudgetItemRef(_ context.Context, actor auth.Actor, toothRecordID, budgetItemID uuid.UUID) error {
	rec, ok := m.records[toothRecordID]
	if !ok {
		return apperr.NotFound(apperr.CodeToothRecordNotFound, "tooth record %s not found", toothRecordID)
	}
	rec.BudgetItemID = &budgetItemID
	rec.UpdatedBy = actor.ID
	return nil
}

func (m *mockCharts) SetInvoiceItemRef(_ context.Context, actor auth.Actor, toothRecordID, invoiceItemID uuid.UUID) error {
	rec, ok := m.records[toothRecordID]
	if !ok {
		return apperr.NotFound(apperr.CodeToothRecordNotFound, "tooth record %s not found", toothRecordID)
	}
	rec.InvoiceItemID = &invoiceItemID
	rec.UpdatedBy = actor.ID
	return nil
}

func (m *mockCharts) SetTreatmentStatus(_ context.Context, actor auth.Actor, toothRecordID uuid.UUID, status charting.TreatmentStatus) (*charting.ToothRecord, error) {
	if !charting.ValidTreatmentStatus(status) {
		return nil, apperr.Validation(apperr.CodeInvalidTreatmentStatus, "invalid treatment status %q", status)
	}
	rec, ok := m.records[toothRecordID]
	if !ok {
		return nil, apperr.NotFound(apperr.CodeToothRecordNotFound, "tooth record %s not found", toothRecordID)
	}
	if rec.TreatmentStatus != status {
		rec.TreatmentStatus = status
		rec.UpdatedBy = actor.ID
		if status == charting.TreatmentCompleted {
			now := time.Now().UTC()
			rec.TreatmentCompletedAt = &now
			rec.TreatmentCompleted = true
		}
	}
	copied := *rec
	return &copied, nil
}

func (m *mockCharts) seed(rec *charting.ToothRecord) *charting.ToothRecord {
	if rec.ID == (uuid.UUID{}) {
		rec.ID = uuid.New()
	}
	m.records[rec.ID] = rec
	return rec
}

type mockPrices struct {
	prices map[uuid.UUID]*pricing.ClinicTreatmentPrice
}

func newMockPrices() *mockPrices {
	return &mockPrices{prices: make(map[uuid.UUID]*pricing.ClinicTreatmentPrice)}
}

func (m *mockPrices) Resolve(_ context.Context, clinicID, treatmentID int64, asOf time.Time, fallback money.Amount) (pricing.Resolution, error) {
	if treatmentID > 0 {
		for _, p := range m.prices {
			if p.ClinicID != clinicID || p.TreatmentID != treatmentID || !p.Active {
				continue
			}
			amount, promotional := p.EffectiveAt(asOf)
			source := pricing.SourceBase
			if promotional {
				source = pricing.SourcePromotional
			}
			id := p.ID
			return pricing.Resolution{
				Amount:             amount,
				Source:             source,
				PriceID:            &id,
				EstimatedSessions:  p.EstimatedSessions,
				RequiresAnesthesia: p.RequiresAnesthesia,
				AnesthesiaCost:     p.AnesthesiaCost,
				MaterialCost:       p.MaterialCost,
			}, nil
		}
	}
	if !fallback.IsZero() {
		return pricing.Resolution{Amount: fallback, Source: pricing.SourceFallbackEstimate, EstimatedSessions: 1}, nil
	}
	return pricing.Resolution{Source: pricing.SourceZero}, nil
}

func (m *mockPrices) GetPrice(_ context.Context, id uuid.UUID) (*pricing.ClinicTreatmentPrice, error) {
	p, ok := m.prices[id]
	if !ok {
		return nil, apperr.NotFound(apperr.CodePriceNotFound, "clinic treatment price %s not found", id)
	}
	return p, nil
}

func (m *mockPrices) seed(p *pricing.ClinicTreatmentPrice) *pricing.ClinicTreatmentPrice {
	p.ID = uuid.New()
	p.Active = true
	m.prices[p.ID] = p
	return p
}

type testEnv struct {
	svc      *Service
	budgets  *mockBudgetRepo
	invoices *mockInvoiceRepo
	charts   *mockCharts
	prices   *mockPrices
}

func newTestEnv() *testEnv {
	env := &testEnv{
		budgets:  newMockBudgetRepo(),
		invoices: newMockInvoiceRepo(),
		charts:   newMockCharts(),
		prices:   newMockPrices(),
	}
	env.svc = &Service{
		budgets:  env.budgets,
		invoices: env.invoices,
		charts:   env.charts,
		prices:   env.prices,
		tx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
	return env
}

var billingActor = auth.Actor{ID: "clerk-1", Name: "Front Desk", Roles: []string{"billing"}}

func seedCariesRecord(env *testEnv, estimateCents int64, treatmentID *int64) *charting.ToothRecord {
	return env.charts.seed(&charting.ToothRecord{
		ToothNumber:       11,
		Status:            charting.ToothCaries,
		Surfaces:          []charting.Surface{charting.SurfaceOcclusal},
		TreatmentRequired: true,
		Priority:          2,
		CostEstimate:      money.FromCents(estimateCents),
		TreatmentID:       treatmentID,
		TreatmentStatus:   charting.TreatmentPending,
	})
}

// -- Tests --

func TestCreateBudget(t *testing.T) {
	env := newTestEnv()

	b, err := env.svc.CreateBudget(context.Background(), billingActor, 1, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(b.Code, "BGT-") {
		t.Errorf("code = %q, want BGT- prefix", b.Code)
	}
	if b.Status != BudgetDraft {
		t.Errorf("status = %s, want draft", b.Status)
	}
	if b.CreatedBy != billingActor.ID {
		t.Errorf("created_by = %q, want %q", b.CreatedBy, billingActor.ID)
	}
}

func TestCreateBudget_Validation(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateBudget(context.Background(), billingActor, 1, 0)
	if apperr.CodeOf(err) != apperr.CodeInvalidPatientReference {
		t.Errorf("expected invalid_patient_reference, got %v", err)
	}
	_, err = env.svc.CreateBudget(context.Background(), billingActor, 0, 42)
	if apperr.CodeOf(err) != apperr.CodeInvalidClinicReference {
		t.Errorf("expected invalid_clinic_reference, got %v", err)
	}
}

func TestProjectToBudget_FallbackEstimate(t *testing.T) {
	env := newTestEnv()
	rec := seedCariesRecord(env, 5000, nil)
	budget, _ := env.svc.CreateBudget(context.Background(), billingActor, 1, 42)

	item, err := env.svc.ProjectToBudget(context.Background(), billingActor, budget.ID, rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.UnitPrice.Cents() != 5000 || item.Total.Cents() != 5000 {
		t.Errorf("item priced %d/%d, want 5000/5000", item.UnitPrice.Cents(), item.Total.Cents())
	}
	if item.PriceSource != string(pricing.SourceFallbackEstimate) {
		t.Errorf("price source = %q, want fallback_estimate", item.PriceSource)
	}
	if item.ToothRecordID == nil || *item.ToothRecordID != rec.ID {
		t.Error("item must reference its tooth record")
	}
	if item.ToothNumber == nil || *item.ToothNumber != 11 {
		t.Error("item must carry the tooth number")
	}

	got, _ := env.svc.GetBudget(context.Background(), budget.ID)
	if got.Total.Cents() != 5000 {
		t.Errorf("budget total = %d, want 5000", got.Total.Cents())
	}
	stamped, _ := env.charts.GetToothRecord(context.Background(), rec.ID)
	if stamped.BudgetItemID == nil || *stamped.BudgetItemID != item.ID {
		t.Error("tooth record must be stamped with the budget item reference")
	}
}

func TestProjectToBudget_FromCatalog(t *testing.T) {
	env := newTestEnv()
	price := env.prices.seed(&pricing.ClinicTreatmentPrice{
		ClinicID:          1,
		TreatmentID:       7,
		BasePrice:         money.FromCents(8000),
		EstimatedSessions: 3,
	})
	treatmentID := int64(7)
	rec := seedCariesRecord(env, 5000, &treatmentID)
	budget, _ := env.svc.CreateBudget(context.Background(), billingActor, 1, 42)

	item, err := env.svc.ProjectToBudget(context.Background(), billingActor, budget.ID, rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.UnitPrice.Cents() != 8000 {
		t.Errorf("unit price = %d, want catalog 8000 over estimate 5000", item.UnitPrice.Cents())
	}
	if item.PriceSource != string(pricing.SourceBase) {
		t.Errorf("price source = %q, want base", item.PriceSource)
	}
	if item.ClinicPriceID == nil || *item.ClinicPriceID != price.ID {
		t.Error("item must reference the catalog price")
	}
	if item.SessionsRequired != 3 {
		t.Errorf("sessions required = %d, want 3", item.SessionsRequired)
	}
}

func TestProjectToBudget_NotRequired(t *testing.T) {
	env := newTestEnv()
	rec := env.charts.seed(&charting.ToothRecord{
		ToothNumber: 21,
		Status:      charting.ToothHealthy,
	})
	budget, _ := env.svc.CreateBudget(context.Background(), billingActor, 1, 42)

	_, err := env.svc.ProjectToBudget(context.Background(), billingActor, budget.ID, rec.ID)
	if apperr.CodeOf(err) != apperr.CodeTreatmentNotRequired {
		t.Errorf("expected treatment_not_required, got %v", err)
	}
}

func TestProjectToBudget_AlreadyProjected(t *testing.T) {
	env := newTestEnv()
	rec := seedCariesRecord(env, 5000, nil)
	budget, _ := env.svc.CreateBudget(context.Background(), billingActor, 1, 42)

	if _, err := env.svc.ProjectToBudget(context.Background(), billingActor, budget.ID, rec.ID); err != nil {
		t.Fatal(err)
	}
	_, err := env.svc.ProjectToBudget(context.Background(), billingActor, budget.ID, rec.ID)
	if apperr.CodeOf(err) != apperr.CodeAlreadyProjected {
		t.Errorf("expected already_projected, got %v", err)
	}
}

func TestProjectToBudget_NonDraftBudget(t *testing.T) {
	env := newTestEnv()
	rec := seedCariesRecord(env, 5000, nil)
	budget, _ := env.svc.CreateBudget(context.Background(), billingActor, 1, 42)
	if _, err := env.svc.UpdateBudgetStatus(context.Background(), budget.ID, BudgetPresented); err != nil {
		t.Fatal(err)
	}

	_, err := env.svc.ProjectToBudget(context.Background(), billingActor, budget.ID, rec.ID)
	if apperr.KindOf(err) != apperr.KindState {
		t.Errorf("expected state error for presented budget, got %v", err)
	}
}

func TestProjectToInvoice_ChainsFromBudgetItem(t *testing.T) {
	env := newTestEnv()
	rec := seedCariesRecord(env, 5000, nil)
	budget, _ := env.svc.CreateBudget(context.Background(), billingActor, 1, 42)
	bItem, err := env.svc.ProjectToBudget(context.Background(), billingActor, budget.ID, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	invoice, _ := env.svc.CreateInvoice(context.Background(), billingActor, 1, 42)

	item, err := env.svc.ProjectToInvoice(context.Background(), billingActor, invoice.ID, bItem.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.UnitPrice.Cents() != 5000 || item.Total.Cents() != 5000 || item.Quantity != 1 {
		t.Errorf("got %d x %d = %d, want 1 x 5000 = 5000",
			item.Quantity, item.UnitPrice.Cents(), item.Total.Cents())
	}
	if item.BudgetItemID == nil || *item.BudgetItemID != bItem.ID {
		t.Error("invoice item must reference the budget item")
	}
	if item.ToothRecordID == nil || *item.ToothRecordID != rec.ID {
		t.Error("invoice item must carry the tooth record reference")
	}

	got, _ := env.svc.GetInvoice(context.Background(), invoice.ID)
	if got.Total.Cents() != 5000 {
		t.Errorf("invoice total = %d, want 5000", got.Total.Cents())
	}
	stamped, _ := env.charts.GetToothRecord(context.Background(), rec.ID)
	if stamped.InvoiceItemID == nil || *stamped.InvoiceItemID != item.ID {
		t.Error("tooth record must be stamped with the invoice item reference")
	}
}

func TestProjectToInvoice_CopiesCostsFromPriceRecord(t *testing.T) {
	env := newTestEnv()
	env.prices.seed(&pricing.ClinicTreatmentPrice{
		ClinicID:           1,
		TreatmentID:        7,
		BasePrice:          money.FromCents(8000),
		EstimatedSessions:  1,
		RequiresAnesthesia: true,
		AnesthesiaCost:     money.FromCents(1500),
		MaterialCost:       money.FromCents(500),
	})
	treatmentID := int64(7)
	rec := seedCariesRecord(env, 0, &treatmentID)
	budget, _ := env.svc.CreateBudget(context.Background(), billingActor, 1, 42)
	bItem, err := env.svc.ProjectToBudget(context.Background(), billingActor, budget.ID, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	invoice, _ := env.svc.CreateInvoice(context.Background(), billingActor, 1, 42)

	item, err := env.svc.ProjectToInvoice(context.Background(), billingActor, invoice.ID, bItem.ID)
	if err != nil {
		t.Fatal(err)
	}
	if item.AnesthesiaCost.Cents() != 1500 || item.MaterialCost.Cents() != 500 {
		t.Errorf("costs %d/%d, want 1500/500", item.AnesthesiaCost.Cents(), item.MaterialCost.Cents())
	}
	// The quoted total is carried over untouched; ancillary costs ride as
	// their own fields.
	if item.Total.Cents() != 8000 {
		t.Errorf("total = %d, want quoted 8000", item.Total.Cents())
	}
}

func TestProjectToInvoice_AlreadyInvoiced(t *testing.T) {
	env := newTestEnv()
	rec := seedCariesRecord(env, 5000, nil)
	budget, _ := env.svc.CreateBudget(context.Background(), billingActor, 1, 42)
	bItem, _ := env.svc.ProjectToBudget(context.Background(), billingActor, budget.ID, rec.ID)
	invoice, _ := env.svc.CreateInvoice(context.Background(), billingActor, 1, 42)

	if _, err := env.svc.ProjectToInvoice(context.Background(), billingActor, invoice.ID, bItem.ID); err != nil {
		t.Fatal(err)
	}
	_, err := env.svc.ProjectToInvoice(context.Background(), billingActor, invoice.ID, bItem.ID)
	if apperr.CodeOf(err) != apperr.CodeAlreadyProjected {
		t.Errorf("expected already_projected, got %v", err)
	}
}

func TestSyncTreatmentStatus_CompletesSessions(t *testing.T) {
	env := newTestEnv()
	env.prices.seed(&pricing.ClinicTreatmentPrice{
		ClinicID:          1,
		TreatmentID:       7,
		BasePrice:         money.FromCents(8000),
		EstimatedSessions: 3,
	})
	treatmentID := int64(7)
	rec := seedCariesRecord(env, 0, &treatmentID)
	budget, _ := env.svc.CreateBudget(context.Background(), billingActor, 1, 42)
	bItem, _ := env.svc.ProjectToBudget(context.Background(), billingActor, budget.ID, rec.ID)

	got, err := env.svc.SyncTreatmentStatus(context.Background(), billingActor, rec.ID, charting.TreatmentCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TreatmentStatus != charting.TreatmentCompleted || got.TreatmentCompletedAt == nil {
		t.Error("record must be completed with a completion timestamp")
	}
	item, _ := env.svc.budgets.GetItem(context.Background(), bItem.ID)
	if item.SessionsCompleted != 3 {
		t.Errorf("sessions completed = %d, want 3", item.SessionsCompleted)
	}
}

func TestSyncTreatmentStatus_Idempotent(t *testing.T) {
	env := newTestEnv()
	rec := seedCariesRecord(env, 5000, nil)
	budget, _ := env.svc.CreateBudget(context.Background(), billingActor, 1, 42)
	bItem, _ := env.svc.ProjectToBudget(context.Background(), billingActor, budget.ID, rec.ID)

	first, err := env.svc.SyncTreatmentStatus(context.Background(), billingActor, rec.ID, charting.TreatmentCompleted)
	if err != nil {
		t.Fatal(err)
	}
	second, err := env.svc.SyncTreatmentStatus(context.Background(), billingActor, rec.ID, charting.TreatmentCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if !first.TreatmentCompletedAt.Equal(*second.TreatmentCompletedAt) {
		t.Error("repeating completion must not move the completion timestamp")
	}
	item, _ := env.svc.budgets.GetItem(context.Background(), bItem.ID)
	if item.SessionsCompleted != item.SessionsRequired {
		t.Errorf("sessions %d/%d, want fully completed", item.SessionsCompleted, item.SessionsRequired)
	}
}

func TestSyncTreatmentStatus_Invalid(t *testing.T) {
	env := newTestEnv()
	rec := seedCariesRecord(env, 5000, nil)

	_, err := env.svc.SyncTreatmentStatus(context.Background(), billingActor, rec.ID, "done")
	if apperr.CodeOf(err) != apperr.CodeInvalidTreatmentStatus {
		t.Errorf("expected invalid_treatment_status, got %v", err)
	}
}

func TestUpdateBudgetStatus_TerminalStates(t *testing.T) {
	env := newTestEnv()
	budget, _ := env.svc.CreateBudget(context.Background(), billingActor, 1, 42)

	if _, err := env.svc.UpdateBudgetStatus(context.Background(), budget.ID, BudgetRejected); err != nil {
		t.Fatal(err)
	}
	_, err := env.svc.UpdateBudgetStatus(context.Background(), budget.ID, BudgetApproved)
	if apperr.KindOf(err) != apperr.KindState {
		t.Errorf("rejected budgets are terminal, got %v", err)
	}

	_, err = env.svc.UpdateBudgetStatus(context.Background(), budget.ID, "final")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("unknown status must be rejected as validation, got %v", err)
	}
}

func TestNotFoundCodes(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.GetBudget(context.Background(), uuid.New())
	if apperr.CodeOf(err) != apperr.CodeBudgetNotFound {
		t.Errorf("expected budget_not_found, got %v", err)
	}
	_, err = env.svc.GetInvoice(context.Background(), uuid.New())
	if apperr.CodeOf(err) != apperr.CodeInvoiceNotFound {
		t.Errorf("expected invoice_not_found, got %v", err)
	}
	invoice, _ := env.svc.CreateInvoice(context.Background(), billingActor, 1, 42)
	_, err = env.svc.ProjectToInvoice(context.Background(), billingActor, invoice.ID, uuid.New())
	if apperr.CodeOf(err) != apperr.CodeBudgetItemNotFound {
		t.Errorf("expected budget_item_not_found, got %v", err)
	}
}
