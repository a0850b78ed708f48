// Package pricing holds the clinic-scoped treatment price catalog and the
// effective-price resolution used by the billing projector.
package pricing

import (
	"time"

	"github.com/google/uuid"

	"github.com/dentio/dentio/pkg/money"
)

// ClinicTreatmentPrice maps to the clinic_treatment_price table: the price
// in force for one (clinic, treatment) pair, effective-dated, with an
// optional promotional override window.
type ClinicTreatmentPrice struct {
	ID                   uuid.UUID     `db:"id" json:"id"`
	ClinicID             int64         `db:"clinic_id" json:"clinic_id"`
	TreatmentID          int64         `db:"treatment_id" json:"treatment_id"`
	BasePrice            money.Amount  `db:"base_price_cents" json:"base_price_cents"`
	InsurancePrice       money.Amount  `db:"insurance_price_cents" json:"insurance_price_cents"`
	PromotionalPrice     *money.Amount `db:"promotional_price_cents" json:"promotional_price_cents,omitempty"`
	PromotionalStartDate *time.Time    `db:"promotional_start_date" json:"promotional_start_date,omitempty"`
	PromotionalEndDate   *time.Time    `db:"promotional_end_date" json:"promotional_end_date,omitempty"`
	EstimatedSessions    int           `db:"estimated_sessions" json:"estimated_sessions"`
	RequiresAnesthesia   bool          `db:"requires_anesthesia" json:"requires_anesthesia"`
	AnesthesiaCost       money.Amount  `db:"anesthesia_cost_cents" json:"anesthesia_cost_cents"`
	MaterialCost         money.Amount  `db:"material_cost_cents" json:"material_cost_cents"`
	EffectiveFrom        time.Time     `db:"effective_from" json:"effective_from"`
	Active               bool          `db:"active" json:"active"`
	CreatedAt            time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updated_at"`
}

// EffectiveAt returns the price in force at asOf and whether the
// promotional window applied. The window is inclusive on both ends.
func (p *ClinicTreatmentPrice) EffectiveAt(asOf time.Time) (money.Amount, bool) {
	if p.PromotionalPrice != nil && p.PromotionalStartDate != nil && p.PromotionalEndDate != nil {
		if !asOf.Before(*p.PromotionalStartDate) && !asOf.After(*p.PromotionalEndDate) {
			return *p.PromotionalPrice, true
		}
	}
	return p.BasePrice, false
}

// ResolutionSource says where a resolved price came from, so callers can
// distinguish "priced from catalog" from "guessed".
type ResolutionSource string

const (
	SourceBase             ResolutionSource = "base"
	SourcePromotional      ResolutionSource = "promotional"
	SourceFallbackEstimate ResolutionSource = "fallback_estimate"
	SourceZero             ResolutionSource = "zero"
)

// Resolution is the typed result of an effective-price lookup.
type Resolution struct {
	Amount             money.Amount     `json:"amount_cents"`
	Source             ResolutionSource `json:"source"`
	PriceID            *uuid.UUID       `json:"price_id,omitempty"`
	EstimatedSessions  int              `json:"estimated_sessions"`
	RequiresAnesthesia bool             `json:"requires_anesthesia"`
	AnesthesiaCost     money.Amount     `json:"anesthesia_cost_cents"`
	MaterialCost       money.Amount     `json:"material_cost_cents"`
}
