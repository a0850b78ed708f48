package charting

import (
	"time"

	"github.com/dentio/dentio/internal/platform/apperr"
)

// ToothSubmission is one tooth's desired state in an odontogram write. A
// batch of submissions is the authoritative full state for the edit.
type ToothSubmission struct {
	ToothNumber        int         `json:"tooth_number"`
	Status             ToothStatus `json:"status"`
	Surfaces           []Surface   `json:"surfaces,omitempty"`
	Notes              *string     `json:"notes,omitempty"`
	TreatmentRequired  bool        `json:"treatment_required"`
	TreatmentCompleted bool        `json:"treatment_completed"`
	Priority           int         `json:"priority"`
	CostEstimateCents  int64       `json:"cost_estimate_cents"`
	TreatmentID        *int64      `json:"treatment_id,omitempty"`
}

// ValidateSubmission checks a whole incoming batch before any persistence
// side effect. The examination date is compared at day granularity: an exam
// dated today is valid, tomorrow is not.
func ValidateSubmission(patientID int64, examDate, now time.Time, subs []ToothSubmission) error {
	if patientID <= 0 {
		return apperr.Validation(apperr.CodeInvalidPatientReference,
			"patient reference is missing or non-positive: %d", patientID)
	}
	if examDate.IsZero() {
		return apperr.Validation(apperr.CodeInvalidExaminationDate, "examination date is required")
	}
	if dayOf(examDate).After(dayOf(now)) {
		return apperr.Validation(apperr.CodeInvalidExaminationDate,
			"examination date %s is in the future", examDate.Format("2006-01-02"))
	}

	seen := make(map[int]bool, len(subs))
	for _, sub := range subs {
		if err := validateTooth(sub); err != nil {
			return err
		}
		if seen[sub.ToothNumber] {
			return apperr.Validation(apperr.CodeDuplicateToothInSubmission,
				"tooth %d appears more than once in the submission", sub.ToothNumber)
		}
		seen[sub.ToothNumber] = true
	}
	return nil
}

func validateTooth(sub ToothSubmission) error {
	if !ValidToothNumber(sub.ToothNumber) {
		return apperr.Validation(apperr.CodeInvalidToothNumber,
			"invalid tooth number %d: must be an FDI code in 11-18, 21-28, 31-38 or 41-48", sub.ToothNumber)
	}
	if !ValidToothStatus(sub.Status) {
		return apperr.Validation(apperr.CodeInvalidToothStatus,
			"invalid tooth status %q for tooth %d", sub.Status, sub.ToothNumber)
	}
	seen := make(map[Surface]bool, len(sub.Surfaces))
	for _, s := range sub.Surfaces {
		if !ValidSurface(s) {
			return apperr.Validation(apperr.CodeInvalidSurface,
				"invalid surface %q for tooth %d", s, sub.ToothNumber)
		}
		if seen[s] {
			return apperr.Validation(apperr.CodeInvalidSurface,
				"surface %q listed twice for tooth %d", s, sub.ToothNumber)
		}
		seen[s] = true
	}
	// Priority 0 means unset; reconciliation defaults it to 1.
	if sub.Priority < 0 || sub.Priority > 4 {
		return apperr.Validation(apperr.CodeInvalidPriority,
			"priority %d for tooth %d must be between 1 and 4, or 0 for unset", sub.Priority, sub.ToothNumber)
	}
	return nil
}

// dayOf truncates t to its calendar day in UTC.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
