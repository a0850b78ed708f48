package charting

import (
	"sort"

	"github.com/dentio/dentio/pkg/money"
)

// reconciliationPlan is the computed set of mutations that makes the stored
// tooth-record set exactly mirror an incoming submission.
type reconciliationPlan struct {
	// duplicates are non-canonical rows sharing a tooth number with an
	// earlier row. They are deleted first, restoring the one-row-per-tooth
	// invariant before any new mutation is applied.
	duplicates []*ToothRecord
	// updates pair each surviving canonical row with its new values.
	updates []toothUpdate
	// inserts are submitted teeth with no stored row.
	inserts []ToothSubmission
	// removals are canonical rows whose tooth is absent from the
	// submission; the submission is the authoritative full state.
	removals []*ToothRecord
}

type toothUpdate struct {
	record *ToothRecord
	sub    ToothSubmission
}

// planReconciliation computes the plan for one odontogram. The canonical row
// per tooth number is the earliest by creation time, ties broken by id, so
// the operation converges even when prior writers left duplicate rows.
func planReconciliation(stored []*ToothRecord, incoming []ToothSubmission) reconciliationPlan {
	var plan reconciliationPlan

	canonical := make(map[int]*ToothRecord, len(stored))
	for _, r := range stored {
		cur, ok := canonical[r.ToothNumber]
		if !ok {
			canonical[r.ToothNumber] = r
			continue
		}
		if earlier(r, cur) {
			plan.duplicates = append(plan.duplicates, cur)
			canonical[r.ToothNumber] = r
		} else {
			plan.duplicates = append(plan.duplicates, r)
		}
	}

	submitted := make(map[int]bool, len(incoming))
	for _, sub := range incoming {
		submitted[sub.ToothNumber] = true
		if rec, ok := canonical[sub.ToothNumber]; ok {
			plan.updates = append(plan.updates, toothUpdate{record: rec, sub: sub})
		} else {
			plan.inserts = append(plan.inserts, sub)
		}
	}

	for tooth, rec := range canonical {
		if !submitted[tooth] {
			plan.removals = append(plan.removals, rec)
		}
	}
	sort.Slice(plan.removals, func(i, j int) bool {
		return plan.removals[i].ToothNumber < plan.removals[j].ToothNumber
	})

	return plan
}

func earlier(a, b *ToothRecord) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

// applySubmission overwrites a record's mutable clinical fields with the
// submitted values, stamping the acting user. Identity, creation time,
// treatment status and financial back-references are preserved.
func applySubmission(rec *ToothRecord, sub ToothSubmission, actorID string) {
	rec.Status = sub.Status
	rec.Surfaces = sub.Surfaces
	rec.Notes = sub.Notes
	rec.TreatmentRequired = sub.TreatmentRequired
	rec.TreatmentCompleted = sub.TreatmentCompleted
	rec.Priority = normalizePriority(sub.Priority)
	rec.CostEstimate = money.FromCents(sub.CostEstimateCents)
	rec.TreatmentID = sub.TreatmentID
	rec.UpdatedBy = actorID
}

// newRecord builds a fresh tooth record from a submission.
func newRecord(sub ToothSubmission, actorID string) *ToothRecord {
	return &ToothRecord{
		ToothNumber:        sub.ToothNumber,
		Status:             sub.Status,
		Surfaces:           sub.Surfaces,
		Notes:              sub.Notes,
		TreatmentRequired:  sub.TreatmentRequired,
		TreatmentCompleted: sub.TreatmentCompleted,
		Priority:           normalizePriority(sub.Priority),
		CostEstimate:       money.FromCents(sub.CostEstimateCents),
		TreatmentID:        sub.TreatmentID,
		TreatmentStatus:    TreatmentPending,
		UpdatedBy:          actorID,
	}
}

func normalizePriority(p int) int {
	if p == 0 {
		return 1
	}
	return p
}

// recountStatistics recomputes the denormalized header counters from the
// full tooth-record set.
func recountStatistics(records []*ToothRecord) Statistics {
	stats := Statistics{TotalExamined: len(records)}
	for _, r := range records {
		if r.Status == ToothHealthy {
			stats.HealthyCount++
		}
		if r.TreatmentRequired {
			stats.TreatmentRequiredCount++
		}
	}
	stats.ProblematicCount = stats.TotalExamined - stats.HealthyCount
	return stats
}
