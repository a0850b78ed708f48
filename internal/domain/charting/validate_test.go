package charting

import (
	"testing"
	"time"

	"github.com/dentio/dentio/internal/platform/apperr"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func sub(tooth int, status ToothStatus) ToothSubmission {
	return ToothSubmission{ToothNumber: tooth, Status: status, Priority: 1}
}

func TestValidateSubmission_Valid(t *testing.T) {
	subs := []ToothSubmission{
		sub(11, ToothCaries),
		sub(12, ToothHealthy),
		{ToothNumber: 21, Status: ToothFilled, Surfaces: []Surface{SurfaceOcclusal, SurfaceMesial}, Priority: 3},
	}
	if err := ValidateSubmission(42, testNow.AddDate(0, 0, -1), testNow, subs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSubmission_SameDayIsValid(t *testing.T) {
	// An exam dated later today is not "in the future" at day granularity.
	examDate := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	if err := ValidateSubmission(42, examDate, testNow, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSubmission_FutureDate(t *testing.T) {
	err := ValidateSubmission(42, testNow.AddDate(0, 0, 1), testNow, nil)
	if apperr.CodeOf(err) != apperr.CodeInvalidExaminationDate {
		t.Fatalf("expected invalid_examination_date, got %v", err)
	}
}

func TestValidateSubmission_ZeroDate(t *testing.T) {
	err := ValidateSubmission(42, time.Time{}, testNow, nil)
	if apperr.CodeOf(err) != apperr.CodeInvalidExaminationDate {
		t.Fatalf("expected invalid_examination_date, got %v", err)
	}
}

func TestValidateSubmission_PatientReference(t *testing.T) {
	for _, pid := range []int64{0, -1, -42} {
		err := ValidateSubmission(pid, testNow, testNow, nil)
		if apperr.CodeOf(err) != apperr.CodeInvalidPatientReference {
			t.Errorf("patient %d: expected invalid_patient_reference, got %v", pid, err)
		}
	}
}

func TestValidateSubmission_InvalidToothNumber(t *testing.T) {
	for _, n := range []int{0, 10, 19, 49, 99} {
		err := ValidateSubmission(42, testNow, testNow, []ToothSubmission{sub(n, ToothHealthy)})
		if apperr.CodeOf(err) != apperr.CodeInvalidToothNumber {
			t.Errorf("tooth %d: expected invalid_tooth_number, got %v", n, err)
		}
	}
}

func TestValidateSubmission_InvalidToothStatus(t *testing.T) {
	err := ValidateSubmission(42, testNow, testNow, []ToothSubmission{sub(11, "decayed")})
	if apperr.CodeOf(err) != apperr.CodeInvalidToothStatus {
		t.Fatalf("expected invalid_tooth_status, got %v", err)
	}
}

func TestValidateSubmission_DuplicateTooth(t *testing.T) {
	subs := []ToothSubmission{sub(11, ToothCaries), sub(12, ToothHealthy), sub(11, ToothFilled)}
	err := ValidateSubmission(42, testNow, testNow, subs)
	if apperr.CodeOf(err) != apperr.CodeDuplicateToothInSubmission {
		t.Fatalf("expected duplicate_tooth_in_submission, got %v", err)
	}
}

func TestValidateSubmission_InvalidSurface(t *testing.T) {
	s := ToothSubmission{ToothNumber: 11, Status: ToothCaries, Surfaces: []Surface{"palatal"}, Priority: 1}
	err := ValidateSubmission(42, testNow, testNow, []ToothSubmission{s})
	if apperr.CodeOf(err) != apperr.CodeInvalidSurface {
		t.Fatalf("expected invalid_surface, got %v", err)
	}
}

func TestValidateSubmission_DuplicateSurface(t *testing.T) {
	s := ToothSubmission{ToothNumber: 11, Status: ToothCaries, Surfaces: []Surface{SurfaceMesial, SurfaceMesial}, Priority: 1}
	err := ValidateSubmission(42, testNow, testNow, []ToothSubmission{s})
	if apperr.CodeOf(err) != apperr.CodeInvalidSurface {
		t.Fatalf("expected invalid_surface, got %v", err)
	}
}

func TestValidateSubmission_PriorityRange(t *testing.T) {
	for _, p := range []int{-1, 5, 10} {
		s := ToothSubmission{ToothNumber: 11, Status: ToothCaries, Priority: p}
		err := ValidateSubmission(42, testNow, testNow, []ToothSubmission{s})
		if apperr.CodeOf(err) != apperr.CodeInvalidPriority {
			t.Errorf("priority %d: expected invalid_priority, got %v", p, err)
		}
	}
	// Zero means "not set" and defaults later.
	s := ToothSubmission{ToothNumber: 11, Status: ToothCaries}
	if err := ValidateSubmission(42, testNow, testNow, []ToothSubmission{s}); err != nil {
		t.Errorf("unexpected error for unset priority: %v", err)
	}
}
