package charting

import "testing"

func TestValidToothNumber(t *testing.T) {
	for quadrant := 1; quadrant <= 4; quadrant++ {
		for position := 1; position <= 8; position++ {
			n := quadrant*10 + position
			if !ValidToothNumber(n) {
				t.Errorf("expected %d to be a valid FDI code", n)
			}
		}
	}

	invalid := []int{0, 1, 9, 10, 19, 20, 29, 30, 39, 40, 49, 50, 55, 85, 99, 111, -11}
	for _, n := range invalid {
		if ValidToothNumber(n) {
			t.Errorf("expected %d to be invalid", n)
		}
	}
}

func TestValidToothStatus(t *testing.T) {
	valid := []ToothStatus{
		ToothHealthy, ToothCaries, ToothFilled, ToothCrown, ToothExtraction,
		ToothMissing, ToothImplant, ToothRootCanal, ToothBridge, ToothFractured,
		ToothSensitive, ToothAbrasion, ToothErosion,
	}
	for _, s := range valid {
		if !ValidToothStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []ToothStatus{"", "decayed", "HEALTHY", "root-canal"} {
		if ValidToothStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestValidSurface(t *testing.T) {
	for _, s := range []Surface{SurfaceOcclusal, SurfaceMesial, SurfaceDistal, SurfaceBuccal, SurfaceLingual, SurfaceIncisal} {
		if !ValidSurface(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ValidSurface("palatal") {
		t.Error("expected unknown surface to be invalid")
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to LifecycleStatus
		want     bool
	}{
		{LifecycleDraft, LifecycleCompleted, true},
		{LifecycleDraft, LifecycleArchived, true},
		{LifecycleDraft, LifecycleReviewed, false},
		{LifecycleCompleted, LifecycleReviewed, true},
		{LifecycleCompleted, LifecycleDraft, true},
		{LifecycleCompleted, LifecycleArchived, true},
		{LifecycleReviewed, LifecycleCompleted, true},
		{LifecycleReviewed, LifecycleArchived, true},
		{LifecycleReviewed, LifecycleDraft, false},
		{LifecycleArchived, LifecycleDraft, false},
		{LifecycleArchived, LifecycleCompleted, false},
		{LifecycleArchived, LifecycleReviewed, false},
		{LifecycleDraft, LifecycleDraft, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsFinalized(t *testing.T) {
	if IsFinalized(LifecycleDraft) || IsFinalized(LifecycleArchived) {
		t.Error("draft and archived odontograms are deletable")
	}
	if !IsFinalized(LifecycleCompleted) || !IsFinalized(LifecycleReviewed) {
		t.Error("completed and reviewed odontograms are finalized")
	}
}
