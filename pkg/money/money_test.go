package money

import "testing"

func TestFromFloat_Rounding(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{50.0, 5000},
		{50.005, 5001},
		{50.004, 5000},
		{0, 0},
		{-3.255, -326},
		{-3.254, -325},
		{0.1, 10},
		{19.99, 1999},
	}
	for _, tc := range cases {
		if got := FromFloat(tc.in).Cents(); got != tc.want {
			t.Errorf("FromFloat(%v) = %d cents, want %d", tc.in, got, tc.want)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a := FromCents(5000)
	b := FromCents(1250)

	if got := a.Add(b).Cents(); got != 6250 {
		t.Errorf("Add = %d, want 6250", got)
	}
	if got := a.Sub(b).Cents(); got != 3750 {
		t.Errorf("Sub = %d, want 3750", got)
	}
	if got := b.Mul(3).Cents(); got != 3750 {
		t.Errorf("Mul = %d, want 3750", got)
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		in   Amount
		want string
	}{
		{FromCents(5000), "50.00"},
		{FromCents(5), "0.05"},
		{FromCents(-325), "-3.25"},
		{Zero, "0.00"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("%d cents String() = %q, want %q", tc.in.Cents(), got, tc.want)
		}
	}
}

func TestPredicates(t *testing.T) {
	if !Zero.IsZero() {
		t.Error("Zero.IsZero() = false")
	}
	if Zero.IsPositive() {
		t.Error("Zero.IsPositive() = true")
	}
	if !FromCents(1).IsPositive() {
		t.Error("FromCents(1).IsPositive() = false")
	}
	if got := FromCents(5000).Float64(); got != 50.0 {
		t.Errorf("Float64 = %v, want 50.0", got)
	}
}
