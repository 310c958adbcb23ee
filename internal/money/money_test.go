package money

import "testing"

func TestParseFallsBackToUSD(t *testing.T) {
	c, ok := Parse("XXX")
	if ok {
		t.Fatalf("expected unknown code to be reported")
	}
	if c.Code != "USD" {
		t.Fatalf("expected USD fallback, got %s", c.Code)
	}
}

func TestParseCaseInsensitive(t *testing.T) {
	c, ok := Parse(" eur ")
	if !ok || c.Code != "EUR" {
		t.Fatalf("expected EUR, got %v %v", c, ok)
	}
}

func TestAmountFormatting(t *testing.T) {
	cases := []struct {
		code  string
		cents Money
		want  string
	}{
		{"USD", 1050, "10.50"},
		{"USD", 0, "0.00"},
		{"USD", -250, "-2.50"},
		{"USD", 5, "0.05"},
		{"JPY", 1050, "1050"},
		{"BHD", 12345, "12.345"},
	}
	for _, tc := range cases {
		c, _ := Parse(tc.code)
		if got := c.Amount(tc.cents); got != tc.want {
			t.Fatalf("%s Amount(%d) = %q, want %q", tc.code, tc.cents, got, tc.want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	if Coalesce(nil) != 0 {
		t.Fatalf("nil must coalesce to zero")
	}
	v := Money(300)
	if Coalesce(&v) != 300 {
		t.Fatalf("present value must pass through")
	}
}
