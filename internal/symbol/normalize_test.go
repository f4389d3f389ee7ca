package symbol

import (
	"testing"

	"StockDesk/internal/model"
)

func TestNormalizeHint(t *testing.T) {
	tests := []struct {
		raw, hint, want string
	}{
		{"tcs", "NSE", "TCS.NS"},
		{"TCS.NS", "NSE", "TCS.NS"},
		{"XYZ", "BSE", "XYZ"},
		{"  infy ", "", "INFY.NS"},
		{"reliance", "nifty", "RELIANCE.NS"},
		{"hdfcbank", "LSE", "HDFCBANK.NS"},
		{"500325.bo", "BSE", "500325.BO"},
		{"", "NSE", ""},
	}
	for _, tt := range tests {
		if got := NormalizeHint(tt.raw, tt.hint); got != tt.want {
			t.Errorf("NormalizeHint(%q, %q) = %q, want %q", tt.raw, tt.hint, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, ex := range []model.Exchange{model.ExchangeNSE, model.ExchangeBSE} {
		once := Normalize("wipro", ex)
		if twice := Normalize(once, ex); twice != once {
			t.Errorf("exchange %s: Normalize not idempotent: %q -> %q", ex, once, twice)
		}
	}
}

func TestForHolding(t *testing.T) {
	h := model.Holding{Symbol: "TATAPOWER", Exchange: model.ExchangeNSE}
	if got := ForHolding(h); got != "TATAPOWER.NS" {
		t.Errorf("ForHolding = %q", got)
	}
}
