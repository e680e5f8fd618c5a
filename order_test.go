package taxlots

import (
	"errors"
	"testing"

	"github.com/etnz/taxlots/date"
)

func TestOrder_Merge(t *testing.T) {
	o := newOrder("o1", false,
		fill("o1", AAPL, apple, "2023-01-03", 40, -400, 1),
		fill("o1", AAPL, apple, "2023-01-02", 60, -610, 2.5),
	)

	if got, want := o.Units(), Q(100); !got.Equal(want) {
		t.Errorf("Units() = %v, want %v", got, want)
	}
	if got, want := o.Value(), EUR(-1010); !got.Equal(want) {
		t.Errorf("Value() = %v, want %v", got, want)
	}
	if got, want := o.Commission(), EUR(3.5); !got.Equal(want) {
		t.Errorf("Commission() = %v, want %v", got, want)
	}
	if got, want := o.Remaining(), Q(100); !got.Equal(want) {
		t.Errorf("Remaining() = %v, want %v", got, want)
	}
	// The order date is the first fill's date, even if a later fill is older.
	if got, want := o.Date(), date.MustParse("2023-01-03"); got != want {
		t.Errorf("Date() = %v, want %v", got, want)
	}
	if got := len(o.Transactions()); got != 2 {
		t.Errorf("len(Transactions()) = %d, want 2", got)
	}
}

func TestOrder_MergeResetsRemaining(t *testing.T) {
	o := newOrder("o1", false, fill("o1", AAPL, apple, "2023-01-03", 40, -400, 0))
	o.allocate(Q(40))
	if !o.IsAllocated() {
		t.Fatalf("IsAllocated() = false after allocating all units")
	}
	o.Merge(fill("o1", AAPL, apple, "2023-01-03", 10, -100, 0).Transaction())
	if got, want := o.Remaining(), Q(50); !got.Equal(want) {
		t.Errorf("Remaining() = %v, want %v", got, want)
	}
}

func TestOrder_Type(t *testing.T) {
	testCases := []struct {
		name    string
		rows    []Row
		want    OrderType
		wantErr bool
	}{
		{
			name: "buy",
			rows: []Row{fill("o", AAPL, apple, "2023-01-01", 10, -100, 1)},
			want: Buy,
		},
		{
			name: "sell",
			rows: []Row{fill("o", AAPL, apple, "2023-01-01", -10, 100, 1)},
			want: Sell,
		},
		{
			name:    "net zero",
			rows:    []Row{fill("o", AAPL, apple, "2023-01-01", 10, -100, 0), fill("o", AAPL, apple, "2023-01-01", -10, 100, 0)},
			wantErr: true,
		},
		{
			name:    "buy with positive value",
			rows:    []Row{fill("o", AAPL, apple, "2023-01-01", 10, 100, 0)},
			wantErr: true,
		},
		{
			name:    "sell with negative value",
			rows:    []Row{fill("o", AAPL, apple, "2023-01-01", -10, -100, 0)},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := newOrder("o", false, tc.rows...).Type()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidOrder) {
					t.Fatalf("Type() error = %v, want %v", err, ErrInvalidOrder)
				}
				return
			}
			if err != nil {
				t.Fatalf("Type() unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Type() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOrder_UnitPrice(t *testing.T) {
	o := newOrder("o", false, fill("o", AAPL, apple, "2023-01-01", -100, 1500, 0))
	got, err := o.UnitPrice()
	if err != nil {
		t.Fatalf("UnitPrice() unexpected error: %v", err)
	}
	if want := EUR(-15); !got.Equal(want) {
		t.Errorf("UnitPrice() = %v, want %v", got, want)
	}

	zero := NewOrder(AAPL, apple, "z", false)
	if _, err := zero.UnitPrice(); !errors.Is(err, ErrZeroUnits) {
		t.Errorf("UnitPrice() on empty order error = %v, want %v", err, ErrZeroUnits)
	}
}

func TestOrder_CostFor(t *testing.T) {
	o := newOrder("o", false, fill("o", AAPL, apple, "2023-01-01", 3, -30, 10))

	// Not yet allocated: flat proportional share.
	flat := o.CostFor(Q(1))
	if want := EUR(10).Div(Q(3)).Mul(Q(1)); !flat.Equal(want) {
		t.Errorf("CostFor(1) = %v, want %v", flat.Decimal(), want.Decimal())
	}

	// Fully allocated: residual share.
	o.allocate(Q(3))
	residual := o.CostFor(Q(1))
	if want := EUR(10).Sub(EUR(10).Div(Q(3)).Mul(Q(2))); !residual.Equal(want) {
		t.Errorf("CostFor(1) = %v, want %v", residual.Decimal(), want.Decimal())
	}

	// The two regimes differ on rounding, and the residual one closes the total.
	if flat.Equal(residual) {
		t.Errorf("CostFor(1) is the same in both regimes: %v", flat.Decimal())
	}
	if got := flat.Add(flat).Add(residual); !got.Equal(EUR(10)) {
		t.Errorf("sum of slices = %v, want %v", got.Decimal(), EUR(10).Decimal())
	}
}

func TestOrder_CostForUsesAbsoluteCommission(t *testing.T) {
	o := NewOrder(AAPL, apple, "o", false)
	o.Merge(NewTransaction(date.MustParse("2023-01-01"), Q(10), EUR(-100), EUR(-2)))
	if got, want := o.CostFor(Q(5)), EUR(1); !got.Equal(want) {
		t.Errorf("CostFor(5) = %v, want %v", got, want)
	}
}
