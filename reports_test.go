package taxlots

import "testing"

func TestOpenPositions(t *testing.T) {
	p := NewPortfolio()
	err := p.Ingest([]Row{
		fill("o1", GOOG, "alphabet", "2023-01-01", 10, -1000, 0),
		fill("o2", AAPL, "Apple", "2023-01-01", 100, -1000, 0),
		fill("o3", AAPL, "Apple", "2023-02-01", -100, 1100, 0),
		fill("o4", IWDA, "Core MSCI World", "2023-01-01", 7, -560, 0),
	})
	if err != nil {
		t.Fatalf("Ingest() unexpected error: %v", err)
	}

	got := OpenPositions(p)
	if len(got) != 2 {
		t.Fatalf("OpenPositions() returned %d positions, want 2", len(got))
	}
	if got[0].ISIN != GOOG || got[1].ISIN != IWDA {
		t.Errorf("OpenPositions() = %v, want alphabet before Core MSCI World", got)
	}
	if !got[1].Units.Equal(Q(7)) {
		t.Errorf("OpenPositions()[1].Units = %v, want 7", got[1].Units)
	}
}

func TestHistory(t *testing.T) {
	p := NewPortfolio()
	err := p.Ingest([]Row{
		fill("o1", AAPL, apple, "2023-01-01", 60, -600, 1),
		fill("o1", AAPL, apple, "2023-01-01", 40, -400, 1),
		fill("o2", AAPL, apple, "2023-02-01", -100, 1100, 2),
	})
	if err != nil {
		t.Fatalf("Ingest() unexpected error: %v", err)
	}

	histories, err := History(p)
	if err != nil {
		t.Fatalf("History() unexpected error: %v", err)
	}
	if len(histories) != 1 || len(histories[0].Orders) != 2 {
		t.Fatalf("History() = %v, want one instrument with 2 orders", histories)
	}
	first := histories[0].Orders[0]
	if first.ID != "o1" || first.Type != Buy || first.Transactions != 2 || !first.Commission.Equal(EUR(2)) {
		t.Errorf("History() first order = %+v", first)
	}
	if second := histories[0].Orders[1]; second.Type != Sell {
		t.Errorf("History() second order type = %v, want sell", second.Type)
	}
}
