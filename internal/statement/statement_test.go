package statement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kwanza-pay/kwanza/internal/fault"
	"github.com/kwanza-pay/kwanza/internal/ledger"
)

func TestBuild(t *testing.T) {
	led := ledger.NewInMemory()
	svc := NewService(led)
	ctx := context.Background()

	led.EnsureInstrument(ctx, "card:a")
	led.EnsureInstrument(ctx, "card:b")
	led.Post(ctx, "card:a", decimal.NewFromInt(200), ledger.EntryInflow, "initial funding", "")
	led.PostPair(ctx, ledger.PairInput{SourceID: "card:a", DestID: "card:b", Amount: decimal.NewFromInt(50)})
	led.Post(ctx, "card:a", decimal.NewFromInt(30).Neg(), ledger.EntryOutflow, "withdrawal", "")

	st, err := svc.Build(ctx, "card:a", ledger.Filter{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !st.ClosingBalance.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected closing 120, got %s", st.ClosingBalance)
	}
	if !st.OpeningBalance.Equal(decimal.Zero) {
		t.Fatalf("expected opening 0, got %s", st.OpeningBalance)
	}
	if !st.TotalIn.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected total in 200, got %s", st.TotalIn)
	}
	if !st.TotalOut.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected total out 80, got %s", st.TotalOut)
	}
	if len(st.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(st.Entries))
	}
}

func TestBuild_FilteredWindow(t *testing.T) {
	led := ledger.NewInMemory()
	svc := NewService(led)
	ctx := context.Background()

	led.EnsureInstrument(ctx, "card:a")
	led.Post(ctx, "card:a", decimal.NewFromInt(100), ledger.EntryInflow, "initial funding", "")

	// A window in the future excludes everything; the opening balance then
	// equals the closing balance.
	st, err := svc.Build(ctx, "card:a", ledger.Filter{From: time.Now().UTC().Add(time.Hour)})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(st.Entries) != 0 {
		t.Fatalf("expected no entries in window, got %d", len(st.Entries))
	}
	if !st.OpeningBalance.Equal(st.ClosingBalance) {
		t.Fatalf("opening %s != closing %s for empty window", st.OpeningBalance, st.ClosingBalance)
	}
}

func TestBuild_UnknownInstrument(t *testing.T) {
	svc := NewService(ledger.NewInMemory())
	if _, err := svc.Build(context.Background(), "card:missing", ledger.Filter{}); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
