package intent

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestUnmarshalTransferIntent(t *testing.T) {
	raw := `{"kind":"transfer","transfer":{"amount":"25.50","destination_number":"1234567890123456","counterparty_name":"Maria"}}`

	var i Intent
	if err := json.Unmarshal([]byte(raw), &i); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if i.Kind != KindTransfer || i.Transfer == nil {
		t.Fatalf("unexpected intent: %+v", i)
	}
	if !i.Transfer.Amount.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("unexpected amount: %s", i.Transfer.Amount)
	}
	if i.Transfer.CounterpartyName != "Maria" {
		t.Fatalf("unexpected counterparty: %q", i.Transfer.CounterpartyName)
	}
}

func TestUnmarshalSimpleKinds(t *testing.T) {
	for _, kind := range []Kind{KindBalance, KindViewCards, KindHistory} {
		var i Intent
		if err := json.Unmarshal([]byte(`{"kind":"`+string(kind)+`"}`), &i); err != nil {
			t.Fatalf("unmarshal %s: %v", kind, err)
		}
		if i.Kind != kind || i.Transfer != nil {
			t.Fatalf("unexpected intent for %s: %+v", kind, i)
		}
	}
}

func TestUnmarshalUnknownKind(t *testing.T) {
	raw := `{"kind":"sing_a_song","transfer":{"amount":"1","destination_number":"x"}}`

	var i Intent
	if err := json.Unmarshal([]byte(raw), &i); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if i.Kind != KindUnknown {
		t.Fatalf("expected unknown kind, got %s", i.Kind)
	}
	// Payloads on unrecognized kinds are dropped, not acted on.
	if i.Transfer != nil {
		t.Fatalf("expected payload to be discarded")
	}
}
