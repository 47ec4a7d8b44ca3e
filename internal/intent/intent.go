// Package intent models the structured commands the external chat layer
// emits after interpreting free text. The transfer engine never sees raw
// text; it only receives the already-structured Transfer variant.
package intent

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Kind discriminates the Intent variants.
type Kind string

const (
	KindBalance   Kind = "balance"
	KindViewCards Kind = "view_cards"
	KindHistory   Kind = "history"
	KindTransfer  Kind = "transfer"
	KindUnknown   Kind = "unknown"
)

// Transfer carries the structured payload of a transfer intent.
type Transfer struct {
	Amount            decimal.Decimal `json:"amount"`
	DestinationNumber string          `json:"destination_number"`
	CounterpartyName  string          `json:"counterparty_name"`
}

// Intent is the tagged variant produced by the chat layer. Only the
// Transfer kind carries a payload.
type Intent struct {
	Kind     Kind      `json:"kind"`
	Transfer *Transfer `json:"transfer,omitempty"`
}

// UnmarshalJSON normalizes unrecognized kinds to KindUnknown instead of
// failing, mirroring how the chat layer degrades on unparseable input.
func (i *Intent) UnmarshalJSON(data []byte) error {
	type alias Intent
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	switch a.Kind {
	case KindBalance, KindViewCards, KindHistory, KindTransfer:
	default:
		a.Kind = KindUnknown
		a.Transfer = nil
	}
	*i = Intent(a)
	return nil
}
