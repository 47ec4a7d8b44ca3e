package instrument

import "time"

// Instrument is a named payment handle owned by exactly one account, with
// its own instrument number and its own balance independent of the owner's
// other instruments. Uniqueness holds on (owner, normalized name, issuer)
// and globally on the number.
type Instrument struct {
	ID             string
	OwnerID        string
	Name           string
	NormalizedName string
	Issuer         string
	Number         string
	CreatedAt      time.Time
}

// Balance encapsulates available funds for an instrument.
type Balance struct {
	InstrumentID string
	Amount       string
	AsOf         time.Time
}
