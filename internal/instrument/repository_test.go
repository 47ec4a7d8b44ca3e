package instrument

import (
	"errors"
	"strings"
	"testing"

	"github.com/kwanza-pay/kwanza/internal/fault"
)

func TestDuplicateErrorDistinguishesConstraints(t *testing.T) {
	inst := Instrument{Name: "My Card", Number: "1234567890123456"}

	err := duplicateError("instruments_number_key", inst)
	if !errors.Is(err, fault.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if !strings.Contains(err.Error(), inst.Number) {
		t.Fatalf("number collision should name the number, got %q", err)
	}

	err = duplicateError("instruments_owner_id_normalized_name_issuer_key", inst)
	if !errors.Is(err, fault.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if !strings.Contains(err.Error(), inst.Name) || strings.Contains(err.Error(), inst.Number) {
		t.Fatalf("name collision should name the instrument, got %q", err)
	}
}
