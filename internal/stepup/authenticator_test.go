package stepup

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kwanza-pay/kwanza/internal/account"
	"github.com/kwanza-pay/kwanza/internal/biometric"
	"github.com/kwanza-pay/kwanza/internal/fault"
	"github.com/kwanza-pay/kwanza/internal/instrument"
	"github.com/kwanza-pay/kwanza/internal/ledger"
	"github.com/kwanza-pay/kwanza/internal/transfer"
)

const testPassword = "correct horse battery"

var enrolledFace = []float64{0.1, 0.9, 0.3, 0.5}

type fixture struct {
	auth     *Authenticator
	engine   *transfer.Engine
	accounts account.Repository
	owner    account.Account
	pending  transfer.PendingTransfer
}

func newFixture(t *testing.T, withTemplate bool) fixture {
	t.Helper()
	ctx := context.Background()

	repo := account.NewMemoryRepository()
	accSvc := account.NewService(repo)
	owner, err := accSvc.Register(ctx, account.Credentials{Name: "joao", Password: testPassword})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if withTemplate {
		if err := accSvc.EnrollTemplate(ctx, owner.ID, enrolledFace); err != nil {
			t.Fatalf("enroll template: %v", err)
		}
	}

	led := ledger.NewInMemory()
	instSvc := instrument.NewService(instrument.NewMemoryRepository(), led)
	engine := transfer.NewEngine(led, instSvc, nil)

	source, err := instSvc.Create(ctx, instrument.CreateInput{OwnerID: owner.ID, Name: "Everyday Card"})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	dest, err := instSvc.Create(ctx, instrument.CreateInput{OwnerID: uuid.NewString(), Name: "Other Card"})
	if err != nil {
		t.Fatalf("create dest: %v", err)
	}
	if _, err := instSvc.Fund(ctx, source.ID, decimal.NewFromInt(100), ""); err != nil {
		t.Fatalf("fund source: %v", err)
	}

	pt, err := engine.Stage(ctx, source.ID, dest.Number, decimal.NewFromInt(25), "Maria")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}

	auth := NewAuthenticator(engine, repo, biometric.NewMatcher(0, 0), NewMemoryAttemptStore(), DefaultMaxAttempts)
	return fixture{auth: auth, engine: engine, accounts: repo, owner: owner, pending: pt}
}

func (f fixture) awaiting(t *testing.T, method transfer.Method) {
	t.Helper()
	if _, err := f.auth.RequestVerification(f.pending.ID, method); err != nil {
		t.Fatalf("request verification: %v", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.awaiting(t, transfer.MethodPassword)

	ok, err := f.auth.VerifyPassword(ctx, f.pending.ID, testPassword)
	if err != nil || !ok {
		t.Fatalf("expected verification to pass, got ok=%v err=%v", ok, err)
	}

	pt, _ := f.engine.Get(f.pending.ID)
	if pt.State != transfer.StateVerified {
		t.Fatalf("expected VERIFIED, got %s", pt.State)
	}
}

func TestVerifyPassword_WrongSecret(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.awaiting(t, transfer.MethodPassword)

	ok, err := f.auth.VerifyPassword(ctx, f.pending.ID, "not the password")
	if ok || !errors.Is(err, fault.ErrAuthentication) {
		t.Fatalf("expected authentication error, got ok=%v err=%v", ok, err)
	}

	// A failed check leaves the transfer awaiting so the caller can retry.
	pt, _ := f.engine.Get(f.pending.ID)
	if pt.State != transfer.StateAwaitingVerification {
		t.Fatalf("expected AWAITING_VERIFICATION, got %s", pt.State)
	}
}

func TestVerifyPassword_RequiresAwaitingState(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	// Still STAGED, verification was never requested.
	ok, err := f.auth.VerifyPassword(ctx, f.pending.ID, testPassword)
	if ok || !errors.Is(err, fault.ErrStaleState) {
		t.Fatalf("expected stale state, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyBiometric(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.awaiting(t, transfer.MethodBiometric)

	ok, err := f.auth.VerifyBiometric(ctx, f.pending.ID, enrolledFace)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	pt, _ := f.engine.Get(f.pending.ID)
	if pt.State != transfer.StateVerified {
		t.Fatalf("expected VERIFIED, got %s", pt.State)
	}
}

func TestVerifyBiometric_MismatchCarriesScores(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.awaiting(t, transfer.MethodBiometric)

	// Opposite direction of the enrolled face.
	probe := make([]float64, len(enrolledFace))
	for i, v := range enrolledFace {
		probe[i] = -v
	}

	ok, err := f.auth.VerifyBiometric(ctx, f.pending.ID, probe)
	if ok {
		t.Fatalf("expected mismatch")
	}
	var mismatch *fault.BiometricMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if mismatch.Similarity > 0 || math.IsInf(mismatch.Distance, 1) {
		t.Fatalf("unexpected scores: %+v", mismatch)
	}
}

func TestVerifyBiometric_AttemptCap(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.awaiting(t, transfer.MethodBiometric)

	probe := []float64{-1, -1, -1, -1}
	for i := 0; i < DefaultMaxAttempts; i++ {
		ok, err := f.auth.VerifyBiometric(ctx, f.pending.ID, probe)
		var mismatch *fault.BiometricMismatchError
		if ok || !errors.As(err, &mismatch) {
			t.Fatalf("attempt %d: expected mismatch, got ok=%v err=%v", i+1, ok, err)
		}
	}

	// Cap reached: even the real face is rejected now.
	ok, err := f.auth.VerifyBiometric(ctx, f.pending.ID, enrolledFace)
	if ok || !errors.Is(err, ErrBiometricLocked) {
		t.Fatalf("expected biometric lock, got ok=%v err=%v", ok, err)
	}

	// The password path stays open after the lock.
	ok, err = f.auth.VerifyPassword(ctx, f.pending.ID, testPassword)
	if err != nil || !ok {
		t.Fatalf("password fallback failed: ok=%v err=%v", ok, err)
	}
}

func TestVerifyBiometric_NoTemplates(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.awaiting(t, transfer.MethodBiometric)

	// Validation failures surface as such no matter how often they repeat;
	// they never consume the attempt cap or flip into a lock.
	for i := 0; i < DefaultMaxAttempts+2; i++ {
		ok, err := f.auth.VerifyBiometric(ctx, f.pending.ID, enrolledFace)
		if ok || !errors.Is(err, fault.ErrValidation) {
			t.Fatalf("call %d: expected validation error for empty gallery, got ok=%v err=%v", i+1, ok, err)
		}
	}

	// Enrolling afterwards leaves the full cap available.
	if err := account.NewService(f.accounts).EnrollTemplate(ctx, f.owner.ID, enrolledFace); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	ok, err := f.auth.VerifyBiometric(ctx, f.pending.ID, enrolledFace)
	if err != nil || !ok {
		t.Fatalf("expected match after enrollment, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyBiometric_EmptyEmbedding(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.awaiting(t, transfer.MethodBiometric)

	ok, err := f.auth.VerifyBiometric(ctx, f.pending.ID, nil)
	if ok || !errors.Is(err, fault.ErrValidation) {
		t.Fatalf("expected validation error for empty embedding, got ok=%v err=%v", ok, err)
	}
}
