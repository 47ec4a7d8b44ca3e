package account

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kwanza-pay/kwanza/internal/fault"
)

const minPasswordLength = 8

// Service manages account lifecycle and credential checks.
type Service struct {
	repo Repository
}

// NewService creates a new account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new account storing only the password hash.
func (s *Service) Register(ctx context.Context, creds Credentials) (Account, error) {
	name := strings.TrimSpace(creds.Name)
	if name == "" {
		return Account{}, fault.Validation("name is required")
	}
	if len(creds.Password) < minPasswordLength {
		return Account{}, fault.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	acc := Account{
		ID:           uuid.NewString(),
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return Account{}, err
	}

	return acc, nil
}

// Authenticate verifies login credentials and returns the account.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (Account, error) {
	acc, err := s.repo.FindByName(ctx, strings.TrimSpace(creds.Name))
	if err != nil {
		return Account{}, fault.ErrAuthentication
	}
	if err := VerifySecret(acc.PasswordHash, creds.Password); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// EnrollTemplate stores an additional face embedding for the account. All
// templates of one account must share a dimension so matching stays
// well-defined.
func (s *Service) EnrollTemplate(ctx context.Context, accountID string, embedding []float64) error {
	if len(embedding) == 0 {
		return fault.Validation("embedding must not be empty")
	}
	acc, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if len(acc.Templates) > 0 && len(acc.Templates[0]) != len(embedding) {
		return fault.Validation("embedding dimension does not match enrolled templates")
	}
	return s.repo.AddTemplate(ctx, accountID, embedding)
}

// Get fetches an account by id.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.repo.FindByID(ctx, id)
}

// VerifySecret performs the one-way comparison used at login and reused by
// step-up password verification.
func VerifySecret(hash []byte, plaintext string) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(plaintext)); err != nil {
		return fault.ErrAuthentication
	}
	return nil
}
