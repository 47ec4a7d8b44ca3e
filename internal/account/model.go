package account

import "time"

// Account represents a registered principal. PasswordHash is the opaque
// one-way secret used both at login and for step-up verification; the
// plaintext is never stored. Templates holds the enrolled face embeddings.
type Account struct {
	ID           string
	Name         string
	PasswordHash []byte
	Templates    [][]float64
	CreatedAt    time.Time
}

// Credentials request structure.
type Credentials struct {
	Name     string
	Password string
}
