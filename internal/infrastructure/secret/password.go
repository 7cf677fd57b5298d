package secret

import (
	"errors"
	"fmt"

	"github.com/poyrazK/keyportal/internal/core/domain"
	"golang.org/x/crypto/bcrypt"
)

// BcryptVault hashes and verifies administrator passwords with bcrypt.
type BcryptVault struct {
	cost int
}

// NewBcryptVault returns a vault using cost, or bcrypt.DefaultCost (10) when cost is zero.
func NewBcryptVault(cost int) (*BcryptVault, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptVault{cost: cost}, nil
}

// Hash salts and hashes plaintext. Two calls with the same input give different hashes.
func (v *BcryptVault) Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), v.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password must not exceed 72 bytes", domain.ErrValidation)
	}
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plaintext produced hash. Malformed or foreign hashes
// simply fail verification.
func (v *BcryptVault) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
