package authinfra

import (
	"github.com/hayat-market/authgate/pkg/iam/auth"
	"golang.org/x/crypto/bcrypt"
)

// BcryptPasswordService implements auth.PasswordService over bcrypt.
type BcryptPasswordService struct {
	cost int
}

// NewBcryptPasswordService creates a password service with the given cost,
// clamped to bcrypt's supported range.
func NewBcryptPasswordService(cost int) auth.PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordService{cost: cost}
}

// Hash derives the stored form of a password.
func (s *BcryptPasswordService) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", auth.ErrPasswordHashFailed().WithDetail("error", err.Error())
	}
	return string(hashed), nil
}

// Verify reports whether the plain password matches the stored hash. An empty
// hash never matches: accounts created through a federated provider have no
// password to compare against.
func (s *BcryptPasswordService) Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
