package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/hayat-market/authgate/pkg/iam"
)

// Purpose binds a one-time code to the operation it proves intent for. A code
// issued for one purpose is never redeemable for another.
type Purpose string

const (
	PurposeRegister       Purpose = "register"
	PurposeLogin          Purpose = "login"
	PurposeUpdateProfile  Purpose = "update_profile"
	PurposeForgotPassword Purpose = "forgot_password"
	PurposeVerifyContact  Purpose = "verify_contact"
)

// Valid reports whether the purpose is one of the known operations.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeRegister, PurposeLogin, PurposeUpdateProfile, PurposeForgotPassword, PurposeVerifyContact:
		return true
	}
	return false
}

const keyPrefix = "otp"

// Key composes the store key for a specific code. The code lives inside the
// key so consumption is a single existence-check-and-delete on the exact
// submitted value: no read-compare-delete race to exploit.
func Key(owner string, purpose Purpose, code string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, iam.KeyName(owner), purpose, code)
}

// PairPrefix is the key prefix covering every live code of an (owner, purpose)
// pair, used to supersede prior codes and to peek.
func PairPrefix(owner string, purpose Purpose) string {
	return fmt.Sprintf("%s:%s:%s:", keyPrefix, iam.KeyName(owner), purpose)
}

// RequestKey is the issuance rate-limit marker for an (owner, purpose) pair.
func RequestKey(owner string, purpose Purpose) string {
	return fmt.Sprintf("otp_req:%s:%s", iam.KeyName(owner), purpose)
}

// CodeFromKey extracts the code segment from a full OTP key.
func CodeFromKey(key string) string {
	idx := strings.LastIndexByte(key, ':')
	if idx < 0 || idx == len(key)-1 {
		return ""
	}
	return key[idx+1:]
}

// GenerateCode returns a cryptographically random numeric code of the given
// length, zero-padded.
func GenerateCode(length int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
