package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService signs session tokens with HS256. The expiry rides inside the
// signed payload as a plain "expires" unix timestamp rather than the
// registered "exp" claim, so verification checks it explicitly and the wire
// format stays compatible with tokens issued by earlier deployments.
type JWTService struct {
	secretKey []byte
	issuer    string
}

// NewJWTService creates the token signer.
func NewJWTService(secretKey string, issuer string) *JWTService {
	if issuer == "" {
		issuer = "authgate"
	}
	return &JWTService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

// Issue signs the given data with the configured secret. The data map must
// carry the caller identity under "username".
func (j *JWTService) Issue(data map[string]any, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"data":    data,
		"expires": time.Now().Add(ttl).Unix(),
		"iss":     j.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", ErrTokenGenerationFailed().WithDetail("error", err.Error())
	}
	return signed, nil
}

// Verify checks the signature and the embedded expiry, returning distinct
// errors for a bad signature, a malformed payload and a lapsed token. All
// three map to 401 so callers can stay uniform toward clients.
func (j *JWTService) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature()
		}
		return nil, ErrMalformedToken().WithDetail("error", err.Error())
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformedToken()
	}

	data, ok := mapClaims["data"].(map[string]any)
	if !ok {
		return nil, ErrMalformedToken().WithDetail("reason", "missing data payload")
	}
	username, _ := data["username"].(string)
	if username == "" {
		return nil, ErrMalformedToken().WithDetail("reason", "missing username")
	}
	expires, ok := mapClaims["expires"].(float64)
	if !ok {
		return nil, ErrMalformedToken().WithDetail("reason", "missing expires")
	}

	expiresAt := time.Unix(int64(expires), 0)
	if !time.Now().Before(expiresAt) {
		return nil, ErrExpiredToken()
	}

	return &TokenClaims{
		Username:  username,
		Data:      data,
		ExpiresAt: expiresAt,
	}, nil
}
