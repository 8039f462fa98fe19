package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KindAccess is the token kind minted at login and registration.
const KindAccess = "access"

// ErrInvalidToken is the umbrella rejection for any credential that fails
// verification. The specific sentinels below all wrap it, so callers check
// errors.Is(err, ErrInvalidToken) and log the concrete reason without ever
// disclosing it externally.
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrTokenClaims    = fmt.Errorf("%w: missing required claims", ErrInvalidToken)
)

// Claims carries the registered JWT claims plus the token kind.
type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"kind"`
}

// TokenCodec issues and verifies HS256-signed access tokens. It is purely
// functional given its secret; no state is shared between calls.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec builds a codec signing with the given server secret.
func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{secret: secret}
}

// Issue mints a signed token for the subject with expiry now+ttl. The
// issued-at claim makes two tokens for the same subject distinct across
// instants.
func (c *TokenCodec) Issue(subjectID, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	})
	return token.SignedString(c.secret)
}

// Verify parses the token and runs the rejection pipeline: structure,
// signature, expiry, then required claims. The first failing check wins and
// no later check runs. Every rejection wraps ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
			return Claims{}, ErrTokenClaims
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if !token.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return Claims{}, ErrTokenClaims
	}
	return claims, nil
}
