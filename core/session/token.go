package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var errInvalidToken = errors.New("invalid session token")

// Claims are carried by the session token kept in the client Slot.
// They identify the server-side session only: the role is never part of the token.
type Claims struct {
	jwt.RegisteredClaims
}

// Signer signs and verifies session tokens (HS256).
type Signer struct {
	key      []byte
	issuer   string
	audience string
}

func NewSigner(secretKey, issuer string) *Signer {
	return &Signer{
		key:      []byte(secretKey),
		issuer:   issuer,
		audience: "Portal",
	}
}

// Sign generates a signed token string referencing sess.
func (s *Signer) Sign(sess Session) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Issuer:    s.issuer,
			Subject:   sess.SubjectID,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(sess.EstablishedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(s.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Parse verifies tokenStr and returns its claims.
// Expired tokens return ErrExpired along with their claims so the referenced session can be revoked.
func (s *Signer) Parse(tokenStr string, now time.Time) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(
		tokenStr,
		&claims,
		func(*jwt.Token) (interface{}, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired) && claims.ID != "":
		return claims, ErrExpired
	default:
		return Claims{}, errInvalidToken
	}
	if claims.ID == "" || claims.Subject == "" {
		return Claims{}, errInvalidToken
	}
	return claims, nil
}
