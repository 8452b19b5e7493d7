package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/odyssey-erp/odyssey-bom/internal/shared"
)

// VerifierConfig configures token verification.
type VerifierConfig struct {
	Secret    string
	Algorithm string
	Issuer    string
	Leeway    time.Duration
}

// Verifier validates HMAC signed bearer tokens.
type Verifier struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	leeway time.Duration
}

// NewVerifier builds a Verifier. Only HMAC algorithms are accepted.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: secret required")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("auth: unsupported algorithm %q", alg)
	}
	return &Verifier{secret: []byte(cfg.Secret), method: method, issuer: cfg.Issuer, leeway: cfg.Leeway}, nil
}

// Verify parses the token and returns the principal it identifies.
func (v *Verifier) Verify(tokenString string) (*shared.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{v.method.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, shared.ErrInvalidToken
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", shared.ErrInvalidToken)
	}
	return &shared.Principal{UserID: subject, Email: claims.Email, Roles: claims.RoleNames()}, nil
}

// Issue signs a token for the principal. Used by tooling and tests; the
// service itself never hands out tokens.
func (v *Verifier) Issue(p shared.Principal, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Email: p.Email,
		Roles: p.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(v.method, claims).SignedString(v.secret)
}
