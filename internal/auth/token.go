package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuerName = "medicart"

var ErrInvalidToken = errors.New("invalid admin token")

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Issuer signs and verifies the admin token kept in the session.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(username string) (string, Principal, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: RoleAdmin,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", Principal{}, fmt.Errorf("sign admin token: %w", err)
	}
	return signed, Principal{
		Username:  username,
		Role:      RoleAdmin,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (i *Issuer) Parse(raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, ErrInvalidToken
	}
	var claims Claims
	t, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !t.Valid {
		return Principal{}, errors.Join(ErrInvalidToken, err)
	}
	if claims.Role != RoleAdmin || claims.Subject == "" {
		return Principal{}, fmt.Errorf("%w: unexpected role %q", ErrInvalidToken, claims.Role)
	}

	p := Principal{Username: claims.Subject, Role: claims.Role}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	p.ExpiresAt = claims.ExpiresAt.Time
	return p, nil
}
