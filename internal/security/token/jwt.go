// Package token emite y valida los access tokens HS256 de la plataforma.
package token

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Role discrimina el tipo de usuario autenticado.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleSponsor   Role = "sponsor"
	RoleRecipient Role = "recipient"
)

var (
	ErrInvalidToken = errors.New("token invalid or expired")
)

// Claims son los claims de un access token de la plataforma.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
	jwtv5.RegisteredClaims
}

// Issuer firma y valida access tokens con un secreto compartido.
type Issuer struct {
	secret []byte
	iss    string
	ttl    time.Duration
}

func NewIssuer(secret, iss string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Issuer{secret: []byte(secret), iss: iss, ttl: ttl}, nil
}

// Issue emite un access token para el sujeto dado.
func (i *Issuer) Issue(sub, email string, role Role) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.ttl)
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.iss,
			Subject:   sub,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse valida firma, expiración e issuer y retorna los claims.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	var claims Claims
	tok, err := jwtv5.ParseWithClaims(raw, &claims, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwtv5.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if i.iss != "" && claims.Issuer != i.iss {
		return nil, ErrInvalidToken
	}
	switch claims.Role {
	case RoleAdmin, RoleSponsor, RoleRecipient:
	default:
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
