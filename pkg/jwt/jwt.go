package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Subject identidad que viaja en el token. Role decide el acceso en el middleware RBAC.
type Subject struct {
	UserID    string
	CompanyID string
	Role      string // "admin" | "analyst"
}

// Claims claims estándar más los de la aplicación.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

var errEmptySecret = errors.New("jwt: secret vacío")

// Generate firma un token HS256 para s con vencimiento a expMinutes.
func Generate(secret string, s Subject, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", errEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    s.UserID,
		CompanyID: s.CompanyID,
		Role:      s.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma y vencimiento (exp obligatorio) y devuelve el Subject.
func Parse(secret, tokenString string) (Subject, error) {
	if secret == "" {
		return Subject{}, errEmptySecret
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Subject{}, err
	}
	if !token.Valid {
		return Subject{}, fmt.Errorf("jwt: claims inválidos")
	}
	return Subject{UserID: claims.UserID, CompanyID: claims.CompanyID, Role: claims.Role}, nil
}
