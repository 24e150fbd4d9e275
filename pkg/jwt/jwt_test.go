package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/receivables-commissions/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

var ana = jwt.Subject{UserID: "ana", CompanyID: "acme", Role: "analyst"}

func TestGenerateYParse(t *testing.T) {
	tok, err := jwt.Generate(secret, ana, "receivables-commissions", 60)
	require.NoError(t, err)

	got, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, ana, got)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := jwt.Generate(secret, ana, "", -1)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := jwt.Generate(secret, ana, "", 60)
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestParse_RechazaOtroAlgoritmo(t *testing.T) {
	claims := jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "ana",
		Role:             "admin",
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = jwt.Parse(secret, tok)
	assert.Error(t, err, "solo HS256")
}

func TestParse_SinVencimiento(t *testing.T) {
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, jwt.Claims{UserID: "ana", Role: "admin"}).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = jwt.Parse(secret, tok)
	assert.Error(t, err, "exp es obligatorio")
}

func TestSecretVacio(t *testing.T) {
	_, err := jwt.Generate("", ana, "", 60)
	assert.Error(t, err)
	_, err = jwt.Parse("", "x")
	assert.Error(t, err)
}
