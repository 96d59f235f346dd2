package jwt

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "GBRPYHIL2CI3FNQ4BXLFMNDLFJUNPU2HY3ZMFSHONUCEOASW7QC7OX2H"

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	assert.Equal(t, time.Minute, svc.SessionExpiry())

	token, expiresAt, err := svc.GenerateSessionToken("sid-1", testAddress)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID())
	assert.Equal(t, testAddress, claims.Address)
	assert.Equal(t, testAddress, claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestJWTService_ExpiryFollowsClock(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, expiresAt, err := svc.GenerateSessionToken("sid-1", testAddress)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), expiresAt)

	svc.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = svc.ValidateToken(token)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, _, err := NewJWTService("other", time.Minute).GenerateSessionToken("sid", testAddress)
	require.NoError(t, err)
	_, err = svc.ValidateToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	sign := func(claims gjwt.Claims) string {
		s, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		return s
	}
	exp := gjwt.NewNumericDate(time.Now().Add(time.Minute))
	cases := map[string]gjwt.Claims{
		"wrong issuer":     &Claims{Address: testAddress, RegisteredClaims: gjwt.RegisteredClaims{ID: "sid", Issuer: "someone", Subject: testAddress, ExpiresAt: exp}},
		"no expiry":        &Claims{Address: testAddress, RegisteredClaims: gjwt.RegisteredClaims{ID: "sid", Issuer: Issuer, Subject: testAddress}},
		"no session":       &Claims{Address: testAddress, RegisteredClaims: gjwt.RegisteredClaims{Issuer: Issuer, Subject: testAddress, ExpiresAt: exp}},
		"subject mismatch": &Claims{Address: testAddress, RegisteredClaims: gjwt.RegisteredClaims{ID: "sid", Issuer: Issuer, Subject: "GOTHER", ExpiresAt: exp}},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(sign(claims))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTService_ValidateWrongSigningMethod(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)

	claims := gjwt.MapClaims{
		"jti":     "sid",
		"iss":     Issuer,
		"sub":     testAddress,
		"address": testAddress,
		"exp":     time.Now().Add(time.Minute).Unix(),
	}
	tokenStr, err := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims).SignedString(gjwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenStr)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_SignHook(t *testing.T) {
	orig := signJWTToken
	t.Cleanup(func() { signJWTToken = orig })
	signJWTToken = func(*gjwt.Token, []byte) (string, error) { return "", errors.New("sign failed") }

	_, _, err := NewJWTService("secret", time.Minute).GenerateSessionToken("sid", testAddress)
	assert.EqualError(t, err, "sign failed")
}
