package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped on every session token and required when validating
const Issuer = "lotellar"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims identify a wallet session: the session id travels as the token id
// and the wallet address as both subject and address.
type Claims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// SessionID returns the wallet session the token was issued for
func (c *Claims) SessionID() string {
	return c.ID
}

// JWTService issues and validates wallet session tokens (HS256)
type JWTService struct {
	secret        []byte
	sessionExpiry time.Duration
	now           func() time.Time
}

var signJWTToken = func(token *jwt.Token, secret []byte) (string, error) {
	return token.SignedString(secret)
}

func NewJWTService(secret string, sessionExpiry time.Duration) *JWTService {
	return &JWTService{
		secret:        []byte(secret),
		sessionExpiry: sessionExpiry,
		now:           time.Now,
	}
}

// SessionExpiry is both the token lifetime and the redis session TTL
func (s *JWTService) SessionExpiry() time.Duration {
	return s.sessionExpiry
}

func (s *JWTService) GenerateSessionToken(sessionID, address string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.sessionExpiry)
	claims := &Claims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    Issuer,
			Subject:   address,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := signJWTToken(jwt.NewWithClaims(jwt.SigningMethodHS256, claims), s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken returns ErrExpiredToken for a well-formed token past its
// expiry and ErrInvalidToken for anything else that does not verify.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.ID == "" || claims.Address == "" || claims.Subject != claims.Address {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
