package redis

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

const sessionKeyPrefix = "wallet_session:"

// ErrSessionNotFound means the session expired or was disconnected
var ErrSessionNotFound = errors.New("wallet session not found")

// SessionData is the wallet connection stored behind a session id
type SessionData struct {
	Address     string    `json:"address"`
	KeyID       string    `json:"keyId,omitempty"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// SessionStore keeps wallet sessions in Redis sealed with XChaCha20-Poly1305.
// Each record is bound to its session id, so a sealed value copied under
// another id does not open.
type SessionStore struct {
	key []byte
}

var (
	setSessionValue    = Set
	getSessionValue    = Get
	delSessionValue    = Del
	marshalSessionJSON = json.Marshal
)

// NewSessionStore takes the 32 byte key as 64 hex characters
func NewSessionStore(keyHex string) (*SessionStore, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, errors.New("invalid session encryption key hex")
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("session encryption key must be %d bytes (%d hex chars)", chacha20poly1305.KeySize, 2*chacha20poly1305.KeySize)
	}
	return &SessionStore{key: key}, nil
}

func (s *SessionStore) CreateSession(ctx context.Context, sessionID string, data *SessionData, expiration time.Duration) error {
	plain, err := marshalSessionJSON(data)
	if err != nil {
		return err
	}
	sealed, err := s.seal(sessionID, plain)
	if err != nil {
		return err
	}
	return setSessionValue(ctx, sessionKeyPrefix+sessionID, sealed, expiration)
}

// GetSession returns ErrSessionNotFound for unknown or expired ids
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	sealed, err := getSessionValue(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		if IsNil(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	plain, err := s.open(sessionID, sealed)
	if err != nil {
		return nil, err
	}

	var data SessionData
	if err := json.Unmarshal(plain, &data); err != nil {
		return nil, fmt.Errorf("decode wallet session: %w", err)
	}
	return &data, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	return delSessionValue(ctx, sessionKeyPrefix+sessionID)
}

func (s *SessionStore) aead() (cipher.AEAD, error) {
	return chacha20poly1305.NewX(s.key)
}

func (s *SessionStore) seal(sessionID string, plain []byte) (string, error) {
	aead, err := s.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	out := aead.Seal(nonce, nonce, plain, []byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *SessionStore) open(sessionID, sealed string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("decode wallet session: %w", err)
	}
	aead, err := s.aead()
	if err != nil {
		return nil, err
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return nil, errors.New("sealed wallet session too short")
	}
	nonce, body := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	return aead.Open(nil, nonce, body, []byte(sessionID))
}
