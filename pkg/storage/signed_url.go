package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrBadToken covers malformed or tampered download tokens.
	ErrBadToken = errors.New("storage: invalid download token")
	// ErrTokenExpired marks a well-formed token past its expiry.
	ErrTokenExpired = errors.New("storage: download token expired")
	// ErrNoSecret is returned when signing is attempted without a secret.
	ErrNoSecret = errors.New("storage: signing secret missing")
)

// Claims is the metadata a download token carries. The token is
// self-contained so the download endpoint only needs signature and
// expiry checks before opening the file.
type Claims struct {
	JobID     string
	File      string
	ExpiresAt time.Time
}

// Signer mints and verifies HMAC-signed download tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Generate returns a token of the form payload.signature, both parts
// base64url without padding.
func (s *Signer) Generate(jobID, file string) (string, time.Time, error) {
	if jobID == "" || file == "" {
		return "", time.Time{}, ErrBadToken
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	exp := time.Now().Add(s.ttl)
	body := strings.Join([]string{jobID, strconv.FormatInt(exp.Unix(), 10), file}, "\n")
	payload := base64.RawURLEncoding.EncodeToString([]byte(body))
	sig := base64.RawURLEncoding.EncodeToString(s.sign(payload))
	return payload + "." + sig, exp, nil
}

// Parse verifies a token and returns its claims. allowExpired skips the
// expiry check so cleanup can still resolve file names from old tokens.
func (s *Signer) Parse(token string, allowExpired bool) (Claims, error) {
	payload, sig, ok := strings.Cut(token, ".")
	if !ok || payload == "" {
		return Claims{}, ErrBadToken
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(got, s.sign(payload)) {
		return Claims{}, ErrBadToken
	}

	body, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Claims{}, ErrBadToken
	}
	fields := strings.SplitN(string(body), "\n", 3)
	if len(fields) != 3 {
		return Claims{}, ErrBadToken
	}
	unix, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Claims{}, ErrBadToken
	}

	claims := Claims{JobID: fields[0], File: fields[2], ExpiresAt: time.Unix(unix, 0)}
	if !allowExpired && time.Now().After(claims.ExpiresAt) {
		return Claims{}, ErrTokenExpired
	}
	return claims, nil
}

func (s *Signer) sign(payload string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}
