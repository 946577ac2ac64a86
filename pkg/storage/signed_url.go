package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TokenSigner mints and verifies download tokens for export artifacts. A
// token binds the job ID and artifact name to an expiry under an HMAC, so a
// download link works without a database round trip and cannot be redirected
// at another job's artifact.
//
// Token form: <jobID>.<unix expiry>.<base64url artifact name>.<signature>
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenSigner constructs a signer. A non-positive TTL falls back to 24h.
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenSigner{secret: []byte(secret), ttl: ttl}
}

// Generate returns a token for the artifact and the moment it stops working.
func (s *TokenSigner) Generate(jobID, artifact string) (string, time.Time, error) {
	if jobID == "" || artifact == "" {
		return "", time.Time{}, fmt.Errorf("jobID and artifact required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	name := base64.RawURLEncoding.EncodeToString([]byte(artifact))
	token := strings.Join([]string{jobID, exp, name, s.sign(jobID, exp, name)}, ".")
	return token, expiresAt, nil
}

// Parse verifies a token and returns the job ID and artifact name it binds.
// allowExpired skips the expiry check; the retention sweep uses it to resolve
// artifacts whose links already lapsed.
func (s *TokenSigner) Parse(token string, allowExpired bool) (jobID, artifact string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, fmt.Errorf("malformed token")
	}
	jobID, exp, name, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(jobID, exp, name)), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("token signature mismatch")
	}

	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("invalid token expiry")
	}
	expiresAt = time.Unix(expUnix, 0)
	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("token expired")
	}

	raw, err := base64.RawURLEncoding.DecodeString(name)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode artifact name: %w", err)
	}
	return jobID, string(raw), expiresAt, nil
}

func (s *TokenSigner) sign(jobID, exp, name string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = fmt.Fprintf(mac, "%s\n%s\n%s", jobID, exp, name)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
