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

// DownloadTokenSigner issues HMAC-signed download tokens that embed the job
// id, the archived file path and an expiry. The token is the only credential
// the download endpoint needs, so links can be handed to a browser without a
// session.
type DownloadTokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewDownloadTokenSigner builds a signer. A non-positive ttl falls back to
// 24 hours.
func NewDownloadTokenSigner(secret string, ttl time.Duration) *DownloadTokenSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DownloadTokenSigner{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given job and relative file path.
func (s *DownloadTokenSigner) Issue(jobID, rel string) (string, time.Time, error) {
	if jobID == "" || rel == "" {
		return "", time.Time{}, fmt.Errorf("job id and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret not configured")
	}
	expiresAt := time.Now().Add(s.ttl).Truncate(time.Second)
	payload := strings.Join([]string{
		base64.RawURLEncoding.EncodeToString([]byte(jobID)),
		strconv.FormatInt(expiresAt.Unix(), 10),
		base64.RawURLEncoding.EncodeToString([]byte(rel)),
	}, ".")
	return payload + "." + s.sign(payload), expiresAt, nil
}

// Verify checks the signature and expiry and returns the embedded fields.
func (s *DownloadTokenSigner) Verify(token string) (jobID, rel string, expiresAt time.Time, err error) {
	idx := strings.LastIndex(token, ".")
	if idx < 0 {
		return "", "", time.Time{}, fmt.Errorf("malformed token")
	}
	payload, signature := token[:idx], token[idx+1:]
	if !hmac.Equal([]byte(s.sign(payload)), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("token signature mismatch")
	}

	parts := strings.Split(payload, ".")
	if len(parts) != 3 {
		return "", "", time.Time{}, fmt.Errorf("malformed token")
	}
	rawJob, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode job id: %w", err)
	}
	unix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode expiry: %w", err)
	}
	rawPath, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode path: %w", err)
	}

	expiresAt = time.Unix(unix, 0)
	if time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("token expired")
	}
	return string(rawJob), string(rawPath), expiresAt, nil
}

func (s *DownloadTokenSigner) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
