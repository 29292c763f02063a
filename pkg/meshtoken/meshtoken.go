// Package meshtoken issues and verifies mesh tokens: self-contained bearer
// credentials of the form base64url(payload) + "." + hex(HMAC-SHA256(payload)),
// where payload is rawSecret|botId|userId|issuedAt|expiresAt (epoch milliseconds).
package meshtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTTL is used when Issue is called with a zero ttl.
const DefaultTTL = 7 * 24 * time.Hour

const (
	fieldSeparator = "|"
	fieldCount     = 5
)

var (
	ErrMissingSecret = errors.New("meshtoken: server secret is empty")
	ErrInvalidField  = errors.New("meshtoken: invalid token field")
	ErrMalformed     = errors.New("meshtoken: malformed token")
	ErrSignature     = errors.New("meshtoken: signature mismatch")
	ErrExpired       = errors.New("meshtoken: token expired")
)

// Claims is the decoded payload of a verified token.
type Claims struct {
	RawSecret string
	BotID     string
	UserID    string
	IssuedAt  int64
	ExpiresAt int64
}

// ExpiresAtTime returns ExpiresAt as a time.Time.
func (c *Claims) ExpiresAtTime() time.Time {
	return time.UnixMilli(c.ExpiresAt)
}

// Codec signs and verifies tokens with a single server secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a codec for serverSecret.
func NewCodec(serverSecret []byte, opts ...Option) (*Codec, error) {
	if len(serverSecret) == 0 {
		return nil, ErrMissingSecret
	}
	c := &Codec{
		secret: append([]byte(nil), serverSecret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue builds a token for rawSecret bound to botID and userID. A zero ttl means
// DefaultTTL; a negative ttl yields a token that is already expired.
func (c *Codec) Issue(rawSecret, botID, userID string, ttl time.Duration) (string, error) {
	for _, field := range []string{rawSecret, botID, userID} {
		if field == "" || strings.Contains(field, fieldSeparator) {
			return "", ErrInvalidField
		}
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}

	issuedAt := c.now().UnixMilli()
	expiresAt := issuedAt + ttl.Milliseconds()

	payload := strings.Join([]string{
		rawSecret,
		botID,
		userID,
		strconv.FormatInt(issuedAt, 10),
		strconv.FormatInt(expiresAt, 10),
	}, fieldSeparator)

	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + c.sign(encoded), nil
}

// Verify checks the signature and expiry of token and returns its claims.
// All failures are reported as ErrMalformed, ErrSignature or ErrExpired.
func (c *Codec) Verify(token string) (*Claims, error) {
	idx := strings.LastIndex(token, ".")
	if idx <= 0 || idx == len(token)-1 {
		return nil, ErrMalformed
	}
	encoded, signature := token[:idx], token[idx+1:]

	expected := c.sign(encoded)
	if len(expected) != len(signature) || !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrSignature
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding", ErrMalformed)
	}

	parts := strings.Split(string(raw), fieldSeparator)
	if len(parts) != fieldCount {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformed, fieldCount, len(parts))
	}

	issuedAt, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: issuedAt", ErrMalformed)
	}
	expiresAt, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: expiresAt", ErrMalformed)
	}

	if c.now().UnixMilli() > expiresAt {
		return nil, ErrExpired
	}

	return &Claims{
		RawSecret: parts[0],
		BotID:     parts[1],
		UserID:    parts[2],
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

func (c *Codec) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encodedPayload))
	return hex.EncodeToString(mac.Sum(nil))
}
