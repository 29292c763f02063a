package meshtoken

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, now func() time.Time) *Codec {
	t.Helper()
	c, err := NewCodec([]byte("mesh-secret"), WithClock(now))
	require.NoError(t, err)
	return c
}

func TestNewCodec_RequiresSecret(t *testing.T) {
	_, err := NewCodec(nil)
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	c := newTestCodec(t, func() time.Time { return fixed })

	cases := []struct {
		secret, bot, user string
		ttl               time.Duration
	}{
		{"abc123", "bot_123", "u1", time.Second},
		{strings.Repeat("f", 64), "bot-xyz", "user_2", time.Hour},
		{"s", "b", "u", 0},
	}
	for _, tc := range cases {
		token, err := c.Issue(tc.secret, tc.bot, tc.user, tc.ttl)
		require.NoError(t, err)

		claims, err := c.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, tc.secret, claims.RawSecret)
		assert.Equal(t, tc.bot, claims.BotID)
		assert.Equal(t, tc.user, claims.UserID)
		assert.Equal(t, fixed.UnixMilli(), claims.IssuedAt)
	}
}

func TestIssue_DefaultTTL(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	c := newTestCodec(t, func() time.Time { return fixed })

	token, err := c.Issue("s", "b", "u", 0)
	require.NoError(t, err)
	claims, err := c.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(DefaultTTL).UnixMilli(), claims.ExpiresAt)
	assert.True(t, claims.ExpiresAtTime().Equal(fixed.Add(DefaultTTL)))
}

func TestIssue_RejectsInvalidFields(t *testing.T) {
	c := newTestCodec(t, time.Now)
	for _, args := range [][3]string{
		{"", "b", "u"},
		{"s", "", "u"},
		{"s", "b", ""},
		{"s|x", "b", "u"},
		{"s", "b|x", "u"},
	} {
		_, err := c.Issue(args[0], args[1], args[2], time.Minute)
		assert.ErrorIs(t, err, ErrInvalidField, "args %v", args)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	c := newTestCodec(t, time.Now)
	token, err := c.Issue("secret", "bot_1", "u1", time.Hour)
	require.NoError(t, err)

	dot := strings.LastIndex(token, ".")
	for i := dot + 1; i < len(token); i++ {
		flipped := []byte(token)
		if flipped[i] == 'a' {
			flipped[i] = 'b'
		} else {
			flipped[i] = 'a'
		}
		_, err := c.Verify(string(flipped))
		assert.ErrorIs(t, err, ErrSignature, "position %d", i)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	c := newTestCodec(t, time.Now)
	token, err := c.Issue("secret", "bot_1", "u1", time.Hour)
	require.NoError(t, err)

	parts := strings.SplitN(token, ".", 2)
	forged := base64.RawURLEncoding.EncodeToString([]byte("secret|bot_2|u1|0|99999999999999"))
	_, err = c.Verify(forged + "." + parts[1])
	assert.ErrorIs(t, err, ErrSignature)
}

func TestVerify_WrongServerSecret(t *testing.T) {
	c := newTestCodec(t, time.Now)
	other, err := NewCodec([]byte("other-secret"))
	require.NoError(t, err)

	token, err := c.Issue("secret", "bot_1", "u1", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrSignature)
}

func TestVerify_Expired(t *testing.T) {
	c := newTestCodec(t, time.Now)
	token, err := c.Issue("secret", "bot_1", "u1", -time.Millisecond)
	require.NoError(t, err)

	_, err = c.Verify(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_ExpiresAfterTTL(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	c := newTestCodec(t, func() time.Time { return now })

	token, err := c.Issue("secret", "bot_123", "u1", 1000*time.Millisecond)
	require.NoError(t, err)

	_, err = c.Verify(token)
	require.NoError(t, err)

	now = now.Add(1000 * time.Millisecond)
	_, err = c.Verify(token)
	require.NoError(t, err, "token is valid while now == expiresAt")

	now = now.Add(100 * time.Millisecond)
	_, err = c.Verify(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_Malformed(t *testing.T) {
	c := newTestCodec(t, time.Now)
	sign := func(payload string) string {
		enc := base64.RawURLEncoding.EncodeToString([]byte(payload))
		return enc + "." + c.sign(enc)
	}

	cases := map[string]string{
		"empty":           "",
		"no dot":          "abcdef",
		"missing sig":     "abcdef.",
		"missing payload": ".abcdef",
		"four fields":     sign("a|b|c|1"),
		"six fields":      sign("a|b|c|1|2|3"),
		"bad issuedAt":    sign("a|b|c|x|99999999999999"),
		"bad expiresAt":   sign("a|b|c|1|x"),
		"not base64":      "!!!." + c.sign("!!!"),
	}
	for name, token := range cases {
		_, err := c.Verify(token)
		assert.Error(t, err, name)
	}

	_, err := c.Verify(sign("a|b|c|1|x"))
	assert.ErrorIs(t, err, ErrMalformed)
}
