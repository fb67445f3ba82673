package utils

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestIssuer(clock *fakeClock) *TokenIssuer {
	n := 0
	return NewTokenIssuer(
		"access-secret", 15*time.Minute,
		"refresh-secret", 24*time.Hour,
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			n++
			return "jti-" + strconv.Itoa(n)
		}),
	)
}

func TestIssueAccessToken_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	issuer := newTestIssuer(clock)

	token, err := issuer.IssueAccessToken("42")
	require.NoError(t, err)

	claims, err := issuer.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, clock.t.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, clock.t.Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestIssueAccessToken_DeterministicForSameClock(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	issuer := newTestIssuer(clock)

	a, err := issuer.IssueAccessToken("7")
	require.NoError(t, err)
	b, err := issuer.IssueAccessToken("7")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIssueRefreshToken_UniquePerCall(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	issuer := newTestIssuer(clock)

	a, err := issuer.IssueRefreshToken("7")
	require.NoError(t, err)
	b, err := issuer.IssueRefreshToken("7")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	claims, err := issuer.ParseRefreshToken(b)
	require.NoError(t, err)
	assert.Equal(t, "jti-2", claims.ID)
	assert.Equal(t, clock.t.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestParse_KeySeparation(t *testing.T) {
	issuer := newTestIssuer(&fakeClock{t: time.Now()})

	access, err := issuer.IssueAccessToken("1")
	require.NoError(t, err)
	refresh, err := issuer.IssueRefreshToken("1")
	require.NoError(t, err)

	_, err = issuer.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = issuer.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParse_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	issuer := newTestIssuer(clock)

	access, err := issuer.IssueAccessToken("1")
	require.NoError(t, err)
	refresh, err := issuer.IssueRefreshToken("1")
	require.NoError(t, err)

	clock.t = clock.t.Add(15 * time.Minute)
	_, err = issuer.ParseAccessToken(access)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = issuer.ParseRefreshToken(refresh)
	assert.NoError(t, err)

	clock.t = clock.t.Add(24 * time.Hour)
	_, err = issuer.ParseRefreshToken(refresh)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParse_TamperedAndGarbage(t *testing.T) {
	issuer := newTestIssuer(&fakeClock{t: time.Now()})

	token, err := issuer.IssueAccessToken("1")
	require.NoError(t, err)

	other := NewTokenIssuer("different", time.Minute, "refresh-secret", time.Hour)
	_, err = other.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	forged, err := issuer.IssueAccessToken("2")
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]
	_, err = issuer.ParseAccessToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = issuer.ParseAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestIssuePair(t *testing.T) {
	issuer := newTestIssuer(&fakeClock{t: time.Now()})

	pair, err := issuer.IssuePair("9")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
}
