package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/user-directory/internal/models"
)

var testUser = models.User{ID: 7, Username: "alice123", Email: "a@x.com"}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newManager(t *testing.T, clock *fakeClock) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager("super-secret", "user-directory", 30*time.Minute, clock.Now)
	require.NoError(t, err)
	return tm
}

func TestNewTokenManager_Defaults(t *testing.T) {
	_, err := NewTokenManager("", "iss", time.Minute, nil)
	require.Error(t, err)

	tm, err := NewTokenManager("k", "iss", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, tm.TTL())
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tm := newManager(t, clock)

	tok, err := tm.Issue(testUser)
	require.NoError(t, err)

	claims, err := tm.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.UserID)
	assert.Equal(t, testUser.Username, claims.Username)
	assert.Equal(t, testUser.Email, claims.Email)
	assert.Equal(t, "user-directory", claims.Issuer)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, clock.t.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenManager_TokensAreDistinct(t *testing.T) {
	tm := newManager(t, &fakeClock{t: time.Now()})

	t1, err := tm.Issue(testUser)
	require.NoError(t, err)
	t2, err := tm.Issue(testUser)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestTokenManager_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tm := newManager(t, clock)

	tok, err := tm.Issue(testUser)
	require.NoError(t, err)

	clock.t = clock.t.Add(31 * time.Minute)
	_, err = tm.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tok, err := newManager(t, clock).Issue(testUser)
	require.NoError(t, err)

	other, err := NewTokenManager("other-secret", "user-directory", time.Hour, clock.Now)
	require.NoError(t, err)
	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tok, err := newManager(t, clock).Issue(testUser)
	require.NoError(t, err)

	other, err := NewTokenManager("super-secret", "someone-else", time.Hour, clock.Now)
	require.NoError(t, err)
	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tm := newManager(t, clock)

	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "user-directory",
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = tm.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestTokenManager_RequiresExpiry(t *testing.T) {
	tm := newManager(t, &fakeClock{t: time.Now()})

	claims := Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{Issuer: "user-directory"}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = tm.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestTokenManager_Malformed(t *testing.T) {
	tm := newManager(t, &fakeClock{t: time.Now()})

	for _, in := range []string{"", "not.a.jwt", "abc", strings.Repeat("x", 200)} {
		_, err := tm.Verify(in)
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken, "input %q", in)
	}
}
