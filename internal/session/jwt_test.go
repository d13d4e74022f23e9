package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() *SessionTokens {
	return NewSessionTokens([]byte("test-secret"), "plantfinder-test", time.Hour)
}

func TestSessionTokens_IssueVerify(t *testing.T) {
	st := testTokens()

	raw, exp, err := st.Issue("abc")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := st.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.SessionID)
	assert.WithinDuration(t, exp, claims.ExpiresAt, time.Second)

	_, _, err = st.Issue("")
	assert.Error(t, err)
}

func TestSessionTokens_ExpiryUsesClock(t *testing.T) {
	st := testTokens()
	start := time.Now()
	st.now = func() time.Time { return start }

	raw, _, err := st.Issue("abc")
	require.NoError(t, err)

	// inside the skew allowance
	st.now = func() time.Time { return start.Add(time.Hour + clockSkew/2) }
	_, err = st.Verify(raw)
	require.NoError(t, err)

	st.now = func() time.Time { return start.Add(time.Hour + 2*clockSkew) }
	_, err = st.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestSessionTokens_Rejects(t *testing.T) {
	st := testTokens()
	good, _, err := st.Issue("abc")
	require.NoError(t, err)

	otherIssuerTok, _, err := NewSessionTokens([]byte("test-secret"), "someone-else", time.Hour).Issue("abc")
	require.NoError(t, err)

	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	sign := func(m jwt.SigningMethod, c jwt.RegisteredClaims) string {
		s, err := jwt.NewWithClaims(m, c).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return s
	}
	hs512 := sign(jwt.SigningMethodHS512, jwt.RegisteredClaims{Issuer: "plantfinder-test", Subject: "abc", ExpiresAt: exp})
	noSubject := sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "plantfinder-test", ExpiresAt: exp})
	noExpiry := sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "plantfinder-test", Subject: "abc"})
	futureIssued := sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "plantfinder-test",
		Subject:   "abc",
		ExpiresAt: exp,
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
	})

	tests := []struct {
		name  string
		st    *SessionTokens
		token string
	}{
		{"garbage", st, "not-a-token"},
		{"wrong secret", NewSessionTokens([]byte("nope"), "plantfinder-test", time.Hour), good},
		{"other issuer", st, otherIssuerTok},
		{"hs512", st, hs512},
		{"no session id", st, noSubject},
		{"no expiry", st, noExpiry},
		{"issued in the future", st, futureIssued},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.st.Verify(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}
