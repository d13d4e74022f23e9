package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")
)

// clockSkew is tolerated on exp and iat.
const clockSkew = 30 * time.Second

// Claims is what a verified session token tells the server.
type Claims struct {
	SessionID string
	ExpiresAt time.Time
}

// SessionTokens issues bearer tokens naming a registry session. The token
// only proves which session the client was given; whether that session is
// still alive is the registry's call.
type SessionTokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewSessionTokens(secret []byte, issuer string, ttl time.Duration) *SessionTokens {
	st := &SessionTokens{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(func() time.Time { return st.now() }),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	st.parser = jwt.NewParser(opts...)
	return st
}

// Issue signs a token for sessionID that expires together with the
// session's initial lease.
func (st *SessionTokens) Issue(sessionID string) (string, time.Time, error) {
	if sessionID == "" {
		return "", time.Time{}, errors.New("issue token: empty session id")
	}
	now := st.now()
	exp := now.Add(st.ttl)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    st.issuer,
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	raw, err := tok.SignedString(st.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return raw, exp, nil
}

// Verify checks raw and returns the session it names. Errors wrap
// ErrTokenExpired or ErrTokenInvalid.
func (st *SessionTokens) Verify(raw string) (*Claims, error) {
	var rc jwt.RegisteredClaims
	_, err := st.parser.ParseWithClaims(raw, &rc, func(*jwt.Token) (any, error) {
		return st.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	case rc.Subject == "":
		return nil, fmt.Errorf("%w: no session id", ErrTokenInvalid)
	}

	return &Claims{SessionID: rc.Subject, ExpiresAt: rc.ExpiresAt.Time}, nil
}
