package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	autherrors "github.com/securenotes/auth-service/internal/errors"
	"github.com/securenotes/auth-service/users"
)

// Token kinds, carried in the token_use claim. The request gate only
// ever accepts UseAccess; UseMFA proves a recent TOTP check and grants
// nothing by itself.
const (
	UseAccess = "access"
	UseMFA    = "mfa"
)

// Claims is the verified content of a session token.
type Claims struct {
	UserID    string
	Username  string
	Use       string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager mints and verifies the two session token kinds. Tokens are
// stateless: validity is signature plus expiry, nothing is persisted.
type Manager struct {
	signer            Signer
	issuer            string
	accessTokenExpiry time.Duration
	mfaTokenExpiry    time.Duration
	nowFunc           func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry, mfaTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
		m.mfaTokenExpiry = mfaTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer: signer,
		issuer: "securenotes",
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry == 0 {
		m.accessTokenExpiry = 15 * time.Minute
	}
	if m.mfaTokenExpiry == 0 {
		m.mfaTokenExpiry = 5 * time.Minute
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

// IssueAccessToken mints the short-lived token that grants API access.
func (m *Manager) IssueAccessToken(user *users.User) (string, error) {
	return m.issue(user, UseAccess, m.accessTokenExpiry)
}

// IssueMFAToken mints the token proving a recent TOTP verification. It
// lets a later login within its window skip the code prompt; it never
// grants resource access.
func (m *Manager) IssueMFAToken(user *users.User) (string, error) {
	return m.issue(user, UseMFA, m.mfaTokenExpiry)
}

func (m *Manager) issue(user *users.User, use string, expiry time.Duration) (string, error) {
	now := m.nowFunc()
	claims := jwt.MapClaims{
		"iss":       m.issuer,
		"sub":       user.ID,
		"username":  user.Username,
		"token_use": use,
		"iat":       now.Unix(),
		"exp":       now.Add(expiry).Unix(),
		"jti":       uuid.New().String(),
	}

	signedToken, err := m.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.issue] signer.Sign")
	}
	return signedToken, nil
}

// VerifyAccessToken validates a raw access token. Any malformed,
// unsigned, expired, or wrong-kind token is ErrInvalidToken.
func (m *Manager) VerifyAccessToken(rawToken string) (*Claims, error) {
	return m.verify(rawToken, UseAccess)
}

// VerifyMFAToken validates a raw MFA-satisfied token.
func (m *Manager) VerifyMFAToken(rawToken string) (*Claims, error) {
	return m.verify(rawToken, UseMFA)
}

func (m *Manager) verify(rawToken, expectedUse string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(rawToken, jwt.MapClaims{}, m.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil || !parsed.Valid {
		return nil, autherrors.ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, autherrors.ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	username, _ := mapClaims["username"].(string)
	use, _ := mapClaims["token_use"].(string)
	jti, _ := mapClaims["jti"].(string)
	iat, _ := mapClaims["iat"].(float64)
	exp, _ := mapClaims["exp"].(float64)

	if sub == "" || use != expectedUse {
		return nil, autherrors.ErrInvalidToken
	}

	// The parser already rejects expired tokens; re-checking keeps a
	// token invalid from the exact expiry instant regardless of parser
	// leeway settings.
	if exp == 0 || m.nowFunc().Unix() >= int64(exp) {
		return nil, autherrors.ErrInvalidToken
	}

	return &Claims{
		UserID:    sub,
		Username:  username,
		Use:       use,
		TokenID:   jti,
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
