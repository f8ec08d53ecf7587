package auth

import (
	"context"

	"github.com/pkg/errors"
	autherrors "github.com/securenotes/auth-service/internal/errors"
	"github.com/securenotes/auth-service/mfa"
	"github.com/securenotes/auth-service/token"
	"github.com/securenotes/auth-service/users"
)

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users users.Repo // Credential store
}

// TokenPair is returned when a login fully completes: the access token
// grants API access, the MFA token allows skipping the code prompt on
// a later login inside its validity window.
type TokenPair struct {
	AccessToken string
	MFAToken    string
}

// Service orchestrates signup, MFA enrollment, and the two-step login
// flow. It keeps no state between calls: progress is reconstructed on
// every request from client-supplied credentials and tokens.
type Service struct {
	repos      Repos
	totp       *mfa.Engine
	tokens     *token.Manager
	bcryptCost int
	qrSize     int
}

type ServiceOption func(*Service)

// WithBcryptCost sets the password hashing work factor.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// WithQRSize sets the pixel size of enrollment QR images.
func WithQRSize(size int) ServiceOption {
	return func(s *Service) {
		s.qrSize = size
	}
}

// NewService initializes the auth service with required dependencies.
func NewService(repos Repos, totpEngine *mfa.Engine, tokens *token.Manager, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if totpEngine == nil {
		return nil, errors.New("[NewService] TOTP engine is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token manager is required")
	}

	s := &Service{
		repos:      repos,
		totp:       totpEngine,
		tokens:     tokens,
		bcryptCost: users.DefaultBcryptCost,
		qrSize:     mfa.DefaultQRSize,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Signup creates the account and starts MFA enrollment: the password
// is hashed, a fresh TOTP secret is attached, and the provisioning QR
// is returned. No tokens are issued until enrollment is verified and
// the user logs in.
func (s *Service) Signup(ctx context.Context, username, password string) (string, error) {
	passwordHash, err := users.HashPassword(password, s.bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "[Service.Signup] HashPassword")
	}

	user := &users.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, autherrors.ErrDuplicateUser) {
			return "", err
		}
		return "", errors.Wrap(err, "[Service.Signup] Users.Create")
	}

	enrollment, err := s.totp.GenerateSecret(username)
	if err != nil {
		return "", errors.Wrap(err, "[Service.Signup] GenerateSecret")
	}
	if err := s.repos.Users.SetTOTPSecret(ctx, user.ID, enrollment.Secret); err != nil {
		return "", errors.Wrap(err, "[Service.Signup] SetTOTPSecret")
	}

	qrCode, err := mfa.QRDataURI(enrollment.URL, s.qrSize)
	if err != nil {
		return "", errors.Wrap(err, "[Service.Signup] QRDataURI")
	}
	return qrCode, nil
}

// VerifyMFASetup checks a TOTP code against the secret created during
// signup. Failure does not advance the account; the caller may retry
// or request the QR again.
func (s *Service) VerifyMFASetup(ctx context.Context, username, code string) (bool, error) {
	user, err := s.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return s.totp.VerifyCode(user.TOTPSecret, code), nil
}

// RegenerateQR re-issues the enrollment QR from the stored secret.
func (s *Service) RegenerateQR(ctx context.Context, username string) (string, error) {
	user, err := s.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if !user.MFAEnrolled() {
		return "", autherrors.ErrUserNotFound
	}

	qrCode, err := mfa.QRDataURI(s.totp.ProvisioningURL(user.TOTPSecret, username), s.qrSize)
	if err != nil {
		return "", errors.Wrap(err, "[Service.RegenerateQR] QRDataURI")
	}
	return qrCode, nil
}

// Login is step one of the login flow: verify username and password.
// A missing user and a wrong password are the same generic error so
// responses cannot be used to enumerate accounts.
func (s *Service) Login(ctx context.Context, username, password string) error {
	_, err := s.checkCredentials(ctx, username, password)
	return err
}

// VerifyMFALogin is step two: verify the TOTP code and, on success,
// issue an access token plus a fresh MFA-satisfied token.
func (s *Service) VerifyMFALogin(ctx context.Context, username, code string) (*TokenPair, error) {
	user, err := s.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if !user.MFAEnrolled() || !s.totp.VerifyCode(user.TOTPSecret, code) {
		return nil, autherrors.ErrInvalidMFACode
	}

	return s.issuePair(user)
}

// SkipMFALogin completes a login using an unexpired MFA-satisfied
// token instead of a TOTP code. The password is re-verified on every
// attempt; the bypass only replaces the code prompt, and only when the
// token's subject is the credential-verified user.
func (s *Service) SkipMFALogin(ctx context.Context, username, password, mfaToken string) (string, error) {
	user, err := s.checkCredentials(ctx, username, password)
	if err != nil {
		return "", err
	}

	claims, err := s.tokens.VerifyMFAToken(mfaToken)
	if err != nil {
		return "", autherrors.ErrInvalidToken
	}
	if claims.UserID != user.ID {
		return "", autherrors.ErrInvalidToken
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return "", errors.Wrap(err, "[Service.SkipMFALogin] IssueAccessToken")
	}
	return accessToken, nil
}

// ValidateMFAToken reports whether a raw MFA-satisfied token is still
// usable for the bypass.
func (s *Service) ValidateMFAToken(rawToken string) error {
	_, err := s.tokens.VerifyMFAToken(rawToken)
	return err
}

func (s *Service) checkCredentials(ctx context.Context, username, password string) (*users.User, error) {
	user, err := s.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, autherrors.ErrUserNotFound) {
			return nil, autherrors.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "[Service.checkCredentials] GetByUsername")
	}

	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, autherrors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) issuePair(user *users.User) (*TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.issuePair] IssueAccessToken")
	}
	mfaToken, err := s.tokens.IssueMFAToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.issuePair] IssueMFAToken")
	}
	return &TokenPair{AccessToken: accessToken, MFAToken: mfaToken}, nil
}
