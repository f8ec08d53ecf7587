package mfa

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	defaultPeriod     = 30
	defaultSecretSize = 20 // 160 bits of entropy
)

// Enrollment is the result of provisioning a fresh TOTP secret. The
// URL is the otpauth:// form that authenticator apps scan; only the
// base32 secret is persisted.
type Enrollment struct {
	Secret string
	URL    string
}

// Engine generates and verifies RFC 6238 time-based one-time codes.
// Codes are checked with a skew of one 30-second step in either
// direction to tolerate client/server clock drift.
type Engine struct {
	issuer     string
	period     uint
	secretSize uint
	skew       uint
	nowFunc    func() time.Time
}

type EngineOption func(*Engine)

// WithNowFunc sets the clock (primarily for testing)
func WithNowFunc(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.nowFunc = now
	}
}

func New(issuer string, options ...EngineOption) *Engine {
	e := &Engine{
		issuer:     issuer,
		period:     defaultPeriod,
		secretSize: defaultSecretSize,
		skew:       1,
		nowFunc:    time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// GenerateSecret provisions a fresh random secret for the account and
// returns it with its otpauth URL.
func (e *Engine) GenerateSecret(account string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: account,
		Period:      e.period,
		SecretSize:  e.secretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Engine.GenerateSecret] totp.Generate")
	}
	return &Enrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// ProvisioningURL rebuilds the otpauth URL for an already stored
// base32 secret, so the enrollment QR can be re-issued without
// regenerating the secret.
func (e *Engine) ProvisioningURL(secret, account string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", e.issuer)
	v.Set("algorithm", "SHA1")
	v.Set("digits", "6")
	v.Set("period", strconv.FormatUint(uint64(e.period), 10))

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + e.issuer + ":" + account,
		RawQuery: v.Encode(),
	}
	return u.String()
}

// VerifyCode checks a submitted code against the stored secret at the
// current time. Malformed or empty input is a false result, never an
// error.
func (e *Engine) VerifyCode(secret, code string) bool {
	return e.VerifyCodeAt(secret, code, e.nowFunc())
}

// VerifyCodeAt is VerifyCode with an explicit verification time.
func (e *Engine) VerifyCodeAt(secret, code string, at time.Time) bool {
	secret = strings.TrimSpace(secret)
	code = strings.TrimSpace(code)
	if secret == "" || code == "" {
		return false
	}

	valid, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    e.period,
		Skew:      e.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return valid
}
