package config

import (
	"strconv"
	"time"
)

type SecurityConfig interface {
	GetSigningSecret() string
	GetAccessTokenExpiry() time.Duration
	GetMFATokenExpiry() time.Duration
	GetBcryptCost() int
	GetTOTPIssuer() string
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSigningSecret returns the HMAC secret for session tokens. There is
// deliberately no default; config.Validate rejects an empty value.
func (Security) GetSigningSecret() string {
	return GetEnv("JWT_SIGNING_SECRET", "")
}

func (Security) GetAccessTokenExpiry() time.Duration {
	return getEnvDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute)
}

// GetMFATokenExpiry bounds the window during which a completed TOTP
// check lets a new login skip the code prompt.
func (Security) GetMFATokenExpiry() time.Duration {
	return getEnvDuration("MFA_TOKEN_EXPIRY", 5*time.Minute)
}

func (Security) GetBcryptCost() int {
	cost, err := strconv.Atoi(GetEnv("BCRYPT_COST", "10"))
	if err != nil {
		return 10
	}
	return cost
}

func (Security) GetTOTPIssuer() string {
	return GetEnv("TOTP_ISSUER", "SecureNotes")
}

func getEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(GetEnv(envVar, ""))
	if err != nil {
		return defaultValue
	}
	return d
}
