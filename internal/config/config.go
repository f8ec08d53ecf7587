package config

import "errors"

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetMongoURI() string
	GetMongoDatabase() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
}

func New() Config {
	return mainConfig{}
}

// Validate checks settings that must not fall back to a default. The
// signing secret in particular has no development fallback: an unset
// secret is a startup error, never a silent default.
func Validate(c Config) error {
	if c.GetSigningSecret() == "" {
		return errors.New("JWT_SIGNING_SECRET must be set")
	}
	if c.GetBcryptCost() < 4 || c.GetBcryptCost() > 31 {
		return errors.New("BCRYPT_COST out of range")
	}
	return nil
}
