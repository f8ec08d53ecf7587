package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	portEnvVar       = "PORT"
	appNameVar       = "APP_NAME"
	mongoURIVar      = "MONGO_URI"
	mongoDatabaseVar = "MONGO_DATABASE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Secure Notes")
}

// GetMongoURI returns the MongoDB connection string. Empty means no
// durable store is configured and the server falls back to the
// in-memory repositories.
func (EnvVars) GetMongoURI() string {
	return GetEnv(mongoURIVar, "")
}

func (EnvVars) GetMongoDatabase() string {
	return GetEnv(mongoDatabaseVar, "securenotes")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
