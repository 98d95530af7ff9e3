package config

import (
	"fmt"
	"os"
	"strings"
)

// ExpectedEnvSchemaVersion is the schema version that the application expects
const ExpectedEnvSchemaVersion = "1.0"

// RequiredEnvVars lists the variables the API server cannot start without
var RequiredEnvVars = []string{
	"ENV_SCHEMA_VERSION",
	"DB_USER",
	"DB_PASSWORD",
	"DB_HOST",
	"DB_PORT",
	"DB_NAME",
	"API_KEY",
}

// DiscordEnvVars lists the variables the Discord bot process needs
var DiscordEnvVars = []string{
	"ENV_SCHEMA_VERSION",
	"API_KEY",
	"API_URL",
	"DISCORD_TOKEN",
	"DISCORD_APP_ID",
}

// OptionalEnvVars enable features when set; each absence is reported as a warning
var OptionalEnvVars = map[string]string{
	"REDIS_ADDR":     "REDIS_ADDR is not set - duel locks are process-local, run a single API instance",
	"ARCHIVE_BUCKET": "ARCHIVE_BUCKET is not set - monthly standings will not be archived before reset",
}

// ValidateEnv checks that all server variables are set and the schema version matches
func ValidateEnv() error {
	return ValidateEnvFor(RequiredEnvVars)
}

// ValidateEnvFor checks the given variables plus the schema version
func ValidateEnvFor(required []string) error {
	schemaVersion := os.Getenv("ENV_SCHEMA_VERSION")
	if schemaVersion == "" {
		return fmt.Errorf("ENV_SCHEMA_VERSION is not set - please update your .env file to include this field (expected: %s)", ExpectedEnvSchemaVersion)
	}

	if schemaVersion != ExpectedEnvSchemaVersion {
		return fmt.Errorf("ENV_SCHEMA_VERSION mismatch: expected %s, got %s - your .env file may be outdated", ExpectedEnvSchemaVersion, schemaVersion)
	}

	var missing []string
	for _, envVar := range required {
		if os.Getenv(envVar) == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

// ValidateEnvWithWarnings checks environment variables and returns warnings
// for insecure example values and disabled optional features
func ValidateEnvWithWarnings() ([]string, error) {
	if err := ValidateEnv(); err != nil {
		return nil, err
	}

	var warnings []string

	if os.Getenv("DB_PASSWORD") == "change_this_secure_password" {
		warnings = append(warnings, "DB_PASSWORD appears to be using the example value - please use a secure password")
	}

	if os.Getenv("API_KEY") == "generate_with_openssl_rand_hex_32" {
		warnings = append(warnings, "API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32")
	}

	for _, key := range []string{"REDIS_ADDR", "ARCHIVE_BUCKET"} {
		if os.Getenv(key) == "" {
			warnings = append(warnings, OptionalEnvVars[key])
		}
	}

	return warnings, nil
}
