// Package config provides configuration loading and validation for the
// voice authentication service.
//
// Configuration is assembled from a config.yml file, the process
// environment, and an optional .env file, in that order of precedence.
// Nested keys map to environment variables with underscores (e.g.
// AUTH_SECRET sets auth.secret).
package config
