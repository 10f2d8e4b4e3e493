// Package config provides configuration management for the Courseware API.
//
// Configuration is loaded from an optional YAML file and overridden by
// environment variables:
//
//   - COURSEWARE_CONFIG_PATH: directory holding courseware.yml
//   - COURSEWARE_BIND_ADDRESS, COURSEWARE_PORT: listen address
//   - COURSEWARE_ALLOWED_ORIGINS: comma-separated CORS origins
//   - COURSEWARE_REQUIRE_AUTH: require a role token on every family
//   - COURSEWARE_REQUEST_TIMEOUT_SECONDS: per-request database deadline
//   - COURSEWARE_TOKEN_KEY: HMAC key for role token verification
//   - DATABASE_URL: PostgreSQL connection string (read by pkg/db)
//
// Watch reloads the file on change so origin and timeout adjustments do
// not require a restart.
package config
