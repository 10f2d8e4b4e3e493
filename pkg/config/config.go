package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/courseware"
	ConfigFileName    = "courseware.yml"
)

// CoursewareConfig holds all server configuration settings
type CoursewareConfig struct {
	// BindAddress is the address the HTTP server listens on
	BindAddress string `yaml:"bind_address" json:"bind_address"`

	// Port is the HTTP server listen port
	Port string `yaml:"port" json:"port"`

	// AllowedOrigins is the list of origins permitted by CORS
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	// RequireAuth requires a valid role token on every resource family,
	// not just the students family
	RequireAuth bool `yaml:"require_auth" json:"require_auth"`

	// RequestTimeoutSeconds bounds each request's database round trips
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`

	// TokenKey is the HMAC key used to verify role tokens. Usually set
	// via COURSEWARE_TOKEN_KEY rather than the config file.
	TokenKey string `yaml:"token_key" json:"token_key"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *CoursewareConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *CoursewareConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *CoursewareConfig {
	return &CoursewareConfig{
		BindAddress:           "0.0.0.0",
		Port:                  "8000",
		AllowedOrigins:        []string{"http://localhost", "http://127.0.0.1"},
		RequireAuth:           false,
		RequestTimeoutSeconds: 10,
		sources:               make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*CoursewareConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("COURSEWARE_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig CoursewareConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"bind_address", "port", "allowed_origins", "require_auth",
		"request_timeout_seconds", "token_key",
	}
}

func (c *CoursewareConfig) applyFileConfig(file *CoursewareConfig) {
	if file.BindAddress != "" {
		c.BindAddress = file.BindAddress
		c.sources["bind_address"] = "file"
	}
	if file.Port != "" {
		c.Port = file.Port
		c.sources["port"] = "file"
	}
	if len(file.AllowedOrigins) > 0 {
		c.AllowedOrigins = file.AllowedOrigins
		c.sources["allowed_origins"] = "file"
	}
	if file.RequireAuth {
		c.RequireAuth = true
		c.sources["require_auth"] = "file"
	}
	if file.RequestTimeoutSeconds != 0 {
		c.RequestTimeoutSeconds = file.RequestTimeoutSeconds
		c.sources["request_timeout_seconds"] = "file"
	}
	if file.TokenKey != "" {
		c.TokenKey = file.TokenKey
		c.sources["token_key"] = "file"
	}
}

func (c *CoursewareConfig) applyEnvConfig() {
	if val := os.Getenv("COURSEWARE_BIND_ADDRESS"); val != "" {
		c.BindAddress = val
		c.sources["bind_address"] = "environment"
	}
	if val := os.Getenv("COURSEWARE_PORT"); val != "" {
		c.Port = val
		c.sources["port"] = "environment"
	}
	if val := os.Getenv("COURSEWARE_ALLOWED_ORIGINS"); val != "" {
		c.AllowedOrigins = splitAndTrim(val)
		c.sources["allowed_origins"] = "environment"
	}
	if val := os.Getenv("COURSEWARE_REQUIRE_AUTH"); val != "" {
		c.RequireAuth = val == "true" || val == "1"
		c.sources["require_auth"] = "environment"
	}
	if val := os.Getenv("COURSEWARE_REQUEST_TIMEOUT_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.RequestTimeoutSeconds = i
			c.sources["request_timeout_seconds"] = "environment"
		}
	}
	if val := os.Getenv("COURSEWARE_TOKEN_KEY"); val != "" {
		c.TokenKey = val
		c.sources["token_key"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *CoursewareConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *CoursewareConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// RequestTimeout returns the per-request timeout as a duration
func (c *CoursewareConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate validates the configuration
func (c *CoursewareConfig) Validate() error {
	for _, origin := range c.AllowedOrigins {
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid allowed_origins value: %s", origin)
		}
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must not be negative")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port: %s", c.Port)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *CoursewareConfig) Attributes() []Attribute {
	tokenKey := ""
	if c.TokenKey != "" {
		tokenKey = "(set)"
	}
	return []Attribute{
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: c.Port, Source: c.Source("port")},
		{Name: "allowed_origins", Value: strings.Join(c.AllowedOrigins, ","), Source: c.Source("allowed_origins")},
		{Name: "require_auth", Value: strconv.FormatBool(c.RequireAuth), Source: c.Source("require_auth")},
		{Name: "request_timeout_seconds", Value: strconv.Itoa(c.RequestTimeoutSeconds), Source: c.Source("request_timeout_seconds")},
		{Name: "token_key", Value: tokenKey, Source: c.Source("token_key")},
	}
}

// FormatJSON returns a JSON representation of the configuration
func (c *CoursewareConfig) FormatJSON() (string, error) {
	out, err := json.MarshalIndent(c.Attributes(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// FormatText returns a text representation of the configuration
func (c *CoursewareConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
