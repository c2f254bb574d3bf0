package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	authgate "github.com/goliatone/go-authgate"
)

type AppConfig struct {
	Server   ServerConfig     `yaml:"server"`
	Auth     authgate.Options `yaml:"auth"`
	Database DatabaseConfig   `yaml:"database"`
	Operator OperatorConfig   `yaml:"operator"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// OperatorConfig is the break-glass operator identity seeded into the
// fallback store. The password is stored pre-hashed; the plaintext never
// appears in configuration.
type OperatorConfig struct {
	Subject      string   `yaml:"subject"`
	PasswordHash string   `yaml:"password_hash"`
	Roles        []string `yaml:"roles"`
}

func (c OperatorConfig) Record() authgate.IdentityRecord {
	return authgate.IdentityRecord{
		Subject:      c.Subject,
		PasswordHash: c.PasswordHash,
		Roles:        c.Roles,
	}
}

// Load reads and parses the configuration file at the given path.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":9000"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:authgate.db?cache=shared&_pragma=foreign_keys(1)"
	}

	if err := cfg.Auth.Validate(); err != nil {
		return nil, fmt.Errorf("validating auth config: %w", err)
	}

	return &cfg, nil
}
