package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/goliatone/go-authgate/middleware/gateware"
)

type AppConfig struct {
	Server     ServerConfig    `yaml:"server"`
	Validator  ValidatorConfig `yaml:"validator"`
	AuthScheme string          `yaml:"auth_scheme"`
	Exclusions []string        `yaml:"exclusions"`
	Routes     []GatewayRoute  `yaml:"routes"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type ValidatorConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// GatewayRoute binds a path prefix to its upstream and authorization policy.
type GatewayRoute struct {
	Prefix        string   `yaml:"prefix"`
	Method        string   `yaml:"method"`
	Upstream      string   `yaml:"upstream"`
	Bypass        bool     `yaml:"bypass"`
	RequiredRoles []string `yaml:"required_roles"`
}

// Rules converts the gateway routes into the filter's policy table input.
func (c *AppConfig) Rules() []gateware.RouteRule {
	rules := make([]gateware.RouteRule, 0, len(c.Routes))
	for _, r := range c.Routes {
		rules = append(rules, gateware.RouteRule{
			Method: r.Method,
			Prefix: r.Prefix,
			Policy: gateware.RoutePolicy{
				Bypass:        r.Bypass,
				RequiredRoles: r.RequiredRoles,
			},
		})
	}
	return rules
}

// UpstreamFor resolves the proxy target by longest matching prefix.
func (c *AppConfig) UpstreamFor(path string) (string, bool) {
	var (
		best    string
		bestLen = -1
	)

	for _, r := range c.Routes {
		if r.Upstream == "" || !strings.HasPrefix(path, r.Prefix) {
			continue
		}
		if len(r.Prefix) > bestLen {
			best = r.Upstream
			bestLen = len(r.Prefix)
		}
	}

	if bestLen < 0 {
		return "", false
	}
	return strings.TrimRight(best, "/"), true
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
		cfg.Server.Addr = ":8080"
	}
	if cfg.Validator.URL == "" {
		return nil, fmt.Errorf("validator.url is required")
	}
	if len(cfg.Routes) == 0 {
		return nil, fmt.Errorf("at least one route is required")
	}
	for i, r := range cfg.Routes {
		if r.Prefix == "" {
			return nil, fmt.Errorf("route at index %d has empty prefix", i)
		}
	}

	return &cfg, nil
}
