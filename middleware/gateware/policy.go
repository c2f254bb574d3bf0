package gateware

import (
	"strings"
)

// RoutePolicy is the per-route authorization decision input. Bypass wins
// over everything else; RequiredRoles is ignored when Bypass is set. A
// route with no policy gets the zero value: authentication required, no
// specific role.
type RoutePolicy struct {
	Bypass        bool     `yaml:"bypass" json:"bypass"`
	RequiredRoles []string `yaml:"required_roles" json:"required_roles"`
}

// PolicyResolver maps an incoming method+path to its RoutePolicy.
type PolicyResolver interface {
	Resolve(method, path string) RoutePolicy
}

// PolicyResolverFunc adapts a function into a PolicyResolver.
type PolicyResolverFunc func(method, path string) RoutePolicy

func (f PolicyResolverFunc) Resolve(method, path string) RoutePolicy {
	if f == nil {
		return RoutePolicy{}
	}
	return f(method, path)
}

// RouteRule binds a path prefix (and optional method) to a policy. Loaded
// at startup; hot-reload is out of scope.
type RouteRule struct {
	Method string      `yaml:"method" json:"method"` // empty matches every method
	Prefix string      `yaml:"prefix" json:"prefix"`
	Policy RoutePolicy `yaml:"policy" json:"policy"`
}

// RouteTable resolves policies by longest matching prefix, first rule wins
// on ties. It is immutable after construction and safe for concurrent use.
type RouteTable struct {
	rules []RouteRule
}

func NewRouteTable(rules []RouteRule) *RouteTable {
	return &RouteTable{rules: append([]RouteRule(nil), rules...)}
}

var _ PolicyResolver = (*RouteTable)(nil)

func (t *RouteTable) Resolve(method, path string) RoutePolicy {
	var (
		best    RoutePolicy
		bestLen = -1
	)

	for _, rule := range t.rules {
		if rule.Method != "" && !strings.EqualFold(rule.Method, method) {
			continue
		}
		if !strings.HasPrefix(path, rule.Prefix) {
			continue
		}
		if len(rule.Prefix) > bestLen {
			best = rule.Policy
			bestLen = len(rule.Prefix)
		}
	}

	if bestLen < 0 {
		return RoutePolicy{}
	}
	return best
}

// defaultExclusions always skip authentication: health checks, API
// documentation, and actuator/metrics endpoints.
var defaultExclusions = []string{
	"/healthz",
	"/health",
	"/actuator/",
	"/metrics",
}

// isExcluded checks the configured exclusion prefixes plus the
// API-documentation paths that are recognized by shape rather than prefix.
func isExcluded(path string, exclusions []string) bool {
	for _, prefix := range exclusions {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return isDocsRequest(path)
}

func isDocsRequest(path string) bool {
	return strings.Contains(path, "/v3/api-docs") ||
		strings.Contains(path, "/swagger-ui") ||
		strings.HasSuffix(path, "/api-docs") ||
		strings.Contains(path, "/api-docs/swagger-config")
}
