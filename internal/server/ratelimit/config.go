package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig overrides the default limit for one endpoint.
type EndpointConfig struct {
	Path   string  // exact path, or a prefix when it ends with "/"
	Method string  // HTTP method (GET, POST, etc.)
	RPS    float64 // sustained requests per second; 0 means unlimited
	Burst  int     // burst capacity (defaults to ceil(RPS) if 0)
}

// Config controls the limiter.
type Config struct {
	Enabled         bool
	RPS             float64
	Burst           int
	IdleTTL         time.Duration // client limiters unused this long are evicted
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds a config where every client gets rps with burst on the analysis
// endpoints and four times that on reads. A non-positive rps disables limiting.
func NewConfig(rps float64, burst int) *Config {
	if rps <= 0 {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		RPS:             rps * 4,
		Burst:           burst * 4,
		IdleTTL:         10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(rps, burst),
	}
}

// DefaultEndpointConfigs returns the limits for the expensive endpoints.
func DefaultEndpointConfigs(rps float64, burst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/analyze", Method: "POST", RPS: rps, Burst: burst},
		{Path: "/analyze/stream", Method: "POST", RPS: rps, Burst: burst},
	}
}

// ApplyLists reads RATE_LIMIT_WHITELIST and RATE_LIMIT_BLACKLIST, comma-separated client IPs.
func (c *Config) ApplyLists(getenv func(string) string) {
	if c.Whitelist == nil {
		c.Whitelist = make(map[string]bool)
	}
	if c.Blacklist == nil {
		c.Blacklist = make(map[string]bool)
	}
	for ip := range parseIPList(getenv("RATE_LIMIT_WHITELIST")) {
		c.Whitelist[ip] = true
	}
	for ip := range parseIPList(getenv("RATE_LIMIT_BLACKLIST")) {
		c.Blacklist[ip] = true
	}
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}
