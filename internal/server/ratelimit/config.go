package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the bucket shape for one method and path.
// A Path ending in "/" is a prefix rule and covers every path below it.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per Window
	Window time.Duration
	Burst  int // defaults to Limit when 0
}

// Tier is a shared limit applied to a group of endpoints.
type Tier struct {
	Limit  int
	Window time.Duration
	Burst  int
}

// Default tiers. Reads fall through to Config.DefaultLimit.
var (
	// MatchTier covers requests that score the whole corpus.
	MatchTier = Tier{Limit: 30, Window: time.Minute, Burst: 5}
	// WriteTier covers posting creation, updates, and deletion.
	WriteTier = Tier{Limit: 100, Window: time.Minute, Burst: 10}
)

// LoadConfig reads RATE_LIMIT_* variables. Unset or unparsable values keep their defaults.
//
//	RATE_LIMIT_ENABLED            true
//	RATE_LIMIT_DEFAULT_LIMIT      1000 (per RATE_LIMIT_DEFAULT_WINDOW, 1m)
//	RATE_LIMIT_CLEANUP_INTERVAL   5m
//	RATE_LIMIT_MATCH_LIMIT/_WINDOW/_BURST   match tier
//	RATE_LIMIT_WRITE_LIMIT/_WINDOW/_BURST   write tier
//	RATE_LIMIT_WHITELIST, RATE_LIMIT_BLACKLIST   comma-separated client IPs
func LoadConfig() *Config {
	if !envOr("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envOr("RATE_LIMIT_DEFAULT_LIMIT", 1000, strconv.Atoi),
		DefaultWindow:   envOr("RATE_LIMIT_DEFAULT_WINDOW", time.Minute, time.ParseDuration),
		CleanupInterval: envOr("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute, time.ParseDuration),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: EndpointConfigsFor(
			tierFromEnv("RATE_LIMIT_MATCH", MatchTier),
			tierFromEnv("RATE_LIMIT_WRITE", WriteTier),
		),
	}
}

// DefaultEndpointConfigs returns the endpoint rules for the default tiers.
func DefaultEndpointConfigs() []EndpointConfig {
	return EndpointConfigsFor(MatchTier, WriteTier)
}

// EndpointConfigsFor lays out the API's endpoint rules for the given tiers.
// MCP calls run the same ranking as /jobs/ai-match, so they get twice its budget
// to leave room for protocol chatter (initialize, tools/list).
func EndpointConfigsFor(match, write Tier) []EndpointConfig {
	mcp := Tier{Limit: match.Limit * 2, Window: match.Window, Burst: match.Burst * 2}
	return []EndpointConfig{
		match.endpoint("POST", "/jobs/ai-match"),
		mcp.endpoint("POST", "/mcp"),
		write.endpoint("POST", "/job-postings"),
		write.endpoint("PUT", "/job-postings/"),
		write.endpoint("DELETE", "/job-postings/"),
	}
}

func (t Tier) endpoint(method, path string) EndpointConfig {
	return EndpointConfig{Path: path, Method: method, Limit: t.Limit, Window: t.Window, Burst: t.Burst}
}

func tierFromEnv(prefix string, def Tier) Tier {
	return Tier{
		Limit:  envOr(prefix+"_LIMIT", def.Limit, strconv.Atoi),
		Window: envOr(prefix+"_WINDOW", def.Window, time.ParseDuration),
		Burst:  envOr(prefix+"_BURST", def.Burst, strconv.Atoi),
	}
}

// envOr parses the variable key, returning def when it is unset or invalid.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
