package policy

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/tkingovr/postfilter/relevance"
	"gopkg.in/yaml.v3"
)

// LoadFile reads and validates a YAML policy file.
func LoadFile(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates YAML policy data.
func LoadBytes(data []byte) (*PolicyFile, error) {
	var pf PolicyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing policy YAML: %w", err)
	}
	if err := validate(&pf); err != nil {
		return nil, err
	}
	return &pf, nil
}

func validate(pf *PolicyFile) error {
	if pf.Version != 1 {
		return fmt.Errorf("unsupported policy version: %d (expected 1)", pf.Version)
	}

	switch pf.Settings.AuditBackend {
	case "", BackendJSONL:
	case BackendRedis:
		if pf.Settings.Redis == nil || pf.Settings.Redis.Addr == "" {
			return fmt.Errorf("audit_backend %q requires redis.addr", BackendRedis)
		}
	default:
		return fmt.Errorf("invalid audit_backend %q", pf.Settings.AuditBackend)
	}

	if rl := pf.Settings.RateLimit; rl != nil {
		if rl.Max <= 0 {
			return fmt.Errorf("rate_limit.max must be positive, got %d", rl.Max)
		}
		if _, err := time.ParseDuration(rl.Window); err != nil {
			return fmt.Errorf("invalid rate_limit.window %q: %w", rl.Window, err)
		}
	}

	seen := make(map[string]bool, len(pf.Rules))
	for i, rule := range pf.Rules {
		if rule.Name == "" {
			return fmt.Errorf("rule %d: name is required", i)
		}
		if relevance.IsBuiltin(rule.Name) {
			return fmt.Errorf("rule %q: name is reserved by a built-in rule", rule.Name)
		}
		if seen[rule.Name] {
			return fmt.Errorf("rule %q: duplicate name", rule.Name)
		}
		seen[rule.Name] = true

		hasContains := len(rule.Contains) > 0
		hasRegex := rule.Regex != ""
		if hasContains == hasRegex {
			return fmt.Errorf("rule %q: exactly one of contains or regex is required", rule.Name)
		}
		for _, s := range rule.Contains {
			if s == "" {
				return fmt.Errorf("rule %q: contains entries must not be empty", rule.Name)
			}
		}
		if hasRegex {
			if _, err := regexp.Compile(rule.Regex); err != nil {
				return fmt.Errorf("rule %q: regex invalid: %w", rule.Name, err)
			}
		}
	}

	return nil
}
