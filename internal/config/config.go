package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tkingovr/postfilter/internal/policy"
	"github.com/tkingovr/postfilter/relevance"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration for postfilter.
type Config struct {
	PolicyFile   *policy.PolicyFile
	PolicyPath   string
	LogDir       string
	ListenAddr   string
	AuditBackend string
	Redis        RedisConfig
	RateLimit    *RateLimit
}

// RedisConfig holds connection settings for the Redis decision log.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

// RateLimit caps checks per client per window.
type RateLimit struct {
	Max    int
	Window time.Duration
}

// Load reads a policy YAML file and produces a runtime Config.
func Load(path string) (*Config, error) {
	pf, err := policy.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return fromPolicy(pf, path)
}

// LoadBytes parses YAML data and produces a runtime Config.
func LoadBytes(data []byte) (*Config, error) {
	pf, err := policy.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return fromPolicy(pf, "")
}

func fromPolicy(pf *policy.PolicyFile, path string) (*Config, error) {
	cfg := &Config{
		PolicyFile:   pf,
		PolicyPath:   path,
		AuditBackend: pf.Settings.AuditBackend,
	}

	cfg.LogDir = pf.Settings.LogDir
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir()
	}
	cfg.LogDir = expandHome(cfg.LogDir)

	cfg.ListenAddr = pf.Settings.ListenAddr
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	if cfg.AuditBackend == "" {
		cfg.AuditBackend = policy.BackendJSONL
	}

	cfg.Redis.Stream = DefaultRedisStream
	if rs := pf.Settings.Redis; rs != nil {
		cfg.Redis.Addr = rs.Addr
		cfg.Redis.Password = rs.Password
		cfg.Redis.DB = rs.DB
		if rs.Stream != "" {
			cfg.Redis.Stream = rs.Stream
		}
	}

	if rl := pf.Settings.RateLimit; rl != nil {
		d, err := time.ParseDuration(rl.Window)
		if err != nil {
			return nil, fmt.Errorf("invalid rate_limit.window %q: %w", rl.Window, err)
		}
		cfg.RateLimit = &RateLimit{Max: rl.Max, Window: d}
	}

	return cfg, nil
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfig returns a config with defaults for when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		PolicyFile:   &policy.PolicyFile{Version: 1},
		LogDir:       expandHome(DefaultLogDir()),
		ListenAddr:   DefaultListenAddr,
		AuditBackend: policy.BackendJSONL,
		Redis:        RedisConfig{Stream: DefaultRedisStream},
	}
}

// Rules builds the active rule set: the built-in rules plus any rules
// declared in the policy file.
func (c *Config) Rules() (relevance.RuleSet, error) {
	baseDir := ""
	if c.PolicyPath != "" {
		baseDir = filepath.Dir(c.PolicyPath)
	}
	return policy.BuildRuleSet(c.PolicyFile, baseDir)
}

// redactedPassword replaces a configured Redis password in exported YAML.
const redactedPassword = "***"

// MarshalYAML serializes the policy for display/export. Secrets are
// redacted; the Config itself is left untouched.
func (c *Config) MarshalYAML() ([]byte, error) {
	if c.PolicyFile == nil {
		return yaml.Marshal(c.PolicyFile)
	}
	pf := *c.PolicyFile
	if rs := pf.Settings.Redis; rs != nil && rs.Password != "" {
		redis := *rs
		redis.Password = redactedPassword
		pf.Settings.Redis = &redis
	}
	return yaml.Marshal(&pf)
}
