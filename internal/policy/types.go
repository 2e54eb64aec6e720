package policy

// PolicyFile represents the top-level YAML policy configuration.
type PolicyFile struct {
	Version  int      `yaml:"version" json:"version"`
	Settings Settings `yaml:"settings" json:"settings"`
	Rules    []Rule   `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// Settings contains global settings.
type Settings struct {
	LogDir       string             `yaml:"log_dir,omitempty" json:"log_dir,omitempty"`
	ListenAddr   string             `yaml:"listen_addr,omitempty" json:"listen_addr,omitempty"`
	AuditBackend string             `yaml:"audit_backend,omitempty" json:"audit_backend,omitempty"`
	Redis        *RedisSettings     `yaml:"redis,omitempty" json:"redis,omitempty"`
	OPAPolicy    string             `yaml:"opa_policy,omitempty" json:"opa_policy,omitempty"`
	RateLimit    *RateLimitSettings `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty"`
}

// RedisSettings configures the Redis decision log.
type RedisSettings struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password,omitempty" json:"-"`
	DB       int    `yaml:"db,omitempty" json:"db,omitempty"`
	Stream   string `yaml:"stream,omitempty" json:"stream,omitempty"`
}

// RateLimitSettings limits how many checks a single client may submit per window.
type RateLimitSettings struct {
	Max    int    `yaml:"max" json:"max"`
	Window string `yaml:"window" json:"window"`
}

// Rule is an extra rejection rule appended after the built-in rules.
// Exactly one of Contains or Regex must be set.
type Rule struct {
	Name     string   `yaml:"name" json:"name"`
	Contains []string `yaml:"contains,omitempty" json:"contains,omitempty"`
	Regex    string   `yaml:"regex,omitempty" json:"regex,omitempty"`
	Message  string   `yaml:"message,omitempty" json:"message,omitempty"`
}

// Audit backends.
const (
	BackendJSONL = "jsonl"
	BackendRedis = "redis"
)
