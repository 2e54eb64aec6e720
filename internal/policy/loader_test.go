package policy

import (
	"strings"
	"testing"
)

func TestLoadBytes_Valid(t *testing.T) {
	yaml := `
version: 1
settings:
  audit_backend: redis
  redis:
    addr: localhost:6379
  rate_limit:
    max: 10
    window: 30s
rules:
  - name: airdrop
    contains: ["free airdrop"]
  - name: drainer
    regex: '(?i)connect\s+your\s+wallet'
`
	pf, err := LoadBytes([]byte(yaml))
	if err != nil {
		t.Fatal(err)
	}
	if len(pf.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(pf.Rules))
	}
	if pf.Settings.Redis.Addr != "localhost:6379" {
		t.Errorf("expected redis addr localhost:6379, got %s", pf.Settings.Redis.Addr)
	}
}

func TestLoadFile_Example(t *testing.T) {
	pf, err := LoadFile("../../testdata/policies/example.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if pf.Settings.OPAPolicy != "example.rego" {
		t.Errorf("expected opa_policy example.rego, got %q", pf.Settings.OPAPolicy)
	}
}

func TestLoadBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"version", "version: 2\n", "unsupported policy version"},
		{"backend", "version: 1\nsettings:\n  audit_backend: kafka\n", "invalid audit_backend"},
		{"redis without addr", "version: 1\nsettings:\n  audit_backend: redis\n", "requires redis.addr"},
		{"rate window", "version: 1\nsettings:\n  rate_limit: {max: 1, window: soon}\n", "invalid rate_limit.window"},
		{"rate max", "version: 1\nsettings:\n  rate_limit: {max: 0, window: 1m}\n", "rate_limit.max"},
		{"no name", "version: 1\nrules:\n  - contains: [x]\n", "name is required"},
		{"builtin name", "version: 1\nrules:\n  - name: tco_link\n    contains: [x]\n", "reserved"},
		{"duplicate", "version: 1\nrules:\n  - name: a\n    contains: [x]\n  - name: a\n    contains: [y]\n", "duplicate"},
		{"both", "version: 1\nrules:\n  - name: a\n    contains: [x]\n    regex: y\n", "exactly one"},
		{"neither", "version: 1\nrules:\n  - name: a\n", "exactly one"},
		{"empty phrase", "version: 1\nrules:\n  - name: a\n    contains: [\"\"]\n", "must not be empty"},
		{"bad regex", "version: 1\nrules:\n  - name: a\n    regex: '('\n", "regex invalid"},
		{"bad yaml", "version: [", "parsing policy YAML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
