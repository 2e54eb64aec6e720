package policy

import (
	"context"
	"testing"
)

const testRegoPolicy = `package postfilter

import rego.v1

default reject := false

reject if {
	contains(lower(input.text), "presale")
}

reject if {
	count(split(input.text, "!")) > 4
}

message := "presale promotion" if {
	contains(lower(input.text), "presale")
}

rule_name := "presale" if {
	contains(lower(input.text), "presale")
}
`

func TestOPARule_Reject(t *testing.T) {
	rule, err := NewOPARuleFromSource(testRegoPolicy)
	if err != nil {
		t.Fatal(err)
	}

	res, err := rule.Evaluate(context.Background(), "Presale opens tomorrow for everyone")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Reject {
		t.Error("expected reject")
	}
	if res.Message != "presale promotion" {
		t.Errorf("expected message presale promotion, got %q", res.Message)
	}
	if res.Rule != "presale" {
		t.Errorf("expected rule presale, got %q", res.Rule)
	}
	if !rule.Match("wow!!!! amazing") {
		t.Error("expected exclamation rule to reject")
	}
}

func TestOPARule_Explain(t *testing.T) {
	rule, err := NewOPARuleFromSource(testRegoPolicy)
	if err != nil {
		t.Fatal(err)
	}

	name, msg := rule.Explain("Presale opens tomorrow for everyone")
	if name != "presale" || msg != "presale promotion" {
		t.Errorf("expected presale/presale promotion, got %q/%q", name, msg)
	}

	// No rule_name or message for the exclamation rule.
	name, msg = rule.Explain("wow!!!! amazing")
	if name != OPARuleName || msg != "" {
		t.Errorf("expected %s with empty message, got %q/%q", OPARuleName, name, msg)
	}
}

func TestOPARule_Accept(t *testing.T) {
	rule, err := NewOPARuleFromSource(testRegoPolicy)
	if err != nil {
		t.Fatal(err)
	}

	res, err := rule.Evaluate(context.Background(), "Quarterly report is out")
	if err != nil {
		t.Fatal(err)
	}
	if res.Reject {
		t.Error("expected no reject")
	}
	if rule.Match("Quarterly report is out") {
		t.Error("expected Match to be false")
	}
}

func TestOPARule_UndefinedReject(t *testing.T) {
	rule, err := NewOPARuleFromSource("package postfilter\n\nimport rego.v1\n\nother := true\n")
	if err != nil {
		t.Fatal(err)
	}
	if rule.Match("anything at all") {
		t.Error("expected undefined reject to accept")
	}
}

func TestOPARule_NonBooleanRejects(t *testing.T) {
	rule, err := NewOPARuleFromSource("package postfilter\n\nimport rego.v1\n\nreject := \"yes\"\n")
	if err != nil {
		t.Fatal(err)
	}
	if !rule.Match("anything at all") {
		t.Error("expected non-boolean reject to fail closed")
	}
}

func TestOPARule_InvalidRego(t *testing.T) {
	if _, err := NewOPARuleFromSource("this is not valid rego {{{"); err == nil {
		t.Fatal("expected error for invalid Rego")
	}
}

func TestOPARule_FromFile(t *testing.T) {
	rule, err := NewOPARule("../../testdata/policies/example.rego")
	if err != nil {
		t.Fatal(err)
	}
	if !rule.Match("a 100x gem is hiding here") {
		t.Error("expected example policy to reject")
	}
	if rule.Name() != OPARuleName {
		t.Errorf("expected name %s, got %s", OPARuleName, rule.Name())
	}
}
