package filter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/tkingovr/postfilter/api"
	"github.com/tkingovr/postfilter/internal/audit"
	"github.com/tkingovr/postfilter/internal/policy"
	"github.com/tkingovr/postfilter/relevance"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChain_RelevantAndRejected(t *testing.T) {
	chain := NewChain(newTestLogger(), NewRelevanceFilter(relevance.DefaultRules()))

	fc := NewFilterContext("Great news! Big launch soon.", "test")
	if err := chain.Process(context.Background(), fc); err != nil {
		t.Fatal(err)
	}
	if fc.Verdict != api.VerdictRelevant {
		t.Errorf("expected relevant, got %s", fc.Verdict)
	}
	if fc.Halted {
		t.Error("expected not halted for relevant text")
	}

	fc = NewFilterContext("Join our group t.me/examplegroup now", "test")
	if err := chain.Process(context.Background(), fc); err != nil {
		t.Fatal(err)
	}
	if fc.Verdict != api.VerdictRejected {
		t.Errorf("expected rejected, got %s", fc.Verdict)
	}
	if fc.MatchedRule != relevance.RuleTelegramLink {
		t.Errorf("expected rule %s, got %s", relevance.RuleTelegramLink, fc.MatchedRule)
	}
	if !fc.Halted {
		t.Error("expected halted for rejected text")
	}
}

func TestChain_Check(t *testing.T) {
	chain := BuildChain(ChainConfig{Rules: relevance.DefaultRules(), Logger: newTestLogger()})

	d, err := chain.Check(context.Background(), "ok", "cli")
	if err != nil {
		t.Fatal(err)
	}
	if d.Relevant() {
		t.Error("expected short text to be rejected")
	}
	if d.Rule != relevance.RuleShortText {
		t.Errorf("expected rule %s, got %s", relevance.RuleShortText, d.Rule)
	}
}

func TestChain_PatternRuleMessage(t *testing.T) {
	p, err := policy.NewPatternRule(policy.Rule{Name: "airdrop", Contains: []string{"airdrop"}, Message: "airdrop promotion"})
	if err != nil {
		t.Fatal(err)
	}
	chain := BuildChain(ChainConfig{Rules: relevance.DefaultRules().With(p), Logger: newTestLogger()})

	d, err := chain.Check(context.Background(), "huge airdrop for holders today", "cli")
	if err != nil {
		t.Fatal(err)
	}
	if d.Rule != "airdrop" || d.Message != "airdrop promotion" {
		t.Errorf("unexpected decision %+v", d)
	}
}

func TestChain_OPAExplanation(t *testing.T) {
	opa, err := policy.NewOPARuleFromSource(`package postfilter

import rego.v1

reject if contains(lower(input.text), "presale")

message := "presale promotion" if reject

rule_name := "presale_hype" if reject
`)
	if err != nil {
		t.Fatal(err)
	}
	chain := BuildChain(ChainConfig{Rules: relevance.DefaultRules().With(opa), Logger: newTestLogger()})

	d, err := chain.Check(context.Background(), "the presale opens tomorrow morning", "cli")
	if err != nil {
		t.Fatal(err)
	}
	if d.Relevant() {
		t.Fatal("expected presale text to be rejected")
	}
	if d.Rule != "presale_hype" {
		t.Errorf("expected rule presale_hype, got %s", d.Rule)
	}
	if d.Message != "presale promotion" {
		t.Errorf("expected message presale promotion, got %q", d.Message)
	}
}

func TestChain_Audit(t *testing.T) {
	store, err := audit.NewJSONLStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	chain := BuildChain(ChainConfig{
		Rules:      relevance.DefaultRules(),
		AuditStore: store,
		Logger:     newTestLogger(),
	})

	ctx := context.Background()
	for _, text := range []string{"Great news! Big launch soon.", "\U0001F680 to the moon"} {
		if _, err := chain.Check(ctx, text, "feed"); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 || stats.Rejected != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.ByRule[relevance.RuleRocketEmoji] != 1 {
		t.Errorf("expected rocket rejection to be recorded, got %v", stats.ByRule)
	}
}

type failingFilter struct{}

func (failingFilter) Name() string { return "failing" }
func (failingFilter) Process(context.Context, *FilterContext) error {
	return errors.New("boom")
}

func TestChain_Error(t *testing.T) {
	chain := NewChain(newTestLogger(), failingFilter{})
	_, err := chain.Check(context.Background(), "anything goes here", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `filter "failing"`) {
		t.Errorf("expected filter name in error, got %v", err)
	}
}

func TestFilterContext_ToRecord(t *testing.T) {
	long := strings.Repeat("é", 300)
	fc := NewFilterContext(long, "api")
	fc.Verdict = api.VerdictRelevant

	record := fc.ToRecord()
	if record.Source != "api" {
		t.Errorf("expected source api, got %s", record.Source)
	}
	if record.TextSize != len(long) {
		t.Errorf("expected text size %d, got %d", len(long), record.TextSize)
	}
	if got := len([]rune(record.Text)); got != maxRecordedRunes+3 {
		t.Errorf("expected %d runes after truncation, got %d", maxRecordedRunes+3, got)
	}
}
