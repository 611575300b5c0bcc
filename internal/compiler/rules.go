package compiler

import (
	"fmt"
	"strings"

	"github.com/aretw0/utm/pkg/domain"
)

// TokensPerRule is the arity of a flat rule: from, read, to, write, move.
const TokensPerRule = 5

// Warning is a non-fatal finding produced while compiling rules.
type Warning struct {
	Rule    int    `json:"rule"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("rule %d: %s", w.Rule, w.Message)
}

// Report collects warnings from a compilation.
type Report struct {
	Warnings []Warning `json:"warnings,omitempty"`
}

func (r *Report) warn(rule int, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Rule: rule, Message: fmt.Sprintf(format, args...)})
}

// Options controls rule compilation.
type Options struct {
	// RuleCount is the searchable prefix length. Zero means every parsed rule.
	RuleCount int
	// Strict rejects unknown direction tokens instead of falling back to Reset.
	Strict bool
}

// Option configures compilation.
type Option func(*Options)

// WithRuleCount limits lookups to the first n rules.
func WithRuleCount(n int) Option {
	return func(o *Options) {
		o.RuleCount = n
	}
}

// WithStrict toggles strict direction parsing.
func WithStrict(strict bool) Option {
	return func(o *Options) {
		o.Strict = strict
	}
}

func newOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RawRule is a rule whose fields are still tokens.
type RawRule struct {
	From  string `mapstructure:"from" json:"from" yaml:"from"`
	Read  string `mapstructure:"read" json:"read" yaml:"read"`
	To    string `mapstructure:"to" json:"to" yaml:"to"`
	Write string `mapstructure:"write" json:"write" yaml:"write"`
	Move  string `mapstructure:"move" json:"move" yaml:"move"`
}

// Tokenize splits a flat rule description on "," and "<>".
// Tokens are trimmed and trailing empty tokens are dropped.
func Tokenize(text string) []string {
	text = strings.ReplaceAll(text, "<>", ",")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// SplitRules groups flat tokens into raw rules.
func SplitRules(tokens []string) ([]RawRule, error) {
	if len(tokens)%TokensPerRule != 0 {
		return nil, &domain.MalformedRuleTableError{
			Rule:   len(tokens) / TokensPerRule,
			Reason: fmt.Sprintf("%d tokens is not a multiple of %d", len(tokens), TokensPerRule),
		}
	}
	out := make([]RawRule, 0, len(tokens)/TokensPerRule)
	for i := 0; i < len(tokens); i += TokensPerRule {
		out = append(out, RawRule{
			From:  tokens[i],
			Read:  tokens[i+1],
			To:    tokens[i+2],
			Write: tokens[i+3],
			Move:  tokens[i+4],
		})
	}
	return out, nil
}

// ParseRules compiles a flat rule description into a rule table.
func ParseRules(text string, opts ...Option) (*domain.RuleTable, Report, error) {
	raw, err := SplitRules(Tokenize(text))
	if err != nil {
		return nil, Report{}, err
	}
	return CompileRules(raw, opts...)
}

// CompileRules resolves raw rules into a deterministic rule table.
func CompileRules(raw []RawRule, opts ...Option) (*domain.RuleTable, Report, error) {
	o := newOptions(opts)
	var report Report

	rules := make([]domain.Rule, 0, len(raw))
	for i, r := range raw {
		rule, err := compileRule(i, r, o, &report)
		if err != nil {
			return nil, report, err
		}
		rules = append(rules, rule)
	}

	count := len(rules)
	if o.RuleCount > 0 {
		if o.RuleCount > count {
			report.warn(-1, "rule count %d exceeds the %d rules defined", o.RuleCount, count)
		} else {
			count = o.RuleCount
		}
	}

	// Only the searchable prefix must be deterministic; trailing capacity is never looked up.
	table := domain.NewRuleTable(count, rules...)
	if dups := table.Duplicates(); len(dups) > 0 {
		d := dups[0]
		return nil, report, &domain.MalformedRuleTableError{
			Rule:   d.Indexes[1],
			Reason: fmt.Sprintf("duplicate transition for (%s, %q), first defined by rule %d", d.State, rune(d.Symbol), d.Indexes[0]),
		}
	}
	return table, report, nil
}

func compileRule(i int, r RawRule, o Options, report *Report) (domain.Rule, error) {
	malformed := func(reason string) error {
		return &domain.MalformedRuleTableError{Rule: i, Reason: reason}
	}

	from := strings.TrimSpace(r.From)
	to := strings.TrimSpace(r.To)
	readTok := strings.TrimSpace(r.Read)
	writeTok := strings.TrimSpace(r.Write)
	if from == "" {
		return domain.Rule{}, malformed("empty source state")
	}
	if to == "" {
		return domain.Rule{}, malformed("empty target state")
	}
	read, ok := domain.FirstSymbol(readTok)
	if !ok {
		return domain.Rule{}, malformed("empty read symbol")
	}
	write, ok := domain.FirstSymbol(writeTok)
	if !ok {
		return domain.Rule{}, malformed("empty write symbol")
	}
	if len([]rune(readTok)) > 1 {
		report.warn(i, "read symbol %q truncated to %q", readTok, rune(read))
	}
	if len([]rune(writeTok)) > 1 {
		report.warn(i, "write symbol %q truncated to %q", writeTok, rune(write))
	}

	move, known, err := domain.ParseDirection(r.Move, o.Strict)
	if err != nil {
		return domain.Rule{}, malformed(fmt.Sprintf("unknown direction %q", r.Move))
	}
	if !known {
		report.warn(i, "unknown direction %q treated as %s", r.Move, move)
	}

	return domain.Rule{
		From:  domain.State(from),
		Read:  read,
		To:    domain.State(to),
		Write: write,
		Move:  move,
	}, nil
}
