package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/utm/pkg/adapters/memory"
	"github.com/aretw0/utm/pkg/domain"
)

// Builder manages the construction of one machine.
type Builder struct {
	name      string
	variant   domain.Variant
	cfg       domain.MachineConfig
	ruleCount int
	rules     []*RuleBuilder
}

// New creates a builder for a Classical machine starting in q0 with the
// conventional terminal states and blank.
func New(name string) *Builder {
	return &Builder{
		name:    name,
		variant: domain.Classical,
		cfg:     domain.NewMachineConfig(0, "q0"),
	}
}

// Variant sets the machine family.
func (b *Builder) Variant(v domain.Variant) *Builder {
	b.variant = v
	return b
}

// Initial sets the initial state.
func (b *Builder) Initial(s domain.State) *Builder {
	b.cfg.InitialState = s
	return b
}

// Accept sets the accepting terminal state.
func (b *Builder) Accept(s domain.State) *Builder {
	b.cfg.AcceptState = s
	return b
}

// Reject sets the rejecting terminal state.
func (b *Builder) Reject(s domain.State) *Builder {
	b.cfg.RejectState = s
	return b
}

// Blank sets the symbol of never-written cells.
func (b *Builder) Blank(sym domain.Symbol) *Builder {
	b.cfg.Blank = sym
	return b
}

// RuleCount limits lookups to the first n rules. Zero means all declared rules.
func (b *Builder) RuleCount(n int) *Builder {
	b.ruleCount = n
	return b
}

// On starts a rule fired in state s when the head reads sym.
func (b *Builder) On(s domain.State, sym domain.Symbol) *RuleBuilder {
	rb := &RuleBuilder{
		builder: b,
		rule:    domain.Rule{From: s, Read: sym, Write: sym, Move: domain.Right},
	}
	b.rules = append(b.rules, rb)
	return rb
}

// Build resolves the description. Incomplete rules, duplicate (state, symbol)
// pairs and invalid configs are reported together.
func (b *Builder) Build() (*domain.MachineDescription, error) {
	var errs []error
	rules := make([]domain.Rule, 0, len(b.rules))
	for i, rb := range b.rules {
		if rb.rule.To == "" {
			errs = append(errs, &domain.MalformedRuleTableError{
				Rule:   i,
				Reason: fmt.Sprintf("rule for (%s, %q) has no target state", rb.rule.From, rune(rb.rule.Read)),
			})
		}
		rules = append(rules, rb.rule)
	}

	count := len(rules)
	if b.ruleCount > 0 && b.ruleCount < count {
		count = b.ruleCount
	}
	table := domain.NewRuleTable(count, rules...)
	for _, d := range table.Duplicates() {
		errs = append(errs, &domain.MalformedRuleTableError{
			Rule:   d.Indexes[1],
			Reason: fmt.Sprintf("duplicate transition for (%s, %q)", d.State, rune(d.Symbol)),
		})
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("machine %q: %w", b.name, errors.Join(errs...))
	}

	cfg := b.cfg
	cfg.RuleCount = table.Count()
	desc := &domain.MachineDescription{
		Name:    b.name,
		Variant: b.variant,
		Config:  cfg,
		Rules:   table,
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *domain.MachineDescription {
	desc, err := b.Build()
	if err != nil {
		panic(err)
	}
	return desc
}

// Loader builds every machine into an in-memory MachineLoader.
func Loader(builders ...*Builder) (*memory.Loader, error) {
	descs := make([]*domain.MachineDescription, 0, len(builders))
	for _, b := range builders {
		desc, err := b.Build()
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}
	loader, err := memory.NewFromDescriptions(descs...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
