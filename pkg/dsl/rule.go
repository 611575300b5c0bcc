package dsl

import "github.com/aretw0/utm/pkg/domain"

// RuleBuilder configures one transition. Unless told otherwise a rule writes
// back the symbol it read and moves right.
type RuleBuilder struct {
	rule    domain.Rule
	builder *Builder
}

// Write sets the symbol written before the head moves.
func (r *RuleBuilder) Write(sym domain.Symbol) *RuleBuilder {
	r.rule.Write = sym
	return r
}

// Move sets the head directive.
func (r *RuleBuilder) Move(dir domain.Direction) *RuleBuilder {
	r.rule.Move = dir
	return r
}

// Left moves the head one cell left (or rewinds it, on LEFT_RESET machines).
func (r *RuleBuilder) Left() *RuleBuilder {
	return r.Move(domain.Left)
}

// Right moves the head one cell right.
func (r *RuleBuilder) Right() *RuleBuilder {
	return r.Move(domain.Right)
}

// Reset rewinds the head to the origin on LEFT_RESET machines.
func (r *RuleBuilder) Reset() *RuleBuilder {
	return r.Move(domain.Reset)
}

// Go sets the target state and returns to the machine builder.
func (r *RuleBuilder) Go(target domain.State) *Builder {
	r.rule.To = target
	return r.builder
}

// Accept targets the accepting state.
func (r *RuleBuilder) Accept() *Builder {
	return r.Go(r.builder.cfg.AcceptState)
}

// Reject targets the rejecting state.
func (r *RuleBuilder) Reject() *Builder {
	return r.Go(r.builder.cfg.RejectState)
}

// Rule returns the transition as configured so far.
func (r *RuleBuilder) Rule() domain.Rule {
	return r.rule
}
