package domain

import "fmt"

// MachineDescription is a fully resolved machine: identity, variant and rule table.
type MachineDescription struct {
	Name    string
	Variant Variant
	Config  MachineConfig
	Rules   *RuleTable
}

// Validate checks that the description can be bound to an engine.
func (d *MachineDescription) Validate() error {
	if d == nil {
		return fmt.Errorf("nil machine description")
	}
	if !d.Variant.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownVariant, int(d.Variant))
	}
	if d.Rules == nil || d.Rules.Count() == 0 {
		return &MalformedRuleTableError{Rule: -1, Reason: "no rules"}
	}
	if err := d.Config.Validate(); err != nil {
		return fmt.Errorf("machine %q: %w", d.Name, err)
	}
	return nil
}
