package domain

import (
	"fmt"
	"strings"
)

// State is an opaque machine state label.
type State string

// Symbol is a single tape cell value.
type Symbol rune

// String returns the symbol as a one-character string.
func (s Symbol) String() string {
	return string(rune(s))
}

// MarshalText implements encoding.TextMarshaler so symbols serialize as characters.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Only the first rune is kept.
func (s *Symbol) UnmarshalText(text []byte) error {
	r, ok := FirstSymbol(string(text))
	if !ok {
		return fmt.Errorf("empty symbol")
	}
	*s = r
	return nil
}

// FirstSymbol returns the first rune of token as a Symbol.
func FirstSymbol(token string) (Symbol, bool) {
	for _, r := range token {
		return Symbol(r), true
	}
	return 0, false
}

// Symbols converts a string into tape symbols.
func Symbols(s string) []Symbol {
	out := make([]Symbol, 0, len(s))
	for _, r := range s {
		out = append(out, Symbol(r))
	}
	return out
}

// Conventional labels and defaults.
const (
	DefaultAcceptState State  = "qa"
	DefaultRejectState State  = "qr"
	DefaultBlank       Symbol = '0'

	// DefaultRuleCount mirrors the fixed table size of the reference controller.
	DefaultRuleCount = 20
)

// Direction is the head directive carried by a rule.
type Direction int

const (
	Left Direction = iota
	Right
	// Reset rewinds the head to the tape origin. Only LeftReset machines honour it;
	// other variants treat it as Left.
	Reset
)

// Literal direction tags used by rule descriptions.
const (
	TagLeft  = "LEFT"
	TagRight = "RIGHT"
	TagReset = "RESET"
)

func (d Direction) String() string {
	switch d {
	case Left:
		return TagLeft
	case Right:
		return TagRight
	case Reset:
		return TagReset
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection maps a direction token to a Direction.
// In lenient mode any token other than LEFT, RIGHT or RESET falls back to Reset and ok is false,
// so callers can surface the fallback. In strict mode unknown tokens are an error.
func ParseDirection(token string, strict bool) (dir Direction, ok bool, err error) {
	switch strings.TrimSpace(token) {
	case TagLeft:
		return Left, true, nil
	case TagRight:
		return Right, true, nil
	case TagReset:
		return Reset, true, nil
	}
	if strict {
		return Reset, false, fmt.Errorf("%w: unknown direction %q", ErrMalformedRuleTable, token)
	}
	return Reset, false, nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler (strict).
func (d *Direction) UnmarshalText(text []byte) error {
	dir, _, err := ParseDirection(string(text), true)
	if err != nil {
		return err
	}
	*d = dir
	return nil
}

// Rule is one transition: reading Read in state From writes Write, applies Move
// and enters To.
type Rule struct {
	From  State     `json:"from" yaml:"from"`
	Read  Symbol    `json:"read" yaml:"read"`
	To    State     `json:"to" yaml:"to"`
	Write Symbol    `json:"write" yaml:"write"`
	Move  Direction `json:"move" yaml:"move"`
}

func (r Rule) String() string {
	return fmt.Sprintf("(%s,%c) -> (%s,%c,%s)", r.From, r.Read, r.To, r.Write, r.Move)
}

// HaltOutcome classifies a finished run.
type HaltOutcome int

const (
	Accepted HaltOutcome = iota + 1
	Rejected
)

func (o HaltOutcome) String() string {
	switch o {
	case Accepted:
		return "ACCEPTED"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o HaltOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *HaltOutcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ACCEPTED":
		*o = Accepted
	case "REJECTED":
		*o = Rejected
	case "", "UNKNOWN":
		*o = 0
	default:
		return fmt.Errorf("unknown halt outcome %q", text)
	}
	return nil
}

// MachineConfig is the immutable identity of a machine instance.
type MachineConfig struct {
	RuleCount    int    `json:"rule_count" yaml:"rule_count"`
	InitialState State  `json:"initial_state" yaml:"initial_state"`
	AcceptState  State  `json:"accept_state" yaml:"accept_state"`
	RejectState  State  `json:"reject_state" yaml:"reject_state"`
	Blank        Symbol `json:"blank" yaml:"blank"`
}

// NewMachineConfig builds a config with the conventional terminal labels and blank.
func NewMachineConfig(ruleCount int, initial State) MachineConfig {
	return MachineConfig{
		RuleCount:    ruleCount,
		InitialState: initial,
		AcceptState:  DefaultAcceptState,
		RejectState:  DefaultRejectState,
		Blank:        DefaultBlank,
	}
}

// Validate checks the structural invariants of the config.
func (c MachineConfig) Validate() error {
	switch {
	case c.RuleCount <= 0:
		return fmt.Errorf("rule count must be positive, got %d", c.RuleCount)
	case c.InitialState == "":
		return fmt.Errorf("initial state is required")
	case c.AcceptState == "":
		return fmt.Errorf("accept state is required")
	case c.RejectState == "":
		return fmt.Errorf("reject state is required")
	case c.AcceptState == c.RejectState:
		return fmt.Errorf("accept and reject states must differ (both %q)", c.AcceptState)
	}
	return nil
}

// IsTerminal reports whether s is the accept or reject state.
func (c MachineConfig) IsTerminal(s State) bool {
	return s == c.AcceptState || s == c.RejectState
}

// Classify maps a terminal state to its outcome.
func (c MachineConfig) Classify(s State) (HaltOutcome, bool) {
	switch s {
	case c.AcceptState:
		return Accepted, true
	case c.RejectState:
		return Rejected, true
	}
	return 0, false
}
