package domain

import (
	"fmt"
	"strings"
)

// Variant selects the machine family bound to the engine.
type Variant int

const (
	Classical Variant = iota + 1
	LeftReset
	BusyBeaver
)

// Selection tags, as used in machine descriptions.
const (
	TagClassical  = "CLASSICAL"
	TagLeftReset  = "LEFT_RESET"
	TagBusyBeaver = "BUSY_BEAVER"
)

// Variants lists every known variant in declaration order.
func Variants() []Variant {
	return []Variant{Classical, LeftReset, BusyBeaver}
}

func (v Variant) String() string {
	switch v {
	case Classical:
		return TagClassical
	case LeftReset:
		return TagLeftReset
	case BusyBeaver:
		return TagBusyBeaver
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant resolves a selection tag. Matching ignores case and surrounding space.
func ParseVariant(tag string) (Variant, error) {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case TagClassical:
		return Classical, nil
	case TagLeftReset:
		return LeftReset, nil
	case TagBusyBeaver:
		return BusyBeaver, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, tag)
}

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	return v >= Classical && v <= BusyBeaver
}

// MarshalText implements encoding.TextMarshaler. The zero Variant encodes as "".
func (v Variant) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return []byte{}, nil
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*v = 0
		return nil
	}
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
