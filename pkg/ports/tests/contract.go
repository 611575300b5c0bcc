package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/ports"
)

// MachineLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.MachineLoader.
// expected maps every machine name the loader holds to its variant.
func MachineLoaderContractTest(t *testing.T, loader ports.MachineLoader, expected map[string]domain.Variant) {
	t.Helper()

	// 1. Test Load (Success)
	t.Run("Load_Success", func(t *testing.T) {
		for name, variant := range expected {
			desc, err := loader.Load(name)
			if err != nil {
				t.Fatalf("unexpected error loading machine %s: %v", name, err)
			}
			if desc.Name != name {
				t.Errorf("name mismatch: got %q, want %q", desc.Name, name)
			}
			if desc.Variant != variant {
				t.Errorf("variant mismatch for %s: got %s, want %s", name, desc.Variant, variant)
			}
			if err := desc.Validate(); err != nil {
				t.Errorf("loaded machine %s is invalid: %v", name, err)
			}
		}
	})

	// 2. Test Load (NotFound)
	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load("non-existent-machine")
		if !errors.Is(err, domain.ErrMachineNotFound) {
			t.Errorf("expected ErrMachineNotFound, got %v", err)
		}
	})

	// 3. Test List
	t.Run("List", func(t *testing.T) {
		names, err := loader.List()
		if err != nil {
			t.Fatalf("unexpected error listing machines: %v", err)
		}

		if len(names) != len(expected) {
			t.Errorf("expected %d machines, got %d", len(expected), len(names))
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}

		for name := range expected {
			if !lookup[name] {
				t.Errorf("machine %s missing from list", name)
			}
		}
	})
}
