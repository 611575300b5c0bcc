package ports

import "github.com/aretw0/utm/pkg/domain"

// MachineLoader defines how hosts retrieve machine descriptions.
// This allows the description source (files, memory) to be decoupled.
type MachineLoader interface {
	// Load resolves a machine by name.
	// Returns domain.ErrMachineNotFound if no description exists for name.
	Load(name string) (*domain.MachineDescription, error)

	// List returns the names of all available machines in a deterministic order.
	List() ([]string, error)
}
