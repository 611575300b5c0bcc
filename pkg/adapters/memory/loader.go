package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/utm/internal/compiler"
	"github.com/aretw0/utm/pkg/domain"
)

// Loader implements ports.MachineLoader using an in-memory map.
type Loader struct {
	mu       sync.RWMutex
	sources  map[string][]byte
	machines map[string]*domain.MachineDescription
}

// NewLoader creates a loader from raw YAML (or JSON) descriptions keyed by machine name.
// Sources are decoded on Load.
func NewLoader(data map[string]string) *Loader {
	sources := make(map[string][]byte, len(data))
	for k, v := range data {
		sources[k] = []byte(v)
	}
	return &Loader{
		sources:  sources,
		machines: make(map[string]*domain.MachineDescription),
	}
}

// NewFromDescriptions creates a loader from resolved descriptions.
func NewFromDescriptions(descs ...*domain.MachineDescription) (*Loader, error) {
	l := NewLoader(nil)
	for _, d := range descs {
		if err := l.Add(d); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add registers a resolved description, replacing any machine with the same name.
func (l *Loader) Add(desc *domain.MachineDescription) error {
	if desc == nil || desc.Name == "" {
		return fmt.Errorf("machine description missing name")
	}
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("invalid machine %s: %w", desc.Name, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sources, desc.Name)
	l.machines[desc.Name] = desc
	return nil
}

// Load returns the description registered under name.
func (l *Loader) Load(name string) (*domain.MachineDescription, error) {
	l.mu.RLock()
	desc, ok := l.machines[name]
	src, hasSource := l.sources[name]
	l.mu.RUnlock()

	if ok {
		return desc, nil
	}
	if !hasSource {
		return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
	}
	desc, _, err := compiler.Decode(name, compiler.FormatYAML, src)
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// List returns all machine names in lexical order.
func (l *Loader) List() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.sources)+len(l.machines))
	for k := range l.sources {
		names = append(names, k)
	}
	for k := range l.machines {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}
