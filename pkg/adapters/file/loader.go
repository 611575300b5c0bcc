package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aretw0/utm/internal/compiler"
	"github.com/aretw0/utm/pkg/domain"
)

// Loader implements ports.MachineLoader over a directory of description files.
// The machine name is the file stem; supported extensions are those of compiler.FormatFromPath.
type Loader struct {
	Dir  string
	opts []compiler.Option
}

// NewLoader creates a loader for dir. Compiler options apply to every description.
func NewLoader(dir string, opts ...compiler.Option) *Loader {
	return &Loader{Dir: dir, opts: opts}
}

func (l *Loader) find(name string) (string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
		}
		return "", fmt.Errorf("failed to read machine directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := compiler.FormatFromPath(entry.Name()); !ok {
			continue
		}
		if compiler.Stem(entry.Name()) == name {
			return filepath.Join(l.Dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
}

// Load reads and compiles the description named name.
func (l *Loader) Load(name string) (*domain.MachineDescription, error) {
	desc, _, err := l.LoadWithReport(name)
	return desc, err
}

// LoadWithReport is Load plus the compiler warnings.
func (l *Loader) LoadWithReport(name string) (*domain.MachineDescription, compiler.Report, error) {
	path, err := l.find(name)
	if err != nil {
		return nil, compiler.Report{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, compiler.Report{}, fmt.Errorf("failed to read machine %s: %w", name, err)
	}
	desc, report, err := compiler.DecodeFile(path, data, l.opts...)
	if err != nil {
		return nil, report, err
	}
	// The file name wins over an embedded name so List and Load agree.
	desc.Name = name
	return desc, report, nil
}

// List returns the machine names found in the directory.
func (l *Loader) List() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read machine directory: %w", err)
	}
	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := compiler.FormatFromPath(entry.Name()); !ok {
			continue
		}
		name := compiler.Stem(entry.Name())
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
