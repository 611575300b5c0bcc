package cli

import (
	"fmt"
	"os"

	"github.com/aretw0/utm/internal/compiler"
	"github.com/aretw0/utm/internal/validator"
	"github.com/aretw0/utm/pkg/adapters/file"
	"github.com/aretw0/utm/pkg/domain"
)

// LoadMachine resolves ref as a description file first, then as a machine name in dir.
func LoadMachine(dir, ref string, opts ...compiler.Option) (*domain.MachineDescription, compiler.Report, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, compiler.Report{}, fmt.Errorf("failed to read %s: %w", ref, err)
		}
		return compiler.DecodeFile(ref, data, opts...)
	}
	return file.NewLoader(dir, opts...).LoadWithReport(ref)
}

// Lint is the validate command: it compiles and statically checks a machine.
// Warnings from both passes are returned as text; errors abort.
func Lint(dir, ref string, strict bool) (*domain.MachineDescription, []string, error) {
	desc, report, err := LoadMachine(dir, ref, compiler.WithStrict(strict))
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	for _, w := range report.Warnings {
		warnings = append(warnings, "warning: "+w.String())
	}

	lint, err := validator.ValidateMachine(desc)
	for _, issue := range lint.Warnings() {
		warnings = append(warnings, issue.String())
	}
	return desc, warnings, err
}
