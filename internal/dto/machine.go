// Package dto holds the wire shapes shared by the HTTP and MCP surfaces.
package dto

import "github.com/aretw0/utm/pkg/domain"

// MachineView is the serialisable form of a machine description.
type MachineView struct {
	Name    string               `json:"name"`
	Variant domain.Variant       `json:"variant"`
	Config  domain.MachineConfig `json:"config"`
	Rules   []domain.Rule        `json:"rules"`
	States  []domain.State       `json:"states"`
}

// FromDescription flattens desc. Only searchable rules are included.
func FromDescription(desc *domain.MachineDescription) MachineView {
	return MachineView{
		Name:    desc.Name,
		Variant: desc.Variant,
		Config:  desc.Config,
		Rules:   desc.Rules.Rules(),
		States:  desc.Rules.States(),
	}
}

// RunRequest asks a host to execute a machine.
type RunRequest struct {
	Machine string `json:"machine" mapstructure:"machine"`
	Input   string `json:"input" mapstructure:"input"`
	// MaxSteps overrides the host's step budget when positive.
	MaxSteps int `json:"max_steps,omitempty" mapstructure:"max_steps"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string            `json:"error"`
	Run   *domain.RunRecord `json:"run,omitempty"`
}
