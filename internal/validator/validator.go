// Package validator performs static checks over machine descriptions.
package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/utm/pkg/domain"
)

// Severity grades an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding. Rule is -1 when the finding is not tied to a rule.
type Issue struct {
	Severity Severity     `json:"severity"`
	Rule     int          `json:"rule"`
	State    domain.State `json:"state,omitempty"`
	Message  string       `json:"message"`
}

func (i Issue) String() string {
	if i.Rule >= 0 {
		return fmt.Sprintf("%s: rule %d: %s", i.Severity, i.Rule, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Severity, i.Message)
}

// AggregateError collects every error-level issue of a description.
type AggregateError struct {
	Machine string
	Issues  []Issue
}

func (e *AggregateError) Error() string {
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = issue.String()
	}
	return fmt.Sprintf("machine %q: found %d errors:\n- %s", e.Machine, len(e.Issues), strings.Join(lines, "\n- "))
}

// Report is the full result of a validation.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Errors returns the error-level issues.
func (r Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-level issues.
func (r Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

func (r *Report) add(s Severity, rule int, state domain.State, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: s, Rule: rule, State: state, Message: fmt.Sprintf(format, args...)})
}

// ValidateMachine checks a description for determinism, reachability and latent
// undefined transitions. The error is an *AggregateError when any error-level
// issue was found; warnings never fail validation.
func ValidateMachine(desc *domain.MachineDescription) (Report, error) {
	var report Report
	if err := desc.Validate(); err != nil {
		return report, err
	}
	cfg := desc.Config
	rules := desc.Rules.Rules()

	for _, d := range desc.Rules.Duplicates() {
		report.add(SeverityError, d.Indexes[1], d.State, "duplicate transition for (%s, %q), first defined by rule %d", d.State, rune(d.Symbol), d.Indexes[0])
	}

	outgoing := make(map[domain.State][]int)
	for i, r := range rules {
		outgoing[r.From] = append(outgoing[r.From], i)
	}

	if len(outgoing[cfg.InitialState]) == 0 {
		report.add(SeverityError, -1, cfg.InitialState, "initial state %s has no rules; the first step is always undefined", cfg.InitialState)
	}

	for i, r := range rules {
		if cfg.IsTerminal(r.From) && r.From != cfg.InitialState {
			report.add(SeverityWarning, i, r.From, "rule leaves terminal state %s and can never fire", r.From)
		}
	}

	reachable := reach(cfg, rules, outgoing)
	for i, r := range rules {
		if !reachable[r.From] {
			report.add(SeverityWarning, i, r.From, "state %s is unreachable from %s", r.From, cfg.InitialState)
		}
	}

	var dangling []domain.State
	for s := range reachable {
		if !cfg.IsTerminal(s) && len(outgoing[s]) == 0 && s != cfg.InitialState {
			dangling = append(dangling, s)
		}
	}
	slices.Sort(dangling)
	for _, s := range dangling {
		report.add(SeverityWarning, -1, s, "state %s has no rules; entering it faults with an undefined transition", s)
	}

	if !reachable[cfg.AcceptState] && !reachable[cfg.RejectState] {
		report.add(SeverityWarning, -1, "", "no terminal state is reachable; the machine can never halt")
	}

	if extra := desc.Rules.Len() - desc.Rules.Count(); extra > 0 {
		report.add(SeverityWarning, -1, "", "%d rules beyond rule count %d are never searched", extra, desc.Rules.Count())
	}

	if errs := report.Errors(); len(errs) > 0 {
		return report, &AggregateError{Machine: desc.Name, Issues: errs}
	}
	return report, nil
}

// reach walks the state graph breadth-first from the initial state.
// Terminal states are recorded but not expanded, except the initial state itself.
func reach(cfg domain.MachineConfig, rules []domain.Rule, outgoing map[domain.State][]int) map[domain.State]bool {
	visited := map[domain.State]bool{cfg.InitialState: true}
	queue := []domain.State{cfg.InitialState}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if cfg.IsTerminal(current) && current != cfg.InitialState {
			continue
		}
		for _, i := range outgoing[current] {
			target := rules[i].To
			if !visited[target] {
				visited[target] = true
				queue = append(queue, target)
			}
		}
	}
	return visited
}
