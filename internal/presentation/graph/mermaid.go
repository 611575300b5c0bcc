package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/utm/pkg/domain"
)

// GraphOverlay contains run state to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []domain.State
	CurrentState  domain.State
}

// GenerateMermaid produces a Mermaid stateDiagram-v2 of the searchable rules.
// Each rule becomes one edge labelled "read/write,move". The initial state is
// entered from [*] and terminal states that can be reached exit to [*].
// Overlay styles (visited/current) are applied if overlay is provided.
func GenerateMermaid(desc *domain.MachineDescription, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")

	states := desc.Rules.States()
	if !contains(states, desc.Config.InitialState) {
		states = append([]domain.State{desc.Config.InitialState}, states...)
	}
	for _, s := range states {
		if id := sanitizeMermaidID(s); id != string(s) {
			fmt.Fprintf(&sb, "    state \"%s\" as %s\n", escapeLabel(string(s)), id)
		}
	}

	fmt.Fprintf(&sb, "    [*] --> %s\n", sanitizeMermaidID(desc.Config.InitialState))
	for _, r := range desc.Rules.Rules() {
		fmt.Fprintf(&sb, "    %s --> %s : %s\n", sanitizeMermaidID(r.From), sanitizeMermaidID(r.To), edgeLabel(r))
	}
	for _, s := range []domain.State{desc.Config.AcceptState, desc.Config.RejectState} {
		if contains(states, s) {
			fmt.Fprintf(&sb, "    %s --> [*]\n", sanitizeMermaidID(s))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[string]bool)
		current := sanitizeMermaidID(overlay.CurrentState)
		for _, s := range overlay.VisitedStates {
			id := sanitizeMermaidID(s)
			if id == "" || visited[id] || id == current {
				continue
			}
			visited[id] = true
			fmt.Fprintf(&sb, "    class %s visited\n", id)
		}
		if current != "" {
			fmt.Fprintf(&sb, "    class %s current\n", current)
		}
	}

	return sb.String()
}

func edgeLabel(r domain.Rule) string {
	return fmt.Sprintf("%s/%s,%s", escapeLabel(r.Read.String()), escapeLabel(r.Write.String()), moveLabel(r.Move))
}

func moveLabel(d domain.Direction) string {
	switch d {
	case domain.Left:
		return "L"
	case domain.Right:
		return "R"
	default:
		return d.String()
	}
}

// escapeLabel replaces characters that end or corrupt a Mermaid label with entity codes.
func escapeLabel(s string) string {
	r := strings.NewReplacer(
		"#", "#35;",
		":", "#58;",
		";", "#59;",
		"\"", "#quot;",
	)
	return r.Replace(s)
}

func sanitizeMermaidID(s domain.State) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_", ":", "_")
	return r.Replace(string(s))
}

func contains(states []domain.State, s domain.State) bool {
	for _, x := range states {
		if x == s {
			return true
		}
	}
	return false
}
