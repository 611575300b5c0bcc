package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/utm/internal/presentation/graph"
	"github.com/aretw0/utm/internal/runtime"
	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/dsl"
	"github.com/aretw0/utm/pkg/tape"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestGenerateMermaid_Golden(t *testing.T) {
	tests := []struct {
		name string
		desc *domain.MachineDescription
	}{
		{
			name: "flip",
			desc: dsl.New("flip").
				On("q0", '1').Write('0').Right().Go("q1").
				On("q1", '0').Write('1').Right().Accept().
				On("q1", '1').Left().Reject().
				MustBuild(),
		},
		{
			name: "escaped",
			desc: dsl.New("escaped").
				Initial("scan-right").
				On("scan-right", ':').Write('#').Accept().
				On("scan-right", '0').Reset().Go("go.back").
				MustBuild(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			golden(t).Assert(t, tt.name, []byte(graph.GenerateMermaid(tt.desc, nil)))
		})
	}
}

func TestGenerateMermaid_TraceOverlay(t *testing.T) {
	desc := dsl.New("bb2").
		Variant(domain.BusyBeaver).
		Initial("a").Accept("h").Reject("r").
		On("a", '0').Write('1').Right().Go("b").
		On("a", '1').Write('1').Left().Go("b").
		On("b", '0').Write('1').Left().Go("a").
		On("b", '1').Write('1').Right().Go("h").
		MustBuild()

	trace := graph.NewTrace()
	engine, err := runtime.NewEngine(desc.Config, desc.Rules, desc.Variant, runtime.WithLifecycleHooks(trace.Hooks()))
	require.NoError(t, err)
	engine.Bind(tape.New())
	require.NoError(t, engine.Prepare(nil))
	_, err = engine.Run(context.Background())
	require.NoError(t, err)

	overlay := trace.Overlay()
	assert.Equal(t, domain.State("h"), overlay.CurrentState)
	assert.Len(t, overlay.VisitedStates, 6)

	golden(t).Assert(t, "bb2_overlay", []byte(graph.GenerateMermaid(desc, overlay)))
}

func TestGenerateMermaid_InitialWithoutRules(t *testing.T) {
	desc := &domain.MachineDescription{
		Name:    "orphan",
		Variant: domain.Classical,
		Config:  domain.NewMachineConfig(1, "start"),
		Rules:   domain.NewRuleTable(1, domain.Rule{From: "q1", Read: '1', To: "qa", Write: '1', Move: domain.Right}),
	}
	out := graph.GenerateMermaid(desc, nil)
	assert.Contains(t, out, "[*] --> start\n")
	assert.True(t, strings.HasPrefix(out, "stateDiagram-v2\n"))
}

func TestGenerateMermaid_OverlayDeduplicates(t *testing.T) {
	desc := dsl.New("m").On("q0", '1').Go("q0").On("q0", '0').Accept().MustBuild()
	out := graph.GenerateMermaid(desc, &graph.GraphOverlay{
		VisitedStates: []domain.State{"q0", "q0", "q0"},
		CurrentState:  "qa",
	})
	assert.Equal(t, 1, strings.Count(out, "class q0 visited"))
	assert.Contains(t, out, "class qa current")
}
