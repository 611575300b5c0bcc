package domain_test

import (
	"testing"

	"github.com/aretw0/utm/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestRuleTable_Lookup(t *testing.T) {
	table := domain.NewRuleTable(2,
		domain.Rule{From: "q0", Read: '1', To: "q1", Write: '0', Move: domain.Right},
		domain.Rule{From: "q1", Read: '0', To: "qa", Write: '1', Move: domain.Right},
		domain.Rule{From: "q2", Read: '_', To: "qr", Write: '_', Move: domain.Left},
	)

	tests := []struct {
		name   string
		state  domain.State
		symbol domain.Symbol
		want   int
		found  bool
	}{
		{"First Rule", "q0", '1', 0, true},
		{"Second Rule", "q1", '0', 1, true},
		{"Wrong Symbol", "q0", '0', domain.NotFound, false},
		{"Unknown State", "q9", '1', domain.NotFound, false},
		{"Trailing Capacity Is Not Searched", "q2", '_', domain.NotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Lookup(tt.state, tt.symbol)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.found, ok)
		})
	}

	assert.Equal(t, 2, table.Count())
	assert.Equal(t, 3, table.Len())
	assert.Len(t, table.Rules(), 2)
}

func TestRuleTable_FirstMatchWins(t *testing.T) {
	table := domain.NewRuleTable(3,
		domain.Rule{From: "q0", Read: '1', To: "q1", Write: '0', Move: domain.Right},
		domain.Rule{From: "q0", Read: '1', To: "qr", Write: '1', Move: domain.Left},
		domain.Rule{From: "q1", Read: '1', To: "qa", Write: '1', Move: domain.Left},
	)

	idx, ok := table.Lookup("q0", '1')
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	dups := table.Duplicates()
	if assert.Len(t, dups, 1) {
		assert.Equal(t, domain.State("q0"), dups[0].State)
		assert.Equal(t, domain.Symbol('1'), dups[0].Symbol)
		assert.Equal(t, []int{0, 1}, dups[0].Indexes)
	}
}

func TestRuleTable_CountClamped(t *testing.T) {
	table := domain.NewRuleTable(domain.DefaultRuleCount,
		domain.Rule{From: "q0", Read: '1', To: "qa", Write: '1', Move: domain.Right},
	)
	assert.Equal(t, 1, table.Count())

	_, ok := table.Lookup("q0", '1')
	assert.True(t, ok)

	var empty *domain.RuleTable
	_, ok = empty.Lookup("q0", '1')
	assert.False(t, ok)
}

func TestRuleTable_States(t *testing.T) {
	table := domain.NewRuleTable(2,
		domain.Rule{From: "q0", Read: '1', To: "q1", Write: '0', Move: domain.Right},
		domain.Rule{From: "q1", Read: '0', To: "qa", Write: '1', Move: domain.Right},
	)
	assert.Equal(t, []domain.State{"q0", "q1", "qa"}, table.States())
}
