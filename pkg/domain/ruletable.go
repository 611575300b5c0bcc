package domain

// NotFound is the index returned by lookups that match no rule.
const NotFound = -1

// RuleTable is an ordered sequence of rules searched by (state, symbol).
// Only the first Count() entries are searchable; anything stored beyond that
// is unused trailing capacity. The table is read-only once built.
type RuleTable struct {
	rules []Rule
	count int
}

// NewRuleTable creates a table that searches the first ruleCount of rules.
// A ruleCount larger than len(rules) is clamped to the populated length.
func NewRuleTable(ruleCount int, rules ...Rule) *RuleTable {
	stored := make([]Rule, len(rules))
	copy(stored, rules)
	if ruleCount > len(stored) {
		ruleCount = len(stored)
	}
	if ruleCount < 0 {
		ruleCount = 0
	}
	return &RuleTable{rules: stored, count: ruleCount}
}

// Lookup returns the index of the first rule among positions 0..Count()-1
// whose (From, Read) equals (state, symbol), or NotFound and false.
func (t *RuleTable) Lookup(state State, symbol Symbol) (int, bool) {
	if t == nil {
		return NotFound, false
	}
	for i := 0; i < t.count; i++ {
		r := t.rules[i]
		if r.From == state && r.Read == symbol {
			return i, true
		}
	}
	return NotFound, false
}

// Rule returns the rule at index i.
func (t *RuleTable) Rule(i int) Rule {
	return t.rules[i]
}

// Count is the number of searchable rules.
func (t *RuleTable) Count() int {
	if t == nil {
		return 0
	}
	return t.count
}

// Len is the number of stored rules, including trailing capacity.
func (t *RuleTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Rules returns a copy of the searchable rules.
func (t *RuleTable) Rules() []Rule {
	if t == nil {
		return nil
	}
	out := make([]Rule, t.count)
	copy(out, t.rules[:t.count])
	return out
}

// States returns every state label mentioned by the searchable rules, in first-seen order.
func (t *RuleTable) States() []State {
	seen := make(map[State]bool)
	var out []State
	for _, r := range t.Rules() {
		for _, s := range []State{r.From, r.To} {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// Duplicate reports a (state, symbol) pair defined by more than one searchable rule.
type Duplicate struct {
	State   State
	Symbol  Symbol
	Indexes []int
}

// Duplicates lists pairs that break the determinism invariant. Lookup still
// resolves them to the first index.
func (t *RuleTable) Duplicates() []Duplicate {
	type key struct {
		s State
		c Symbol
	}
	index := make(map[key]int)
	var out []Duplicate
	for i, r := range t.Rules() {
		k := key{r.From, r.Read}
		if at, ok := index[k]; ok {
			out[at].Indexes = append(out[at].Indexes, i)
			continue
		}
		index[k] = len(out)
		out = append(out, Duplicate{State: r.From, Symbol: r.Read, Indexes: []int{i}})
	}
	dups := out[:0]
	for _, d := range out {
		if len(d.Indexes) > 1 {
			dups = append(dups, d)
		}
	}
	return dups
}

// Limit returns a view of the table that searches at most the first n rules.
// The underlying rules are shared.
func (t *RuleTable) Limit(n int) *RuleTable {
	if t == nil {
		return nil
	}
	if n > t.count {
		n = t.count
	}
	if n < 0 {
		n = 0
	}
	return &RuleTable{rules: t.rules, count: n}
}
