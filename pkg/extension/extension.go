// Package extension implements the idiom rule registry: an explicit,
// prioritized table of structural matchers that claim rendering of a node
// before the generic per-kind dispatch runs. Each rule is testable in
// isolation; precedence comes from the declared priority, not registration
// order.
package extension

import (
	"sort"

	"blockpad/pkg/blocks"
	"blockpad/pkg/parser"
)

// RenderFunc renders a child node through the full dispatch pipeline
// (registry first, then per-kind renderers). Rules that expose structured
// children call it; rules that fully own their presentation ignore it.
type RenderFunc func(node parser.Node) *blocks.Block

// Rule is one idiom matcher. Match returns nil to decline; a non-nil block
// claims the node and suppresses generic rendering, including automatic
// child recursion.
type Rule struct {
	Name     string
	Priority int // higher wins; ties break on registration order
	Match    func(node parser.Node, render RenderFunc) *blocks.Block
}

// Registry is an ordered rule table plus the sentinel expression set shared
// with the built-in sentinel rule.
type Registry struct {
	rules     []Rule
	sorted    bool
	sentinels map[string]bool
}

// NewRegistry returns a registry carrying the built-in rules: the
// placeholder drop spacer, the liquid-get call idiom, the sentinel
// property-access set, and the state-assignment widget.
func NewRegistry() *Registry {
	r := &Registry{sentinels: map[string]bool{}}
	for _, s := range defaultSentinels {
		r.sentinels[s] = true
	}
	r.Register(placeholderRule())
	r.Register(liquidGetRule())
	r.Register(sentinelRule(r.sentinels))
	r.Register(stateAssignmentRule())
	return r
}

// Register adds a rule. Priority ordering is re-established lazily on the
// next Apply.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
	r.sorted = false
}

// AddSentinel marks an extra property-access expression (normalized dotted
// text, e.g. "context.cart.currency") as a recognized sentinel.
func (r *Registry) AddSentinel(text string) {
	if r.sentinels == nil {
		r.sentinels = map[string]bool{}
	}
	r.sentinels[stripWhitespace(text)] = true
}

// Apply runs the rules in priority order and returns the first claimed
// block, or nil when every rule declines.
func (r *Registry) Apply(node parser.Node, render RenderFunc) *blocks.Block {
	if r == nil || node == nil {
		return nil
	}
	if !r.sorted {
		sort.SliceStable(r.rules, func(i, j int) bool {
			return r.rules[i].Priority > r.rules[j].Priority
		})
		r.sorted = true
	}
	for i := range r.rules {
		if b := r.rules[i].Match(node, render); b != nil {
			return b
		}
	}
	return nil
}
