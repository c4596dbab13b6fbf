package rules

import (
	"sort"
	"strings"
	"sync"
)

// Built-in rule identifiers exposed by the registry.
const (
	RuleEmail    = "email"
	RulePassword = "password"
	RuleCoupon   = "coupon"
)

// Matcher decides whether a rule should handle the supplied field-type tag.
type Matcher func(fieldType string) bool

type entry struct {
	rule     Rule
	priority int
	match    Matcher
	order    int
}

// Registry selects validation rules for fields based on their declared type
// tag. Higher priority wins; ties fall back to registration order. Field types
// with no matching rule resolve to nothing and are skipped by callers, keeping
// unvalidated inputs (plain text, names) out of the pipeline by construction.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

// NewRegistry constructs a registry with the built-in email, password and
// coupon rules registered using the default patterns.
func NewRegistry() *Registry {
	reg, _ := NewRegistryWithOptions(Options{})
	return reg
}

// NewRegistryWithOptions constructs a registry whose built-in rules use the
// supplied pattern overrides.
func NewRegistryWithOptions(opts Options) (*Registry, error) {
	email, password, coupon, err := Compile(opts)
	if err != nil {
		return nil, err
	}
	reg := &Registry{}
	reg.Register(email, 90, func(fieldType string) bool { return fieldType == RuleEmail })
	reg.Register(password, 80, func(fieldType string) bool { return fieldType == RulePassword })
	reg.Register(coupon, 70, func(fieldType string) bool { return fieldType == RuleCoupon })
	return reg, nil
}

// Register adds a rule with the provided priority. Higher priority values take
// precedence. Nil matchers and unnamed rules are ignored.
func (r *Registry) Register(rule Rule, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	if strings.TrimSpace(rule.Name) == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry{
		rule:     rule,
		priority: priority,
		match:    matcher,
		order:    len(r.entries),
	})
}

// Resolve returns the rule for a field-type tag. The boolean reports whether
// any rule claimed the type; absence means the field is not validated.
func (r *Registry) Resolve(fieldType string) (Rule, bool) {
	if r == nil {
		return Rule{}, false
	}
	tag := strings.TrimSpace(strings.ToLower(fieldType))
	if tag == "" {
		return Rule{}, false
	}

	r.mu.RLock()
	if len(r.entries) == 0 {
		r.mu.RUnlock()
		return Rule{}, false
	}
	entries := append([]entry(nil), r.entries...)
	r.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority == entries[j].priority {
			return entries[i].order < entries[j].order
		}
		return entries[i].priority > entries[j].priority
	})
	for _, candidate := range entries {
		if candidate.match(tag) {
			return candidate.rule, true
		}
	}
	return Rule{}, false
}

// Validate resolves the rule for fieldType and runs it against value. It
// returns "" when the field type has no rule or the value passes.
func (r *Registry) Validate(fieldType, value string) string {
	rule, ok := r.Resolve(fieldType)
	if !ok {
		return ""
	}
	return rule.Validate(value)
}
