package registry

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"sheet-importer/internal/rule"
)

// Module is implemented by packages that contribute named functions or
// rules.
type Module interface {
	Register(r *Registry)
}

// Registry holds rules in registration order and the named functions
// rule files may use. It implements rule.Resolver.
type Registry struct {
	mu sync.RWMutex

	rules  []*rule.Rule
	byName map[string]*rule.Rule
	// fromFiles names the rules added by LoadDir.
	fromFiles map[string]bool

	filters map[string]rule.RowFilter
	hooks   map[string]rule.PostRowHook
	folds   map[string]rule.FoldFunc
}

var _ rule.Resolver = (*Registry)(nil)

// New creates an empty registry.
func New() *Registry {
	r := &Registry{}
	r.reset()

	return r
}

func (r *Registry) reset() {
	r.rules = nil
	r.byName = make(map[string]*rule.Rule)
	r.fromFiles = make(map[string]bool)
	r.filters = make(map[string]rule.RowFilter)
	r.hooks = make(map[string]rule.PostRowHook)
	r.folds = make(map[string]rule.FoldFunc)
}

// Reset clears every rule and function.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reset()
}

// ClearRules drops the rules loaded from files, ready for a reload of the
// rule directory. Rules added by modules and the registered functions stay.
func (r *Registry) ClearRules() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = slices.DeleteFunc(r.rules, func(ru *rule.Rule) bool {
		if r.fromFiles[ru.Name()] {
			delete(r.byName, ru.Name())
			return true
		}

		return false
	})
	r.fromFiles = make(map[string]bool)
}

// Use registers every module.
func (r *Registry) Use(mods ...Module) *Registry {
	for _, m := range mods {
		m.Register(r)
	}

	return r
}

// AddRule registers a built rule. Names are unique.
func (r *Registry) AddRule(ru *rule.Rule) error {
	return r.add(ru, false)
}

func (r *Registry) add(ru *rule.Rule, fromFile bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byName[ru.Name()]; dup {
		return fmt.Errorf("rule %q is already registered", ru.Name())
	}

	r.rules = append(r.rules, ru)
	r.byName[ru.Name()] = ru

	if fromFile {
		r.fromFiles[ru.Name()] = true
	}

	return nil
}

// MustAddRule is like AddRule but panics on error. Meant for module
// Register methods.
func (r *Registry) MustAddRule(ru *rule.Rule) {
	if err := r.AddRule(ru); err != nil {
		panic(err)
	}
}

// Rules returns the registered rules in registration order.
func (r *Registry) Rules() []*rule.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.rules)
}

// Registered returns the rules added by modules rather than loaded from
// files, in registration order.
func (r *Registry) Registered() []*rule.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*rule.Rule

	for _, ru := range r.rules {
		if !r.fromFiles[ru.Name()] {
			out = append(out, ru)
		}
	}

	return out
}

// Rule returns the rule called name.
func (r *Registry) Rule(name string) (*rule.Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ru, ok := r.byName[name]

	return ru, ok
}

// RegisterFilter names a row filter. A later registration replaces an
// earlier one.
func (r *Registry) RegisterFilter(name string, fn rule.RowFilter) {
	mustName(name, fn == nil)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.filters[name] = fn
}

// RegisterHook names a post-row hook.
func (r *Registry) RegisterHook(name string, fn rule.PostRowHook) {
	mustName(name, fn == nil)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks[name] = fn
}

// RegisterFold names a fold directive function.
func (r *Registry) RegisterFold(name string, fn rule.FoldFunc) {
	mustName(name, fn == nil)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.folds[name] = fn
}

func mustName(name string, nilFn bool) {
	if name == "" {
		panic("registry: empty function name")
	}

	if nilFn {
		panic("registry: nil function " + name)
	}
}

func (r *Registry) Filter(name string) (rule.RowFilter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.filters[name]

	return fn, ok
}

func (r *Registry) Hook(name string) (rule.PostRowHook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.hooks[name]

	return fn, ok
}

func (r *Registry) Fold(name string) (rule.FoldFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.folds[name]

	return fn, ok
}

// Names lists the registered function names by kind, sorted.
func (r *Registry) Names() (filters, hooks, folds []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.filters), sortedKeys(r.hooks), sortedKeys(r.folds)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

var defaultRegistry = New()

// Default returns the process-wide registry that init-time modules
// register into.
func Default() *Registry { return defaultRegistry }

// Register adds modules to the default registry.
func Register(mods ...Module) { defaultRegistry.Use(mods...) }
