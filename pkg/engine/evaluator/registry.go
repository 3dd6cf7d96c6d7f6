package evaluator

import (
	"math/rand/v2"
	"sort"
	"time"
)

// Options configures the built-in namespaces. The zero value is usable:
// the wall clock, the "en-US" locale, USD and an unseeded generator.
type Options struct {
	Now      func() time.Time  // clock for DATE.*; nil means time.Now
	Locale   string            // BCP-47 tag for FORMAT.* and DATE.long
	Currency string            // ISO 4217 code for FORMAT.currency
	User     map[string]string // USER.* attributes (name, email, ...)
	Rand     *rand.Rand        // generator for RANDOM.*; nil means a
	// process-wide seeded generator
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) locale() string {
	if o.Locale == "" {
		return "en-US"
	}
	return o.Locale
}

func (o Options) currency() string {
	if o.Currency == "" {
		return "USD"
	}
	return o.Currency
}

// Registry maps (namespace, name) pairs to builtin functions. It is
// open for extension: new namespaces and functions are registered as
// pure data, never by changing dispatch logic. Registration must be
// externally serialized against concurrent renders; after that the
// registry is read-only.
type Registry struct {
	namespaces map[string]map[string]*Builtin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{namespaces: make(map[string]map[string]*Builtin)}
}

// DefaultRegistry creates a registry holding the built-in DATE, MATH,
// STRING, FORMAT, RANDOM and USER namespaces.
func DefaultRegistry(opts Options) *Registry {
	r := NewRegistry()
	r.Register("DATE", dateBuiltins(opts)...)
	r.Register("MATH", mathBuiltins()...)
	r.Register("STRING", stringBuiltins()...)
	r.Register("FORMAT", formatBuiltins(opts)...)
	r.Register("RANDOM", randomBuiltins(opts)...)
	r.Register("USER", userBuiltins(opts)...)
	return r
}

// Register adds functions under a namespace, creating it on first use.
// A function re-registered under an existing name replaces it.
func (r *Registry) Register(namespace string, fns ...*Builtin) {
	ns, ok := r.namespaces[namespace]
	if !ok {
		ns = make(map[string]*Builtin)
		r.namespaces[namespace] = ns
	}
	for _, fn := range fns {
		ns[fn.Name] = fn
	}
}

// Lookup returns the builtin registered under namespace.name.
func (r *Registry) Lookup(namespace, name string) (*Builtin, bool) {
	ns, ok := r.namespaces[namespace]
	if !ok {
		return nil, false
	}
	fn, ok := ns[name]
	return fn, ok
}

// Names returns every registered function as "NAMESPACE.name", sorted.
// The REPL uses this for completion.
func (r *Registry) Names() []string {
	var names []string
	for namespace, ns := range r.namespaces {
		for name := range ns {
			names = append(names, namespace+"."+name)
		}
	}
	sort.Strings(names)
	return names
}
