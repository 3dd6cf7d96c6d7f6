package evaluator

// Environment is a chained binding frame. Loop bodies and conditional
// branches evaluate in a child environment that shadows but never
// mutates its parent; frames are discarded when their owning node
// finishes evaluating.
type Environment struct {
	store    map[string]Object
	outer    *Environment
	Registry *Registry
}

// NewEnvironment creates a new top-level environment
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

// NewEnclosedEnvironment creates a child frame of outer
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	if outer != nil {
		env.Registry = outer.Registry
	}
	return env
}

// Get retrieves a value, searching outward through parent frames
func (e *Environment) Get(name string) (Object, bool) {
	value, ok := e.store[name]
	if !ok && e.outer != nil {
		value, ok = e.outer.Get(name)
	}
	return value, ok
}

// Set stores a value in this frame
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}
