package object

// Binding is one environment slot. A Binding with a nil Value is declared
// but not yet initialized.
type Binding struct {
	Value Object
}

// Environment is one lexical scope: a set of bindings plus a non-owning
// reference to the enclosing scope. The outer environment always outlives
// its inner environments.
type Environment struct {
	Bindings map[string]*Binding
	Outer    *Environment
}

func NewEnvironment() *Environment {
	return &Environment{Bindings: make(map[string]*Binding)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	return env
}

// Define inserts or overwrites a binding in this scope only, shadowing any
// outer binding of the same name. It returns the value the name previously
// held in this scope so the heap strategy can release it.
func (e *Environment) Define(name string, val Object) Object {
	var previous Object
	if binding, ok := e.Bindings[name]; ok {
		previous = binding.Value
	}
	e.Bindings[name] = &Binding{Value: val}
	return previous
}

// Assign searches from this scope outwards for an existing binding, mutates
// the first one found, and returns the value it replaced.
func (e *Environment) Assign(name string, val Object) (Object, *Error) {
	for env := e; env != nil; env = env.Outer {
		if binding, ok := env.Bindings[name]; ok {
			previous := binding.Value
			binding.Value = val
			return previous, nil
		}
	}
	return nil, NewError(UndefinedAssignmentTarget, "cannot assign to `%s`: not defined in any enclosing scope", name)
}

// Get searches from this scope outwards and yields the binding's current
// value.
func (e *Environment) Get(name string) (Object, *Error) {
	for env := e; env != nil; env = env.Outer {
		if binding, ok := env.Bindings[name]; ok {
			if binding.Value == nil {
				return nil, NewError(UninitialisedTarget, "`%s` has been declared but not initialised", name)
			}
			return binding.Value, nil
		}
	}
	return nil, NewError(UndefinedTarget, "`%s` is not defined in any enclosing scope", name)
}

// Global walks to the outermost (parentless) environment.
func (e *Environment) Global() *Environment {
	env := e
	for env.Outer != nil {
		env = env.Outer
	}
	return env
}

// LocalValues returns the values bound directly in this scope, without
// walking outers. Used when releasing a scope to the heap strategy.
func (e *Environment) LocalValues() []Object {
	values := make([]Object, 0, len(e.Bindings))
	for _, binding := range e.Bindings {
		if binding.Value != nil {
			values = append(values, binding.Value)
		}
	}
	return values
}

// Roots exposes every heap pointer held by this scope or any enclosing
// scope. These are the GC roots contributed by one environment chain.
func (e *Environment) Roots() []Pointer {
	var roots []Pointer
	for env := e; env != nil; env = env.Outer {
		for _, binding := range env.Bindings {
			if ref, ok := binding.Value.(*RecordRef); ok {
				roots = append(roots, ref.Pointer)
			}
		}
	}
	return roots
}
