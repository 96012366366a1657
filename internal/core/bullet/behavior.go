package bullet

// Receipt is what a behavior reports back for one entity and frame.
type Receipt struct {
	// Throttle, when positive, replaces the step multiplier handed to the
	// remaining behaviors of the same entity this frame.
	Throttle float64
	// Delete asks for the entity to be removed after execution. The entity
	// is not touched until the deferred queue drains.
	Delete            bool
	UseDeletionEffect bool
	// NoMultithreading moves the entity's children off worker goroutines
	// for the rest of this frame.
	NoMultithreading bool
}

// Behavior is a per-frame rule attached to an entity. The value is owned
// by exactly one entity; Clone must return an independent copy of any
// mutable state.
type Behavior interface {
	Execute(a *Arena, i Index, step float64) Receipt
	Clone() Behavior
}

// Disposer is implemented by behaviors holding resources that must be
// released when their entity is freed.
type Disposer interface {
	Dispose()
}

// BehaviorFunc adapts a stateless function. Clone returns the same func.
type BehaviorFunc func(a *Arena, i Index, step float64) Receipt

func (f BehaviorFunc) Execute(a *Arena, i Index, step float64) Receipt { return f(a, i, step) }
func (f BehaviorFunc) Clone() Behavior                                 { return f }
