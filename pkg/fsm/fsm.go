// SPDX-License-Identifier: BSD-3-Clause

package fsm

import (
	"context"
	"fmt"
	"sync"

	"github.com/qmuntal/stateless"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FSM is a finite state machine. States and transitions are added one at a
// time with AddState and AddTransition; Initialize then sets the starting
// state and the machine is driven forward by calling ProcessEvent.
//
// FSM is safe for concurrent use.
type FSM struct {
	config *Config
	tracer trace.Tracer

	mu          sync.RWMutex
	machine     *stateless.StateMachine
	startState  string
	states      map[string]*stateDef
	stateOrder  []string
	transitions map[string]map[string]string // start -> event -> end

	current string
	target  string
}

// New creates an empty machine with no states or transitions defined yet.
func New(opts ...Option) *FSM {
	cfg := newConfig(opts...)
	f := &FSM{
		config:      cfg,
		states:      make(map[string]*stateDef),
		transitions: make(map[string]map[string]string),
	}
	if cfg.EnableTracing {
		f.tracer = otel.Tracer("fsm")
	}
	return f
}

// AddState adds a new state to the machine. It returns ErrDuplicate if the
// state was already added, or ErrNotFound / ErrInvalidState if a target
// state referenced via WithTargetState does not exist or is not stable.
func (f *FSM) AddState(name string, opts ...StateOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.states[name]; exists {
		return fmt.Errorf("%w: state %q", ErrDuplicate, name)
	}

	d := &stateDef{name: name}
	for _, opt := range opts {
		opt(d)
	}

	if d.target != "" {
		target, exists := f.states[d.target]
		if !exists {
			return fmt.Errorf("%w: target state %q", ErrNotFound, d.target)
		}
		if !target.stable {
			return fmt.Errorf("%w: target state %q is not stable", ErrInvalidState, d.target)
		}
	}

	f.states[name] = d
	f.stateOrder = append(f.stateOrder, name)
	f.transitions[name] = make(map[string]string)
	return nil
}

// AddTransition adds an allowed transition from start to end on the given
// event. Both states must already have been added.
func (f *FSM) AddTransition(start, end, event string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.states[start]; !exists {
		return fmt.Errorf("%w: transition on event %q starts in undefined state %q", ErrNotFound, event, start)
	}
	if _, exists := f.states[end]; !exists {
		return fmt.Errorf("%w: transition on event %q ends in undefined state %q", ErrNotFound, event, end)
	}

	f.transitions[start][event] = end
	return nil
}

// Initialize sets the current state to state, building the underlying
// transition engine from the states and transitions added so far. It must
// be called before ProcessEvent. Calling Initialize again rebuilds the
// machine from scratch in the newly given state.
func (f *FSM) Initialize(state string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	def, exists := f.states[state]
	if !exists {
		return fmt.Errorf("%w: cannot start from undefined state %q", ErrNotFound, state)
	}
	if def.terminal {
		return fmt.Errorf("%w: cannot start from terminal state %q", ErrInvalidState, state)
	}

	machine := stateless.NewStateMachine(state)
	for _, name := range f.stateOrder {
		stateCfg := machine.Configure(name)
		for event, end := range f.transitions[name] {
			stateCfg.Permit(event, end)
		}
	}
	f.machine = machine
	f.startState = state
	f.current = state
	f.target = def.target
	return nil
}

// ProcessEvent triggers a state change in response to event. It runs the
// outgoing state's exit hook, then the incoming state's entry hook, and only
// then fires the transition and updates the current state. Either hook
// returning an error aborts the transition before the current state is
// updated.
func (f *FSM) ProcessEvent(ctx context.Context, event string) error {
	f.mu.Lock()

	if f.machine == nil {
		f.mu.Unlock()
		return fmt.Errorf("%w: machine not initialized", ErrInvalidState)
	}

	currentName := f.current
	currentDef := f.states[currentName]
	if currentDef.terminal {
		f.mu.Unlock()
		return fmt.Errorf("%w: cannot transition from terminal state %q on event %q", ErrInvalidState, currentName, event)
	}

	endName, ok := f.transitions[currentName][event]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("%w: no transition from state %q on event %q", ErrInvalidState, currentName, event)
	}
	endDef := f.states[endName]

	var span trace.Span
	if f.tracer != nil {
		ctx, span = f.tracer.Start(ctx, "fsm.ProcessEvent", trace.WithAttributes(
			attribute.String("fsm.name", f.config.Name),
			attribute.String("fsm.state.from", currentName),
			attribute.String("fsm.state.to", endName),
			attribute.String("fsm.event", event),
		))
		defer span.End()
	}
	f.mu.Unlock()

	if currentDef.onExit != nil {
		if err := currentDef.onExit(ctx, currentName, event); err != nil {
			if span != nil {
				span.RecordError(err)
			}
			return err
		}
	}
	if endDef.onEnter != nil {
		if err := endDef.onEnter(ctx, endName, event); err != nil {
			if span != nil {
				span.RecordError(err)
			}
			return err
		}
	}

	f.mu.Lock()
	if err := f.machine.FireCtx(ctx, event); err != nil {
		f.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	f.current = endName
	if f.target == endName {
		f.target = ""
	}
	if endDef.target != "" {
		f.target = endDef.target
	}
	f.mu.Unlock()

	return nil
}

// IsValidEvent reports whether event can be processed from the current state.
func (f *FSM) IsValidEvent(event string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.machine == nil {
		return false
	}
	def := f.states[f.current]
	if def.terminal {
		return false
	}
	_, ok := f.transitions[f.current][event]
	return ok
}

// CurrentState returns the state the machine currently occupies. It is
// empty until Initialize has been called.
func (f *FSM) CurrentState() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// TargetState returns the state this machine is ultimately heading towards,
// or the empty string if there is none.
func (f *FSM) TargetState() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.target
}

// Terminated reports whether the current state is terminal.
func (f *FSM) Terminated() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current == "" {
		return false
	}
	return f.states[f.current].terminal
}

// Contains reports whether state has been added to the machine.
func (f *FSM) Contains(state string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.states[state]
	return ok
}

// States returns the names of every state added to the machine, in the
// order they were added.
func (f *FSM) States() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.stateOrder))
	copy(out, f.stateOrder)
	return out
}

// Transitions iterates over every (start, event, end) transition defined on
// the machine.
func (f *FSM) Transitions() []Transition {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []Transition
	for _, start := range f.stateOrder {
		for event, end := range f.transitions[start] {
			out = append(out, Transition{Start: start, Event: event, End: end})
		}
	}
	return out
}

// EventCount returns the total number of transitions defined on the machine.
func (f *FSM) EventCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, evs := range f.transitions {
		n += len(evs)
	}
	return n
}

// Copy duplicates the machine, leaving the copy uninitialized (it has no
// current state until Initialize is called on it). A shallow copy shares
// the state and transition tables with the source, which is cheaper but
// means later AddState/AddTransition calls on either machine are visible to
// both; a deep copy gets independent tables.
func (f *FSM) Copy(shallow bool) *FSM {
	f.mu.RLock()
	defer f.mu.RUnlock()

	c := &FSM{config: f.config, tracer: f.tracer}

	if shallow {
		c.states = f.states
		c.transitions = f.transitions
		c.stateOrder = f.stateOrder
		return c
	}

	c.states = make(map[string]*stateDef, len(f.states))
	for name, def := range f.states {
		copied := *def
		c.states[name] = &copied
	}
	c.stateOrder = append([]string(nil), f.stateOrder...)
	c.transitions = make(map[string]map[string]string, len(f.transitions))
	for start, evs := range f.transitions {
		m := make(map[string]string, len(evs))
		for event, end := range evs {
			m[event] = end
		}
		c.transitions[start] = m
	}
	return c
}
