package domain

import "fmt"

// ImplicitState is the name given to the single controller state of an actor
// that declares no explicit state machine.
const ImplicitState = "s0"

// Actor is the frozen description of an actor machine.
type Actor struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Format      string `json:"format,omitempty" yaml:"format,omitempty" mapstructure:"format"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`

	Ports       []Port        `json:"ports,omitempty" yaml:"ports,omitempty" mapstructure:"ports"`
	Scopes      []Scope       `json:"scopes,omitempty" yaml:"scopes,omitempty" mapstructure:"scopes"`
	Conditions  []Condition   `json:"conditions,omitempty" yaml:"conditions,omitempty" mapstructure:"conditions"`
	Transitions TransitionSet `json:"transitions,omitempty" yaml:"transitions,omitempty" mapstructure:"transitions"`

	// States are the declared controller states, in declaration order.
	States []string `json:"states,omitempty" yaml:"states,omitempty" mapstructure:"states"`
	// Start is the designated initial state. Defaults to the first declared state.
	Start string `json:"start,omitempty" yaml:"start,omitempty" mapstructure:"start"`
}

// StateNames returns the declared states, or the implicit single state.
func (a *Actor) StateNames() []string {
	if len(a.States) == 0 {
		return []string{ImplicitState}
	}
	return a.States
}

// StartState resolves the initial state name.
func (a *Actor) StartState() string {
	if a.Start != "" {
		return a.Start
	}
	return a.StateNames()[0]
}

// Port looks up a port by name.
func (a *Actor) Port(name string) (Port, bool) {
	for _, p := range a.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// InputPorts returns the input ports in declaration order.
func (a *Actor) InputPorts() []Port {
	return a.portsWith(DirectionIn)
}

// OutputPorts returns the output ports in declaration order.
func (a *Actor) OutputPorts() []Port {
	return a.portsWith(DirectionOut)
}

func (a *Actor) portsWith(dir Direction) []Port {
	var out []Port
	for _, p := range a.Ports {
		if p.Direction == dir {
			out = append(out, p)
		}
	}
	return out
}

// Variable looks up a variable declaration and the scope declaring it.
func (a *Actor) Variable(name string) (Variable, Scope, bool) {
	for _, s := range a.Scopes {
		for _, v := range s.Variables {
			if v.Name == name {
				return v, s, true
			}
		}
	}
	return Variable{}, Scope{}, false
}

func transitionLabel(i int) string {
	return fmt.Sprintf("t%d", i)
}
