package domain

// OpKind enumerates the primitive operations of a transition body.
type OpKind string

const (
	// OpRead consumes Count tokens from Port, optionally storing them in Target.
	OpRead OpKind = "read"
	// OpWrite evaluates Expression and produces the result on Port.
	OpWrite OpKind = "write"
	// OpAssign evaluates Expression and stores the result in Target.
	OpAssign OpKind = "assign"
	// OpEval evaluates Expression for its side effects on the host.
	OpEval OpKind = "eval"
)

// Op is one primitive step of a transition body.
type Op struct {
	Kind       OpKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	Port       string `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port"`
	Count      int    `json:"count,omitempty" yaml:"count,omitempty" mapstructure:"count"`
	Target     string `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty" mapstructure:"expression"`
}

// Transition is an atomic state update the actor may fire.
type Transition struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`

	// From is the declared controller state this transition is eligible in.
	// Empty means the transition is eligible in every state.
	From string `json:"from,omitempty" yaml:"from,omitempty" mapstructure:"from"`

	// To is the successor state after firing. Empty keeps the current state.
	To string `json:"to,omitempty" yaml:"to,omitempty" mapstructure:"to"`

	// Guard lists condition indices that must all hold. Empty means always eligible.
	Guard []int `json:"guard,omitempty" yaml:"guard,omitempty" mapstructure:"guard"`

	Body []Op `json:"body,omitempty" yaml:"body,omitempty" mapstructure:"body"`
}

// TransitionSet is the fixed, ordered collection of an actor's transitions.
// Indices are stable and are the identity used by controllers.
type TransitionSet []Transition

// Label returns a human readable label for transition i.
func (s TransitionSet) Label(i int) string {
	if i < 0 || i >= len(s) {
		return "stall"
	}
	if s[i].Name != "" {
		return s[i].Name
	}
	return transitionLabel(i)
}

// EligibleIn reports the transitions whose source state matches state, in declaration order.
func (s TransitionSet) EligibleIn(state string) []int {
	var out []int
	for i, t := range s {
		if t.From == "" || t.From == state {
			out = append(out, i)
		}
	}
	return out
}
