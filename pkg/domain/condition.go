package domain

import "fmt"

// ConditionKind is the closed set of guard variants.
type ConditionKind string

const (
	// ConditionPredicate is a host expression treated as an opaque boolean.
	ConditionPredicate ConditionKind = "predicate"
	// ConditionInputAvailable holds when an input port has at least Count unread tokens.
	ConditionInputAvailable ConditionKind = "input_available"
	// ConditionOutputHasSpace holds when an output port has at least Count free slots.
	ConditionOutputHasSpace ConditionKind = "output_has_space"
)

// Valid reports whether k is one of the known kinds.
func (k ConditionKind) Valid() bool {
	switch k {
	case ConditionPredicate, ConditionInputAvailable, ConditionOutputHasSpace:
		return true
	default:
		return false
	}
}

// Condition is a boolean guard referenced by index from transitions.
// Only the fields relevant to Kind are set.
type Condition struct {
	Kind       ConditionKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	Expression string        `json:"expression,omitempty" yaml:"expression,omitempty" mapstructure:"expression"`
	Port       string        `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port"`
	Count      int           `json:"count,omitempty" yaml:"count,omitempty" mapstructure:"count"`
}

// Predicate creates a guard delegated to the host expression evaluator.
func Predicate(expression string) Condition {
	return Condition{Kind: ConditionPredicate, Expression: expression}
}

// InputAvailable creates a guard on the number of unread tokens of an input port.
func InputAvailable(port string, count int) Condition {
	return Condition{Kind: ConditionInputAvailable, Port: port, Count: count}
}

// OutputHasSpace creates a guard on the number of free slots of an output port.
func OutputHasSpace(port string, count int) Condition {
	return Condition{Kind: ConditionOutputHasSpace, Port: port, Count: count}
}

// IsPortCondition reports whether the condition inspects channel state.
func (c Condition) IsPortCondition() bool {
	return c.Kind == ConditionInputAvailable || c.Kind == ConditionOutputHasSpace
}

func (c Condition) String() string {
	switch c.Kind {
	case ConditionPredicate:
		return c.Expression
	case ConditionInputAvailable:
		return fmt.Sprintf("%s.has_data(%d)", c.Port, c.Count)
	case ConditionOutputHasSpace:
		return fmt.Sprintf("%s.has_space(%d)", c.Port, c.Count)
	default:
		return fmt.Sprintf("<invalid condition %q>", c.Kind)
	}
}
