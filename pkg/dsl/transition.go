package dsl

import "github.com/streamblocks/actormachine/pkg/domain"

// TransitionBuilder provides a fluent API for configuring a transition.
type TransitionBuilder struct {
	transition domain.Transition
	builder    *Builder
}

// From restricts the transition to one state.
func (t *TransitionBuilder) From(state string) *TransitionBuilder {
	t.transition.From = state
	return t
}

// To sets the successor state.
func (t *TransitionBuilder) To(state string) *TransitionBuilder {
	t.transition.To = state
	return t
}

// When adds guard conditions. All of them must hold.
func (t *TransitionBuilder) When(conds ...domain.Condition) *TransitionBuilder {
	for _, c := range conds {
		t.transition.Guard = append(t.transition.Guard, t.builder.Condition(c))
	}
	return t
}

// Read consumes count tokens from port. A non-empty target receives the token
// (count 1) or the list of tokens.
func (t *TransitionBuilder) Read(port string, count int, target string) *TransitionBuilder {
	return t.op(domain.Op{Kind: domain.OpRead, Port: port, Count: count, Target: target})
}

// Write produces the value of expression on port.
func (t *TransitionBuilder) Write(port, expression string) *TransitionBuilder {
	return t.op(domain.Op{Kind: domain.OpWrite, Port: port, Count: 1, Expression: expression})
}

// Assign stores the value of expression in variable.
func (t *TransitionBuilder) Assign(variable, expression string) *TransitionBuilder {
	return t.op(domain.Op{Kind: domain.OpAssign, Target: variable, Expression: expression})
}

// Eval evaluates expression for its side effects.
func (t *TransitionBuilder) Eval(expression string) *TransitionBuilder {
	return t.op(domain.Op{Kind: domain.OpEval, Expression: expression})
}

func (t *TransitionBuilder) op(o domain.Op) *TransitionBuilder {
	t.transition.Body = append(t.transition.Body, o)
	return t
}

// Build returns a copy of the underlying domain.Transition.
func (t *TransitionBuilder) Build() domain.Transition {
	tr := t.transition
	tr.Guard = append([]int(nil), t.transition.Guard...)
	tr.Body = append([]domain.Op(nil), t.transition.Body...)
	return tr
}

// ScopeBuilder declares variables of one scope.
type ScopeBuilder struct {
	scope domain.Scope
}

// Var declares a variable with its type and initial value (nil = unset).
func (s *ScopeBuilder) Var(name, typ string, init any) *ScopeBuilder {
	s.scope.Variables = append(s.scope.Variables, domain.Variable{Name: name, Type: typ, Init: init})
	return s
}

// Build returns a copy of the underlying domain.Scope.
func (s *ScopeBuilder) Build() domain.Scope {
	sc := s.scope
	sc.Variables = append([]domain.Variable(nil), s.scope.Variables...)
	return sc
}
