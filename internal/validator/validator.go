package validator

import (
	"fmt"

	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/schema"
)

// ValidateActor checks the preconditions of the scheduling core: every guard
// references a declared condition, every port condition and body operation
// references a declared port of the right direction, and every state
// reference is declared. All problems are reported together.
func ValidateActor(actor *domain.Actor) error {
	if actor == nil {
		return fmt.Errorf("cannot validate nil actor")
	}

	v := &collector{actor: actor.Name}
	if actor.Name == "" {
		v.add("", "missing actor name")
	}

	ports := v.checkPorts(actor)
	vars := v.checkScopes(actor)
	states := v.checkStates(actor)
	v.checkConditions(actor, ports)
	v.checkTransitions(actor, ports, vars, states)

	if len(v.errs) > 0 {
		return &domain.AggregateError{Errors: v.errs}
	}
	return nil
}

type collector struct {
	actor string
	errs  []error
}

func (c *collector) add(path, format string, args ...any) {
	c.errs = append(c.errs, &domain.ValidationError{
		Actor:  c.actor,
		Path:   path,
		Reason: fmt.Sprintf(format, args...),
	})
}

func (c *collector) checkPorts(actor *domain.Actor) map[string]domain.Port {
	ports := make(map[string]domain.Port, len(actor.Ports))
	for i, p := range actor.Ports {
		path := fmt.Sprintf("ports[%d]", i)
		if p.Name == "" {
			c.add(path, "missing port name")
			continue
		}
		if _, dup := ports[p.Name]; dup {
			c.add(path, "duplicate port %q", p.Name)
		}
		if p.Direction != domain.DirectionIn && p.Direction != domain.DirectionOut {
			c.add(path, "port %q has invalid direction %q (expected in/out)", p.Name, p.Direction)
		}
		if p.ElementType != "" {
			if _, err := schema.ParseType(p.ElementType); err != nil {
				c.add(path, "port %q: %v", p.Name, err)
			}
		}
		if p.Capacity < 0 {
			c.add(path, "port %q has negative capacity %d", p.Name, p.Capacity)
		}
		ports[p.Name] = p
	}
	return ports
}

func (c *collector) checkScopes(actor *domain.Actor) map[string]bool {
	vars := make(map[string]bool)
	for i, s := range actor.Scopes {
		types := make(schema.Schema)
		for j, v := range s.Variables {
			path := fmt.Sprintf("scopes[%d].variables[%d]", i, j)
			if v.Name == "" {
				c.add(path, "missing variable name")
				continue
			}
			if vars[v.Name] {
				c.add(path, "duplicate variable %q", v.Name)
			}
			vars[v.Name] = true
			if v.Type == "" {
				continue
			}
			t, err := schema.ParseType(v.Type)
			if err != nil {
				c.add(path, "variable %q: %v", v.Name, err)
				continue
			}
			types[v.Name] = t
		}
		if err := schema.Validate(types, s.Initial()); err != nil {
			for _, e := range schema.ValidationErrors(err) {
				c.add(fmt.Sprintf("scopes[%d]", i), "initial value: %v", e)
			}
		}
	}
	return vars
}

func (c *collector) checkStates(actor *domain.Actor) map[string]bool {
	states := make(map[string]bool, len(actor.States))
	for i, s := range actor.States {
		if s == "" {
			c.add(fmt.Sprintf("states[%d]", i), "empty state name")
			continue
		}
		if states[s] {
			c.add(fmt.Sprintf("states[%d]", i), "duplicate state %q", s)
		}
		states[s] = true
	}

	if len(actor.States) == 0 {
		if actor.Start != "" && actor.Start != domain.ImplicitState {
			c.add("start", "start state %q declared but the actor has no states", actor.Start)
		}
		states[domain.ImplicitState] = true
		return states
	}
	if actor.Start != "" && !states[actor.Start] {
		c.add("start", "start state %q is not declared", actor.Start)
	}
	return states
}

func (c *collector) checkConditions(actor *domain.Actor, ports map[string]domain.Port) {
	for i, cond := range actor.Conditions {
		path := fmt.Sprintf("conditions[%d]", i)
		switch cond.Kind {
		case domain.ConditionPredicate:
			if cond.Expression == "" {
				c.add(path, "predicate without expression")
			}
		case domain.ConditionInputAvailable:
			c.checkPortRef(path, cond.Port, ports, domain.DirectionIn)
			if cond.Count < 1 {
				c.add(path, "token count must be at least 1, got %d", cond.Count)
			}
		case domain.ConditionOutputHasSpace:
			c.checkPortRef(path, cond.Port, ports, domain.DirectionOut)
			if cond.Count < 1 {
				c.add(path, "space count must be at least 1, got %d", cond.Count)
			}
		default:
			c.add(path, "unknown condition kind %q", cond.Kind)
		}
	}
}

func (c *collector) checkTransitions(actor *domain.Actor, ports map[string]domain.Port, vars, states map[string]bool) {
	for i, t := range actor.Transitions {
		path := fmt.Sprintf("transitions[%d]", i)
		if t.From != "" && !states[t.From] {
			c.add(path+".from", "undeclared state %q", t.From)
		}
		if t.To != "" && !states[t.To] {
			c.add(path+".to", "undeclared state %q", t.To)
		}
		for j, idx := range t.Guard {
			if idx < 0 || idx >= len(actor.Conditions) {
				c.add(fmt.Sprintf("%s.guard[%d]", path, j), "condition index %d out of range [0, %d)", idx, len(actor.Conditions))
			}
		}
		for j, op := range t.Body {
			c.checkOp(fmt.Sprintf("%s.body[%d]", path, j), op, ports, vars)
		}
	}
}

func (c *collector) checkOp(path string, op domain.Op, ports map[string]domain.Port, vars map[string]bool) {
	switch op.Kind {
	case domain.OpRead:
		c.checkPortRef(path, op.Port, ports, domain.DirectionIn)
		if op.Count < 1 {
			c.add(path, "read count must be at least 1, got %d", op.Count)
		}
		if op.Target != "" && !vars[op.Target] {
			c.add(path, "undeclared variable %q", op.Target)
		}
	case domain.OpWrite:
		c.checkPortRef(path, op.Port, ports, domain.DirectionOut)
		if op.Expression == "" {
			c.add(path, "write without expression")
		}
		if op.Count < 1 {
			c.add(path, "write count must be at least 1, got %d", op.Count)
		}
	case domain.OpAssign:
		if !vars[op.Target] {
			c.add(path, "undeclared variable %q", op.Target)
		}
		if op.Expression == "" {
			c.add(path, "assign without expression")
		}
	case domain.OpEval:
		if op.Expression == "" {
			c.add(path, "eval without expression")
		}
	default:
		c.add(path, "unknown operation %q", op.Kind)
	}
}

func (c *collector) checkPortRef(path, name string, ports map[string]domain.Port, dir domain.Direction) {
	p, ok := ports[name]
	if !ok {
		c.add(path, "undeclared port %q", name)
		return
	}
	if p.Direction != dir {
		c.add(path, "port %q is %s, expected %s", name, p.Direction, dir)
	}
}
