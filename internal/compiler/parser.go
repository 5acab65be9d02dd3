package compiler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/streamblocks/actormachine/pkg/domain"
)

// ErrUnsupportedFormat is returned for descriptions whose format version is
// outside the supported range.
var ErrUnsupportedFormat = errors.New("unsupported description format")

// DefaultFormat is assumed when a description omits its format version.
const DefaultFormat = "1.0.0"

// SupportedFormats is the semver constraint descriptions must satisfy.
const SupportedFormats = "^1"

// Parser is responsible for converting raw bytes into an Actor.
type Parser struct {
	constraint *semver.Constraints
}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	c, err := semver.NewConstraint(SupportedFormats)
	if err != nil {
		panic(err)
	}
	return &Parser{constraint: c}
}

// Parse decodes a YAML or JSON actor description.
//
// Conditions and body operations accept a shorthand form:
//
//	conditions:
//	  - "x > 0"               # predicate
//	  - {input: a, count: 2}  # a.has_data(2)
//	  - {space: b}            # b.has_space(1)
//	body:
//	  - {read: a, into: x}
//	  - {write: b, value: "x * 2"}
//	  - {assign: n, value: "n + 1"}
//	  - {eval: "log(x)"}
//
// Parse does not validate references between elements; that is done when the
// controller is built.
func (p *Parser) Parse(data []byte) (*domain.Actor, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse actor description: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("empty actor description")
	}

	if v, ok := raw["format"]; ok && v != nil {
		format, err := p.checkFormat(v)
		if err != nil {
			return nil, err
		}
		raw["format"] = format
	}

	var actor domain.Actor
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.ComposeDecodeHookFunc(scalarHook, conditionHook, opHook),
		ErrorUnused: true,
		Result:      &actor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode actor description: %w", err)
	}

	if actor.Name == "" {
		return nil, fmt.Errorf("actor description missing name")
	}
	if actor.Format == "" {
		actor.Format = DefaultFormat
	}
	return &actor, nil
}

// checkFormat returns the normalized format version. YAML may hand us a number.
func (p *Parser) checkFormat(v any) (string, error) {
	s := fmt.Sprint(v)
	version, err := semver.NewVersion(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a version: %v", ErrUnsupportedFormat, s, err)
	}
	if !p.constraint.Check(version) {
		return "", fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedFormat, version, SupportedFormats)
	}
	return version.String(), nil
}

var (
	conditionType = reflect.TypeOf(domain.Condition{})
	opType        = reflect.TypeOf(domain.Op{})
)

// scalarHook accepts quoted numbers and booleans for typed fields. Frontmatter
// written by some editors (and by Loam's typed Save) quotes every scalar.
func scalarHook(from, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", s)
		}
		return n, nil
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("expected a boolean, got %q", s)
		}
		return b, nil
	}
	return data, nil
}

func conditionHook(from, to reflect.Type, data any) (any, error) {
	if to != conditionType {
		return data, nil
	}
	if s, ok := data.(string); ok {
		return map[string]any{"kind": string(domain.ConditionPredicate), "expression": s}, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}

	out := copyMap(m)
	switch {
	case has(m, "input"):
		out["kind"] = string(domain.ConditionInputAvailable)
		out["port"] = take(out, "input")
	case has(m, "space"):
		out["kind"] = string(domain.ConditionOutputHasSpace)
		out["port"] = take(out, "space")
	case has(m, "predicate"):
		out["kind"] = string(domain.ConditionPredicate)
		out["expression"] = take(out, "predicate")
	}
	if k, _ := out["kind"].(string); k != string(domain.ConditionPredicate) && !has(out, "count") {
		out["count"] = 1
	}
	return out, nil
}

func opHook(from, to reflect.Type, data any) (any, error) {
	if to != opType {
		return data, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}

	out := copyMap(m)
	switch {
	case has(m, "read"):
		out["kind"] = string(domain.OpRead)
		out["port"] = take(out, "read")
		if has(out, "into") {
			out["target"] = take(out, "into")
		}
	case has(m, "write"):
		out["kind"] = string(domain.OpWrite)
		out["port"] = take(out, "write")
		if has(out, "value") {
			out["expression"] = take(out, "value")
		}
	case has(m, "assign"):
		out["kind"] = string(domain.OpAssign)
		out["target"] = take(out, "assign")
		if has(out, "value") {
			out["expression"] = take(out, "value")
		}
	case has(m, "eval"):
		out["kind"] = string(domain.OpEval)
		out["expression"] = take(out, "eval")
	}
	if k, _ := out["kind"].(string); (k == string(domain.OpRead) || k == string(domain.OpWrite)) && !has(out, "count") {
		out["count"] = 1
	}
	return out, nil
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func take(m map[string]any, key string) any {
	v := m[key]
	delete(m, key)
	return v
}
