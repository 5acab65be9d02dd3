package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Type defines the contract for token and variable types.
type Type interface {
	// Name returns the canonical notation of the type (e.g. "uint8", "[int;4]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// IntType validates integers, optionally bounded by a bit width.
type IntType struct {
	Bits     int // 0 means the host integer width
	Unsigned bool
}

func (t *IntType) Name() string {
	prefix := "int"
	if t.Unsigned {
		prefix = "uint"
	}
	if t.Bits == 0 {
		return prefix
	}
	return prefix + strconv.Itoa(t.Bits)
}

func (t *IntType) Validate(value any) error {
	v, ok := asInt(value)
	if !ok {
		return fmt.Errorf("expected %s, got %T", t.Name(), value)
	}
	if t.Unsigned && v < 0 {
		return fmt.Errorf("expected %s, got negative value %d", t.Name(), v)
	}
	if t.Bits == 0 || t.Bits == 64 {
		return nil
	}
	var lo, hi int64
	if t.Unsigned {
		lo, hi = 0, int64(1)<<t.Bits-1
	} else {
		lo, hi = -(int64(1) << (t.Bits - 1)), int64(1)<<(t.Bits-1)-1
	}
	if v < lo || v > hi {
		return fmt.Errorf("value %d out of range for %s [%d, %d]", v, t.Name(), lo, hi)
	}
	return nil
}

// FloatType validates floating-point values.
type FloatType struct {
	Double bool
}

func (t *FloatType) Name() string {
	if t.Double {
		return "double"
	}
	return "float"
}

func (t *FloatType) Validate(value any) error {
	switch v := value.(type) {
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		if !t.Double && math.Abs(v) > math.MaxFloat32 && !math.IsInf(v, 0) {
			return fmt.Errorf("value %g overflows float", v)
		}
		return nil
	default:
		return fmt.Errorf("expected %s, got %T", t.Name(), value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// ListType validates lists of one element type, optionally of fixed length.
type ListType struct {
	Elem Type
	Size int // 0 means any length
}

func (t *ListType) Name() string {
	if t.Size > 0 {
		return fmt.Sprintf("[%s;%d]", t.Elem.Name(), t.Size)
	}
	return fmt.Sprintf("[%s]", t.Elem.Name())
}

func (t *ListType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected %s, got %T", t.Name(), value)
	}
	if t.Size > 0 && rv.Len() != t.Size {
		return fmt.Errorf("expected %d elements, got %d", t.Size, rv.Len())
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.Elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Int creates a host-width signed integer type.
func Int() Type { return &IntType{} }

// Sized creates a signed or unsigned integer type of the given width.
func Sized(bits int, unsigned bool) Type { return &IntType{Bits: bits, Unsigned: unsigned} }

// Float creates a single precision float type.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type.
func Bool() Type { return &BoolType{} }

// String creates a string type.
func String() Type { return &StringType{} }

// List creates a list type. Size 0 means unbounded.
func List(elem Type, size int) Type { return &ListType{Elem: elem, Size: size} }

// ParseType converts the compact notation to a Type.
func ParseType(notation string) (Type, error) {
	s := strings.TrimSpace(notation)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := s[1 : len(s)-1]
		size := 0
		if i := strings.LastIndex(inner, ";"); i >= 0 {
			n, err := strconv.Atoi(strings.TrimSpace(inner[i+1:]))
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid list length in %q", notation)
			}
			size = n
			inner = inner[:i]
		}
		elem, err := ParseType(inner)
		if err != nil {
			return nil, err
		}
		return List(elem, size), nil
	}

	switch s {
	case "bool":
		return Bool(), nil
	case "float":
		return Float(), nil
	case "double":
		return &FloatType{Double: true}, nil
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "uint":
		return &IntType{Unsigned: true}, nil
	}

	for _, prefix := range []string{"uint", "int"} {
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		bits, err := strconv.Atoi(s[len(prefix):])
		if err != nil {
			break
		}
		if bits < 1 || bits > 64 {
			return nil, fmt.Errorf("unsupported bit width %d in %q", bits, notation)
		}
		return Sized(bits, prefix == "uint"), nil
	}

	return nil, fmt.Errorf("unsupported type: %s", notation)
}

// ParseTypeMap converts a map of names to type notations into a Schema.
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, notation := range typeMap {
		t, err := ParseType(notation)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}

func asInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		// JSON numbers decode as float64; accept whole values.
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int64(v), true
		}
	}
	return 0, false
}
