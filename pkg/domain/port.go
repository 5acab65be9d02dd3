package domain

// Direction tells whether a port consumes or produces tokens.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Port is a named endpoint of an actor.
// Identity is scoped to the owning actor.
type Port struct {
	Name      string    `json:"name" yaml:"name" mapstructure:"name"`
	Direction Direction `json:"direction" yaml:"direction" mapstructure:"direction"`
	// ElementType is the declared token type (e.g. "int", "uint8", "[int;4]").
	ElementType string `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	// Capacity is the declared buffer depth for output ports.
	// Zero means the capacity is decided by the surrounding network.
	Capacity int `json:"capacity,omitempty" yaml:"capacity,omitempty" mapstructure:"capacity"`
}

// IsInput reports whether the port consumes tokens.
func (p Port) IsInput() bool { return p.Direction == DirectionIn }

// IsOutput reports whether the port produces tokens.
func (p Port) IsOutput() bool { return p.Direction == DirectionOut }
