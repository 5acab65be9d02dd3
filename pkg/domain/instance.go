package domain

// InstanceStatus describes the outcome of the last step of an instance.
type InstanceStatus string

const (
	StatusReady   InstanceStatus = "ready"   // Started, nothing fired yet
	StatusFired   InstanceStatus = "fired"   // Last step fired a transition
	StatusStalled InstanceStatus = "stalled" // Last step found no eligible transition
)

// Instance is the runtime snapshot of a simulated actor.
type Instance struct {
	Actor string `json:"actor"`

	// ProgramCounter is the controller state index; 0 is the initial state.
	ProgramCounter int            `json:"program_counter"`
	State          string         `json:"state"`
	Status         InstanceStatus `json:"status"`

	// Vars holds the persistent scope bindings.
	Vars map[string]any `json:"vars"`

	// Inputs are the unread tokens per input port, oldest first.
	Inputs map[string][]any `json:"inputs"`
	// Outputs are the produced tokens per output port, oldest first.
	Outputs map[string][]any `json:"outputs"`
	// Capacity bounds each output FIFO. Missing or zero means unbounded.
	Capacity map[string]int `json:"capacity,omitempty"`

	// History lists the fired transitions.
	History []string `json:"history,omitempty"`
}

// NewInstance creates an empty instance positioned at the initial state.
func NewInstance(actor string, state string) *Instance {
	return &Instance{
		Actor:          actor,
		ProgramCounter: 0,
		State:          state,
		Status:         StatusReady,
		Vars:           make(map[string]any),
		Inputs:         make(map[string][]any),
		Outputs:        make(map[string][]any),
		Capacity:       make(map[string]int),
	}
}

// Push appends tokens to an input FIFO and returns the instance for chaining.
func (i *Instance) Push(port string, tokens ...any) *Instance {
	i.Inputs[port] = append(i.Inputs[port], tokens...)
	return i
}

// Drain removes and returns every token produced on an output port.
func (i *Instance) Drain(port string) []any {
	out := i.Outputs[port]
	delete(i.Outputs, port)
	return out
}

// Clone returns a deep copy of the FIFOs and a shallow copy of the variable values.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	next := *i
	next.Vars = make(map[string]any, len(i.Vars))
	for k, v := range i.Vars {
		next.Vars[k] = v
	}
	next.Inputs = cloneFIFOs(i.Inputs)
	next.Outputs = cloneFIFOs(i.Outputs)
	next.Capacity = make(map[string]int, len(i.Capacity))
	for k, v := range i.Capacity {
		next.Capacity[k] = v
	}
	next.History = append([]string(nil), i.History...)
	return &next
}

func cloneFIFOs(src map[string][]any) map[string][]any {
	dst := make(map[string][]any, len(src))
	for k, v := range src {
		dst[k] = append([]any(nil), v...)
	}
	return dst
}
