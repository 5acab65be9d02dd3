package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Handler observes a run.
type Handler interface {
	OnStep(step Step) error
	OnDone(trace *Trace) error
}

// TextHandler writes one human readable line per step.
type TextHandler struct {
	w io.Writer
}

// NewTextHandler creates a TextHandler writing to w.
func NewTextHandler(w io.Writer) *TextHandler {
	return &TextHandler{w: w}
}

func (h *TextHandler) OnStep(s Step) error {
	var err error
	if s.Fired {
		_, err = fmt.Fprintf(h.w, "%4d  %-12s --%s--> %s  (%d evals)\n", s.Index, s.From, s.Transition, s.To, s.Evaluations)
	} else {
		_, err = fmt.Fprintf(h.w, "%4d  %-12s stall  (%d evals)\n", s.Index, s.From, s.Evaluations)
	}
	return err
}

func (h *TextHandler) OnDone(t *Trace) error {
	outcome := "stalled"
	if t.Limited {
		outcome = "step limit reached"
	}
	if _, err := fmt.Fprintf(h.w, "%d transitions fired, %s in %q\n", t.Fired(), outcome, t.Final.State); err != nil {
		return err
	}

	ports := make([]string, 0, len(t.Final.Outputs))
	for p := range t.Final.Outputs {
		ports = append(ports, p)
	}
	sort.Strings(ports)
	for _, p := range ports {
		if _, err := fmt.Fprintf(h.w, "  %s: %v\n", p, t.Final.Outputs[p]); err != nil {
			return err
		}
	}
	return nil
}

// JSONHandler writes one JSON object per step and the final instance last.
type JSONHandler struct {
	enc *json.Encoder
}

// NewJSONHandler creates a JSONHandler writing JSON lines to w.
func NewJSONHandler(w io.Writer) *JSONHandler {
	return &JSONHandler{enc: json.NewEncoder(w)}
}

func (h *JSONHandler) OnStep(s Step) error {
	return h.enc.Encode(s)
}

func (h *JSONHandler) OnDone(t *Trace) error {
	return h.enc.Encode(t.Final)
}
